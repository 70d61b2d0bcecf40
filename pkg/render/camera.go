package render

import (
	"math"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/portal"
)

// DefaultEyeHeight is the eye height above the floor used by the viewer.
const DefaultEyeHeight = 1.2

// maxPitch keeps the camera short of looking straight up or down.
const maxPitch = 1.4

// Camera is a perspective camera standing in the viewer's room. It has no
// roll: the floor always stays level.
type Camera struct {
	// Position in the viewer room's 3D frame
	Position math3d.Vec3

	// Orientation (radians)
	Pitch float64 // Look up/down
	Yaw   float64 // Rotation around Y; 0 looks down -Z

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, DefaultEyeHeight, 0),
		FOV:         math.Pi / 3, // 60 degrees
		AspectRatio: 16.0 / 9.0,
		Near:        0.05,
		Far:         200,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPlacement puts the camera at a floor placement, eyeHeight above the
// floor, looking along the placement's yaw. The placement's room becomes the
// frame everything is drawn in.
func (c *Camera) SetPlacement(p portal.Placement, eyeHeight float64) {
	c.Position = math3d.Lift(p.Position, eyeHeight)
	// Camera yaw 0 looks down -Z, which is floor +Y.
	c.Yaw = p.Yaw - math.Pi/2
	c.viewDirty = true
}

// SetPitch tilts the view up (positive) or down, clamped short of vertical.
func (c *Camera) SetPitch(pitch float64) {
	c.Pitch = max(-maxPitch, min(maxPitch, pitch))
	c.viewDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// Forward returns the forward direction vector.
func (c *Camera) Forward() math3d.Vec3 {
	// Forward is -Z in camera space, rotated by yaw and pitch
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.RotateX(-c.Pitch).
			Mul(math3d.RotateY(-c.Yaw)).
			Mul(math3d.Translate(c.Position.Negate()))
		c.viewDirty = false
		c.viewProjDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.viewProjDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	proj, view := c.ProjectionMatrix(), c.ViewMatrix()
	if c.viewProjDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// WorldToScreen projects a point in the viewer room's frame to screen
// coordinates. visible is false behind the camera or off screen.
func (c *Camera) WorldToScreen(p math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}
