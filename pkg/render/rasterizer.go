// Package render is a software backend for drawing visible room instances:
// a camera placed in the viewer's room, clip-plane polygon clipping, a
// depth-buffered triangle rasterizer and a terminal presenter.
package render

import (
	"math"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/models"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Color    Color
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// DrawStats counts room draws in the current frame.
type DrawStats struct {
	RoomsTested int // Rooms submitted
	RoomsCulled int // Rooms rejected by the frustum
	Triangles   int // Triangles that reached the rasterizer
}

// Rasterizer handles software triangle rasterization. It implements Backend.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	zbuffer      []float64 // Depth buffer (1D array, row-major)
	frustum      Frustum   // Cached frustum planes
	frustumDirty bool      // Whether frustum needs recalculation

	// LightDir points from the light into the scene.
	LightDir math3d.Vec3
	// Ambient is the light level of faces turned away from LightDir.
	Ambient float64

	Stats DrawStats

	// Scratch polygons for clipping.
	polyA, polyB []clipVertex
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
		LightDir:     math3d.V3(-0.4, -1, -0.3).Normalize(),
		Ambient:      0.35,
	}
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// SetFramebuffer switches the render target and resizes the depth buffer.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// BeginFrame clears the depth buffer and per-frame statistics, and picks up
// camera changes.
func (r *Rasterizer) BeginFrame() {
	r.ClearDepth()
	r.Stats = DrawStats{}
	r.frustumDirty = true
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// GetFrustum returns the current frustum (updating if needed).
func (r *Rasterizer) GetFrustum() Frustum {
	if r.frustumDirty {
		r.frustum = NewFrustumFromMatrix(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
	return r.frustum
}

// DrawRoom draws one room range placed by transform, keeping only the parts
// inside every clip plane.
func (r *Rasterizer) DrawRoom(mesh *models.Mesh, rng models.Range, transform math3d.Mat4, clips []Plane) {
	r.Stats.RoomsTested++
	lo, hi := mesh.RangeBounds(rng)
	if !r.GetFrustum().IntersectAABB(AABB{Min: lo, Max: hi}.Transform(transform)) {
		r.Stats.RoomsCulled++
		return
	}

	light := r.LightDir.Negate()
	for i := range rng.NumElements / 3 {
		src := mesh.Triangle(rng, i)

		normal := transform.MulDir(src[0].Normal)
		intensity := r.Ambient + (1-r.Ambient)*max(0, normal.Dot(light))
		c := MultiplyColor(src[0].Color, intensity)

		var tri Triangle
		for j, v := range src {
			tri.V[j] = Vertex{Position: transform.MulVec3(v.Position), Color: c}
		}
		r.drawClipped(tri, clips)
	}
}

// DrawTriangle rasterizes a single world-space triangle. Both sides are drawn.
func (r *Rasterizer) DrawTriangle(tri Triangle) {
	r.drawClipped(tri, nil)
}

// clipVertex is a vertex during clipping: world position, clip-space
// position and color.
type clipVertex struct {
	world math3d.Vec3
	clip  math3d.Vec4
	color Color
}

func lerpClipVertex(a, b clipVertex, t float64) clipVertex {
	return clipVertex{
		world: a.world.Lerp(b.world, t),
		clip:  a.clip.Lerp(b.clip, t),
		color: lerpColor(a.color, b.color, t),
	}
}

// clipPolygon keeps the part of in with dist >= 0 (Sutherland-Hodgman),
// writing into out.
func clipPolygon(in, out []clipVertex, dist func(clipVertex) float64) []clipVertex {
	out = out[:0]
	for i, cur := range in {
		next := in[(i+1)%len(in)]
		dc, dn := dist(cur), dist(next)
		if dc >= 0 {
			out = append(out, cur)
		}
		if (dc >= 0) != (dn >= 0) {
			out = append(out, lerpClipVertex(cur, next, dc/(dc-dn)))
		}
	}
	return out
}

func (r *Rasterizer) drawClipped(tri Triangle, clips []Plane) {
	viewProj := r.camera.ViewProjectionMatrix()

	poly := r.polyA[:0]
	for _, v := range tri.V {
		poly = append(poly, clipVertex{
			world: v.Position,
			clip:  viewProj.MulVec4(math3d.V4FromV3(v.Position, 1)),
			color: v.Color,
		})
	}
	scratch := r.polyB

	for _, p := range clips {
		scratch = clipPolygon(poly, scratch, func(v clipVertex) float64 { return p.DistanceToPoint(v.world) })
		poly, scratch = scratch, poly
		if len(poly) < 3 {
			r.polyA, r.polyB = poly, scratch
			return
		}
	}

	// Near plane in clip space: z + w >= 0.
	scratch = clipPolygon(poly, scratch, func(v clipVertex) float64 { return v.clip.Z + v.clip.W })
	poly, scratch = scratch, poly
	r.polyA, r.polyB = poly, scratch
	if len(poly) < 3 {
		return
	}

	var sv [3]screenVertex
	sv[0] = r.toScreen(poly[0])
	for i := 1; i+1 < len(poly); i++ {
		sv[1] = r.toScreen(poly[i])
		sv[2] = r.toScreen(poly[i+1])
		r.rasterize(sv)
	}
}

// getDepth returns the depth at (x, y).
func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// setDepth sets the depth at (x, y).
func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y  float64 // Screen coordinates
	Z     float64 // Depth (for Z-buffer)
	Color Color
}

func (r *Rasterizer) toScreen(v clipVertex) screenVertex {
	ndc := v.clip.PerspectiveDivide()
	return screenVertex{
		X:     (ndc.X + 1) * 0.5 * float64(r.Width()),
		Y:     (1 - ndc.Y) * 0.5 * float64(r.Height()), // Y flipped
		Z:     ndc.Z,
		Color: v.color,
	}
}

// rasterize fills a screen-space triangle with a depth test.
func (r *Rasterizer) rasterize(sv [3]screenVertex) {
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area == 0 {
		return
	}
	r.Stats.Triangles++

	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, bc))
		}
	}
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func lerpColor(a, b Color, t float64) Color {
	return interpolateColor3(a, b, b, math3d.V3(1-t, t, 0))
}

// MultiplyColor scales a color's RGB by intensity, clamped to [0, 1].
func MultiplyColor(c Color, intensity float64) Color {
	intensity = max(0, min(1, intensity))
	return RGBA(
		uint8(float64(c.R)*intensity),
		uint8(float64(c.G)*intensity),
		uint8(float64(c.B)*intensity),
		c.A,
	)
}
