package portal

import (
	"math"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/world"
)

// Placement locates a viewer or object: a room, a position in that room's
// frame, and a yaw (radians, CCW from +X).
type Placement struct {
	Room     world.RoomID
	Position math3d.Vec2
	Yaw      float64
}

// Forward returns the unit facing direction.
func (p Placement) Forward() math3d.Vec2 {
	return math3d.FromAngle(p.Yaw)
}

// Reexpress returns the placement seen through m, which maps the current
// room's coordinates into room's coordinates.
func (p Placement) Reexpress(room world.RoomID, m math3d.Affine2) Placement {
	return Placement{
		Room:     room,
		Position: m.Apply(p.Position),
		Yaw:      wrapAngle(p.Yaw + m.Angle()),
	}
}

// wrapAngle maps a to (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
