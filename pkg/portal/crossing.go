package portal

import (
	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/world"
)

// MaxCrossings bounds how many apertures a single step may pass through.
// Rooms glued to themselves could otherwise bounce a long step forever.
const MaxCrossings = 8

// Crossing describes one traversable aperture of a room, in that room's frame.
type Crossing struct {
	Wall        world.WallID
	TargetRoom  world.RoomID
	Start, End  math3d.Vec2
	ToTarget    math3d.Affine2 // this room -> target room
	FloorChange float64        // target floor relative to this floor
}

// Resolver lists the crossings out of a room.
type Resolver interface {
	Crossings(room world.RoomID) []Crossing
}

// Step is the outcome of Cross.
type Step struct {
	Placement Placement
	Crossed   int
	// FloorChange accumulates the floor differences of every aperture
	// passed, so a caller can keep eye height continuous.
	FloorChange float64
}

// Cross moves p by step, re-expressing it in the target room each time the
// path passes through an aperture from the inside. Solid walls do not stop
// the move.
func Cross(r Resolver, p Placement, step math3d.Vec2) Step {
	out := Step{Placement: p}
	for out.Crossed < MaxCrossings {
		from := out.Placement.Position
		to := from.Add(step)

		c, t, ok := firstCrossing(r.Crossings(out.Placement.Room), from, to)
		if !ok {
			out.Placement.Position = to
			return out
		}

		hit := from.Lerp(to, t)
		out.Placement = Placement{
			Room:     c.TargetRoom,
			Position: c.ToTarget.Apply(hit),
			Yaw:      wrapAngle(out.Placement.Yaw + c.ToTarget.Angle()),
		}
		step = c.ToTarget.ApplyDir(step.Scale(1 - t))
		out.FloorChange += c.FloorChange
		out.Crossed++
	}
	return out
}

// firstCrossing finds the aperture the segment from->to leaves through
// first. Only outward motion counts: from must be on or inside the
// aperture line and to strictly outside.
func firstCrossing(cs []Crossing, from, to math3d.Vec2) (Crossing, float64, bool) {
	var (
		best  Crossing
		bestT = 2.0
		found bool
	)
	for _, c := range cs {
		edge := c.End.Sub(c.Start)
		sa := edge.Wedge(from.Sub(c.Start))
		sb := edge.Wedge(to.Sub(c.Start))
		if sa < 0 || sb >= 0 {
			continue
		}
		t := sa / (sa - sb)
		hit := from.Lerp(to, t)

		// Position along the aperture, normalised to [0, 1].
		u := hit.Sub(c.Start).Dot(edge) / edge.LenSq()
		if u < 0 || u > 1 {
			continue
		}
		if t < bestT {
			best, bestT, found = c, t, true
		}
	}
	return best, bestT, found
}
