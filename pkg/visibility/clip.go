package visibility

import "github.com/taigrr/escher/pkg/math3d"

// ClipState is the window a room is seen through, in that room's frame.
type ClipState struct {
	Depth          int
	ViewerPosition math3d.Vec2

	// RightAperture and LeftAperture are the aperture ends as seen from
	// the viewer: sweeping counter-clockwise goes right to left.
	RightAperture math3d.Vec2
	LeftAperture  math3d.Vec2

	// AperturePlane keeps the side of the aperture away from the viewer.
	AperturePlane math3d.Plane2
}

func newClipState(depth int, viewer, right, left math3d.Vec2) *ClipState {
	return &ClipState{
		Depth:          depth,
		ViewerPosition: viewer,
		RightAperture:  right,
		LeftAperture:   left,
		AperturePlane:  math3d.PlaneThrough(right, left.Sub(right).PerpCW()),
	}
}

// Planes returns the right edge, left edge and aperture planes. A point is
// visible through the window when it is inside all three.
func (c *ClipState) Planes() [3]math3d.Plane2 {
	r := c.RightAperture.Sub(c.ViewerPosition)
	l := c.LeftAperture.Sub(c.ViewerPosition)
	return [3]math3d.Plane2{
		math3d.PlaneThrough(c.ViewerPosition, r.PerpCCW()),
		math3d.PlaneThrough(c.ViewerPosition, l.PerpCW()),
		c.AperturePlane,
	}
}

// clipSegment trims a->b to the inside of p. The cut point is the exact
// line intersection.
func clipSegment(p math3d.Plane2, a, b math3d.Vec2) (math3d.Vec2, math3d.Vec2, bool) {
	da, db := p.Distance(a), p.Distance(b)
	switch {
	case da < 0 && db < 0:
		return a, b, false
	case da < 0:
		a = a.Lerp(b, da/(da-db))
	case db < 0:
		b = b.Lerp(a, db/(db-da))
	}
	return a, b, true
}

// facing reports whether start->end sweeps counter-clockwise around v,
// i.e. the segment's inner side faces v.
func facing(v, start, end math3d.Vec2) bool {
	return start.Sub(v).Wedge(end.Sub(v)) > 0
}
