// Package portal computes the rigid transforms that glue two walls together
// and describes placements of viewers and objects inside rooms.
package portal

import (
	"fmt"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/world"
)

// Segment is a directed floor segment.
type Segment struct {
	Start, End math3d.Vec2
}

// Center returns the segment midpoint.
func (s Segment) Center() math3d.Vec2 {
	return s.Start.Lerp(s.End, 0.5)
}

// Direction returns the unit direction from Start to End, or zero for a
// zero-length segment.
func (s Segment) Direction() math3d.Vec2 {
	return s.End.Sub(s.Start).Normalize()
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.End.Sub(s.Start).Len()
}

// CalculatePortalTransform returns the transform that maps points expressed
// around the to segment onto the from segment's side: the two segments end
// up sharing a midpoint and facing each other (anti-parallel).
//
// Zero-length segments have no direction; callers must skip them. For such
// input the rotation falls back to identity.
func CalculatePortalTransform(from, to Segment) math3d.Affine2 {
	d0 := from.Direction()
	d1 := to.Direction().Negate()

	s := d0.Wedge(d1)
	c := d0.Dot(d1)
	if s == 0 && c == 0 {
		c = 1
	}

	m := math3d.Affine2{
		X: math3d.V2(c, -s),
		Y: math3d.V2(s, c),
	}
	m.T = from.Center().Sub(m.ApplyDir(to.Center()))
	return m
}

// WallSegment returns a wall of g as a segment.
func WallSegment(g *world.Geometry, id world.WallID) (Segment, bool) {
	start, end, ok := g.WallSegment(id)
	return Segment{Start: start, End: end}, ok
}

// WallTransform applies CalculatePortalTransform to two walls of g, mapping
// to's room coordinates into from's room coordinates.
func WallTransform(g *world.Geometry, from, to world.WallID) (math3d.Affine2, error) {
	a, ok := WallSegment(g, from)
	if !ok {
		return math3d.Affine2{}, fmt.Errorf("portal transform from %v: %w", from, world.ErrInvalidWall)
	}
	b, ok := WallSegment(g, to)
	if !ok {
		return math3d.Affine2{}, fmt.Errorf("portal transform to %v: %w", to, world.ErrInvalidWall)
	}
	return CalculatePortalTransform(a, b), nil
}
