// Package math3d provides the 2D and 3D math primitives used by escher.
//
// Rooms are authored in a 2D floor plane. A floor point (x, y) at height h
// lifts to the 3D point (x, h, -y), so Y is up and counter-clockwise floor
// loops stay counter-clockwise when seen from above.
package math3d

import "math"

// Vec2 represents a 2D vector or point on the floor plane.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// FromAngle returns the unit vector pointing along angle (radians, CCW from +X).
func FromAngle(angle float64) Vec2 {
	return Vec2{math.Cos(angle), math.Sin(angle)}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Dot returns the dot product a · b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Wedge returns the 2D cross product a.X*b.Y - a.Y*b.X.
// Positive when b is counter-clockwise from a.
func (a Vec2) Wedge(b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Len returns the length of the vector.
func (a Vec2) Len() float64 {
	return math.Hypot(a.X, a.Y)
}

// LenSq returns the squared length.
func (a Vec2) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y
}

// Normalize returns the unit vector in the same direction, or the zero
// vector if a has no length.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Negate returns the negated vector.
func (a Vec2) Negate() Vec2 {
	return Vec2{-a.X, -a.Y}
}

// PerpCW returns a rotated 90° clockwise.
func (a Vec2) PerpCW() Vec2 {
	return Vec2{a.Y, -a.X}
}

// PerpCCW returns a rotated 90° counter-clockwise.
func (a Vec2) PerpCCW() Vec2 {
	return Vec2{-a.Y, a.X}
}

// Lerp returns the linear interpolation between a and b by t.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Distance returns the distance between two points.
func (a Vec2) Distance(b Vec2) float64 {
	return a.Sub(b).Len()
}

// Angle returns the direction of a in radians, CCW from +X.
func (a Vec2) Angle() float64 {
	return math.Atan2(a.Y, a.X)
}

// ApproxEqual reports whether a and b differ by at most eps per component.
func (a Vec2) ApproxEqual(b Vec2, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// Lift returns the 3D point for floor point p at height h.
func Lift(p Vec2, h float64) Vec3 {
	return Vec3{p.X, h, -p.Y}
}
