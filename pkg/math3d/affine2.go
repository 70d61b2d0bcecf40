package math3d

import "math"

// Affine2 is a 2D affine transform stored as two basis columns and a
// translation:
//
//	| X.X Y.X T.X |
//	| X.Y Y.Y T.Y |
//
// Portal transforms are always rigid (orthonormal basis), but Inverse and Mul
// handle the general case.
type Affine2 struct {
	X, Y Vec2 // basis columns
	T    Vec2 // translation
}

// Identity2 returns the identity transform.
func Identity2() Affine2 {
	return Affine2{X: Vec2{1, 0}, Y: Vec2{0, 1}}
}

// Rotation2 creates a rotation by angle radians (CCW) about the origin.
func Rotation2(angle float64) Affine2 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Affine2{X: Vec2{c, s}, Y: Vec2{-s, c}}
}

// Translation2 creates a pure translation.
func Translation2(t Vec2) Affine2 {
	return Affine2{X: Vec2{1, 0}, Y: Vec2{0, 1}, T: t}
}

// Apply transforms p as a point.
func (m Affine2) Apply(p Vec2) Vec2 {
	return Vec2{
		m.X.X*p.X + m.Y.X*p.Y + m.T.X,
		m.X.Y*p.X + m.Y.Y*p.Y + m.T.Y,
	}
}

// ApplyDir transforms d as a direction (no translation).
func (m Affine2) ApplyDir(d Vec2) Vec2 {
	return Vec2{
		m.X.X*d.X + m.Y.X*d.Y,
		m.X.Y*d.X + m.Y.Y*d.Y,
	}
}

// Mul returns the composition a · b, which applies b first and then a.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Affine2) Mul(b Affine2) Affine2 {
	return Affine2{
		X: a.ApplyDir(b.X),
		Y: a.ApplyDir(b.Y),
		T: a.Apply(b.T),
	}
}

// Determinant returns the determinant of the linear part.
func (m Affine2) Determinant() float64 {
	return m.X.Wedge(m.Y)
}

// Inverse returns the inverse transform.
// Returns identity if the linear part is singular.
func (m Affine2) Inverse() Affine2 {
	det := m.Determinant()
	if det == 0 {
		return Identity2()
	}
	inv := Affine2{
		X: Vec2{m.Y.Y / det, -m.X.Y / det},
		Y: Vec2{-m.Y.X / det, m.X.X / det},
	}
	inv.T = inv.ApplyDir(m.T).Negate()
	return inv
}

// Angle returns the rotation angle of the basis in radians.
func (m Affine2) Angle() float64 {
	return math.Atan2(m.X.Y, m.X.X)
}

// ApproxEqual reports whether every component of a and b is within eps.
func (a Affine2) ApproxEqual(b Affine2, eps float64) bool {
	return a.X.ApproxEqual(b.X, eps) && a.Y.ApproxEqual(b.Y, eps) && a.T.ApproxEqual(b.T, eps)
}

// Mat4 lifts the floor transform into 3D, raising everything by height.
// The result maps Lift(p, h) to Lift(m.Apply(p), h+height).
func (m Affine2) Mat4(height float64) Mat4 {
	// Floor y maps to -Z, so the off-diagonal terms flip sign.
	return Mat4{
		m.X.X, 0, -m.X.Y, 0,
		0, 1, 0, 0,
		-m.Y.X, 0, m.Y.Y, 0,
		m.T.X, height, -m.T.Y, 1,
	}
}
