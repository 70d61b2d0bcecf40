package math3d

// Plane2 is a half-plane on the floor: points p with Normal·p + D >= 0 are
// inside.
type Plane2 struct {
	Normal Vec2
	D      float64
}

// PlaneThrough returns the normalized half-plane whose boundary passes
// through point and whose inside lies along normal.
func PlaneThrough(point, normal Vec2) Plane2 {
	n := normal.Normalize()
	return Plane2{Normal: n, D: -n.Dot(point)}
}

// Distance returns the signed distance from the boundary to p.
// Positive = inside.
func (p Plane2) Distance(point Vec2) float64 {
	return p.Normal.Dot(point) + p.D
}

// Transform re-expresses the plane through the rigid transform m, so that
// the result contains m.Apply(q) whenever p contains q.
func (p Plane2) Transform(m Affine2) Plane2 {
	n := m.ApplyDir(p.Normal)
	return Plane2{Normal: n, D: p.D - n.Dot(m.T)}
}

// Lift returns the vertical 3D plane with the same inside region.
func (p Plane2) Lift() (normal Vec3, d float64) {
	return Vec3{p.Normal.X, 0, -p.Normal.Y}, p.D
}
