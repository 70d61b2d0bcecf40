// Package models builds the static room geometry drawn for every visible
// room instance and moves it in and out of glTF.
package models

import (
	"image/color"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/world"
)

// Mesh is one shared vertex/index buffer holding every room. Each room's
// triangles occupy a contiguous Part.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Indices  []uint32 // relative to the owning part's BaseVertex
	Parts    []Part

	// Bounding box (calculated on build/load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	byRoom map[world.RoomID]int
}

// MeshVertex holds all vertex attributes, in room-local 3D space.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Color    color.RGBA
}

// Range locates a part in the shared buffers.
type Range struct {
	BaseVertex  int
	NumVertices int
	BaseIndex   int
	NumElements int // index count, three per triangle
}

// Part is one room's slice of the mesh.
type Part struct {
	Room world.RoomID // nil for parts loaded from a file
	Name string
	Range
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:   name,
		byRoom: make(map[world.RoomID]int),
	}
}

// Range returns the buffer range of a room.
func (m *Mesh) Range(room world.RoomID) (Range, bool) {
	i, ok := m.byRoom[room]
	if !ok {
		return Range{}, false
	}
	return m.Parts[i].Range, true
}

// RangeBounds returns the axis-aligned bounds of the vertices in r.
func (m *Mesh) RangeBounds(r Range) (lo, hi math3d.Vec3) {
	verts := m.Vertices[r.BaseVertex : r.BaseVertex+r.NumVertices]
	if len(verts) == 0 {
		return lo, hi
	}
	lo, hi = verts[0].Position, verts[0].Position
	for _, v := range verts[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi
}

// Triangle returns the i-th triangle of r.
func (m *Mesh) Triangle(r Range, i int) [3]MeshVertex {
	idx := m.Indices[r.BaseIndex+3*i:]
	return [3]MeshVertex{
		m.Vertices[r.BaseVertex+int(idx[0])],
		m.Vertices[r.BaseVertex+int(idx[1])],
		m.Vertices[r.BaseVertex+int(idx[2])],
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals assigns each triangle's face normal to its vertices.
// Parts are expected not to share vertices between faces of different
// orientation, which holds for the builder's output.
func (m *Mesh) CalculateNormals() {
	for _, p := range m.Parts {
		for i := range p.NumElements / 3 {
			idx := m.Indices[p.BaseIndex+3*i:]
			a := &m.Vertices[p.BaseVertex+int(idx[0])]
			b := &m.Vertices[p.BaseVertex+int(idx[1])]
			c := &m.Vertices[p.BaseVertex+int(idx[2])]

			normal := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position)).Normalize()
			a.Normal, b.Normal, c.Normal = normal, normal, normal
		}
	}
}

// beginPart opens a new part at the end of the buffers.
func (m *Mesh) beginPart(room world.RoomID, name string) {
	if !room.IsNil() {
		m.byRoom[room] = len(m.Parts)
	}
	m.Parts = append(m.Parts, Part{
		Room: room,
		Name: name,
		Range: Range{
			BaseVertex: len(m.Vertices),
			BaseIndex:  len(m.Indices),
		},
	})
}

// endPart closes the part opened by beginPart.
func (m *Mesh) endPart() {
	p := &m.Parts[len(m.Parts)-1]
	p.NumVertices = len(m.Vertices) - p.BaseVertex
	p.NumElements = len(m.Indices) - p.BaseIndex
}

// addVertex appends v to the open part and returns its part-relative index.
func (m *Mesh) addVertex(v MeshVertex) uint32 {
	p := &m.Parts[len(m.Parts)-1]
	m.Vertices = append(m.Vertices, v)
	return uint32(len(m.Vertices) - 1 - p.BaseVertex)
}
