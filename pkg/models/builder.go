package models

import (
	"image/color"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/processed"
)

// minPiece is the smallest wall piece width or height worth emitting.
const minPiece = 1e-6

// BuildRoomMeshes builds floor, ceiling and wall geometry for every room of
// w. Connected walls leave a hole the size of their aperture; the pieces
// around it close the gap to a neighbour with a different floor or ceiling.
// Rooms are fan-triangulated, so only convex outlines come out right.
func BuildRoomMeshes(w *processed.World) *Mesh {
	g := w.Geometry()
	m := NewMesh("rooms")

	for _, rid := range w.Rooms() {
		room, _ := g.Room(rid)
		info, _ := w.Room(rid)

		m.beginPart(rid, rid.String())

		if poly := g.RoomPolygon(rid); len(poly) >= 3 {
			m.fan(poly, 0, math3d.Up(), room.FloorColor)
			m.fan(poly, room.Height, math3d.Up().Negate(), room.CeilingColor)
		}

		for _, wid := range info.Walls {
			wall, _ := g.Wall(wid)
			wi, _ := w.Wall(wid)
			if wi.Length < processed.MinWallLength {
				continue
			}
			m.wall(wi, room.Height, wall.Color)
		}

		m.endPart()
	}

	m.CalculateBounds()
	return m
}

// fan emits a triangle fan over poly at height h. An upward normal keeps
// the loop order, a downward one reverses it so the face still points at
// the room's interior.
func (m *Mesh) fan(poly []math3d.Vec2, h float64, normal math3d.Vec3, c color.RGBA) {
	first := uint32(0)
	for i, p := range poly {
		idx := m.addVertex(MeshVertex{Position: math3d.Lift(p, h), Normal: normal, Color: c})
		if i == 0 {
			first = idx
		}
	}
	down := normal.Y < 0
	for i := 1; i+1 < len(poly); i++ {
		j, k := first+uint32(i), first+uint32(i+1)
		if down {
			j, k = k, j
		}
		m.Indices = append(m.Indices, first, j, k)
	}
}

// wall emits the solid pieces of one wall.
func (m *Mesh) wall(wi *processed.WallInfo, height float64, c color.RGBA) {
	conn := wi.Connection
	if conn == nil {
		m.quad(wi, 0, wi.Length, 0, height, c)
		return
	}

	a0 := conn.ApertureStart.Sub(wi.Start).Dot(wi.Direction)
	a1 := conn.ApertureEnd.Sub(wi.Start).Dot(wi.Direction)
	bottom, top := conn.ApertureBottom, conn.ApertureTop

	m.quad(wi, 0, a0, 0, height, c)
	m.quad(wi, a1, wi.Length, 0, height, c)
	if top <= bottom {
		// The rooms do not overlap vertically; nothing shows through.
		m.quad(wi, a0, a1, 0, height, c)
		return
	}
	m.quad(wi, a0, a1, 0, bottom, c)
	m.quad(wi, a0, a1, top, height, c)
}

// quad emits the part of the wall between distances s0 and s1 from its
// start and heights h0 and h1, facing into the room. Empty pieces are
// skipped.
func (m *Mesh) quad(wi *processed.WallInfo, s0, s1, h0, h1 float64, c color.RGBA) {
	if s1-s0 < minPiece || h1-h0 < minPiece {
		return
	}
	p0 := wi.Start.Add(wi.Direction.Scale(s0))
	p1 := wi.Start.Add(wi.Direction.Scale(s1))
	n := math3d.Lift(wi.Normal.Negate(), 0)

	i0 := m.addVertex(MeshVertex{Position: math3d.Lift(p0, h0), Normal: n, Color: c})
	i1 := m.addVertex(MeshVertex{Position: math3d.Lift(p1, h0), Normal: n, Color: c})
	i2 := m.addVertex(MeshVertex{Position: math3d.Lift(p1, h1), Normal: n, Color: c})
	i3 := m.addVertex(MeshVertex{Position: math3d.Lift(p0, h1), Normal: n, Color: c})
	m.Indices = append(m.Indices, i0, i3, i2, i0, i2, i1)
}
