// Package world holds the authoritative half-edge model of rooms, walls and
// vertices.
//
// Every room is a closed loop of walls linked through Next/Prev. A wall runs
// from its source vertex to the source vertex of its Next wall; loops are
// authored counter-clockwise, so a room's interior lies to the left of each
// wall. Two walls may be glued together as a portal through Connected.
//
// Geometry is not safe for concurrent use. Edits and reads happen on the
// frame thread.
package world

import (
	"image/color"
	"iter"

	"github.com/taigrr/escher/pkg/math3d"
)

// Defaults applied to newly inserted rooms and walls.
const (
	DefaultRoomHeight = 2.0
)

// Default colors for new rooms and walls.
var (
	DefaultWallColor    = color.RGBA{200, 200, 200, 255}
	DefaultFloorColor   = color.RGBA{90, 80, 70, 255}
	DefaultCeilingColor = color.RGBA{160, 170, 180, 255}
)

// VertexID identifies a vertex. The zero value refers to no vertex.
type VertexID struct{ key }

// WallID identifies a wall. The zero value refers to no wall.
type WallID struct{ key }

// RoomID identifies a room. The zero value refers to no room.
type RoomID struct{ key }

// IsNil reports whether id refers to no vertex.
func (id VertexID) IsNil() bool { return id.gen == 0 }

// IsNil reports whether id refers to no wall.
func (id WallID) IsNil() bool { return id.gen == 0 }

// IsNil reports whether id refers to no room.
func (id RoomID) IsNil() bool { return id.gen == 0 }

func (id VertexID) String() string { return id.format("vertex") }
func (id WallID) String() string   { return id.format("wall") }
func (id RoomID) String() string   { return id.format("room") }

// Vertex is a floor position plus one outgoing wall.
type Vertex struct {
	Position     math3d.Vec2
	OutgoingWall WallID
}

// Wall is one directed edge of a room loop.
type Wall struct {
	Room   RoomID
	Source VertexID
	Next   WallID
	Prev   WallID

	// Connected is the wall this one is glued to, or nil.
	Connected WallID

	Color color.RGBA

	// VerticalOffset raises the connected room's floor relative to this
	// room's floor. The effective floor difference of a portal is the
	// difference of the two sides' offsets.
	VerticalOffset float64

	// HorizontalOffset shifts the aperture along the wall away from its
	// midpoint.
	HorizontalOffset float64
}

// Room is a closed loop of walls.
type Room struct {
	FirstWall    WallID
	FloorColor   color.RGBA
	CeilingColor color.RGBA
	Height       float64
}

// Geometry is the half-edge world model.
type Geometry struct {
	vertices slotMap[Vertex]
	walls    slotMap[Wall]
	rooms    slotMap[Room]

	version      uint64
	batching     bool
	batchChanged bool
}

// New creates an empty geometry.
func New() *Geometry {
	return &Geometry{}
}

// Version returns the change counter. It increases once per successful edit,
// or once per batch applied with ApplyBatch.
func (g *Geometry) Version() uint64 {
	return g.version
}

func (g *Geometry) markChanged() {
	if g.batching {
		g.batchChanged = true
		return
	}
	g.version++
}

// Vertex returns a copy of the vertex with the given id.
func (g *Geometry) Vertex(id VertexID) (Vertex, bool) {
	v, ok := g.vertices.get(id.key)
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// Wall returns a copy of the wall with the given id.
func (g *Geometry) Wall(id WallID) (Wall, bool) {
	w, ok := g.walls.get(id.key)
	if !ok {
		return Wall{}, false
	}
	return *w, true
}

// Room returns a copy of the room with the given id.
func (g *Geometry) Room(id RoomID) (Room, bool) {
	r, ok := g.rooms.get(id.key)
	if !ok {
		return Room{}, false
	}
	return *r, true
}

// RoomCount returns the number of live rooms.
func (g *Geometry) RoomCount() int { return g.rooms.len() }

// WallTotal returns the number of live walls across all rooms.
func (g *Geometry) WallTotal() int { return g.walls.len() }

// VertexCount returns the number of live vertices.
func (g *Geometry) VertexCount() int { return g.vertices.len() }

// Rooms yields every room id in stable slot order.
func (g *Geometry) Rooms() iter.Seq[RoomID] {
	return func(yield func(RoomID) bool) {
		for k := range g.rooms.keys() {
			if !yield(RoomID{k}) {
				return
			}
		}
	}
}

// Walls yields every wall id in stable slot order.
func (g *Geometry) Walls() iter.Seq[WallID] {
	return func(yield func(WallID) bool) {
		for k := range g.walls.keys() {
			if !yield(WallID{k}) {
				return
			}
		}
	}
}

// Vertices yields every vertex id in stable slot order.
func (g *Geometry) Vertices() iter.Seq[VertexID] {
	return func(yield func(VertexID) bool) {
		for k := range g.vertices.keys() {
			if !yield(VertexID{k}) {
				return
			}
		}
	}
}

// RoomWalls yields the walls of a room in loop order starting at FirstWall.
// The walk stops early if the loop is broken, and never visits more walls
// than exist.
func (g *Geometry) RoomWalls(id RoomID) iter.Seq[WallID] {
	return func(yield func(WallID) bool) {
		r, ok := g.rooms.get(id.key)
		if !ok {
			return
		}
		first := r.FirstWall
		cur := first
		for range g.walls.len() {
			w, ok := g.walls.get(cur.key)
			if !ok {
				return
			}
			if !yield(cur) {
				return
			}
			cur = w.Next
			if cur == first {
				return
			}
		}
	}
}

// WallCount returns the number of walls in a room's loop.
func (g *Geometry) WallCount(id RoomID) int {
	n := 0
	for range g.RoomWalls(id) {
		n++
	}
	return n
}

// WallSegment returns a wall's start (its source vertex) and end (its next
// wall's source vertex).
func (g *Geometry) WallSegment(id WallID) (start, end math3d.Vec2, ok bool) {
	w, ok := g.walls.get(id.key)
	if !ok {
		return start, end, false
	}
	src, ok := g.vertices.get(w.Source.key)
	if !ok {
		return start, end, false
	}
	next, ok := g.walls.get(w.Next.key)
	if !ok {
		return start, end, false
	}
	dst, ok := g.vertices.get(next.Source.key)
	if !ok {
		return start, end, false
	}
	return src.Position, dst.Position, true
}

// RoomPolygon returns the room's vertex positions in loop order.
func (g *Geometry) RoomPolygon(id RoomID) []math3d.Vec2 {
	var pts []math3d.Vec2
	for wid := range g.RoomWalls(id) {
		w, _ := g.walls.get(wid.key)
		if v, ok := g.vertices.get(w.Source.key); ok {
			pts = append(pts, v.Position)
		}
	}
	return pts
}
