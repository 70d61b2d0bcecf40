package world

import (
	"fmt"
	"image/color"

	"github.com/taigrr/escher/pkg/math3d"
)

// InsertRoomFromPositions creates a room whose walls follow points in order.
// Points should run counter-clockwise. Fewer than three points produce a
// degenerate room, which is accepted; downstream consumers guard against it.
func (g *Geometry) InsertRoomFromPositions(points []math3d.Vec2) (RoomID, error) {
	id, err := g.insertRoom(points)
	if err != nil {
		return RoomID{}, err
	}
	g.markChanged()
	return id, nil
}

func (g *Geometry) insertRoom(points []math3d.Vec2) (RoomID, error) {
	if len(points) == 0 {
		return RoomID{}, fmt.Errorf("insert room: %w", ErrEmptyRoom)
	}

	room := RoomID{g.rooms.insert(Room{
		FloorColor:   DefaultFloorColor,
		CeilingColor: DefaultCeilingColor,
		Height:       DefaultRoomHeight,
	})}

	walls := make([]WallID, len(points))
	for i, p := range points {
		v := VertexID{g.vertices.insert(Vertex{Position: p})}
		walls[i] = WallID{g.walls.insert(Wall{
			Room:   room,
			Source: v,
			Color:  DefaultWallColor,
		})}
		vx, _ := g.vertices.get(v.key)
		vx.OutgoingWall = walls[i]
	}

	n := len(walls)
	for i, id := range walls {
		w, _ := g.walls.get(id.key)
		w.Next = walls[(i+1)%n]
		w.Prev = walls[(i+n-1)%n]
	}

	r, _ := g.rooms.get(room.key)
	r.FirstWall = walls[0]
	return room, nil
}

// SplitWall inserts a new vertex at position and a new wall directly after
// wall in its room loop. The new wall starts unconnected with zero offsets.
func (g *Geometry) SplitWall(wall WallID, position math3d.Vec2) (WallID, error) {
	id, err := g.splitWall(wall, position)
	if err != nil {
		return WallID{}, err
	}
	g.markChanged()
	return id, nil
}

func (g *Geometry) splitWall(wall WallID, position math3d.Vec2) (WallID, error) {
	w, ok := g.walls.get(wall.key)
	if !ok {
		return WallID{}, fmt.Errorf("split %v: %w", wall, ErrInvalidWall)
	}
	room, next, col := w.Room, w.Next, w.Color

	v := VertexID{g.vertices.insert(Vertex{Position: position})}
	nw := WallID{g.walls.insert(Wall{
		Room:   room,
		Source: v,
		Next:   next,
		Prev:   wall,
		Color:  col,
	})}

	vx, _ := g.vertices.get(v.key)
	vx.OutgoingWall = nw

	// Re-fetch: the insert above may have moved the slot storage.
	w, _ = g.walls.get(wall.key)
	w.Next = nw
	if nx, ok := g.walls.get(next.key); ok {
		nx.Prev = nw
	}
	return nw, nil
}

// SplitVertex duplicates a vertex by splitting the wall that ends at it, so
// the two walls meeting at the corner can move independently. It returns the
// new vertex, which sits at the same position and ends the incoming wall.
//
// A vertex that is the source of more than one wall, or whose incoming wall
// already has zero length, looks split and is rejected.
func (g *Geometry) SplitVertex(vertex VertexID) (VertexID, error) {
	vx, ok := g.vertices.get(vertex.key)
	if !ok {
		return VertexID{}, fmt.Errorf("split %v: %w", vertex, ErrInvalidVertex)
	}
	pos := vx.Position

	out, ok := g.walls.get(vx.OutgoingWall.key)
	if !ok {
		return VertexID{}, fmt.Errorf("split %v: outgoing %w", vertex, ErrInvalidWall)
	}
	incoming := out.Prev

	sources := 0
	for wid := range g.walls.keys() {
		w, _ := g.walls.get(wid)
		if w.Source == vertex {
			sources++
		}
	}
	if sources > 1 {
		return VertexID{}, fmt.Errorf("split %v: %d walls share it: %w", vertex, sources, ErrVertexAlreadySplit)
	}
	if start, _, ok := g.WallSegment(incoming); ok && start == pos {
		return VertexID{}, fmt.Errorf("split %v: incoming wall has zero length: %w", vertex, ErrVertexAlreadySplit)
	}

	nw, err := g.splitWall(incoming, pos)
	if err != nil {
		return VertexID{}, fmt.Errorf("split %v: %w", vertex, err)
	}
	w, _ := g.walls.get(nw.key)
	g.markChanged()
	return w.Source, nil
}

// ConnectWall glues wall to target as a portal. Any previous connection on
// either wall is removed first, so every wall is connected to at most one
// other wall. A nil target disconnects wall.
func (g *Geometry) ConnectWall(wall, target WallID) error {
	if !g.walls.contains(wall.key) {
		return fmt.Errorf("connect %v: %w", wall, ErrInvalidWall)
	}
	if target.IsNil() {
		g.disconnect(wall)
		g.markChanged()
		return nil
	}
	if target == wall {
		return fmt.Errorf("connect %v: %w", wall, ErrSelfConnection)
	}
	if !g.walls.contains(target.key) {
		return fmt.Errorf("connect %v to %v: %w", wall, target, ErrInvalidWall)
	}

	g.disconnect(wall)
	g.disconnect(target)

	w, _ := g.walls.get(wall.key)
	w.Connected = target
	t, _ := g.walls.get(target.key)
	t.Connected = wall

	g.markChanged()
	return nil
}

// DisconnectWall removes the portal on wall, if any.
func (g *Geometry) DisconnectWall(wall WallID) error {
	return g.ConnectWall(wall, WallID{})
}

// disconnect clears wall's link and the back link pointing at it.
func (g *Geometry) disconnect(wall WallID) {
	w, ok := g.walls.get(wall.key)
	if !ok || w.Connected.IsNil() {
		return
	}
	other := w.Connected
	w.Connected = WallID{}
	if o, ok := g.walls.get(other.key); ok && o.Connected == wall {
		o.Connected = WallID{}
	}
}

// MoveVertex sets a vertex position.
func (g *Geometry) MoveVertex(vertex VertexID, position math3d.Vec2) error {
	v, ok := g.vertices.get(vertex.key)
	if !ok {
		return fmt.Errorf("move %v: %w", vertex, ErrInvalidVertex)
	}
	v.Position = position
	g.markChanged()
	return nil
}

// SetWallColor sets a wall color.
func (g *Geometry) SetWallColor(wall WallID, c color.RGBA) error {
	w, ok := g.walls.get(wall.key)
	if !ok {
		return fmt.Errorf("color %v: %w", wall, ErrInvalidWall)
	}
	w.Color = c
	g.markChanged()
	return nil
}

// SetWallOffsets sets a wall's vertical and horizontal portal offsets.
func (g *Geometry) SetWallOffsets(wall WallID, vertical, horizontal float64) error {
	w, ok := g.walls.get(wall.key)
	if !ok {
		return fmt.Errorf("offset %v: %w", wall, ErrInvalidWall)
	}
	w.VerticalOffset = vertical
	w.HorizontalOffset = horizontal
	g.markChanged()
	return nil
}

// SetRoomColors sets a room's floor and ceiling colors.
func (g *Geometry) SetRoomColors(room RoomID, floor, ceiling color.RGBA) error {
	r, ok := g.rooms.get(room.key)
	if !ok {
		return fmt.Errorf("color %v: %w", room, ErrInvalidRoom)
	}
	r.FloorColor = floor
	r.CeilingColor = ceiling
	g.markChanged()
	return nil
}

// SetRoomHeight sets the ceiling height above the room's floor.
func (g *Geometry) SetRoomHeight(room RoomID, height float64) error {
	r, ok := g.rooms.get(room.key)
	if !ok {
		return fmt.Errorf("height %v: %w", room, ErrInvalidRoom)
	}
	if !(height > 0) {
		return fmt.Errorf("height %v = %v: %w", room, height, ErrInvalidHeight)
	}
	r.Height = height
	g.markChanged()
	return nil
}

// RemoveRoom deletes a room with its walls and vertices. Portals leading
// into the room are disconnected.
func (g *Geometry) RemoveRoom(room RoomID) error {
	if !g.rooms.contains(room.key) {
		return fmt.Errorf("remove %v: %w", room, ErrInvalidRoom)
	}

	var walls []WallID
	for wid := range g.RoomWalls(room) {
		walls = append(walls, wid)
	}
	for _, wid := range walls {
		g.disconnect(wid)
		w, _ := g.walls.get(wid.key)
		g.vertices.remove(w.Source.key)
	}
	for _, wid := range walls {
		g.walls.remove(wid.key)
	}
	g.rooms.remove(room.key)

	g.markChanged()
	return nil
}
