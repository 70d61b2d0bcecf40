package world

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/taigrr/escher/pkg/math3d"
)

// Command is one discrete edit produced by an editor.
type Command interface {
	Apply(g *Geometry) error
}

// ApplyBatch applies every command in order and raises the change signal
// once if at least one of them succeeded. Failed commands leave the geometry
// untouched and are reported in the joined error.
func (g *Geometry) ApplyBatch(cmds ...Command) error {
	g.batching = true
	g.batchChanged = false

	var errs []error
	for i, cmd := range cmds {
		if err := cmd.Apply(g); err != nil {
			errs = append(errs, fmt.Errorf("command %d (%T): %w", i, cmd, err))
		}
	}

	g.batching = false
	if g.batchChanged {
		g.version++
	}
	return errors.Join(errs...)
}

// MoveVertexCmd moves a vertex.
type MoveVertexCmd struct {
	Vertex   VertexID
	Position math3d.Vec2
}

func (c MoveVertexCmd) Apply(g *Geometry) error { return g.MoveVertex(c.Vertex, c.Position) }

// SetWallColorCmd recolors a wall.
type SetWallColorCmd struct {
	Wall  WallID
	Color color.RGBA
}

func (c SetWallColorCmd) Apply(g *Geometry) error { return g.SetWallColor(c.Wall, c.Color) }

// SetWallOffsetsCmd sets portal offsets on a wall.
type SetWallOffsetsCmd struct {
	Wall       WallID
	Vertical   float64
	Horizontal float64
}

func (c SetWallOffsetsCmd) Apply(g *Geometry) error {
	return g.SetWallOffsets(c.Wall, c.Vertical, c.Horizontal)
}

// SetRoomColorsCmd recolors a room's floor and ceiling.
type SetRoomColorsCmd struct {
	Room    RoomID
	Floor   color.RGBA
	Ceiling color.RGBA
}

func (c SetRoomColorsCmd) Apply(g *Geometry) error {
	return g.SetRoomColors(c.Room, c.Floor, c.Ceiling)
}

// SetRoomHeightCmd changes a room's height.
type SetRoomHeightCmd struct {
	Room   RoomID
	Height float64
}

func (c SetRoomHeightCmd) Apply(g *Geometry) error { return g.SetRoomHeight(c.Room, c.Height) }

// ConnectCmd connects two walls. A nil Target disconnects Wall.
type ConnectCmd struct {
	Wall   WallID
	Target WallID
}

func (c ConnectCmd) Apply(g *Geometry) error { return g.ConnectWall(c.Wall, c.Target) }

// AddRoomCmd inserts a room. If Created is non-nil it receives the new id.
type AddRoomCmd struct {
	Points  []math3d.Vec2
	Created *RoomID
}

func (c AddRoomCmd) Apply(g *Geometry) error {
	id, err := g.InsertRoomFromPositions(c.Points)
	if err != nil {
		return err
	}
	if c.Created != nil {
		*c.Created = id
	}
	return nil
}

// RemoveRoomCmd deletes a room.
type RemoveRoomCmd struct {
	Room RoomID
}

func (c RemoveRoomCmd) Apply(g *Geometry) error { return g.RemoveRoom(c.Room) }

// SplitWallCmd splits a wall at Position.
type SplitWallCmd struct {
	Wall     WallID
	Position math3d.Vec2
}

func (c SplitWallCmd) Apply(g *Geometry) error {
	_, err := g.SplitWall(c.Wall, c.Position)
	return err
}

// SplitVertexCmd splits a vertex.
type SplitVertexCmd struct {
	Vertex VertexID
}

func (c SplitVertexCmd) Apply(g *Geometry) error {
	_, err := g.SplitVertex(c.Vertex)
	return err
}

// ChangeCursor remembers the last geometry version a consumer saw. Several
// edits between two polls report a single change.
type ChangeCursor struct {
	seen   uint64
	primed bool
}

// Changed reports whether g changed since the previous call. The first call
// always reports a change.
func (c *ChangeCursor) Changed(g *Geometry) bool {
	v := g.Version()
	if c.primed && v == c.seen {
		return false
	}
	c.seen = v
	c.primed = true
	return true
}
