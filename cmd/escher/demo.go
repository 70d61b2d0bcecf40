package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/visibility"
	"github.com/taigrr/escher/pkg/world"
)

// Demo is the built-in world: a hall whose four walls open onto rooms that
// could not fit around it in flat space.
type Demo struct {
	Geometry *world.Geometry
	Rooms    map[string]world.RoomID
	Start    portal.Placement
	Lights   []visibility.Light
}

// rect returns the CCW corners of an axis-aligned room. Walls come out in the
// order south, east, north, west.
func rect(x, y, w, h float64) []math3d.Vec2 {
	return []math3d.Vec2{
		math3d.V2(x, y),
		math3d.V2(x+w, y),
		math3d.V2(x+w, y+h),
		math3d.V2(x, y+h),
	}
}

const (
	south = iota
	east
	north
	west
)

// NewDemo builds the demo world:
//
//	hall      6x6 hub the viewer starts in
//	gallery   16x12 room behind the hall's 6 wide east wall
//	corridor  endless 8 long corridor through the north wall
//	dais      raised low room through the south wall
//	closet    2x2 room through the west wall that opens onto the gallery
func NewDemo() (*Demo, error) {
	g := world.New()
	d := &Demo{Geometry: g, Rooms: make(map[string]world.RoomID)}

	layout := []struct {
		name string
		pts  []math3d.Vec2
	}{
		{"hall", rect(0, 0, 6, 6)},
		{"gallery", rect(20, 0, 16, 12)},
		{"corridor", rect(0, 20, 8, 3)},
		{"dais", rect(0, -20, 6, 4)},
		{"closet", rect(-20, 0, 2, 2)},
	}

	var cmds []world.Command
	ids := make([]world.RoomID, len(layout))
	for i, r := range layout {
		cmds = append(cmds, world.AddRoomCmd{Points: r.pts, Created: &ids[i]})
	}
	if err := g.ApplyBatch(cmds...); err != nil {
		return nil, fmt.Errorf("build demo rooms: %w", err)
	}
	walls := make(map[string][]world.WallID)
	for i, r := range layout {
		d.Rooms[r.name] = ids[i]
		for w := range g.RoomWalls(ids[i]) {
			walls[r.name] = append(walls[r.name], w)
		}
	}

	hall, gallery, corridor := walls["hall"], walls["gallery"], walls["corridor"]
	dais, closet := walls["dais"], walls["closet"]

	cmds = []world.Command{
		world.ConnectCmd{Wall: hall[east], Target: gallery[west]},
		world.ConnectCmd{Wall: hall[north], Target: corridor[south]},
		world.ConnectCmd{Wall: corridor[east], Target: corridor[west]},
		world.ConnectCmd{Wall: hall[south], Target: dais[north]},
		world.ConnectCmd{Wall: hall[west], Target: closet[east]},
		world.ConnectCmd{Wall: closet[west], Target: gallery[south]},

		// The dais floor sits half a unit above the hall.
		world.SetWallOffsetsCmd{Wall: hall[south], Vertical: 0.5},
		world.SetRoomHeightCmd{Room: d.Rooms["dais"], Height: 1.5},
		world.SetRoomHeightCmd{Room: d.Rooms["gallery"], Height: 4},
		// Shift the gallery's doorway towards its north end.
		world.SetWallOffsetsCmd{Wall: gallery[west], Horizontal: -3},

		world.SetRoomColorsCmd{Room: d.Rooms["gallery"], Floor: color.RGBA{60, 70, 90, 255}, Ceiling: color.RGBA{220, 220, 230, 255}},
		world.SetRoomColorsCmd{Room: d.Rooms["dais"], Floor: color.RGBA{120, 40, 40, 255}, Ceiling: color.RGBA{90, 60, 60, 255}},
		world.SetRoomColorsCmd{Room: d.Rooms["closet"], Floor: color.RGBA{40, 90, 50, 255}, Ceiling: color.RGBA{110, 140, 110, 255}},
		world.SetWallColorCmd{Wall: gallery[east], Color: color.RGBA{180, 60, 60, 255}},
		world.SetWallColorCmd{Wall: gallery[north], Color: color.RGBA{60, 120, 180, 255}},
		world.SetWallColorCmd{Wall: corridor[north], Color: color.RGBA{200, 180, 90, 255}},
		world.SetWallColorCmd{Wall: corridor[south], Color: color.RGBA{150, 130, 70, 255}},
		world.SetWallColorCmd{Wall: hall[north], Color: color.RGBA{170, 150, 200, 255}},
	}
	if err := g.ApplyBatch(cmds...); err != nil {
		return nil, fmt.Errorf("connect demo rooms: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validate demo: %w", err)
	}

	d.Start = portal.Placement{Room: d.Rooms["hall"], Position: math3d.V2(3, 3)}
	d.Lights = []visibility.Light{
		{
			Placement: portal.Placement{Room: d.Rooms["hall"], Position: math3d.V2(3, 3)},
			Height:    1.8,
			Radius:    12,
			Power:     1,
			Color:     color.RGBA{255, 240, 220, 255},
		},
		{
			Placement: portal.Placement{Room: d.Rooms["gallery"], Position: math3d.V2(30, 6), Yaw: math.Pi},
			Height:    3.5,
			Radius:    20,
			Power:     1.5,
			Color:     color.RGBA{200, 220, 255, 255},
		},
	}
	return d, nil
}

// RoomNames returns the demo's room names in sorted order.
func (d *Demo) RoomNames() []string {
	names := make([]string, 0, len(d.Rooms))
	for name := range d.Rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the demo name of a room, or its id when it has none.
func (d *Demo) Name(id world.RoomID) string {
	for name, r := range d.Rooms {
		if r == id {
			return name
		}
	}
	return id.String()
}

// Placement resolves a named room and a pose into a placement.
func (d *Demo) Placement(room string, x, y, yaw float64) (portal.Placement, error) {
	id, ok := d.Rooms[room]
	if !ok {
		return portal.Placement{}, fmt.Errorf("unknown room %q (have %v)", room, d.RoomNames())
	}
	return portal.Placement{Room: id, Position: math3d.V2(x, y), Yaw: yaw}, nil
}
