// Package processed derives per-wall and per-room data from a world
// geometry: outward normals, portal connections with their clipped
// apertures, and which objects sit in which room.
//
// The cache is rebuilt in full whenever the geometry's version moves.
package processed

import (
	"log/slog"
	"slices"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/world"
)

// MinWallLength is the shortest wall that still gets a normal or a
// connection. Shorter walls are treated as degenerate.
const MinWallLength = 1e-6

// WallInfo is the derived data for one wall, in its room's frame.
type WallInfo struct {
	Room       world.RoomID
	Start, End math3d.Vec2
	Direction  math3d.Vec2 // unit, zero for degenerate walls
	Length     float64
	Normal     math3d.Vec2 // outward, zero for degenerate walls
	Connection *ConnectionInfo
}

// ConnectionInfo describes a wall glued to another wall.
type ConnectionInfo struct {
	Wall       world.WallID
	TargetWall world.WallID
	TargetRoom world.RoomID

	// Transform maps target room coordinates into this room.
	Transform        math3d.Affine2
	InverseTransform math3d.Affine2
	YawDelta         float64

	// ApertureStart and ApertureEnd bound the usable part of the wall.
	ApertureStart math3d.Vec2
	ApertureEnd   math3d.Vec2
	HalfWidth     float64

	// ApertureBottom and ApertureTop are heights above this room's floor.
	ApertureBottom float64
	ApertureTop    float64

	// HeightDifference is the target floor's height above this floor.
	HeightDifference float64
}

// RoomInfo is the derived data for one room.
type RoomInfo struct {
	Walls           []world.WallID
	ConnectingWalls []world.WallID
	ObjectIndices   []int
	Height          float64

	crossings []portal.Crossing
}

// ObjectRegistry supplies object placements. Indices into the returned
// slice are what RoomInfo.ObjectIndices refers to.
type ObjectRegistry interface {
	Placements() []portal.Placement
}

// Stats counts resolver activity.
type Stats struct {
	Rebuilds     int
	Connections  int
	SkippedLinks int
}

// World is the connectivity cache over a geometry.
type World struct {
	geometry *world.Geometry
	cursor   world.ChangeCursor

	walls map[world.WallID]*WallInfo
	rooms map[world.RoomID]*RoomInfo
	order []world.RoomID

	objects ObjectRegistry
	logger  *slog.Logger
	stats   Stats
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for rebuild and integrity messages.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithObjects sets the registry whose placements are indexed per room.
func WithObjects(r ObjectRegistry) Option {
	return func(w *World) {
		w.objects = r
	}
}

// New creates a World over g and builds the cache.
func New(g *world.Geometry, opts ...Option) *World {
	w := &World{
		geometry: g,
		walls:    make(map[world.WallID]*WallInfo),
		rooms:    make(map[world.RoomID]*RoomInfo),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.Update()
	return w
}

// Update rebuilds the cache if the geometry changed since the last call and
// refreshes object indices. It reports whether a rebuild happened.
func (w *World) Update() bool {
	rebuilt := false
	if w.cursor.Changed(w.geometry) {
		w.rebuild()
		rebuilt = true
	}
	w.indexObjects()
	return rebuilt
}

// Geometry returns the underlying geometry.
func (w *World) Geometry() *world.Geometry { return w.geometry }

// Stats returns resolver counters.
func (w *World) Stats() Stats { return w.stats }

// Wall returns derived data for a wall. The result must not be modified.
func (w *World) Wall(id world.WallID) (*WallInfo, bool) {
	info, ok := w.walls[id]
	return info, ok
}

// Room returns derived data for a room. The result must not be modified.
func (w *World) Room(id world.RoomID) (*RoomInfo, bool) {
	info, ok := w.rooms[id]
	return info, ok
}

// Connection returns the connection of a wall, if it has a usable one.
func (w *World) Connection(id world.WallID) (*ConnectionInfo, bool) {
	info, ok := w.walls[id]
	if !ok || info.Connection == nil {
		return nil, false
	}
	return info.Connection, true
}

// Rooms returns room ids in geometry slot order.
func (w *World) Rooms() []world.RoomID { return w.order }

// Crossings implements portal.Resolver.
func (w *World) Crossings(room world.RoomID) []portal.Crossing {
	if info, ok := w.rooms[room]; ok {
		return info.crossings
	}
	return nil
}

func (w *World) rebuild() {
	g := w.geometry
	clear(w.walls)
	clear(w.rooms)
	w.order = w.order[:0]

	for rid := range g.Rooms() {
		room, _ := g.Room(rid)
		info := &RoomInfo{Height: room.Height}
		for wid := range g.RoomWalls(rid) {
			info.Walls = append(info.Walls, wid)
			w.walls[wid] = wallInfo(g, rid, wid)
		}
		w.rooms[rid] = info
		w.order = append(w.order, rid)
	}

	connections := 0
	for _, rid := range w.order {
		info := w.rooms[rid]
		for _, wid := range info.Walls {
			conn, ok := w.connect(wid)
			if !ok {
				continue
			}
			w.walls[wid].Connection = conn
			info.ConnectingWalls = append(info.ConnectingWalls, wid)
			info.crossings = append(info.crossings, portal.Crossing{
				Wall:        wid,
				TargetRoom:  conn.TargetRoom,
				Start:       conn.ApertureStart,
				End:         conn.ApertureEnd,
				ToTarget:    conn.InverseTransform,
				FloorChange: conn.HeightDifference,
			})
			connections++
		}
	}

	w.stats.Rebuilds++
	w.stats.Connections = connections
	w.logger.Debug("rebuilt processed world",
		"version", g.Version(),
		"rooms", len(w.order),
		"walls", len(w.walls),
		"connections", connections,
	)
}

func wallInfo(g *world.Geometry, room world.RoomID, id world.WallID) *WallInfo {
	start, end, _ := g.WallSegment(id)
	info := &WallInfo{Room: room, Start: start, End: end}
	info.Length = end.Sub(start).Len()
	if info.Length >= MinWallLength {
		info.Direction = end.Sub(start).Scale(1 / info.Length)
		info.Normal = info.Direction.PerpCW()
	}
	return info
}

// connect derives the connection for wall id, or reports false when the
// wall is unconnected or the link cannot be used.
func (w *World) connect(id world.WallID) (*ConnectionInfo, bool) {
	g := w.geometry
	wall, _ := g.Wall(id)
	if wall.Connected.IsNil() {
		return nil, false
	}

	target, ok := g.Wall(wall.Connected)
	if !ok {
		w.skip("connection to missing wall", id, wall.Connected)
		return nil, false
	}
	if target.Connected != id {
		w.skip("one-directional connection", id, wall.Connected)
		return nil, false
	}

	a, b := w.walls[id], w.walls[wall.Connected]
	if a.Length < MinWallLength || b.Length < MinWallLength {
		w.skip("connection on degenerate wall", id, wall.Connected)
		return nil, false
	}

	half := min(a.Length, b.Length) / 2
	from := aperture(a, wall.HorizontalOffset, half)
	to := aperture(b, target.HorizontalOffset, half)

	m := portal.CalculatePortalTransform(from, to)
	diff := wall.VerticalOffset - target.VerticalOffset

	roomHeight := w.rooms[a.Room].Height
	targetHeight := w.rooms[b.Room].Height

	return &ConnectionInfo{
		Wall:             id,
		TargetWall:       wall.Connected,
		TargetRoom:       b.Room,
		Transform:        m,
		InverseTransform: m.Inverse(),
		YawDelta:         m.Angle(),
		ApertureStart:    from.Start,
		ApertureEnd:      from.End,
		HalfWidth:        half,
		ApertureBottom:   max(0, diff),
		ApertureTop:      min(roomHeight, diff+targetHeight),
		HeightDifference: diff,
	}, true
}

// aperture returns the usable sub-segment of a wall: half wide on each side
// of the midpoint shifted by offset, never past the wall's ends.
func aperture(info *WallInfo, offset, half float64) portal.Segment {
	limit := info.Length/2 - half
	center := info.Length/2 + max(-limit, min(limit, offset))
	return portal.Segment{
		Start: info.Start.Add(info.Direction.Scale(center - half)),
		End:   info.Start.Add(info.Direction.Scale(center + half)),
	}
}

func (w *World) skip(msg string, wall, target world.WallID) {
	w.stats.SkippedLinks++
	w.logger.Warn(msg, "wall", wall, "target", target)
}

func (w *World) indexObjects() {
	for _, info := range w.rooms {
		info.ObjectIndices = info.ObjectIndices[:0]
	}
	if w.objects == nil {
		return
	}
	for i, p := range w.objects.Placements() {
		info, ok := w.rooms[p.Room]
		if !ok {
			continue
		}
		info.ObjectIndices = append(info.ObjectIndices, i)
	}
}

// ConnectedRooms returns the distinct rooms reachable through one portal
// from room, in wall order.
func (w *World) ConnectedRooms(room world.RoomID) []world.RoomID {
	info, ok := w.rooms[room]
	if !ok {
		return nil
	}
	var out []world.RoomID
	for _, wid := range info.ConnectingWalls {
		t := w.walls[wid].Connection.TargetRoom
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
