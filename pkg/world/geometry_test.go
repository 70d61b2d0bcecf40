package world

import (
	"errors"
	"image/color"
	"testing"

	"github.com/taigrr/escher/pkg/math3d"
)

// square returns a counter-clockwise square loop with its lower-left corner
// at (x, y).
func square(x, y, size float64) []math3d.Vec2 {
	return []math3d.Vec2{
		math3d.V2(x, y),
		math3d.V2(x+size, y),
		math3d.V2(x+size, y+size),
		math3d.V2(x, y+size),
	}
}

func mustRoom(t *testing.T, g *Geometry, pts []math3d.Vec2) RoomID {
	t.Helper()
	id, err := g.InsertRoomFromPositions(pts)
	if err != nil {
		t.Fatalf("InsertRoomFromPositions: %v", err)
	}
	return id
}

func wallsOf(g *Geometry, room RoomID) []WallID {
	var out []WallID
	for w := range g.RoomWalls(room) {
		out = append(out, w)
	}
	return out
}

func mustValid(t *testing.T, g *Geometry) {
	t.Helper()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestInsertRoomLoop(t *testing.T) {
	g := New()
	room := mustRoom(t, g, square(0, 0, 2))
	mustValid(t, g)

	if n := g.WallCount(room); n != 4 {
		t.Fatalf("WallCount = %d, want 4", n)
	}

	r, _ := g.Room(room)
	cur := r.FirstWall
	for range 4 {
		w, ok := g.Wall(cur)
		if !ok {
			t.Fatalf("wall %v missing", cur)
		}
		if w.Room != room {
			t.Errorf("%v owned by %v, want %v", cur, w.Room, room)
		}
		cur = w.Next
	}
	if cur != r.FirstWall {
		t.Errorf("loop ended at %v, want first wall %v", cur, r.FirstWall)
	}

	for vid := range g.Vertices() {
		v, _ := g.Vertex(vid)
		w, _ := g.Wall(v.OutgoingWall)
		if w.Source != vid {
			t.Errorf("%v outgoing wall starts at %v", vid, w.Source)
		}
	}

	if r.Height != DefaultRoomHeight {
		t.Errorf("Height = %v, want %v", r.Height, DefaultRoomHeight)
	}
}

func TestInsertRoomSegments(t *testing.T) {
	g := New()
	pts := square(1, 1, 3)
	room := mustRoom(t, g, pts)

	for i, wid := range wallsOf(g, room) {
		start, end, ok := g.WallSegment(wid)
		if !ok {
			t.Fatalf("WallSegment(%v) failed", wid)
		}
		if start != pts[i] || end != pts[(i+1)%len(pts)] {
			t.Errorf("wall %d = %v -> %v, want %v -> %v", i, start, end, pts[i], pts[(i+1)%len(pts)])
		}
	}
}

func TestInsertRoomDegenerate(t *testing.T) {
	g := New()

	if _, err := g.InsertRoomFromPositions(nil); !errors.Is(err, ErrEmptyRoom) {
		t.Errorf("empty room error = %v, want ErrEmptyRoom", err)
	}
	if g.Version() != 0 {
		t.Errorf("failed insert bumped version to %d", g.Version())
	}

	single := mustRoom(t, g, []math3d.Vec2{math3d.V2(1, 1)})
	mustValid(t, g)
	if n := g.WallCount(single); n != 1 {
		t.Errorf("single point room has %d walls, want 1", n)
	}
}

func TestSplitWall(t *testing.T) {
	g := New()
	room := mustRoom(t, g, square(0, 0, 2))
	walls := wallsOf(g, room)
	target := walls[1]
	oldNext := walls[2]

	version := g.Version()
	nw, err := g.SplitWall(target, math3d.V2(2, 1))
	if err != nil {
		t.Fatalf("SplitWall: %v", err)
	}
	mustValid(t, g)

	if n := g.WallCount(room); n != 5 {
		t.Errorf("WallCount = %d, want 5", n)
	}
	if g.Version() != version+1 {
		t.Errorf("Version = %d, want %d", g.Version(), version+1)
	}

	w, _ := g.Wall(nw)
	if w.Prev != target || w.Next != oldNext {
		t.Errorf("new wall links prev=%v next=%v, want %v / %v", w.Prev, w.Next, target, oldNext)
	}
	if tw, _ := g.Wall(target); tw.Next != nw {
		t.Errorf("split wall next = %v, want %v", tw.Next, nw)
	}
	if on, _ := g.Wall(oldNext); on.Prev != nw {
		t.Errorf("old next prev = %v, want %v", on.Prev, nw)
	}
	if !w.Connected.IsNil() || w.VerticalOffset != 0 || w.HorizontalOffset != 0 {
		t.Errorf("new wall should be unconnected with zero offsets, got %+v", w)
	}

	start, end, _ := g.WallSegment(nw)
	if start != math3d.V2(2, 1) || end != math3d.V2(2, 2) {
		t.Errorf("new wall segment = %v -> %v", start, end)
	}
}

func TestSplitWallConnectedStartsDisconnected(t *testing.T) {
	g := New()
	a := wallsOf(g, mustRoom(t, g, square(0, 0, 2)))
	b := wallsOf(g, mustRoom(t, g, square(5, 0, 2)))
	if err := g.ConnectWall(a[1], b[3]); err != nil {
		t.Fatalf("ConnectWall: %v", err)
	}
	if err := g.SetWallOffsets(a[1], 0.5, 0.25); err != nil {
		t.Fatalf("SetWallOffsets: %v", err)
	}

	nw, err := g.SplitWall(a[1], math3d.V2(2, 1))
	if err != nil {
		t.Fatalf("SplitWall: %v", err)
	}
	mustValid(t, g)

	w, _ := g.Wall(nw)
	if !w.Connected.IsNil() {
		t.Errorf("new wall connected to %v", w.Connected)
	}
	if w.VerticalOffset != 0 || w.HorizontalOffset != 0 {
		t.Errorf("new wall offsets = %v, %v", w.VerticalOffset, w.HorizontalOffset)
	}
}

func TestSplitWallInvalid(t *testing.T) {
	g := New()
	room := mustRoom(t, g, square(0, 0, 2))
	walls := wallsOf(g, room)
	if err := g.RemoveRoom(room); err != nil {
		t.Fatalf("RemoveRoom: %v", err)
	}

	version := g.Version()
	if _, err := g.SplitWall(walls[0], math3d.V2(1, 0)); !errors.Is(err, ErrInvalidWall) {
		t.Errorf("split of removed wall error = %v, want ErrInvalidWall", err)
	}
	if _, err := g.SplitWall(WallID{}, math3d.V2(1, 0)); !errors.Is(err, ErrInvalidWall) {
		t.Errorf("split of nil wall error = %v, want ErrInvalidWall", err)
	}
	if g.Version() != version || g.VertexCount() != 0 {
		t.Errorf("failed split modified geometry")
	}
}

func TestSplitVertex(t *testing.T) {
	g := New()
	room := mustRoom(t, g, square(0, 0, 2))
	walls := wallsOf(g, room)
	w2, _ := g.Wall(walls[2])
	corner := w2.Source

	nv, err := g.SplitVertex(corner)
	if err != nil {
		t.Fatalf("SplitVertex: %v", err)
	}
	mustValid(t, g)

	if n := g.WallCount(room); n != 5 {
		t.Errorf("WallCount = %d, want 5", n)
	}
	v, _ := g.Vertex(nv)
	orig, _ := g.Vertex(corner)
	if v.Position != orig.Position {
		t.Errorf("new vertex at %v, want %v", v.Position, orig.Position)
	}

	// Moving one copy leaves the other wall end in place.
	if err := g.MoveVertex(nv, math3d.V2(2.5, 2)); err != nil {
		t.Fatalf("MoveVertex: %v", err)
	}
	if orig, _ := g.Vertex(corner); orig.Position != math3d.V2(2, 2) {
		t.Errorf("original corner moved to %v", orig.Position)
	}
}

func TestSplitVertexRejectsSplitVertex(t *testing.T) {
	g := New()
	room := mustRoom(t, g, square(0, 0, 2))
	w, _ := g.Wall(wallsOf(g, room)[1])

	if _, err := g.SplitVertex(w.Source); err != nil {
		t.Fatalf("SplitVertex: %v", err)
	}
	version := g.Version()
	walls := g.WallTotal()
	if _, err := g.SplitVertex(w.Source); !errors.Is(err, ErrVertexAlreadySplit) {
		t.Errorf("second split error = %v, want ErrVertexAlreadySplit", err)
	}
	if g.Version() != version || g.WallTotal() != walls {
		t.Errorf("rejected split modified geometry")
	}
}

func TestSplitVertexAliased(t *testing.T) {
	g := New()
	room := mustRoom(t, g, square(0, 0, 2))
	walls := wallsOf(g, room)
	w0, _ := g.Wall(walls[0])

	// Corrupt the topology so two walls share a source.
	w1, _ := g.walls.get(walls[1].key)
	w1.Source = w0.Source

	if _, err := g.SplitVertex(w0.Source); !errors.Is(err, ErrVertexAlreadySplit) {
		t.Errorf("aliased split error = %v, want ErrVertexAlreadySplit", err)
	}
}

func TestConnectWall(t *testing.T) {
	g := New()
	a := wallsOf(g, mustRoom(t, g, square(0, 0, 2)))
	b := wallsOf(g, mustRoom(t, g, square(5, 0, 2)))
	c := wallsOf(g, mustRoom(t, g, square(10, 0, 2)))

	if err := g.ConnectWall(a[1], b[3]); err != nil {
		t.Fatalf("ConnectWall: %v", err)
	}
	mustValid(t, g)
	wa, _ := g.Wall(a[1])
	wb, _ := g.Wall(b[3])
	if wa.Connected != b[3] || wb.Connected != a[1] {
		t.Fatalf("connection not symmetric: %v / %v", wa.Connected, wb.Connected)
	}

	// Reconnecting b[3] elsewhere must release a[1].
	if err := g.ConnectWall(c[3], b[3]); err != nil {
		t.Fatalf("ConnectWall: %v", err)
	}
	mustValid(t, g)
	if wa, _ := g.Wall(a[1]); !wa.Connected.IsNil() {
		t.Errorf("a[1] still connected to %v", wa.Connected)
	}
	if wc, _ := g.Wall(c[3]); wc.Connected != b[3] {
		t.Errorf("c[3] connected to %v, want %v", wc.Connected, b[3])
	}

	if err := g.DisconnectWall(b[3]); err != nil {
		t.Fatalf("DisconnectWall: %v", err)
	}
	mustValid(t, g)
	if wc, _ := g.Wall(c[3]); !wc.Connected.IsNil() {
		t.Errorf("c[3] still connected after disconnect")
	}
}

func TestConnectWallErrors(t *testing.T) {
	g := New()
	a := wallsOf(g, mustRoom(t, g, square(0, 0, 2)))
	version := g.Version()

	tests := []struct {
		name   string
		wall   WallID
		target WallID
		want   error
	}{
		{"self", a[0], a[0], ErrSelfConnection},
		{"missing wall", WallID{key{index: 99, gen: 1}}, a[0], ErrInvalidWall},
		{"missing target", a[0], WallID{key{index: 99, gen: 1}}, ErrInvalidWall},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := g.ConnectWall(tc.wall, tc.target); !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
	if g.Version() != version {
		t.Errorf("rejected connects bumped version")
	}
}

func TestConnectSameRoom(t *testing.T) {
	g := New()
	a := wallsOf(g, mustRoom(t, g, square(0, 0, 2)))
	if err := g.ConnectWall(a[1], a[3]); err != nil {
		t.Fatalf("ConnectWall within a room: %v", err)
	}
	mustValid(t, g)
}

func TestRemoveRoom(t *testing.T) {
	g := New()
	ra := mustRoom(t, g, square(0, 0, 2))
	rb := mustRoom(t, g, square(5, 0, 2))
	a := wallsOf(g, ra)
	b := wallsOf(g, rb)
	if err := g.ConnectWall(a[1], b[3]); err != nil {
		t.Fatalf("ConnectWall: %v", err)
	}

	if err := g.RemoveRoom(rb); err != nil {
		t.Fatalf("RemoveRoom: %v", err)
	}
	mustValid(t, g)

	if wa, _ := g.Wall(a[1]); !wa.Connected.IsNil() {
		t.Errorf("portal into removed room survived: %v", wa.Connected)
	}
	if _, ok := g.Room(rb); ok {
		t.Errorf("removed room still resolves")
	}
	if _, ok := g.Wall(b[0]); ok {
		t.Errorf("removed wall still resolves")
	}
	if g.VertexCount() != 4 || g.WallTotal() != 4 || g.RoomCount() != 1 {
		t.Errorf("counts = %d vertices, %d walls, %d rooms", g.VertexCount(), g.WallTotal(), g.RoomCount())
	}
	if err := g.RemoveRoom(rb); !errors.Is(err, ErrInvalidRoom) {
		t.Errorf("double remove error = %v, want ErrInvalidRoom", err)
	}

	// Freed slots are reused without reviving stale ids.
	rc := mustRoom(t, g, square(9, 0, 1))
	if rc == rb {
		t.Errorf("reused room id equals stale id %v", rb)
	}
	if _, ok := g.Wall(b[0]); ok {
		t.Errorf("stale wall id resolves after slot reuse")
	}
	mustValid(t, g)
}

func TestRoomAndWallEdits(t *testing.T) {
	g := New()
	room := mustRoom(t, g, square(0, 0, 2))
	w := wallsOf(g, room)[0]
	red := color.RGBA{255, 0, 0, 255}

	if err := g.SetWallColor(w, red); err != nil {
		t.Fatalf("SetWallColor: %v", err)
	}
	if err := g.SetRoomColors(room, red, red); err != nil {
		t.Fatalf("SetRoomColors: %v", err)
	}
	if err := g.SetRoomHeight(room, 3.5); err != nil {
		t.Fatalf("SetRoomHeight: %v", err)
	}
	if err := g.SetRoomHeight(room, 0); !errors.Is(err, ErrInvalidHeight) {
		t.Errorf("zero height error = %v, want ErrInvalidHeight", err)
	}

	wall, _ := g.Wall(w)
	r, _ := g.Room(room)
	if wall.Color != red || r.FloorColor != red || r.CeilingColor != red || r.Height != 3.5 {
		t.Errorf("edits not applied: wall=%+v room=%+v", wall, r)
	}
}

func TestApplyBatchCoalesces(t *testing.T) {
	g := New()
	var room RoomID
	if err := g.ApplyBatch(AddRoomCmd{Points: square(0, 0, 2), Created: &room}); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if g.Version() != 1 {
		t.Fatalf("Version = %d, want 1", g.Version())
	}
	walls := wallsOf(g, room)
	w0, _ := g.Wall(walls[0])

	err := g.ApplyBatch(
		MoveVertexCmd{Vertex: w0.Source, Position: math3d.V2(-0.5, 0)},
		SetWallColorCmd{Wall: walls[1], Color: color.RGBA{1, 2, 3, 255}},
		ConnectCmd{Wall: walls[0], Target: walls[0]},
		SetRoomHeightCmd{Room: room, Height: 4},
		SplitWallCmd{Wall: walls[2], Position: math3d.V2(1, 2)},
	)
	if !errors.Is(err, ErrSelfConnection) {
		t.Errorf("batch error = %v, want ErrSelfConnection", err)
	}
	if g.Version() != 2 {
		t.Errorf("Version = %d, want 2 after one batch", g.Version())
	}
	if n := g.WallCount(room); n != 5 {
		t.Errorf("WallCount = %d, want 5", n)
	}
	mustValid(t, g)

	// A batch where nothing succeeds does not signal.
	if err := g.ApplyBatch(RemoveRoomCmd{Room: RoomID{}}); err == nil {
		t.Errorf("expected error removing nil room")
	}
	if g.Version() != 2 {
		t.Errorf("failed batch bumped version to %d", g.Version())
	}
}

func TestChangeCursor(t *testing.T) {
	g := New()
	var cur ChangeCursor

	if !cur.Changed(g) {
		t.Errorf("first poll should report a change")
	}
	if cur.Changed(g) {
		t.Errorf("second poll without edits should not report a change")
	}

	room := mustRoom(t, g, square(0, 0, 1))
	_ = g.SetRoomHeight(room, 2)
	_ = g.SetRoomHeight(room, 3)
	if !cur.Changed(g) {
		t.Errorf("edits should report a change")
	}
	if cur.Changed(g) {
		t.Errorf("several edits should coalesce into one change")
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(g *Geometry, walls []WallID)
	}{
		{"one-directional link", func(g *Geometry, walls []WallID) {
			w, _ := g.walls.get(walls[0].key)
			w.Connected = walls[2]
		}},
		{"self link", func(g *Geometry, walls []WallID) {
			w, _ := g.walls.get(walls[0].key)
			w.Connected = walls[0]
		}},
		{"broken prev", func(g *Geometry, walls []WallID) {
			w, _ := g.walls.get(walls[1].key)
			w.Prev = walls[3]
		}},
		{"vertex outgoing", func(g *Geometry, walls []WallID) {
			w, _ := g.walls.get(walls[0].key)
			v, _ := g.vertices.get(w.Source.key)
			v.OutgoingWall = walls[1]
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			room := mustRoom(t, g, square(0, 0, 2))
			tc.corrupt(g, wallsOf(g, room))
			if err := g.Validate(); err == nil {
				t.Errorf("Validate accepted corrupted geometry")
			}
		})
	}
}
