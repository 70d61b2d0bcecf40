package visibility

import (
	"math"
	"testing"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/processed"
	"github.com/taigrr/escher/pkg/world"
)

const eps = 1e-9

func square(x, y, size float64) []math3d.Vec2 {
	return []math3d.Vec2{
		math3d.V2(x, y),
		math3d.V2(x+size, y),
		math3d.V2(x+size, y+size),
		math3d.V2(x, y+size),
	}
}

func walls(g *world.Geometry, room world.RoomID) []world.WallID {
	var out []world.WallID
	for w := range g.RoomWalls(room) {
		out = append(out, w)
	}
	return out
}

func mustRoom(t testing.TB, g *world.Geometry, pts []math3d.Vec2) world.RoomID {
	t.Helper()
	id, err := g.InsertRoomFromPositions(pts)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func mustConnect(t testing.TB, g *world.Geometry, a, b world.WallID) {
	t.Helper()
	if err := g.ConnectWall(a, b); err != nil {
		t.Fatal(err)
	}
}

// twoRooms glues the east wall of a 2x2 room at the origin to the west wall
// of a 2x2 room at (10, 0).
func twoRooms(t testing.TB) (*world.Geometry, world.RoomID, world.RoomID) {
	t.Helper()
	g := world.New()
	a := mustRoom(t, g, square(0, 0, 2))
	b := mustRoom(t, g, square(10, 0, 2))
	mustConnect(t, g, walls(g, a)[1], walls(g, b)[3])
	return g, a, b
}

// loopRoom glues the east wall of a single 2x2 room to its own west wall.
func loopRoom(t testing.TB) (*world.Geometry, world.RoomID) {
	t.Helper()
	g := world.New()
	a := mustRoom(t, g, square(0, 0, 2))
	ws := walls(g, a)
	mustConnect(t, g, ws[1], ws[3])
	return g, a
}

func TestTraverseTwoRooms(t *testing.T) {
	g, a, b := twoRooms(t)
	w := processed.New(g)

	got := NewTraverser().Traverse(w, portal.Placement{Room: a, Position: math3d.V2(1.5, 1)})
	if len(got) != 2 {
		t.Fatalf("got %d instances, want 2", len(got))
	}

	root := got[0]
	if root.Room != a || root.Clip != nil || !root.Transform.ApproxEqual(math3d.Identity2(), eps) {
		t.Errorf("root = %+v, want unclipped identity instance of %v", root, a)
	}

	next := got[1]
	if next.Room != b {
		t.Fatalf("second instance room = %v, want %v", next.Room, b)
	}
	if next.HeightOffset != 0 {
		t.Errorf("HeightOffset = %v, want 0", next.HeightOffset)
	}
	if !next.Transform.ApproxEqual(math3d.Translation2(math3d.V2(-8, 0)), eps) {
		t.Errorf("Transform = %+v, want shift by (-8, 0)", next.Transform)
	}

	c := next.Clip
	if c == nil {
		t.Fatal("second instance is unclipped")
	}
	if c.Depth != 1 {
		t.Errorf("Depth = %d, want 1", c.Depth)
	}
	if !c.ViewerPosition.ApproxEqual(math3d.V2(9.5, 1), eps) {
		t.Errorf("ViewerPosition = %v, want (9.5, 1)", c.ViewerPosition)
	}
	// The full wall width is visible.
	if !c.RightAperture.ApproxEqual(math3d.V2(10, 0), eps) || !c.LeftAperture.ApproxEqual(math3d.V2(10, 2), eps) {
		t.Errorf("window = %v .. %v, want (10, 0) .. (10, 2)", c.RightAperture, c.LeftAperture)
	}
}

func TestTraverseHeightOffset(t *testing.T) {
	g, a, _ := twoRooms(t)
	if err := g.SetWallOffsets(walls(g, a)[1], 0.75, 0); err != nil {
		t.Fatal(err)
	}
	w := processed.New(g)

	got := NewTraverser().Traverse(w, portal.Placement{Room: a, Position: math3d.V2(1, 1)})
	if len(got) != 2 {
		t.Fatalf("got %d instances, want 2", len(got))
	}
	if got[1].HeightOffset != 0.75 {
		t.Errorf("HeightOffset = %v, want 0.75", got[1].HeightOffset)
	}
}

func TestTraverseDepthBound(t *testing.T) {
	g, a := loopRoom(t)
	w := processed.New(g)

	got := NewTraverser().Traverse(w, portal.Placement{Room: a, Position: math3d.V2(1, 1)})
	if len(got) != MaxVisibilityRecursionDepth+1 {
		t.Fatalf("got %d instances, want %d", len(got), MaxVisibilityRecursionDepth+1)
	}
	for i, inst := range got {
		if inst.Room != a {
			t.Errorf("instance %d room = %v, want %v", i, inst.Room, a)
		}
		if inst.Depth() != i {
			t.Errorf("instance %d depth = %d", i, inst.Depth())
		}
		want := math3d.Translation2(math3d.V2(2*float64(i), 0))
		if !inst.Transform.ApproxEqual(want, 1e-9) {
			t.Errorf("instance %d transform = %+v, want %+v", i, inst.Transform, want)
		}
	}
}

func TestTraverseCustomDepth(t *testing.T) {
	g, a := loopRoom(t)
	w := processed.New(g)

	tr := &Traverser{MaxDepth: 3}
	if got := tr.Traverse(w, portal.Placement{Room: a, Position: math3d.V2(1, 1)}); len(got) != 4 {
		t.Errorf("got %d instances, want 4", len(got))
	}

	tr = &Traverser{MaxInstances: 5}
	if got := tr.Traverse(w, portal.Placement{Room: a, Position: math3d.V2(1, 1)}); len(got) != 5 {
		t.Errorf("got %d instances, want 5", len(got))
	}
}

func TestTraverseBehindCulling(t *testing.T) {
	g, a, _ := twoRooms(t)
	w := processed.New(g)

	tests := []struct {
		name string
		pos  math3d.Vec2
		yaw  float64
		want int
	}{
		{"facing the portal", math3d.V2(1, 1), 0, 2},
		{"portal behind", math3d.V2(1, 1), math.Pi, 1},
		{"portal behind within buffer", math3d.V2(1.9, 1), math.Pi, 2},
		{"portal to the side", math3d.V2(1, 1), math.Pi / 2, 2},
	}

	tr := NewTraverser()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tr.Traverse(w, portal.Placement{Room: a, Position: tc.pos, Yaw: tc.yaw})
			if len(got) != tc.want {
				t.Errorf("got %d instances, want %d", len(got), tc.want)
			}
		})
	}
}

func TestTraverseClipsGrandchild(t *testing.T) {
	g := world.New()
	a := mustRoom(t, g, square(0, 0, 2))
	b := mustRoom(t, g, square(10, 0, 4))
	c := mustRoom(t, g, square(20, 10, 4))
	mustConnect(t, g, walls(g, a)[1], walls(g, b)[3])
	mustConnect(t, g, walls(g, b)[2], walls(g, c)[0])
	w := processed.New(g)

	got := NewTraverser().Traverse(w, portal.Placement{Room: a, Position: math3d.V2(1, 1)})
	if len(got) != 3 {
		t.Fatalf("got %d instances, want 3", len(got))
	}

	// Through a's east wall only the middle of b's west wall shows.
	wb := got[1].Clip
	if !wb.RightAperture.ApproxEqual(math3d.V2(10, 1), eps) || !wb.LeftAperture.ApproxEqual(math3d.V2(10, 3), eps) {
		t.Errorf("b window = %v .. %v, want (10, 1) .. (10, 3)", wb.RightAperture, wb.LeftAperture)
	}

	// Only part of b's north wall falls inside that window.
	inst := got[2]
	if inst.Room != c || inst.Depth() != 2 {
		t.Fatalf("third instance = %v depth %d, want %v depth 2", inst.Room, inst.Depth(), c)
	}
	if !inst.Clip.RightAperture.ApproxEqual(math3d.V2(24, 10), eps) {
		t.Errorf("RightAperture = %v, want (24, 10)", inst.Clip.RightAperture)
	}
	if !inst.Clip.LeftAperture.ApproxEqual(math3d.V2(21, 10), eps) {
		t.Errorf("LeftAperture = %v, want (21, 10)", inst.Clip.LeftAperture)
	}
}

func TestWorldClipPlanes(t *testing.T) {
	g, a, _ := twoRooms(t)
	w := processed.New(g)
	viewer := portal.Placement{Room: a, Position: math3d.V2(1.5, 1)}

	got := NewTraverser().Traverse(w, viewer)
	if planes := got[0].WorldClipPlanes(); planes != nil {
		t.Errorf("root instance has clip planes %v", planes)
	}

	planes := got[1].WorldClipPlanes()
	if len(planes) != 3 {
		t.Fatalf("got %d planes, want 3", len(planes))
	}
	for i, p := range planes[:2] {
		if d := p.Distance(viewer.Position); math.Abs(d) > eps {
			t.Errorf("edge plane %d misses the viewer by %v", i, d)
		}
	}

	tests := []struct {
		name    string
		p       math3d.Vec2
		visible bool
	}{
		{"straight through", math3d.V2(3, 1), true},
		{"in front of the aperture", math3d.V2(1.8, 1), false},
		{"outside the window", math3d.V2(3, 4.5), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := true
			for _, p := range planes {
				in = in && p.Distance(tc.p) >= 0
			}
			if in != tc.visible {
				t.Errorf("visible = %v, want %v", in, tc.visible)
			}
		})
	}
}

func TestTraverseUnknownRoom(t *testing.T) {
	g, _, _ := twoRooms(t)
	w := processed.New(g)
	if got := NewTraverser().Traverse(w, portal.Placement{}); len(got) != 0 {
		t.Errorf("got %d instances for nil room, want 0", len(got))
	}
}

func TestClipSegment(t *testing.T) {
	// Keep x >= 1.
	p := math3d.Plane2{Normal: math3d.V2(1, 0), D: -1}

	tests := []struct {
		name       string
		a, b       math3d.Vec2
		wantA      math3d.Vec2
		wantB      math3d.Vec2
		wantInside bool
	}{
		{"inside", math3d.V2(2, 0), math3d.V2(3, 1), math3d.V2(2, 0), math3d.V2(3, 1), true},
		{"outside", math3d.V2(0, 0), math3d.V2(0.5, 1), math3d.V2(0, 0), math3d.V2(0.5, 1), false},
		{"cut start", math3d.V2(0, 0), math3d.V2(2, 2), math3d.V2(1, 1), math3d.V2(2, 2), true},
		{"cut end", math3d.V2(3, 0), math3d.V2(-1, 4), math3d.V2(3, 0), math3d.V2(1, 2), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, b, ok := clipSegment(p, tc.a, tc.b)
			if ok != tc.wantInside {
				t.Fatalf("ok = %v, want %v", ok, tc.wantInside)
			}
			if !ok {
				return
			}
			if !a.ApproxEqual(tc.wantA, eps) || !b.ApproxEqual(tc.wantB, eps) {
				t.Errorf("got %v -> %v, want %v -> %v", a, b, tc.wantA, tc.wantB)
			}
		})
	}
}

func BenchmarkTraverseLoop(b *testing.B) {
	g, a := loopRoom(b)
	w := processed.New(g)
	tr := NewTraverser()
	viewer := portal.Placement{Room: a, Position: math3d.V2(1, 1)}

	for b.Loop() {
		_ = tr.Traverse(w, viewer)
	}
}
