// Package visibility walks portals outward from a viewer and lists every
// room instance that can be seen, each with the transform into the
// viewer's room and the window it is seen through.
package visibility

import (
	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/processed"
	"github.com/taigrr/escher/pkg/world"
)

const (
	// MaxVisibilityRecursionDepth is how many portals deep the traversal
	// looks. Rooms glued to themselves stop here.
	MaxVisibilityRecursionDepth = 8

	// DefaultBehindBuffer is how far behind the viewer an aperture may lie
	// and still be expanded.
	DefaultBehindBuffer = 0.25

	// DefaultMaxInstances caps the output of a single traversal.
	DefaultMaxInstances = 4096
)

// RoomInstance is one visible copy of a room.
type RoomInstance struct {
	Room world.RoomID

	// Transform maps this room's coordinates into the viewer's room.
	Transform math3d.Affine2

	// HeightOffset is this room's floor height above the viewer room's.
	HeightOffset float64

	// Clip is nil for the viewer's own room.
	Clip *ClipState
}

// Depth returns how many portals lie between the viewer and the instance.
func (ri RoomInstance) Depth() int {
	if ri.Clip == nil {
		return 0
	}
	return ri.Clip.Depth
}

// WorldClipPlanes returns the clip planes in the viewer room's frame, or
// nil for the unclipped root instance.
func (ri RoomInstance) WorldClipPlanes() []math3d.Plane2 {
	if ri.Clip == nil {
		return nil
	}
	local := ri.Clip.Planes()
	out := make([]math3d.Plane2, len(local))
	for i, p := range local {
		out[i] = p.Transform(ri.Transform)
	}
	return out
}

// Traverser expands portals from a viewer placement. The zero value is
// usable and takes the package defaults.
type Traverser struct {
	MaxDepth     int
	BehindBuffer float64
	MaxInstances int

	work []RoomInstance
}

// NewTraverser returns a Traverser with default limits.
func NewTraverser() *Traverser {
	return &Traverser{
		MaxDepth:     MaxVisibilityRecursionDepth,
		BehindBuffer: DefaultBehindBuffer,
		MaxInstances: DefaultMaxInstances,
	}
}

// Traverse lists the room instances visible from viewer, the viewer's room
// first and the rest in discovery order. The returned slice is reused by the
// next call.
func (t *Traverser) Traverse(w *processed.World, viewer portal.Placement) []RoomInstance {
	maxDepth := t.MaxDepth
	if maxDepth <= 0 {
		maxDepth = MaxVisibilityRecursionDepth
	}
	buffer := t.BehindBuffer
	if buffer == 0 {
		buffer = DefaultBehindBuffer
	}
	limit := t.MaxInstances
	if limit <= 0 {
		limit = DefaultMaxInstances
	}

	t.work = t.work[:0]
	if _, ok := w.Room(viewer.Room); !ok {
		return t.work
	}
	t.work = append(t.work, RoomInstance{
		Room:      viewer.Room,
		Transform: math3d.Identity2(),
	})

	forward := viewer.Forward()
	for i := 0; i < len(t.work); i++ {
		inst := t.work[i]
		depth := inst.Depth()
		if depth >= maxDepth {
			continue
		}

		eye := viewer.Position
		if inst.Clip != nil {
			eye = inst.Clip.ViewerPosition
		}
		localForward := inst.Transform.Inverse().ApplyDir(forward)

		info, _ := w.Room(inst.Room)
		for _, wid := range info.ConnectingWalls {
			conn, _ := w.Connection(wid)
			right, left := conn.ApertureStart, conn.ApertureEnd

			if !facing(eye, right, left) {
				continue
			}
			if right.Sub(eye).Dot(localForward) < -buffer && left.Sub(eye).Dot(localForward) < -buffer {
				continue
			}
			if inst.Clip != nil {
				var ok bool
				if right, left, ok = clipToWindow(inst.Clip, right, left); !ok {
					continue
				}
			}
			if len(t.work) >= limit {
				return t.work
			}

			toTarget := conn.InverseTransform
			t.work = append(t.work, RoomInstance{
				Room:         conn.TargetRoom,
				Transform:    inst.Transform.Mul(conn.Transform),
				HeightOffset: inst.HeightOffset + conn.HeightDifference,
				Clip: newClipState(depth+1,
					toTarget.Apply(eye),
					toTarget.Apply(right),
					toTarget.Apply(left),
				),
			})
		}
	}
	return t.work
}

func clipToWindow(c *ClipState, right, left math3d.Vec2) (math3d.Vec2, math3d.Vec2, bool) {
	for _, p := range c.Planes() {
		var ok bool
		if right, left, ok = clipSegment(p, right, left); !ok {
			return right, left, false
		}
	}
	// A window narrowed to a sliver shows nothing.
	return right, left, facing(c.ViewerPosition, right, left)
}
