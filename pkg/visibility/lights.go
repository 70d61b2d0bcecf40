package visibility

import (
	"image/color"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/processed"
	"github.com/taigrr/escher/pkg/world"
)

// Light is a point light placed in a room.
type Light struct {
	Placement portal.Placement
	Height    float64 // above the room's floor
	Radius    float64
	Power     float64
	Color     color.RGBA
}

// RoomLight is a light as seen from one room it reaches.
type RoomLight struct {
	Index    int // into the slice passed to PropagateLights
	Position math3d.Vec2
	Height   float64 // above this room's floor
	Depth    int

	// Bounds are the two planes through the light and the edges of the
	// aperture it came through. Only set when Depth > 0.
	Bounds [2]math3d.Plane2
}

// Lit reports whether p lies inside the light's bounds.
func (rl RoomLight) Lit(p math3d.Vec2) bool {
	if rl.Depth == 0 {
		return true
	}
	return rl.Bounds[0].Distance(p) >= 0 && rl.Bounds[1].Distance(p) >= 0
}

type lightNode struct {
	room world.RoomID
	RoomLight
}

// PropagateLights spreads every light through the portals it shines into,
// up to MaxVisibilityRecursionDepth portals and the light's radius. The
// result lists, per room, each light in that room's frame.
func PropagateLights(w *processed.World, lights []Light) map[world.RoomID][]RoomLight {
	out := make(map[world.RoomID][]RoomLight)
	var work []lightNode

	for i, l := range lights {
		if _, ok := w.Room(l.Placement.Room); !ok {
			continue
		}
		work = append(work[:0], lightNode{
			room: l.Placement.Room,
			RoomLight: RoomLight{
				Index:    i,
				Position: l.Placement.Position,
				Height:   l.Height,
			},
		})

		for n := 0; n < len(work); n++ {
			node := work[n]
			out[node.room] = append(out[node.room], node.RoomLight)
			if node.Depth >= MaxVisibilityRecursionDepth {
				continue
			}

			info, _ := w.Room(node.room)
			for _, wid := range info.ConnectingWalls {
				conn, _ := w.Connection(wid)
				right, left := conn.ApertureStart, conn.ApertureEnd
				if !facing(node.Position, right, left) {
					continue
				}
				if segmentDistance(node.Position, right, left) > l.Radius {
					continue
				}
				if node.Depth > 0 {
					var ok bool
					if right, left, ok = clipSegment(node.Bounds[0], right, left); !ok {
						continue
					}
					if right, left, ok = clipSegment(node.Bounds[1], right, left); !ok {
						continue
					}
					if !facing(node.Position, right, left) {
						continue
					}
				}

				toTarget := conn.InverseTransform
				pos := node.Position
				work = append(work, lightNode{
					room: conn.TargetRoom,
					RoomLight: RoomLight{
						Index:    i,
						Position: toTarget.Apply(pos),
						Height:   node.Height - conn.HeightDifference,
						Depth:    node.Depth + 1,
						Bounds: [2]math3d.Plane2{
							math3d.PlaneThrough(pos, right.Sub(pos).PerpCCW()).Transform(toTarget),
							math3d.PlaneThrough(pos, left.Sub(pos).PerpCW()).Transform(toTarget),
						},
					},
				})
			}
		}
	}
	return out
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b math3d.Vec2) float64 {
	ab := b.Sub(a)
	t := 0.0
	if l := ab.LenSq(); l > 0 {
		t = max(0, min(1, p.Sub(a).Dot(ab)/l))
	}
	return p.Distance(a.Lerp(b, t))
}
