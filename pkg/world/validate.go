package world

import (
	"errors"
	"fmt"
)

// Validate checks the topology invariants and returns every violation found,
// joined. A nil result means:
//   - next/prev links are mutual for every wall,
//   - every room loop is closed, visits only the room's own walls, and covers
//     every wall that names the room,
//   - every vertex's outgoing wall starts at that vertex,
//   - no wall is connected to itself, to a missing wall, or one-directionally.
func (g *Geometry) Validate() error {
	var errs []error

	owned := make(map[RoomID]int)
	for wid := range g.walls.keys() {
		id := WallID{wid}
		w, _ := g.walls.get(wid)
		owned[w.Room]++

		next, ok := g.walls.get(w.Next.key)
		if !ok {
			errs = append(errs, fmt.Errorf("%v: next %v missing", id, w.Next))
		} else if next.Prev != id {
			errs = append(errs, fmt.Errorf("%v: next.prev = %v", id, next.Prev))
		}
		prev, ok := g.walls.get(w.Prev.key)
		if !ok {
			errs = append(errs, fmt.Errorf("%v: prev %v missing", id, w.Prev))
		} else if prev.Next != id {
			errs = append(errs, fmt.Errorf("%v: prev.next = %v", id, prev.Next))
		}
		if !g.rooms.contains(w.Room.key) {
			errs = append(errs, fmt.Errorf("%v: owner %v missing", id, w.Room))
		}
		if !g.vertices.contains(w.Source.key) {
			errs = append(errs, fmt.Errorf("%v: source %v missing", id, w.Source))
		}

		if w.Connected.IsNil() {
			continue
		}
		switch other, ok := g.walls.get(w.Connected.key); {
		case w.Connected == id:
			errs = append(errs, fmt.Errorf("%v: connected to itself", id))
		case !ok:
			errs = append(errs, fmt.Errorf("%v: connected %v missing", id, w.Connected))
		case other.Connected != id:
			errs = append(errs, fmt.Errorf("%v: connection to %v is one-directional", id, w.Connected))
		}
	}

	for rk := range g.rooms.keys() {
		id := RoomID{rk}
		r, _ := g.rooms.get(rk)
		first := r.FirstWall
		cur := first
		count := 0
		closed := false
		for range g.walls.len() {
			w, ok := g.walls.get(cur.key)
			if !ok {
				break
			}
			if w.Room != id {
				errs = append(errs, fmt.Errorf("%v: loop leaves room at %v", id, cur))
				break
			}
			count++
			cur = w.Next
			if cur == first {
				closed = true
				break
			}
		}
		if !closed {
			errs = append(errs, fmt.Errorf("%v: wall loop is not closed", id))
		} else if count != owned[id] {
			errs = append(errs, fmt.Errorf("%v: loop visits %d walls, room owns %d", id, count, owned[id]))
		}
	}

	for vk := range g.vertices.keys() {
		id := VertexID{vk}
		v, _ := g.vertices.get(vk)
		w, ok := g.walls.get(v.OutgoingWall.key)
		if !ok {
			errs = append(errs, fmt.Errorf("%v: outgoing %v missing", id, v.OutgoingWall))
		} else if w.Source != id {
			errs = append(errs, fmt.Errorf("%v: outgoing %v starts at %v", id, v.OutgoingWall, w.Source))
		}
	}

	return errors.Join(errs...)
}
