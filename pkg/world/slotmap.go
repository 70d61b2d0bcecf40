package world

import (
	"fmt"
	"iter"
)

// key is a generation-checked slot index. The zero key is never live, so a
// zero ID means "none".
type key struct {
	index uint32
	gen   uint32
}

func (k key) format(kind string) string {
	if k.gen == 0 {
		return kind + "(nil)"
	}
	return fmt.Sprintf("%s(%dv%d)", kind, k.index, k.gen)
}

type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// slotMap stores values under stable keys. Freed slots are reused with a
// bumped generation, so stale keys stop resolving.
type slotMap[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func (s *slotMap[T]) insert(v T) key {
	s.count++
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		sl := &s.slots[idx]
		sl.value = v
		sl.live = true
		return key{index: idx, gen: sl.gen}
	}
	s.slots = append(s.slots, slot[T]{value: v, gen: 1, live: true})
	return key{index: uint32(len(s.slots) - 1), gen: 1}
}

// get returns a pointer into the map. The pointer is invalidated by the next
// insert.
func (s *slotMap[T]) get(k key) (*T, bool) {
	if k.gen == 0 || int(k.index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[k.index]
	if !sl.live || sl.gen != k.gen {
		return nil, false
	}
	return &sl.value, true
}

func (s *slotMap[T]) contains(k key) bool {
	_, ok := s.get(k)
	return ok
}

func (s *slotMap[T]) remove(k key) bool {
	if !s.contains(k) {
		return false
	}
	sl := &s.slots[k.index]
	var zero T
	sl.value = zero
	sl.live = false
	sl.gen++
	s.free = append(s.free, k.index)
	s.count--
	return true
}

func (s *slotMap[T]) len() int {
	return s.count
}

// keys yields live keys in slot order.
func (s *slotMap[T]) keys() iter.Seq[key] {
	return func(yield func(key) bool) {
		for i := range s.slots {
			sl := &s.slots[i]
			if !sl.live {
				continue
			}
			if !yield(key{index: uint32(i), gen: sl.gen}) {
				return
			}
		}
	}
}
