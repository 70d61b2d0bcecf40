package render

import uv "github.com/charmbracelet/ultraviolet"

// fakeScreen records the cells a presenter writes.
type fakeScreen struct {
	uv.Screen
	cells    map[[2]int]string
	displays int
}

func (s *fakeScreen) SetCell(x, y int, c *uv.Cell) {
	s.cells[[2]int{x, y}] = c.Content
}

func (s *fakeScreen) Display() error {
	s.displays++
	return nil
}
