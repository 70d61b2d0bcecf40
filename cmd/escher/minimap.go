package main

import (
	"math"

	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/processed"
	"github.com/taigrr/escher/pkg/render"
)

var (
	mapWall   = render.RGB(220, 220, 220)
	mapPortal = render.RGB(90, 200, 255)
	mapViewer = render.RGB(255, 200, 60)
)

// drawMap draws a plan of the viewer's room into the top-right quarter of
// fb. Apertures are drawn over their walls in a second color.
func drawMap(fb *render.Framebuffer, w *processed.World, viewer portal.Placement) {
	room, ok := w.Room(viewer.Room)
	if !ok || len(room.Walls) == 0 {
		return
	}

	lo := math3d.V2(math.Inf(1), math.Inf(1))
	hi := math3d.V2(math.Inf(-1), math.Inf(-1))
	for _, id := range room.Walls {
		wall, _ := w.Wall(id)
		lo = math3d.V2(min(lo.X, wall.Start.X), min(lo.Y, wall.Start.Y))
		hi = math3d.V2(max(hi.X, wall.Start.X), max(hi.Y, wall.Start.Y))
	}

	size := min(fb.Width, fb.Height) / 4
	extent := max(hi.X-lo.X, hi.Y-lo.Y)
	if size < 4 || extent <= 0 {
		return
	}
	scale := float64(size-1) / extent
	originX := fb.Width - size - 1

	// Plan view: floor +Y is up on screen.
	toScreen := func(p math3d.Vec2) (int, int) {
		return originX + int((p.X-lo.X)*scale), 1 + int((hi.Y-p.Y)*scale)
	}
	line := func(a, b math3d.Vec2, c render.Color) {
		x0, y0 := toScreen(a)
		x1, y1 := toScreen(b)
		fb.DrawLine(x0, y0, x1, y1, c)
	}

	for _, id := range room.Walls {
		wall, _ := w.Wall(id)
		line(wall.Start, wall.End, mapWall)
		if conn := wall.Connection; conn != nil {
			line(conn.ApertureStart, conn.ApertureEnd, mapPortal)
		}
	}

	line(viewer.Position, viewer.Position.Add(viewer.Forward().Scale(extent/6)), mapViewer)
}
