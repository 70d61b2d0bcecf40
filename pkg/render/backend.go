package render

import (
	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/models"
	"github.com/taigrr/escher/pkg/visibility"
)

// Backend draws one room's mesh range placed into the viewer's frame,
// discarding everything outside clips.
type Backend interface {
	DrawRoom(mesh *models.Mesh, rng models.Range, transform math3d.Mat4, clips []Plane)
}

// DrawInstances submits every visible room instance to b and returns how many
// were submitted. Instances whose room has no mesh range are skipped.
func DrawInstances(b Backend, mesh *models.Mesh, instances []visibility.RoomInstance) int {
	var clips []Plane
	drawn := 0
	for _, inst := range instances {
		rng, ok := mesh.Range(inst.Room)
		if !ok || rng.NumElements == 0 {
			continue
		}

		clips = clips[:0]
		for _, p := range inst.WorldClipPlanes() {
			clips = append(clips, LiftPlane(p))
		}
		b.DrawRoom(mesh, rng, inst.Transform.Mat4(inst.HeightOffset), clips)
		drawn++
	}
	return drawn
}
