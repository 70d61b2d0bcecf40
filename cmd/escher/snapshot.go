package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/taigrr/escher/pkg/models"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/processed"
	"github.com/taigrr/escher/pkg/render"
	"github.com/taigrr/escher/pkg/visibility"
)

// scene is everything needed to draw frames of the demo world.
type scene struct {
	world     *processed.World
	mesh      *models.Mesh
	traverser *visibility.Traverser
	camera    *render.Camera
	raster    *render.Rasterizer
	fb        *render.Framebuffer
	bg        render.Color
	showMap   bool
}

// renderFlags are the drawing options shared by view and snapshot.
type renderFlags struct {
	depth   int
	bg      string
	fov     float64
	showMap bool
}

func (r *renderFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&r.depth, "depth", visibility.MaxVisibilityRecursionDepth, "Maximum portal recursion depth")
	f.StringVar(&r.bg, "bg", "30,30,40", "Background color (R,G,B)")
	f.Float64Var(&r.fov, "fov", 60, "Vertical field of view in degrees")
	f.BoolVar(&r.showMap, "map", false, "Overlay a plan of the current room")
}

// scene builds a scene for w from the flags.
func (r *renderFlags) scene(w *processed.World, width, height int) (*scene, error) {
	bg, err := render.ParseRGB(r.bg)
	if err != nil {
		return nil, err
	}
	if r.fov <= 0 || r.fov >= 180 {
		return nil, fmt.Errorf("fov must be between 0 and 180 degrees, got %v", r.fov)
	}
	s := newScene(w, width, height, r.depth, bg)
	s.camera.SetFOV(r.fov * math.Pi / 180)
	s.showMap = r.showMap
	return s, nil
}

func newScene(w *processed.World, width, height, depth int, bg render.Color) *scene {
	fb := render.NewFramebuffer(width, height)
	camera := render.NewCamera()
	camera.SetAspectRatio(float64(width) / float64(height))
	tr := visibility.NewTraverser()
	tr.MaxDepth = depth
	return &scene{
		world:     w,
		mesh:      models.BuildRoomMeshes(w),
		traverser: tr,
		camera:    camera,
		raster:    render.NewRasterizer(camera, fb),
		fb:        fb,
		bg:        bg,
	}
}

// resize replaces the framebuffer, keeping the camera's aspect ratio in step.
func (s *scene) resize(width, height int) {
	s.fb = render.NewFramebuffer(width, height)
	s.raster.SetFramebuffer(s.fb)
	s.camera.SetAspectRatio(float64(width) / float64(height))
}

// draw renders one frame from viewer into the framebuffer and returns the
// number of room instances drawn.
func (s *scene) draw(viewer portal.Placement) int {
	if s.world.Update() {
		s.mesh = models.BuildRoomMeshes(s.world)
	}
	s.camera.SetPlacement(viewer, render.DefaultEyeHeight)
	s.fb.Clear(s.bg)
	s.raster.BeginFrame()
	drawn := render.DrawInstances(s.raster, s.mesh, s.traverser.Traverse(s.world, viewer))
	if s.showMap {
		drawMap(s.fb, s.world, viewer)
	}
	return drawn
}

func newSnapshotCmd(a *app) *cobra.Command {
	var (
		pose          poseFlags
		rf            renderFlags
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "snapshot <out.png>",
		Short: "Render one frame of the demo world to a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDemo(a.logger)
			if err != nil {
				return err
			}
			viewer, err := d.Placement(pose.room, pose.x, pose.y, pose.yaw)
			if err != nil {
				return err
			}

			s, err := rf.scene(processed.New(d.Geometry, processed.WithLogger(a.logger)), width, height)
			if err != nil {
				return err
			}
			drawn := s.draw(viewer)
			if err := s.fb.SavePNG(args[0]); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
			a.logger.Info("saved snapshot",
				"path", args[0],
				"instances", drawn,
				"culled", s.raster.Stats.RoomsCulled,
				"triangles", s.raster.Stats.Triangles,
			)
			return nil
		},
	}
	pose.register(cmd)
	rf.register(cmd)
	cmd.Flags().IntVar(&width, "width", 320, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", 180, "Image height in pixels")
	return cmd
}
