package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/processed"
	"github.com/taigrr/escher/pkg/render"
)

const (
	walkSpeed = 3.0 // units per second
	turnSpeed = 2.0 // radians per second
	pitchStep = 0.1
)

// Axis eases a velocity toward a target with a critically damped spring.
type Axis struct {
	Velocity float64
	accel    float64 // spring velocity of Velocity itself
	spring   harmonica.Spring
}

// NewAxis creates an axis updated fps times per second.
func NewAxis(fps int) Axis {
	return Axis{
		// Frequency 6.0 = quick response, damping 1.0 = no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Update moves Velocity one frame toward target.
func (a *Axis) Update(target float64) {
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, target)
}

// Controller turns held keys into smoothed motion of a placement.
type Controller struct {
	Walk, Strafe, Turn Axis

	// Input in [-1, 1], decayed every frame since key release events are
	// not reported by every terminal.
	walkIn, strafeIn, turnIn float64
}

// NewController creates a controller updated fps times per second.
func NewController(fps int) *Controller {
	return &Controller{Walk: NewAxis(fps), Strafe: NewAxis(fps), Turn: NewAxis(fps)}
}

// Key applies a key press. It reports whether the key was handled.
func (c *Controller) Key(ev uv.KeyPressEvent) bool {
	switch {
	case ev.MatchString("w", "up"):
		c.walkIn = 1
	case ev.MatchString("s", "down"):
		c.walkIn = -1
	case ev.MatchString("a", "left"):
		c.turnIn = 1
	case ev.MatchString("d", "right"):
		c.turnIn = -1
	case ev.MatchString("q"):
		c.strafeIn = 1
	case ev.MatchString("e"):
		c.strafeIn = -1
	default:
		return false
	}
	return true
}

// Release clears the input a key release ends.
func (c *Controller) Release(ev uv.KeyReleaseEvent) {
	switch {
	case ev.MatchString("w", "up", "s", "down"):
		c.walkIn = 0
	case ev.MatchString("a", "left", "d", "right"):
		c.turnIn = 0
	case ev.MatchString("q", "e"):
		c.strafeIn = 0
	}
}

// Step advances the springs by one frame of dt seconds and moves p through
// any portals on the way.
func (c *Controller) Step(r portal.Resolver, p portal.Placement, dt float64) portal.Step {
	c.Walk.Update(c.walkIn * walkSpeed)
	c.Strafe.Update(c.strafeIn * walkSpeed)
	c.Turn.Update(c.turnIn * turnSpeed)
	c.walkIn *= 0.9
	c.strafeIn *= 0.9
	c.turnIn *= 0.9

	p.Yaw = math.Remainder(p.Yaw+c.Turn.Velocity*dt, 2*math.Pi)
	fwd := p.Forward()
	left := math3d.V2(-fwd.Y, fwd.X)
	step := fwd.Scale(c.Walk.Velocity * dt).Add(left.Scale(c.Strafe.Velocity * dt))
	return portal.Cross(r, p, step)
}

func newViewCmd(a *app) *cobra.Command {
	var (
		pose poseFlags
		rf   renderFlags
		fps  int
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Walk through the demo world in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fps <= 0 {
				return fmt.Errorf("fps must be positive, got %d", fps)
			}
			d, err := loadDemo(a.logger)
			if err != nil {
				return err
			}
			viewer, err := d.Placement(pose.room, pose.x, pose.y, pose.yaw)
			if err != nil {
				return err
			}
			w := processed.New(d.Geometry, processed.WithLogger(a.logger))
			return view(cmd.Context(), a, d, w, viewer, fps, &rf)
		},
	}
	pose.register(cmd)
	rf.register(cmd)
	cmd.Flags().IntVar(&fps, "fps", 60, "Target FPS")
	return cmd
}

func view(ctx context.Context, a *app, d *Demo, w *processed.World, viewer portal.Placement, fps int, rf *renderFlags) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	// Each terminal row shows two framebuffer rows.
	s, err := rf.scene(w, width, height*2)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	presenter := render.NewPresenter(term)
	ctrl := NewController(fps)

	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()
	frames, crossings := 0, 0

	for {
		select {
		case <-ctx.Done():
			cleanup()
			a.logger.Debug("viewer stopped",
				"frames", frames,
				"crossings", crossings,
				"room", d.Name(viewer.Room),
				"rebuilds", w.Stats().Rebuilds,
			)
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev := <-events:
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					width, height = ev.Width, ev.Height
					term.Erase()
					term.Resize(width, height)
					s.resize(width, height*2)
				case uv.KeyPressEvent:
					switch {
					case ev.MatchString("escape", "ctrl+c"):
						cancel()
						break drain
					case ev.MatchString("r"):
						s.camera.SetPitch(s.camera.Pitch + pitchStep)
					case ev.MatchString("f"):
						s.camera.SetPitch(s.camera.Pitch - pitchStep)
					case ev.MatchString("m"):
						s.showMap = !s.showMap
					default:
						ctrl.Key(ev)
					}
				case uv.KeyReleaseEvent:
					ctrl.Release(ev)
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		if dt > 0.1 {
			dt = 0.1
		}

		step := ctrl.Step(w, viewer, dt)
		viewer = step.Placement
		crossings += step.Crossed

		s.draw(viewer)
		if err := presenter.Present(s.fb); err != nil {
			cleanup()
			return err
		}
		frames++

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
