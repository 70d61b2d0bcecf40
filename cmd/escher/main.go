// escher - walk through impossible rooms in your terminal.
//
// Rooms are glued together wall to wall through portals, so a corridor can
// lead back into itself and a small door can open onto a hall larger than
// the room around it.
//
// Controls (view):
//
//	W/S or Up/Down     - Walk forward/back
//	A/D or Left/Right  - Turn
//	Q/E                - Strafe
//	R/F                - Look up/down
//	M                  - Toggle room plan
//	Esc                - Quit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// app holds state shared by every command.
type app struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "escher",
		Short: "Portal-based room renderer for impossible spaces",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newViewCmd(a),
		newExportCmd(a),
		newDumpCmd(a),
		newSnapshotCmd(a),
		newInspectCmd(a),
	)
	return root
}

// poseFlags selects a viewer placement in the demo world.
type poseFlags struct {
	room string
	x, y float64
	yaw  float64
}

func (p *poseFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&p.room, "room", "hall", "Room the viewer stands in")
	f.Float64Var(&p.x, "x", 3, "Viewer X in the room's frame")
	f.Float64Var(&p.y, "y", 3, "Viewer Y in the room's frame")
	f.Float64Var(&p.yaw, "yaw", 0, "Viewing direction in radians (0 = +X)")
}

func loadDemo(logger *slog.Logger) (*Demo, error) {
	d, err := NewDemo()
	if err != nil {
		return nil, fmt.Errorf("load demo world: %w", err)
	}
	logger.Debug("demo world built", "rooms", len(d.Rooms), "version", d.Geometry.Version())
	return d, nil
}
