package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/taigrr/escher/pkg/portal"
	"github.com/taigrr/escher/pkg/processed"
	"github.com/taigrr/escher/pkg/visibility"
)

func newDumpCmd(a *app) *cobra.Command {
	var pose poseFlags
	var depth int
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the rooms visible from a placement and the lights reaching each room",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDemo(a.logger)
			if err != nil {
				return err
			}
			viewer, err := d.Placement(pose.room, pose.x, pose.y, pose.yaw)
			if err != nil {
				return err
			}
			w := processed.New(d.Geometry, processed.WithLogger(a.logger))
			tr := visibility.NewTraverser()
			tr.MaxDepth = depth
			return dump(cmd.OutOrStdout(), d, w, tr, viewer)
		},
	}
	pose.register(cmd)
	cmd.Flags().IntVar(&depth, "depth", visibility.MaxVisibilityRecursionDepth, "Maximum portal recursion depth")
	return cmd
}

func dump(out io.Writer, d *Demo, w *processed.World, tr *visibility.Traverser, viewer portal.Placement) error {
	instances := tr.Traverse(w, viewer)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tROOM\tDEPTH\tOFFSET\tHEIGHT\tTURN\tWINDOW")
	for i, inst := range instances {
		window := "-"
		if c := inst.Clip; c != nil {
			window = fmt.Sprintf("(%.2f, %.2f)..(%.2f, %.2f)",
				c.RightAperture.X, c.RightAperture.Y, c.LeftAperture.X, c.LeftAperture.Y)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t(%.2f, %.2f)\t%.2f\t%.2f\t%s\n",
			i, d.Name(inst.Room), inst.Depth(),
			inst.Transform.T.X, inst.Transform.T.Y,
			inst.HeightOffset, inst.Transform.Angle(), window)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write instances: %w", err)
	}

	lit := visibility.PropagateLights(w, d.Lights)
	fmt.Fprintf(out, "\n%d visible instances, %d lit rooms\n", len(instances), len(lit))
	for _, name := range d.RoomNames() {
		copies := lit[d.Rooms[name]]
		if len(copies) == 0 {
			continue
		}
		deepest := 0
		for _, l := range copies {
			deepest = max(deepest, l.Depth)
		}
		fmt.Fprintf(out, "  %-9s %d light copies, deepest %d\n", name, len(copies), deepest)
	}
	return nil
}
