package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/taigrr/escher/pkg/models"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.glb>",
		Short: "Summarize the room meshes in a binary glTF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := models.LoadGLB(args[0])
			if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			a.logger.Debug("loaded mesh", "path", args[0], "parts", len(mesh.Parts))
			inspect(cmd.OutOrStdout(), mesh)
			return nil
		},
	}
}

func inspect(out io.Writer, mesh *models.Mesh) {
	size, center := mesh.Size(), mesh.Center()
	fmt.Fprintf(out, "%s: %d parts, %d vertices, %d triangles\n",
		mesh.Name, len(mesh.Parts), mesh.VertexCount(), mesh.TriangleCount())
	fmt.Fprintf(out, "bounds %.2f x %.2f x %.2f around (%.2f, %.2f, %.2f)\n",
		size.X, size.Y, size.Z, center.X, center.Y, center.Z)
	for _, p := range mesh.Parts {
		fmt.Fprintf(out, "  %-12s %5d triangles\n", p.Name, p.NumElements/3)
	}
}
