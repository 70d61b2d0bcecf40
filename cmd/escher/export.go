package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taigrr/escher/pkg/models"
	"github.com/taigrr/escher/pkg/processed"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <out.glb>",
		Short: "Write the demo world's room meshes as binary glTF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDemo(a.logger)
			if err != nil {
				return err
			}
			w := processed.New(d.Geometry, processed.WithLogger(a.logger))
			mesh := models.BuildRoomMeshes(w)
			if err := models.SaveGLB(mesh, args[0]); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			a.logger.Info("exported room meshes",
				"path", args[0],
				"rooms", len(mesh.Parts),
				"vertices", mesh.VertexCount(),
				"triangles", mesh.TriangleCount(),
			)
			return nil
		},
	}
}
