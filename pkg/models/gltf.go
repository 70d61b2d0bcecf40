package models

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/escher/pkg/math3d"
	"github.com/taigrr/escher/pkg/world"
)

// SaveGLB writes m as a binary glTF file with one mesh and node per
// non-empty part. Positions stay in each room's local frame.
func SaveGLB(m *Mesh, path string) error {
	doc := gltf.NewDocument()

	for _, p := range m.Parts {
		if p.NumElements == 0 {
			continue
		}
		verts := m.Vertices[p.BaseVertex : p.BaseVertex+p.NumVertices]

		positions := make([][3]float32, len(verts))
		normals := make([][3]float32, len(verts))
		colors := make([][4]uint8, len(verts))
		for i, v := range verts {
			positions[i] = vec3f(v.Position)
			normals[i] = vec3f(v.Normal)
			colors[i] = [4]uint8{v.Color.R, v.Color.G, v.Color.B, v.Color.A}
		}

		prim := &gltf.Primitive{
			Indices: gltf.Index(modeler.WriteIndices(doc, m.Indices[p.BaseIndex:p.BaseIndex+p.NumElements])),
			Attributes: map[string]int{
				gltf.POSITION: modeler.WritePosition(doc, positions),
				gltf.NORMAL:   modeler.WriteNormal(doc, normals),
				gltf.COLOR_0:  modeler.WriteColor(doc, colors),
			},
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: p.Name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: p.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}

func vec3f(v math3d.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// GLTFLoader loads GLTF/GLB files into Mesh format, one part per triangle
// primitive.
type GLTFLoader struct {
	// CalculateNormals fills in flat normals when the file has none.
	CalculateNormals bool

	// DefaultColor is used when a primitive has no COLOR_0 attribute.
	DefaultColor color.RGBA
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		DefaultColor:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	hasNormals := true
	for _, m := range doc.Meshes {
		ok, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		hasNormals = hasNormals && ok
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateNormals()
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh appends the triangle primitives of m as parts. It reports
// whether every primitive carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	hasNormals := true
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		} else {
			hasNormals = false
		}

		var colors [][4]uint8
		if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
			if colors, err = modeler.ReadColor(doc, doc.Accessors[idx], nil); err != nil {
				return false, fmt.Errorf("read colors: %w", err)
			}
		}

		mesh.beginPart(world.RoomID{}, m.Name)
		for i, p := range positions {
			v := MeshVertex{
				Position: math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])),
				Color:    l.DefaultColor,
			}
			if i < len(normals) {
				n := normals[i]
				v.Normal = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
			}
			if i < len(colors) {
				c := colors[i]
				v.Color = color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
			}
			mesh.addVertex(v)
		}

		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
			mesh.Indices = append(mesh.Indices, indices[:len(indices)/3*3]...)
		} else {
			// No indices, assume sequential triangles
			for i := range len(positions) / 3 * 3 {
				mesh.Indices = append(mesh.Indices, uint32(i))
			}
		}
		mesh.endPart()
	}
	return hasNormals, nil
}
