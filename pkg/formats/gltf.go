package formats

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// glTF export errors.
var (
	ErrGLTFRestart     = errors.New("glTF has no primitive restart")
	ErrGLTFNoPositions = errors.New("mesh has no float position attribute")
)

// gltfMode maps mesh primitives to glTF primitive modes.
func gltfMode(p mesh.PrimitiveType) gltf.PrimitiveMode {
	switch p {
	case mesh.Points:
		return gltf.PrimitivePoints
	case mesh.Lines:
		return gltf.PrimitiveLines
	case mesh.LineLoop:
		return gltf.PrimitiveLineLoop
	case mesh.LineStrip:
		return gltf.PrimitiveLineStrip
	case mesh.TriangleStrip:
		return gltf.PrimitiveTriangleStrip
	case mesh.TriangleFan:
		return gltf.PrimitiveTriangleFan
	default:
		return gltf.PrimitiveTriangles
	}
}

// NewGLTFDocument builds a glTF document with one node and mesh per entry.
// Attributes named position, normal and texcoord become POSITION, NORMAL and
// TEXCOORD_0; other attributes are skipped. Restart-delimited triangle fans
// are converted to triangle lists first.
func NewGLTFDocument[I mesh.Index](meshes []NamedMesh[I]) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	for _, nm := range meshes {
		m := nm.Mesh
		if m.Restart.Enabled {
			if m.Primitive != mesh.TriangleFan {
				return nil, fmt.Errorf("%w: mesh %q is %s", ErrGLTFRestart, nm.Name, m.Primitive)
			}
			var err error
			if m, err = mesh.ApplyTriangleFan(m); err != nil {
				return nil, err
			}
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", nm.Name, err)
		}

		prim, err := writeGLTFPrimitive(doc, nm.Name, m)
		if err != nil {
			return nil, err
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       nm.Name,
			Primitives: []*gltf.Primitive{prim},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: nm.Name,
			Mesh: gltf.Index(len(doc.Meshes) - 1),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc, nil
}

func writeGLTFPrimitive[I mesh.Index](doc *gltf.Document, name string, m *mesh.IndexedMesh[I]) (*gltf.Primitive, error) {
	positions, err := mesh.ReadVec3(m.Vertices, AttrPosition)
	if err != nil {
		return nil, fmt.Errorf("%w: mesh %q: %v", ErrGLTFNoPositions, name, err)
	}

	pos := make([][3]float32, len(positions))
	for i, p := range positions {
		pos[i] = p
	}
	attrs := gltf.PrimitiveAttributes{
		gltf.POSITION: modeler.WritePosition(doc, pos),
	}

	for _, a := range m.Vertices.Layout.Attributes() {
		switch a.Name {
		case AttrPosition:
		case AttrNormal:
			normals, err := mesh.ReadVec3(m.Vertices, AttrNormal)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", name, err)
			}
			n := make([][3]float32, len(normals))
			for i, v := range normals {
				n[i] = v
			}
			attrs[gltf.NORMAL] = modeler.WriteNormal(doc, n)
		case AttrTexCoord:
			coords, err := mesh.ReadVec2(m.Vertices, AttrTexCoord)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", name, err)
			}
			uv := make([][2]float32, len(coords))
			for i, v := range coords {
				uv[i] = v
			}
			attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uv)
		default:
			logger.Warn("attribute has no glTF semantic, skipping",
				zap.String("mesh", name), zap.String("attribute", a.Name))
		}
	}

	indices := make([]uint32, len(m.Indices))
	for i, idx := range m.Indices {
		indices[i] = uint32(idx)
	}

	return &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
		Mode:       gltfMode(m.Primitive),
	}, nil
}

// WriteGLTF exports meshes to path, as GLB when binary is set and as
// glTF JSON with embedded buffers otherwise.
func WriteGLTF[I mesh.Index](path string, meshes []NamedMesh[I], binary bool) error {
	doc, err := NewGLTFDocument(meshes)
	if err != nil {
		return err
	}

	if binary {
		err = gltf.SaveBinary(doc, path)
	} else {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("writing glTF %s: %w", path, err)
	}

	logger.Info("wrote glTF",
		zap.String("path", path),
		zap.Int("meshes", len(meshes)),
		zap.Bool("binary", binary))
	return nil
}
