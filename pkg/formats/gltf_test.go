package formats

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

func createTestSquare(t *testing.T) []NamedMesh[uint16] {
	t.Helper()
	obj, err := ParseOBJ(strings.NewReader(unitSquareOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	meshes, err := BuildOBJMeshes(obj, mesh.IndexOptions[uint16]{})
	if err != nil {
		t.Fatalf("BuildOBJMeshes failed: %v", err)
	}
	return meshes
}

func TestWriteGLTF(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		binary bool
	}{
		{"binary", "square.glb", true},
		{"json", "square.gltf", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			if err := WriteGLTF(path, createTestSquare(t), tc.binary); err != nil {
				t.Fatalf("WriteGLTF failed: %v", err)
			}

			doc, err := gltf.Open(path)
			if err != nil {
				t.Fatalf("gltf.Open failed: %v", err)
			}
			if len(doc.Meshes) != 1 || doc.Meshes[0].Name != "square" {
				t.Fatalf("unexpected meshes %+v", doc.Meshes)
			}

			prim := doc.Meshes[0].Primitives[0]
			if prim.Mode != gltf.PrimitiveTriangles {
				t.Errorf("expected triangles, got %v", prim.Mode)
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				t.Fatal("missing POSITION")
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				t.Fatalf("ReadPosition failed: %v", err)
			}
			if len(positions) != 4 || positions[2] != [3]float32{1, 1, 0} {
				t.Errorf("unexpected positions %v", positions)
			}

			if _, ok := prim.Attributes[gltf.TEXCOORD_0]; !ok {
				t.Error("missing TEXCOORD_0")
			}
			if _, ok := prim.Attributes[gltf.NORMAL]; ok {
				t.Error("unexpected NORMAL")
			}

			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				t.Fatalf("ReadIndices failed: %v", err)
			}
			want := []uint32{0, 1, 2, 0, 2, 3}
			if len(indices) != len(want) {
				t.Fatalf("expected %v, got %v", want, indices)
			}
			for i := range want {
				if indices[i] != want[i] {
					t.Fatalf("expected %v, got %v", want, indices)
				}
			}
		})
	}
}

func TestNewGLTFDocument_Fan(t *testing.T) {
	square := createTestSquare(t)[0].Mesh
	r := mesh.MaxIndex[uint16]()

	fan := &mesh.IndexedMesh[uint16]{
		Indices:   []uint16{0, 1, 2, 3, r, 3, 2, 1},
		Primitive: mesh.TriangleFan,
		Restart:   mesh.RestartAt(r),
		Vertices:  square.Vertices,
	}

	doc, err := NewGLTFDocument([]NamedMesh[uint16]{{Name: "fan", Mesh: fan}})
	if err != nil {
		t.Fatalf("NewGLTFDocument failed: %v", err)
	}
	prim := doc.Meshes[0].Primitives[0]
	if prim.Mode != gltf.PrimitiveTriangles {
		t.Errorf("fan must be exported as triangles, got %v", prim.Mode)
	}
	if n := doc.Accessors[*prim.Indices].Count; n != 12 {
		t.Errorf("expected 12 indices, got %d", n)
	}
	if len(doc.Scenes[0].Nodes) != 1 {
		t.Errorf("expected one scene node, got %d", len(doc.Scenes[0].Nodes))
	}
}

func TestNewGLTFDocument_Errors(t *testing.T) {
	square := createTestSquare(t)[0].Mesh
	r := mesh.MaxIndex[uint16]()

	strip := &mesh.IndexedMesh[uint16]{
		Indices:   []uint16{0, 1, 2, r, 1, 2, 3},
		Primitive: mesh.TriangleStrip,
		Restart:   mesh.RestartAt(r),
		Vertices:  square.Vertices,
	}
	if _, err := NewGLTFDocument([]NamedMesh[uint16]{{Name: "strip", Mesh: strip}}); !errors.Is(err, ErrGLTFRestart) {
		t.Errorf("expected ErrGLTFRestart, got %v", err)
	}

	broken := &mesh.IndexedMesh[uint16]{
		Indices:  []uint16{0, 1, 9},
		Vertices: square.Vertices,
	}
	if _, err := NewGLTFDocument([]NamedMesh[uint16]{{Name: "broken", Mesh: broken}}); !errors.Is(err, mesh.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}
