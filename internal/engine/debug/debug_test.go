package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

func createTestBounds() mesh.Bounds {
	return mesh.Bounds{Min: mgl32.Vec3{-1, 0, -2}, Max: mgl32.Vec3{1, 3, 2}}
}

func TestBoundsEdgeVertices(t *testing.T) {
	verts := BoundsEdgeVertices(createTestBounds(), 0.5)
	if len(verts) != BoundsEdgeVertexCount {
		t.Fatalf("expected %d vertices, got %d", BoundsEdgeVertexCount, len(verts))
	}

	// Every edge is axis-aligned: endpoints differ on exactly one axis.
	for i := 0; i < len(verts); i += 2 {
		diff := 0
		for axis := 0; axis < 3; axis++ {
			if verts[i][axis] != verts[i+1][axis] {
				diff++
			}
		}
		if diff != 1 {
			t.Errorf("edge %d is not axis-aligned: %v -> %v", i/2, verts[i], verts[i+1])
		}
	}
	if verts[0] != (mgl32.Vec3{-1.5, -0.5, -2.5}) {
		t.Errorf("padding not applied, first corner %v", verts[0])
	}
}

func TestBoundsMesh(t *testing.T) {
	m, err := BoundsMesh(createTestBounds(), 0)
	if err != nil {
		t.Fatalf("BoundsMesh failed: %v", err)
	}
	if m.VertexCount() != 8 {
		t.Errorf("expected 8 unique corners, got %d", m.VertexCount())
	}
	if len(m.Indices) != BoundsEdgeVertexCount || m.Primitive != mesh.Lines {
		t.Errorf("expected %d line indices, got %d %s", BoundsEdgeVertexCount, len(m.Indices), m.Primitive)
	}

	b, err := mesh.ComputeBounds(m.Vertices, "position")
	if err != nil {
		t.Fatalf("ComputeBounds failed: %v", err)
	}
	if b != createTestBounds() {
		t.Errorf("wireframe bounds %+v differ from source", b)
	}
}

func TestGridMesh(t *testing.T) {
	m, err := GridMesh(createTestBounds(), 4)
	if err != nil {
		t.Fatalf("GridMesh failed: %v", err)
	}
	// 5 lines per direction; only the 4 outer corners are shared.
	if len(m.Indices) != 20 {
		t.Errorf("expected 20 indices, got %d", len(m.Indices))
	}
	if m.VertexCount() != 16 {
		t.Errorf("expected 16 unique endpoints, got %d", m.VertexCount())
	}

	b, err := mesh.ComputeBounds(m.Vertices, "position")
	if err != nil {
		t.Fatalf("ComputeBounds failed: %v", err)
	}
	if b.Min.Y() != 0 || b.Max.Y() != 0 {
		t.Errorf("grid not flat at the bottom of the bounds: %+v", b)
	}
	if b.Size().X() != 4 || b.Size().Z() != 4 {
		t.Errorf("expected a 4x4 square footprint, got %v", b.Size())
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "meshkit")
	sc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue in GL order.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels failed: %v", err)
	}
	if filepath.Base(path) != "meshkit_2024-05-01_12-30-00.png" {
		t.Errorf("unexpected filename %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening screenshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding screenshot: %v", err)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b == 0 {
		t.Error("rows not flipped: top-left should be blue")
	}

	if _, err := sc.CaptureFromPixels(pixels, 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
