package glmesh

import (
	"errors"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshkit/pkg/mesh"
	"github.com/Faultbox/meshkit/pkg/vertex"
)

func TestComponentType(t *testing.T) {
	tests := []struct {
		in   vertex.ComponentType
		want uint32
	}{
		{vertex.Float, gl.FLOAT},
		{vertex.UnsignedByte, gl.UNSIGNED_BYTE},
		{vertex.HalfFloat, gl.HALF_FLOAT},
		{vertex.Double, gl.DOUBLE},
		{vertex.Int2_10_10_10Rev, gl.INT_2_10_10_10_REV},
		{vertex.UnsignedInt10F11F11FRev, gl.UNSIGNED_INT_10F_11F_11F_REV},
	}
	for _, tc := range tests {
		got, err := ComponentType(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ComponentType(%s) = %#x, %v; want %#x", tc.in, got, err, tc.want)
		}
	}

	if _, err := ComponentType(0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported for invalid type, got %v", err)
	}
}

func TestPrimitive(t *testing.T) {
	if p, err := Primitive(mesh.TriangleFan); err != nil || p != gl.TRIANGLE_FAN {
		t.Errorf("unexpected mapping for fan: %#x, %v", p, err)
	}
	if _, err := Primitive(mesh.PrimitiveType(99)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestIndexType(t *testing.T) {
	if IndexType[uint8]() != gl.UNSIGNED_BYTE {
		t.Error("uint8 should map to GL_UNSIGNED_BYTE")
	}
	if IndexType[uint16]() != gl.UNSIGNED_SHORT {
		t.Error("uint16 should map to GL_UNSIGNED_SHORT")
	}
	if IndexType[uint32]() != gl.UNSIGNED_INT {
		t.Error("uint32 should map to GL_UNSIGNED_INT")
	}
}

func TestAttribPointers(t *testing.T) {
	var layout vertex.Layout
	layout.MustAdd("position", 3, vertex.Float)
	if err := layout.Append("color", 4, vertex.UnsignedByte, vertex.CastDefault, vertex.NoLocation); err != nil {
		t.Fatal(err)
	}
	if err := layout.Append("bone", 1, vertex.UnsignedShort, vertex.CastInt, vertex.NoLocation); err != nil {
		t.Fatal(err)
	}
	if err := layout.Append("weight", 1, vertex.Double, vertex.CastDouble, vertex.NoLocation); err != nil {
		t.Fatal(err)
	}
	layout.MustAdd("unused", 2, vertex.Float)

	bound := layout.AssignLocations(func(name string) (int32, bool) {
		loc, ok := map[string]int32{"position": 0, "color": 3, "bone": 4, "weight": 5}[name]
		return loc, ok
	})
	if bound != 4 {
		t.Fatalf("expected 4 bound attributes, got %d", bound)
	}

	ptrs, err := attribPointers(layout)
	if err != nil {
		t.Fatalf("attribPointers failed: %v", err)
	}
	if len(ptrs) != 4 {
		t.Fatalf("expected unbound attribute to be skipped, got %d pointers", len(ptrs))
	}

	want := []attribPointer{
		{Location: 0, Size: 3, Type: gl.FLOAT, Stride: 34, Offset: 0, Kind: pointerFloat},
		{Location: 3, Size: 4, Type: gl.UNSIGNED_BYTE, Normalized: true, Stride: 34, Offset: 12, Kind: pointerFloat},
		{Location: 4, Size: 1, Type: gl.UNSIGNED_SHORT, Stride: 34, Offset: 16, Kind: pointerInteger},
		{Location: 5, Size: 1, Type: gl.DOUBLE, Stride: 34, Offset: 18, Kind: pointerDouble},
	}
	for i := range want {
		if ptrs[i] != want[i] {
			t.Errorf("pointer %d: got %+v, want %+v", i, ptrs[i], want[i])
		}
	}
}
