// Package glmesh uploads indexed meshes to OpenGL vertex array objects.
package glmesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshkit/pkg/mesh"
	"github.com/Faultbox/meshkit/pkg/vertex"
)

// Upload errors.
var (
	ErrUnsupported = errors.New("unsupported by OpenGL")
	ErrEmptyMesh   = errors.New("mesh has no indices or vertices")
)

// componentTypes maps vertex component types to GL enums.
var componentTypes = map[vertex.ComponentType]uint32{
	vertex.Byte:                     gl.BYTE,
	vertex.UnsignedByte:             gl.UNSIGNED_BYTE,
	vertex.Short:                    gl.SHORT,
	vertex.UnsignedShort:            gl.UNSIGNED_SHORT,
	vertex.Int:                      gl.INT,
	vertex.UnsignedInt:              gl.UNSIGNED_INT,
	vertex.HalfFloat:                gl.HALF_FLOAT,
	vertex.Float:                    gl.FLOAT,
	vertex.Fixed:                    gl.FIXED,
	vertex.Double:                   gl.DOUBLE,
	vertex.Int2_10_10_10Rev:         gl.INT_2_10_10_10_REV,
	vertex.UnsignedInt2_10_10_10Rev: gl.UNSIGNED_INT_2_10_10_10_REV,
	vertex.UnsignedInt10F11F11FRev:  gl.UNSIGNED_INT_10F_11F_11F_REV,
}

// ComponentType returns the GL enum for t.
func ComponentType(t vertex.ComponentType) (uint32, error) {
	e, ok := componentTypes[t]
	if !ok {
		return 0, fmt.Errorf("%w: component type %s", ErrUnsupported, t)
	}
	return e, nil
}

// Primitive returns the GL draw mode for p.
func Primitive(p mesh.PrimitiveType) (uint32, error) {
	switch p {
	case mesh.Triangles:
		return gl.TRIANGLES, nil
	case mesh.TriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	case mesh.TriangleFan:
		return gl.TRIANGLE_FAN, nil
	case mesh.Points:
		return gl.POINTS, nil
	case mesh.Lines:
		return gl.LINES, nil
	case mesh.LineStrip:
		return gl.LINE_STRIP, nil
	case mesh.LineLoop:
		return gl.LINE_LOOP, nil
	default:
		return 0, fmt.Errorf("%w: primitive %s", ErrUnsupported, p)
	}
}

// IndexType returns the GL element type for index type I.
func IndexType[I mesh.Index]() uint32 {
	switch mesh.IndexSize[I]() {
	case 1:
		return gl.UNSIGNED_BYTE
	case 2:
		return gl.UNSIGNED_SHORT
	default:
		return gl.UNSIGNED_INT
	}
}

// pointerKind selects the glVertexAttrib*Pointer variant for a cast.
type pointerKind uint8

const (
	pointerFloat pointerKind = iota
	pointerInteger
	pointerDouble
)

// attribPointer describes one glVertexAttrib*Pointer call.
type attribPointer struct {
	Location   uint32
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     uintptr
	Kind       pointerKind
}

// attribPointers resolves the pointer calls for every bound attribute of
// layout. Unbound attributes are skipped.
func attribPointers(layout vertex.Layout) ([]attribPointer, error) {
	var out []attribPointer
	for _, a := range layout.Attributes() {
		if !a.HasLocation() {
			continue
		}
		typ, err := ComponentType(a.Type)
		if err != nil {
			return nil, err
		}

		p := attribPointer{
			Location: uint32(a.Location),
			Size:     int32(a.Count),
			Type:     typ,
			Stride:   int32(layout.Stride()),
			Offset:   uintptr(a.Offset),
		}
		switch a.Cast {
		case vertex.CastFloat:
			p.Kind = pointerFloat
		case vertex.CastNormalizedFloat:
			p.Kind = pointerFloat
			p.Normalized = true
		case vertex.CastInt:
			p.Kind = pointerInteger
		case vertex.CastDouble:
			p.Kind = pointerDouble
		default:
			return nil, fmt.Errorf("%w: cast %s for %q", ErrUnsupported, a.Cast, a.Name)
		}
		out = append(out, p)
	}
	return out, nil
}
