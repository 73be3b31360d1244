package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshkit/pkg/vertex"
)

// ErrAttributeFormat is returned when an attribute cannot be read as floats.
var ErrAttributeFormat = errors.New("attribute is not a float vector")

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the box center.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Union returns the smallest box containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	for c := 0; c < 3; c++ {
		b.Min[c] = min(b.Min[c], o.Min[c])
		b.Max[c] = max(b.Max[c], o.Max[c])
	}
	return b
}

// ReadVec3 returns the named float attribute of every vertex in the block,
// padding missing components with zero. Vertex bytes are little-endian.
func ReadVec3(b VertexBlock, name string) ([]mgl32.Vec3, error) {
	a, ok := b.Layout.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: no attribute %q", ErrAttributeFormat, name)
	}
	if a.Type != vertex.Float {
		return nil, fmt.Errorf("%w: %q is %dx%s", ErrAttributeFormat, name, a.Count, a.Type)
	}

	out := make([]mgl32.Vec3, b.Len())
	for i := range out {
		v := b.Vertex(i)[a.Offset:]
		for c := 0; c < a.Count && c < 3; c++ {
			out[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(v[c*4:]))
		}
	}
	return out, nil
}

// ReadVec2 is like ReadVec3 for two-component attributes.
func ReadVec2(b VertexBlock, name string) ([]mgl32.Vec2, error) {
	v3, err := ReadVec3(b, name)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec2, len(v3))
	for i, v := range v3 {
		out[i] = v.Vec2()
	}
	return out, nil
}

// ComputeBounds returns the bounds of the named float attribute, usually
// "position". An empty block yields a zero box.
func ComputeBounds(b VertexBlock, name string) (Bounds, error) {
	points, err := ReadVec3(b, name)
	if err != nil {
		return Bounds{}, err
	}
	if len(points) == 0 {
		return Bounds{}, nil
	}

	bounds := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for c := 0; c < 3; c++ {
			bounds.Min[c] = min(bounds.Min[c], p[c])
			bounds.Max[c] = max(bounds.Max[c], p[c])
		}
	}
	return bounds, nil
}

// PutFloats appends little-endian float32 values to dst.
func PutFloats(dst []byte, values ...float32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
