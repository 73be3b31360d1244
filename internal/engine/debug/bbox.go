// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshkit/pkg/mesh"
	"github.com/Faultbox/meshkit/pkg/vertex"
)

// BoundsEdgeVertexCount is the number of line endpoints in a box wireframe (12 edges × 2).
const BoundsEdgeVertexCount = 24

// boundsEdges lists the box edges as corner pairs. Corner bit 0 selects max
// X, bit 1 max Y, bit 2 max Z.
var boundsEdges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// Top face
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// Vertical edges
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// BoundsEdgeVertices returns the unindexed line list of the wireframe of b
// grown by padding on every side.
func BoundsEdgeVertices(b mesh.Bounds, padding float32) []mgl32.Vec3 {
	pad := mgl32.Vec3{padding, padding, padding}
	lo, hi := b.Min.Sub(pad), b.Max.Add(pad)

	corner := func(i int) mgl32.Vec3 {
		c := lo
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				c[axis] = hi[axis]
			}
		}
		return c
	}

	out := make([]mgl32.Vec3, 0, BoundsEdgeVertexCount)
	for _, e := range boundsEdges {
		out = append(out, corner(e[0]), corner(e[1]))
	}
	return out
}

// BoundsMesh returns the wireframe of b as an indexed line list.
func BoundsMesh(b mesh.Bounds, padding float32) (*mesh.IndexedMesh[uint16], error) {
	var layout vertex.Layout
	layout.MustAdd("position", 3, vertex.Float)

	raw := make([]byte, 0, BoundsEdgeVertexCount*layout.Stride())
	for _, v := range BoundsEdgeVertices(b, padding) {
		raw = mesh.PutFloats(raw, v[0], v[1], v[2])
	}

	return mesh.AddIndexBuffer(layout, BoundsEdgeVertexCount, raw, mesh.IndexOptions[uint16]{
		Primitive: mesh.Lines,
		Strategy:  mesh.DedupHashed,
	})
}
