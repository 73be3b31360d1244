package debug

import (
	"github.com/Faultbox/meshkit/pkg/mesh"
	"github.com/Faultbox/meshkit/pkg/vertex"
)

// GridMesh returns a ground grid under b as an indexed line list: a square
// on the XZ plane at b.Min.Y covering the footprint of b, split into cells
// per side. Line endpoints on the border are shared between lines.
func GridMesh(b mesh.Bounds, cells int) (*mesh.IndexedMesh[uint32], error) {
	if cells < 1 {
		cells = 1
	}

	center := b.Center()
	size := b.Size()
	half := max(size.X(), size.Z()) / 2
	if half <= 0 {
		half = 0.5
	}
	y := b.Min.Y()
	xs := gridLines(center.X()-half, center.X()+half, cells)
	zs := gridLines(center.Z()-half, center.Z()+half, cells)
	x0, x1 := xs[0], xs[cells]
	z0, z1 := zs[0], zs[cells]

	var layout vertex.Layout
	layout.MustAdd("position", 3, vertex.Float)

	count := 0
	var raw []byte
	for i := 0; i <= cells; i++ {
		raw = mesh.PutFloats(raw,
			xs[i], y, z0, xs[i], y, z1, // along Z
			x0, y, zs[i], x1, y, zs[i], // along X
		)
		count += 4
	}

	return mesh.AddIndexBuffer(layout, count, raw, mesh.IndexOptions[uint32]{
		Primitive: mesh.Lines,
		Strategy:  mesh.DedupHashed,
	})
}

// gridLines splits [lo, hi] into cells steps. The ends are exact so border
// endpoints compare equal.
func gridLines(lo, hi float32, cells int) []float32 {
	out := make([]float32, cells+1)
	for i := range out {
		out[i] = lo + (hi-lo)*float32(i)/float32(cells)
	}
	out[0], out[cells] = lo, hi
	return out
}
