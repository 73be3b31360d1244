package mesh

import (
	"fmt"

	"github.com/Faultbox/meshkit/pkg/vertex"
)

// ApplyMultiIndex materializes interleaved vertices from index tuples. Tuple i
// becomes output vertex i: the bytes of Blocks[s].Vertex(tuples[i*n+s]) for
// every slot s in order. The output layout is the slot layouts concatenated.
// Tuples must not contain restart markers.
func ApplyMultiIndex[I Index](tuples []I, blocks []VertexBlock) (VertexBlock, error) {
	n := len(blocks)
	if n == 0 {
		return VertexBlock{}, fmt.Errorf("%w: no attribute streams", ErrArityMismatch)
	}
	if len(tuples)%n != 0 {
		return VertexBlock{}, fmt.Errorf("%w: %d indices for arity %d", ErrArityMismatch, len(tuples), n)
	}

	var layout vertex.Layout
	for _, b := range blocks {
		layout.Extend(b.Layout)
	}

	count := len(tuples) / n
	out := make([]byte, 0, count*layout.Stride())
	for i := 0; i < count; i++ {
		for s, b := range blocks {
			idx := int(tuples[i*n+s])
			if idx >= b.Len() {
				return VertexBlock{}, fmt.Errorf("%w: tuple %d slot %d = %d with %d vertices",
					ErrIndexOutOfRange, i, s, idx, b.Len())
			}
			out = append(out, b.Vertex(idx)...)
		}
	}
	return VertexBlock{Layout: layout, Data: out}, nil
}

// UnifyIndexBuffer converts a multi-indexed mesh into a single-indexed one.
// Each distinct index tuple becomes one output vertex, so attribute
// combinations shared by several faces are stored once. A restart tuple, if
// present, becomes the output restart index (opts.Sentinel or MaxIndex).
// opts.RestartMarker and opts.Primitive are ignored; both come from m.
func UnifyIndexBuffer[I Index](m *MultiIndexedMesh[I], opts IndexOptions[I]) (*IndexedMesh[I], error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	// Dedup the tuple stream itself: each tuple is an opaque
	// Arity()*IndexSize[I] byte record.
	size := IndexSize[I]()
	stride := m.Arity() * size
	raw := encodeTuples(m.Tuples, size)

	opts.RestartMarker = nil
	if m.RestartTuple != nil {
		opts.RestartMarker = encodeTuples(m.RestartTuple, size)
	}
	opts.Primitive = m.Primitive

	indices, unique, err := dedup(stride, m.Len(), raw, opts)
	if err != nil {
		return nil, fmt.Errorf("deduplicating tuples: %w", err)
	}

	block, err := ApplyMultiIndex(decodeTuples[I](unique, size), m.Blocks)
	if err != nil {
		return nil, fmt.Errorf("materializing vertices: %w", err)
	}

	out := &IndexedMesh[I]{
		Indices:   indices,
		Primitive: m.Primitive,
		Vertices:  block,
	}
	if m.RestartTuple != nil {
		out.Restart = RestartAt(opts.sentinel())
	}
	return out, nil
}

func encodeTuples[I Index](tuples []I, size int) []byte {
	out := make([]byte, len(tuples)*size)
	for i, v := range tuples {
		putIndex(out[i*size:(i+1)*size], v)
	}
	return out
}

func decodeTuples[I Index](raw []byte, size int) []I {
	out := make([]I, len(raw)/size)
	for i := range out {
		out[i] = getIndex[I](raw[i*size : (i+1)*size])
	}
	return out
}
