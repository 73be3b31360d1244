// Package mesh holds host-memory vertex data and turns redundant or
// multi-indexed vertex streams into deduplicated, single-indexed meshes.
package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Faultbox/meshkit/pkg/vertex"
)

// Mesh errors.
var (
	ErrStrideMismatch   = errors.New("data length is not a multiple of the layout stride")
	ErrEmptyLayout      = errors.New("layout has zero stride")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrRestartCollision = errors.New("restart index collides with a vertex index")
	ErrIndexOverflow    = errors.New("too many unique vertices for index type")
	ErrArityMismatch    = errors.New("tuple arity mismatch")
)

// Index is the set of integer types usable as vertex indices.
type Index interface {
	~uint8 | ~uint16 | ~uint32
}

// MaxIndex returns the largest value representable by I, the conventional
// primitive restart sentinel.
func MaxIndex[I Index]() I {
	var zero I
	return ^zero
}

// IndexSize returns the byte size of I.
func IndexSize[I Index]() int {
	switch uint64(MaxIndex[I]()) {
	case 0xFF:
		return 1
	case 0xFFFF:
		return 2
	default:
		return 4
	}
}

// putIndex writes v little-endian into b, which must hold IndexSize[I] bytes.
func putIndex[I Index](b []byte, v I) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	default:
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
}

// getIndex reads a little-endian index of len(b) bytes.
func getIndex[I Index](b []byte) I {
	switch len(b) {
	case 1:
		return I(b[0])
	case 2:
		return I(binary.LittleEndian.Uint16(b))
	default:
		return I(binary.LittleEndian.Uint32(b))
	}
}

// PrimitiveType is the topology the indices describe.
type PrimitiveType uint8

// Primitive types.
const (
	Triangles PrimitiveType = iota
	TriangleStrip
	TriangleFan
	Points
	Lines
	LineStrip
	LineLoop
)

// String returns the primitive name.
func (p PrimitiveType) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle-strip"
	case TriangleFan:
		return "triangle-fan"
	case Points:
		return "points"
	case Lines:
		return "lines"
	case LineStrip:
		return "line-strip"
	case LineLoop:
		return "line-loop"
	default:
		return fmt.Sprintf("PrimitiveType(%d)", uint8(p))
	}
}

// Restart is an optional primitive restart index.
type Restart[I Index] struct {
	Index   I
	Enabled bool
}

// RestartAt returns an enabled restart at v.
func RestartAt[I Index](v I) Restart[I] {
	return Restart[I]{Index: v, Enabled: true}
}

// Is reports whether v is the enabled restart index.
func (r Restart[I]) Is(v I) bool {
	return r.Enabled && r.Index == v
}

// VertexBlock is a byte buffer of tightly packed vertices in one layout.
type VertexBlock struct {
	Layout vertex.Layout
	Data   []byte
}

// NewVertexBlock checks that data holds whole vertices and wraps it.
// The block takes ownership of data.
func NewVertexBlock(layout vertex.Layout, data []byte) (VertexBlock, error) {
	if layout.Stride() == 0 {
		return VertexBlock{}, ErrEmptyLayout
	}
	if len(data)%layout.Stride() != 0 {
		return VertexBlock{}, fmt.Errorf("%w: %d bytes, stride %d", ErrStrideMismatch, len(data), layout.Stride())
	}
	return VertexBlock{Layout: layout, Data: data}, nil
}

// Len returns the number of vertices.
func (b VertexBlock) Len() int {
	stride := b.Layout.Stride()
	if stride == 0 {
		return 0
	}
	return len(b.Data) / stride
}

// Vertex returns the raw bytes of vertex i. The slice aliases the block.
func (b VertexBlock) Vertex(i int) []byte {
	stride := b.Layout.Stride()
	return b.Data[i*stride : (i+1)*stride : (i+1)*stride]
}

// Clone returns a deep copy of the block.
func (b VertexBlock) Clone() VertexBlock {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return VertexBlock{Layout: b.Layout, Data: data}
}

// IndexedMesh is a vertex block walked by a single index stream.
type IndexedMesh[I Index] struct {
	Indices   []I
	Primitive PrimitiveType
	Restart   Restart[I]
	Vertices  VertexBlock
}

// VertexCount returns the number of unique vertices.
func (m *IndexedMesh[I]) VertexCount() int {
	return m.Vertices.Len()
}

// Validate checks that every non-restart index addresses a vertex and that
// the restart index cannot be mistaken for one.
func (m *IndexedMesh[I]) Validate() error {
	n := m.Vertices.Len()
	if m.Restart.Enabled && int(m.Restart.Index) < n {
		return fmt.Errorf("%w: restart %d with %d vertices", ErrRestartCollision, m.Restart.Index, n)
	}
	for i, idx := range m.Indices {
		if m.Restart.Is(idx) {
			continue
		}
		if int(idx) >= n {
			return fmt.Errorf("%w: indices[%d] = %d with %d vertices", ErrIndexOutOfRange, i, idx, n)
		}
	}
	return nil
}

// Expand gathers vertices through the index stream, producing the flat,
// non-indexed vertex stream. Restart positions are skipped.
func (m *IndexedMesh[I]) Expand() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	stride := m.Vertices.Layout.Stride()
	out := make([]byte, 0, len(m.Indices)*stride)
	for _, idx := range m.Indices {
		if m.Restart.Is(idx) {
			continue
		}
		out = append(out, m.Vertices.Vertex(int(idx))...)
	}
	return out, nil
}

// IndexBytes encodes the index stream little-endian for upload.
func (m *IndexedMesh[I]) IndexBytes() []byte {
	size := IndexSize[I]()
	out := make([]byte, len(m.Indices)*size)
	for i, idx := range m.Indices {
		putIndex(out[i*size:(i+1)*size], idx)
	}
	return out
}

// MultiIndexedMesh has one vertex block per attribute stream and one index
// tuple per vertex. Tuples are stored flat: tuple i occupies
// Tuples[i*Arity() : (i+1)*Arity()] and slot s indexes Blocks[s].
type MultiIndexedMesh[I Index] struct {
	Tuples    []I
	Primitive PrimitiveType
	// RestartTuple marks primitive restart when non-nil; its length is Arity().
	RestartTuple []I
	Blocks       []VertexBlock
}

// Arity returns the number of attribute streams.
func (m *MultiIndexedMesh[I]) Arity() int {
	return len(m.Blocks)
}

// Len returns the number of index tuples.
func (m *MultiIndexedMesh[I]) Len() int {
	if len(m.Blocks) == 0 {
		return 0
	}
	return len(m.Tuples) / len(m.Blocks)
}

// Tuple returns tuple i. The slice aliases the mesh.
func (m *MultiIndexedMesh[I]) Tuple(i int) []I {
	n := len(m.Blocks)
	return m.Tuples[i*n : (i+1)*n : (i+1)*n]
}

// Append adds one tuple.
func (m *MultiIndexedMesh[I]) Append(tuple ...I) {
	m.Tuples = append(m.Tuples, tuple...)
}

// isRestart reports whether tuple equals the restart tuple.
func (m *MultiIndexedMesh[I]) isRestart(tuple []I) bool {
	if m.RestartTuple == nil {
		return false
	}
	for s := range tuple {
		if tuple[s] != m.RestartTuple[s] {
			return false
		}
	}
	return true
}

// Validate checks tuple arity and that every non-restart tuple slot addresses
// a vertex of its block.
func (m *MultiIndexedMesh[I]) Validate() error {
	n := len(m.Blocks)
	if n == 0 {
		return fmt.Errorf("%w: no attribute streams", ErrArityMismatch)
	}
	if len(m.Tuples)%n != 0 {
		return fmt.Errorf("%w: %d indices for arity %d", ErrArityMismatch, len(m.Tuples), n)
	}
	if m.RestartTuple != nil && len(m.RestartTuple) != n {
		return fmt.Errorf("%w: restart tuple has %d slots, want %d", ErrArityMismatch, len(m.RestartTuple), n)
	}
	for i := 0; i < m.Len(); i++ {
		tuple := m.Tuple(i)
		if m.isRestart(tuple) {
			continue
		}
		for s, idx := range tuple {
			if int(idx) >= m.Blocks[s].Len() {
				return fmt.Errorf("%w: tuple %d slot %d = %d with %d vertices",
					ErrIndexOutOfRange, i, s, idx, m.Blocks[s].Len())
			}
		}
	}
	return nil
}
