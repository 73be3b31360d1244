package mesh

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/vertex"
)

// ErrMarkerSize is returned when a restart marker is not exactly one vertex wide.
var ErrMarkerSize = errors.New("restart marker size does not match stride")

// Strategy selects how duplicate vertices are found. Both strategies produce
// identical output: unique vertices in first-seen order.
type Strategy uint8

// Deduplication strategies.
const (
	// DedupScan compares each vertex against every unique vertex so far.
	// Quadratic, allocation free, fine for small meshes.
	DedupScan Strategy = iota
	// DedupHashed looks vertices up in a map keyed by their bytes.
	DedupHashed
)

// String returns the strategy name used in configuration.
func (s Strategy) String() string {
	switch s {
	case DedupScan:
		return "scan"
	case DedupHashed:
		return "hashed"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy parses "scan" or "hashed".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "scan":
		return DedupScan, nil
	case "hashed", "hash":
		return DedupHashed, nil
	default:
		return 0, fmt.Errorf("unknown dedup strategy %q", s)
	}
}

// IndexOptions configures AddIndexBuffer and UnifyIndexBuffer.
type IndexOptions[I Index] struct {
	// RestartMarker is a vertex (or tuple) value meaning "end primitive".
	// Matching inputs emit Sentinel instead of a vertex. Nil disables restart.
	RestartMarker []byte
	// Sentinel is the emitted restart index. Zero selects MaxIndex[I]; zero
	// can never serve as a sentinel since it addresses the first vertex.
	Sentinel  I
	Primitive PrimitiveType
	Strategy  Strategy
}

func (o IndexOptions[I]) sentinel() I {
	if o.Sentinel == 0 {
		return MaxIndex[I]()
	}
	return o.Sentinel
}

// AddIndexBuffer collapses count back-to-back vertices of layout in raw into
// unique vertices plus an index stream, keeping first-seen order.
func AddIndexBuffer[I Index](layout vertex.Layout, count int, raw []byte, opts IndexOptions[I]) (*IndexedMesh[I], error) {
	stride := layout.Stride()
	if stride == 0 {
		return nil, ErrEmptyLayout
	}
	indices, unique, err := dedup(stride, count, raw, opts)
	if err != nil {
		return nil, err
	}
	m := &IndexedMesh[I]{
		Indices:   indices,
		Primitive: opts.Primitive,
		Vertices:  VertexBlock{Layout: layout, Data: unique},
	}
	if opts.RestartMarker != nil {
		m.Restart = RestartAt(opts.sentinel())
	}
	return m, nil
}

// dedup is the indexer core, shared by vertex streams and index tuple streams.
func dedup[I Index](stride, count int, raw []byte, opts IndexOptions[I]) ([]I, []byte, error) {
	if count < 0 || len(raw) < count*stride {
		return nil, nil, fmt.Errorf("%w: %d vertices of %d bytes need %d bytes, have %d",
			ErrStrideMismatch, count, stride, count*stride, len(raw))
	}
	marker := opts.RestartMarker
	if marker != nil && len(marker) != stride {
		return nil, nil, fmt.Errorf("%w: marker %d bytes, stride %d", ErrMarkerSize, len(marker), stride)
	}

	sentinel := opts.sentinel()
	// Highest usable unique index: below the sentinel when restart is on,
	// otherwise the whole range of I.
	limit := uint64(MaxIndex[I]())
	if marker != nil {
		limit = uint64(sentinel) - 1
	}

	indices := make([]I, 0, count)
	unique := make([]byte, 0, count*stride)
	uniqueCount := 0

	var seen map[string]I
	if opts.Strategy == DedupHashed {
		seen = make(map[string]I, count)
	}

	for i := 0; i < count; i++ {
		v := raw[i*stride : (i+1)*stride]

		if marker != nil && bytes.Equal(v, marker) {
			indices = append(indices, sentinel)
			continue
		}

		if idx, ok := findUnique[I](v, unique, stride, uniqueCount, seen); ok {
			indices = append(indices, idx)
			continue
		}

		if uint64(uniqueCount) > limit {
			return nil, nil, fmt.Errorf("%w: vertex %d would need index %d", ErrIndexOverflow, i, uniqueCount)
		}
		idx := I(uniqueCount)
		unique = append(unique, v...)
		if seen != nil {
			seen[string(v)] = idx
		}
		uniqueCount++
		indices = append(indices, idx)
	}

	logger.Debug("indexed vertex stream",
		zap.Int("input", count),
		zap.Int("unique", uniqueCount),
		zap.Int("stride", stride),
		zap.Stringer("strategy", opts.Strategy))

	return indices, unique, nil
}

// findUnique locates v among the first n unique vertices.
func findUnique[I Index](v, unique []byte, stride, n int, seen map[string]I) (I, bool) {
	if seen != nil {
		idx, ok := seen[string(v)]
		return idx, ok
	}
	for j := 0; j < n; j++ {
		if bytes.Equal(v, unique[j*stride:(j+1)*stride]) {
			return I(j), true
		}
	}
	return 0, false
}
