package mesh

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
)

// ErrNotRestartFan is returned by ApplyTriangleFan for input that is not a
// restart-delimited triangle fan.
var ErrNotRestartFan = errors.New("mesh is not a restart-delimited triangle fan")

// ApplyTriangleFan converts a restart-delimited triangle fan into a triangle
// list over the same vertices. Each run between restarts becomes the
// triangles (run[0], run[i-1], run[i]); runs of fewer than three indices are
// skipped with a warning.
func ApplyTriangleFan[I Index](m *IndexedMesh[I]) (*IndexedMesh[I], error) {
	if m.Primitive != TriangleFan || !m.Restart.Enabled {
		return nil, fmt.Errorf("%w: primitive %s, restart %v", ErrNotRestartFan, m.Primitive, m.Restart.Enabled)
	}

	out := make([]I, 0, len(m.Indices)*3)
	emit := func(run []I, at int) {
		if len(run) == 0 {
			return
		}
		if len(run) < 3 {
			logger.Warn("skipping degenerate fan",
				zap.Int("position", at),
				zap.Int("vertices", len(run)))
			return
		}
		for i := 2; i < len(run); i++ {
			out = append(out, run[0], run[i-1], run[i])
		}
	}

	start := 0
	for i, idx := range m.Indices {
		if m.Restart.Is(idx) {
			emit(m.Indices[start:i], start)
			start = i + 1
		}
	}
	emit(m.Indices[start:], start)

	return &IndexedMesh[I]{
		Indices:   out,
		Primitive: Triangles,
		Vertices:  m.Vertices.Clone(),
	}, nil
}
