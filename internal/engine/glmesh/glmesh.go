package glmesh

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Mesh is an indexed mesh resident in GPU buffers.
// Requires a current OpenGL context for every method.
type Mesh struct {
	vao, vbo, ebo uint32

	mode       uint32
	indexType  uint32
	indexCount int32

	restart      bool
	restartIndex uint32
}

// Upload copies m into a new VAO. Attributes must have locations assigned
// (see vertex.Layout.AssignLocations); unbound attributes are not enabled.
func Upload[I mesh.Index](m *mesh.IndexedMesh[I]) (*Mesh, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	mode, err := Primitive(m.Primitive)
	if err != nil {
		return nil, err
	}
	pointers, err := attribPointers(m.Vertices.Layout)
	if err != nil {
		return nil, err
	}
	if len(m.Indices) == 0 || len(m.Vertices.Data) == 0 {
		return nil, ErrEmptyMesh
	}

	g := &Mesh{
		mode:         mode,
		indexType:    IndexType[I](),
		indexCount:   int32(len(m.Indices)),
		restart:      m.Restart.Enabled,
		restartIndex: uint32(m.Restart.Index),
	}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices.Data), gl.Ptr(m.Vertices.Data), gl.STATIC_DRAW)

	for _, p := range pointers {
		switch p.Kind {
		case pointerInteger:
			gl.VertexAttribIPointer(p.Location, p.Size, p.Type, p.Stride, gl.PtrOffset(int(p.Offset)))
		case pointerDouble:
			gl.VertexAttribLPointer(p.Location, p.Size, p.Type, p.Stride, gl.PtrOffset(int(p.Offset)))
		default:
			gl.VertexAttribPointerWithOffset(p.Location, p.Size, p.Type, p.Normalized, p.Stride, p.Offset)
		}
		gl.EnableVertexAttribArray(p.Location)
	}

	indexBytes := m.IndexBytes()
	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indexBytes), gl.Ptr(indexBytes), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	logger.Debug("mesh uploaded",
		zap.Uint32("vao", g.vao),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("indices", len(m.Indices)),
		zap.Int("attributes", len(pointers)),
		zap.Stringer("primitive", m.Primitive),
		zap.Bool("restart", g.restart))

	return g, nil
}

// Draw issues the indexed draw call, toggling primitive restart as needed.
func (g *Mesh) Draw() {
	if g.restart {
		gl.Enable(gl.PRIMITIVE_RESTART)
		gl.PrimitiveRestartIndex(g.restartIndex)
	}

	gl.BindVertexArray(g.vao)
	gl.DrawElements(g.mode, g.indexCount, g.indexType, nil)
	gl.BindVertexArray(0)

	if g.restart {
		gl.Disable(gl.PRIMITIVE_RESTART)
	}
}

// Delete releases the GPU buffers.
func (g *Mesh) Delete() {
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	g.vao, g.vbo, g.ebo = 0, 0, 0
}
