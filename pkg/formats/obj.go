package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/mesh"
	"github.com/Faultbox/meshkit/pkg/vertex"
)

// OBJ format errors.
var (
	ErrOBJFieldCount        = errors.New("wrong number of OBJ coordinates")
	ErrOBJBadNumber         = errors.New("invalid OBJ number")
	ErrOBJBadFaceIndex      = errors.New("invalid OBJ face index")
	ErrOBJFaceFormatChanged = errors.New("OBJ face format changed")
	ErrOBJIndexRange        = errors.New("OBJ face references undefined element")
	ErrOBJNoObjects         = errors.New("OBJ file contains no objects")
)

// OBJFaceFormat is the multi-index grammar of face tokens.
type OBJFaceFormat uint8

// Face formats.
const (
	OBJFaceUnknown     OBJFaceFormat = iota
	OBJFaceV                         // v
	OBJFaceVT                        // v/vt
	OBJFaceVN                        // v//vn
	OBJFaceVTN                       // v/vt/vn
)

// String returns the face token grammar.
func (f OBJFaceFormat) String() string {
	switch f {
	case OBJFaceV:
		return "v"
	case OBJFaceVT:
		return "v/vt"
	case OBJFaceVN:
		return "v//vn"
	case OBJFaceVTN:
		return "v/vt/vn"
	default:
		return "unknown"
	}
}

// Arity returns the number of attribute streams the format references.
func (f OBJFaceFormat) Arity() int {
	switch f {
	case OBJFaceV:
		return 1
	case OBJFaceVT, OBJFaceVN:
		return 2
	case OBJFaceVTN:
		return 3
	default:
		return 0
	}
}

// HasTexCoords reports whether faces reference texture coordinates.
func (f OBJFaceFormat) HasTexCoords() bool {
	return f == OBJFaceVT || f == OBJFaceVTN
}

// HasNormals reports whether faces reference normals.
func (f OBJFaceFormat) HasNormals() bool {
	return f == OBJFaceVN || f == OBJFaceVTN
}

// OBJObject is one object group. Tuples holds zero-based index tuples of
// Format.Arity() entries, already triangulated into a triangle list.
// Corners keeps the untriangulated face tuples; FaceSizes[i] is the corner
// count of face i.
type OBJObject struct {
	Name      string
	Faces     int // faces as written in the file
	Tuples    []uint32
	Corners   []uint32
	FaceSizes []int
}

// Triangles returns the number of triangles in the object.
func (o *OBJObject) Triangles(arity int) int {
	if arity == 0 {
		return 0
	}
	return len(o.Tuples) / arity / 3
}

// OBJ is a parsed Wavefront OBJ file.
type OBJ struct {
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Normals   []mgl32.Vec3
	Format    OBJFaceFormat
	Objects   []OBJObject
}

// objParser holds line-oriented parse state.
type objParser struct {
	obj     *OBJ
	line    int
	current *OBJObject
}

// ParseOBJ parses OBJ text. Supported statements are v, vt, vn, f and o;
// other statements are skipped with a warning.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	p := &objParser{obj: &OBJ{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	p.closeObject()
	if err := p.obj.checkRanges(); err != nil {
		return nil, err
	}

	logger.Debug("parsed OBJ",
		zap.Int("positions", len(p.obj.Positions)),
		zap.Int("texcoords", len(p.obj.TexCoords)),
		zap.Int("normals", len(p.obj.Normals)),
		zap.Stringer("format", p.obj.Format),
		zap.Int("objects", len(p.obj.Objects)))

	return p.obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	obj, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

func (p *objParser) parseLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, "#") {
		logger.Debug("OBJ comment", zap.Int("line", p.line), zap.String("text", strings.TrimSpace(line[1:])))
		return nil
	}

	fields := strings.Fields(line)
	args := fields[1:]

	switch fields[0] {
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return fmt.Errorf("v: %w", err)
		}
		p.obj.Positions = append(p.obj.Positions, mgl32.Vec3{v[0], v[1], v[2]})

	case "vt":
		if len(args) > 2 {
			logger.Warn("ignoring extra texture coordinate dimensions",
				zap.Int("line", p.line), zap.Int("dimensions", len(args)))
			args = args[:2]
		}
		v, err := parseFloats(args, 2)
		if err != nil {
			return fmt.Errorf("vt: %w", err)
		}
		p.obj.TexCoords = append(p.obj.TexCoords, mgl32.Vec2{v[0], v[1]})

	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return fmt.Errorf("vn: %w", err)
		}
		p.obj.Normals = append(p.obj.Normals, mgl32.Vec3{v[0], v[1], v[2]})

	case "f":
		return p.parseFace(args)

	case "o":
		p.closeObject()
		p.current = &OBJObject{Name: strings.Join(args, " ")}

	default:
		logger.Warn("skipping unsupported OBJ statement",
			zap.Int("line", p.line), zap.String("statement", fields[0]))
	}
	return nil
}

// parseFace appends the face as a triangle fan flattened into the object's
// triangle list: corners 1..3 form the first triangle and every further
// corner k adds (first, k-1, k).
func (p *objParser) parseFace(tokens []string) error {
	if len(tokens) < 3 {
		logger.Warn("skipping degenerate face",
			zap.Int("line", p.line), zap.Int("vertices", len(tokens)))
		return nil
	}

	arity := 0
	corners := make([][3]uint32, len(tokens))
	for i, tok := range tokens {
		format, tuple, err := parseFaceToken(tok)
		if err != nil {
			return err
		}
		if p.obj.Format == OBJFaceUnknown {
			p.obj.Format = format
		} else if format != p.obj.Format {
			return fmt.Errorf("%w: %q is %s, file uses %s", ErrOBJFaceFormatChanged, tok, format, p.obj.Format)
		}
		arity = format.Arity()
		corners[i] = tuple
	}

	obj := p.object()
	for _, c := range corners {
		obj.Corners = append(obj.Corners, c[:arity]...)
	}
	obj.FaceSizes = append(obj.FaceSizes, len(corners))
	for k := range corners {
		if k >= 3 {
			obj.Tuples = append(obj.Tuples, corners[0][:arity]...)
			obj.Tuples = append(obj.Tuples, corners[k-1][:arity]...)
		}
		obj.Tuples = append(obj.Tuples, corners[k][:arity]...)
	}
	obj.Faces++
	return nil
}

// object returns the current object, opening an unnamed one for faces that
// precede any "o" statement.
func (p *objParser) object() *OBJObject {
	if p.current == nil {
		p.current = &OBJObject{}
	}
	return p.current
}

func (p *objParser) closeObject() {
	if p.current == nil {
		return
	}
	if p.current.Faces == 0 {
		logger.Debug("dropping OBJ object without faces", zap.String("name", p.current.Name))
	} else {
		p.obj.Objects = append(p.obj.Objects, *p.current)
	}
	p.current = nil
}

// parseFaceToken parses one of v, v/vt, v//vn, v/vt/vn into zero-based
// indices packed in stream order (position, then texcoord, then normal).
func parseFaceToken(tok string) (OBJFaceFormat, [3]uint32, error) {
	var tuple [3]uint32
	parts := strings.Split(tok, "/")

	var format OBJFaceFormat
	switch {
	case len(parts) == 1:
		format = OBJFaceV
	case len(parts) == 2 && parts[1] != "":
		format = OBJFaceVT
	case len(parts) == 3 && parts[1] == "" && parts[2] != "":
		format = OBJFaceVN
		parts = []string{parts[0], parts[2]}
	case len(parts) == 3 && parts[1] != "" && parts[2] != "":
		format = OBJFaceVTN
	default:
		return OBJFaceUnknown, tuple, fmt.Errorf("%w: %q", ErrOBJBadFaceIndex, tok)
	}

	for i, s := range parts {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil || v == 0 {
			return OBJFaceUnknown, tuple, fmt.Errorf("%w: %q", ErrOBJBadFaceIndex, tok)
		}
		tuple[i] = uint32(v - 1)
	}
	return format, tuple, nil
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrOBJFieldCount, len(args), n)
	}
	out := make([]float32, n)
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrOBJBadNumber, s)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// streamLens returns the element count of each stream the format references.
func (o *OBJ) streamLens() []int {
	lens := []int{len(o.Positions)}
	if o.Format.HasTexCoords() {
		lens = append(lens, len(o.TexCoords))
	}
	if o.Format.HasNormals() {
		lens = append(lens, len(o.Normals))
	}
	return lens
}

func (o *OBJ) checkRanges() error {
	lens := o.streamLens()
	arity := len(lens)
	for _, obj := range o.Objects {
		for i, idx := range obj.Tuples {
			if int(idx) >= lens[i%arity] {
				return fmt.Errorf("%w: object %q, index %d of %d", ErrOBJIndexRange, obj.Name, idx+1, lens[i%arity])
			}
		}
	}
	return nil
}

// Blocks returns one vertex block per stream the face format references,
// in tuple slot order.
func (o *OBJ) Blocks() []mesh.VertexBlock {
	var posLayout vertex.Layout
	posLayout.MustAdd(AttrPosition, 3, vertex.Float)
	pos := make([]byte, 0, len(o.Positions)*12)
	for _, v := range o.Positions {
		pos = mesh.PutFloats(pos, v[0], v[1], v[2])
	}
	blocks := []mesh.VertexBlock{{Layout: posLayout, Data: pos}}

	if o.Format.HasTexCoords() {
		var uvLayout vertex.Layout
		uvLayout.MustAdd(AttrTexCoord, 2, vertex.Float)
		uv := make([]byte, 0, len(o.TexCoords)*8)
		for _, v := range o.TexCoords {
			uv = mesh.PutFloats(uv, v[0], v[1])
		}
		blocks = append(blocks, mesh.VertexBlock{Layout: uvLayout, Data: uv})
	}

	if o.Format.HasNormals() {
		var nLayout vertex.Layout
		nLayout.MustAdd(AttrNormal, 3, vertex.Float)
		n := make([]byte, 0, len(o.Normals)*12)
		for _, v := range o.Normals {
			n = mesh.PutFloats(n, v[0], v[1], v[2])
		}
		blocks = append(blocks, mesh.VertexBlock{Layout: nLayout, Data: n})
	}
	return blocks
}

// MultiIndexedMesh returns object i as a triangle-list multi-indexed mesh
// with 32-bit indices.
func (o *OBJ) MultiIndexedMesh(i int) (*mesh.MultiIndexedMesh[uint32], error) {
	return OBJMultiIndexedMesh[uint32](o, i)
}

// OBJMultiIndexedMesh returns object i with indices of type I. It fails with
// mesh.ErrIndexOverflow if an index does not fit I.
func OBJMultiIndexedMesh[I mesh.Index](o *OBJ, i int) (*mesh.MultiIndexedMesh[I], error) {
	if i < 0 || i >= len(o.Objects) {
		return nil, fmt.Errorf("%w: object %d of %d", ErrOBJNoObjects, i, len(o.Objects))
	}
	obj := o.Objects[i]

	tuples := make([]I, len(obj.Tuples))
	limit := uint64(mesh.MaxIndex[I]())
	for j, v := range obj.Tuples {
		if uint64(v) > limit {
			return nil, fmt.Errorf("%w: OBJ index %d", mesh.ErrIndexOverflow, v+1)
		}
		tuples[j] = I(v)
	}

	return &mesh.MultiIndexedMesh[I]{
		Tuples:    tuples,
		Primitive: mesh.Triangles,
		Blocks:    o.Blocks(),
	}, nil
}

// OBJFanMesh returns object i with every face as a triangle fan, faces
// separated by the restart tuple (MaxIndex[I] in every slot). The restart
// value is reserved, so indices must stay below it.
func OBJFanMesh[I mesh.Index](o *OBJ, i int) (*mesh.MultiIndexedMesh[I], error) {
	if i < 0 || i >= len(o.Objects) {
		return nil, fmt.Errorf("%w: object %d of %d", ErrOBJNoObjects, i, len(o.Objects))
	}
	obj := o.Objects[i]
	arity := o.Format.Arity()
	restart := mesh.MaxIndex[I]()

	restartTuple := make([]I, arity)
	for j := range restartTuple {
		restartTuple[j] = restart
	}

	m := &mesh.MultiIndexedMesh[I]{
		Tuples:       make([]I, 0, len(obj.Corners)+len(obj.FaceSizes)*arity),
		Primitive:    mesh.TriangleFan,
		RestartTuple: restartTuple,
		Blocks:       o.Blocks(),
	}

	pos := 0
	for f, size := range obj.FaceSizes {
		if f > 0 {
			m.Append(restartTuple...)
		}
		for _, v := range obj.Corners[pos : pos+size*arity] {
			if uint64(v) >= uint64(restart) {
				return nil, fmt.Errorf("%w: OBJ index %d collides with restart %d", mesh.ErrIndexOverflow, v+1, restart)
			}
			m.Tuples = append(m.Tuples, I(v))
		}
		pos += size * arity
	}
	return m, nil
}

// BuildOBJMeshes unifies every object of o into an indexed mesh.
func BuildOBJMeshes[I mesh.Index](o *OBJ, opts mesh.IndexOptions[I]) ([]NamedMesh[I], error) {
	return buildOBJMeshes(o, opts, OBJMultiIndexedMesh[I])
}

// BuildOBJFanMeshes is like BuildOBJMeshes but keeps faces as
// restart-delimited triangle fans.
func BuildOBJFanMeshes[I mesh.Index](o *OBJ, opts mesh.IndexOptions[I]) ([]NamedMesh[I], error) {
	return buildOBJMeshes(o, opts, OBJFanMesh[I])
}

func buildOBJMeshes[I mesh.Index](o *OBJ, opts mesh.IndexOptions[I], build func(*OBJ, int) (*mesh.MultiIndexedMesh[I], error)) ([]NamedMesh[I], error) {
	if len(o.Objects) == 0 {
		return nil, ErrOBJNoObjects
	}
	out := make([]NamedMesh[I], 0, len(o.Objects))
	for i, obj := range o.Objects {
		multi, err := build(o, i)
		if err != nil {
			return nil, err
		}
		m, err := mesh.UnifyIndexBuffer(multi, opts)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", obj.Name, err)
		}
		out = append(out, NamedMesh[I]{Name: obj.Name, Mesh: m})
	}
	return out, nil
}

// LoadOBJMeshes parses an OBJ file and returns one unified mesh per object.
func LoadOBJMeshes[I mesh.Index](path string, opts mesh.IndexOptions[I]) ([]NamedMesh[I], error) {
	obj, err := ParseOBJFile(path)
	if err != nil {
		return nil, err
	}
	meshes, err := BuildOBJMeshes(obj, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meshes, nil
}

// LoadOBJMesh parses an OBJ file and returns its single object as a unified
// mesh. Files with several objects yield the first one.
func LoadOBJMesh[I mesh.Index](path string, opts mesh.IndexOptions[I]) (*mesh.IndexedMesh[I], error) {
	obj, err := ParseOBJFile(path)
	if err != nil {
		return nil, err
	}
	if len(obj.Objects) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrOBJNoObjects)
	}
	if len(obj.Objects) > 1 {
		logger.Warn("OBJ file has several objects, using the first",
			zap.String("path", path),
			zap.Int("objects", len(obj.Objects)),
			zap.String("name", obj.Objects[0].Name))
	}

	multi, err := OBJMultiIndexedMesh[I](obj, 0)
	if err != nil {
		return nil, err
	}
	return mesh.UnifyIndexBuffer(multi, opts)
}
