package vertex

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
)

// Layout errors.
var (
	ErrInvalidType  = errors.New("invalid component type")
	ErrInvalidCount = errors.New("invalid component count")
	ErrInvalidCast  = errors.New("invalid cast for component type")
)

// NoLocation marks an attribute without a binding location.
const NoLocation int32 = -1

// Attribute describes one named attribute inside an interleaved vertex.
type Attribute struct {
	Name     string
	Offset   int // byte offset inside the vertex
	Count    int // number of components
	Type     ComponentType
	Cast     CastMode
	Location int32 // NoLocation when unbound
}

// Size returns the byte size of the attribute.
func (a Attribute) Size() int {
	return a.Type.AttributeSize(a.Count)
}

// HasLocation reports whether a binding location is assigned.
func (a Attribute) HasLocation() bool {
	return a.Location >= 0
}

// Layout is an ordered, tightly packed list of attributes.
// The zero value is an empty layout ready for use.
type Layout struct {
	attrs  []Attribute
	stride int
}

// Append validates and appends an attribute at the current stride.
func (l *Layout) Append(name string, count int, t ComponentType, cast CastMode, location int32) error {
	if t.Category() == CategoryInvalid {
		return fmt.Errorf("%w: %s", ErrInvalidType, t)
	}
	if !t.ValidCount(count) {
		return fmt.Errorf("%w: %d components of %s", ErrInvalidCount, count, t)
	}
	if cast == CastDefault {
		cast = DefaultCast(t)
	}
	if !ValidCast(t, cast) {
		return fmt.Errorf("%w: %s as %s", ErrInvalidCast, t, cast)
	}
	if t == Double && cast == CastFloat {
		logger.Warn("double attribute read as float; conversion costs performance",
			zap.String("attribute", name))
	}
	if location < 0 {
		location = NoLocation
	}

	a := Attribute{
		Name:     name,
		Offset:   l.stride,
		Count:    count,
		Type:     t,
		Cast:     cast,
		Location: location,
	}
	// Layouts are values; never grow a backing array another copy may share.
	n := len(l.attrs)
	l.attrs = append(l.attrs[:n:n], a)
	l.stride += a.Size()
	return nil
}

// Add appends an unbound attribute with the default cast for its type.
func (l *Layout) Add(name string, count int, t ComponentType) error {
	return l.Append(name, count, t, CastDefault, NoLocation)
}

// MustAdd is like Add but panics on an invalid attribute.
// It returns the layout to allow chaining.
func (l *Layout) MustAdd(name string, count int, t ComponentType) *Layout {
	if err := l.Add(name, count, t); err != nil {
		panic(err)
	}
	return l
}

// Stride returns the byte size of one vertex.
func (l Layout) Stride() int {
	return l.stride
}

// Len returns the number of attributes.
func (l Layout) Len() int {
	return len(l.attrs)
}

// Attribute returns the i-th attribute.
func (l Layout) Attribute(i int) Attribute {
	return l.attrs[i]
}

// Attributes returns a copy of the attribute list.
func (l Layout) Attributes() []Attribute {
	out := make([]Attribute, len(l.attrs))
	copy(out, l.attrs)
	return out
}

// Find returns the first attribute with the given name.
func (l Layout) Find(name string) (Attribute, bool) {
	for _, a := range l.attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Concat returns a new layout with other's attributes appended after l's.
// Neither operand is modified.
func (l Layout) Concat(other Layout) Layout {
	out := Layout{
		attrs:  make([]Attribute, 0, len(l.attrs)+len(other.attrs)),
		stride: l.stride + other.stride,
	}
	out.attrs = append(out.attrs, l.attrs...)
	for _, a := range other.attrs {
		a.Offset += l.stride
		out.attrs = append(out.attrs, a)
	}
	return out
}

// Extend appends other's attributes to l in place.
func (l *Layout) Extend(other Layout) {
	*l = l.Concat(other)
}

// AssignDefaultLocations binds attributes to locations 0..n-1 in order.
func (l *Layout) AssignDefaultLocations() {
	l.attrs = l.Attributes()
	for i := range l.attrs {
		l.attrs[i].Location = int32(i)
	}
}

// AssignLocations binds each attribute to the location reported by lookup.
// Attributes lookup does not know keep NoLocation. It returns the number of
// attributes that were bound.
func (l *Layout) AssignLocations(lookup func(name string) (int32, bool)) int {
	l.attrs = l.Attributes()
	bound := 0
	for i := range l.attrs {
		loc, ok := lookup(l.attrs[i].Name)
		if !ok || loc < 0 {
			l.attrs[i].Location = NoLocation
			continue
		}
		l.attrs[i].Location = loc
		bound++
	}
	return bound
}

// Equal reports whether both layouts have identical attributes and stride.
func (l Layout) Equal(other Layout) bool {
	if l.stride != other.stride || len(l.attrs) != len(other.attrs) {
		return false
	}
	for i := range l.attrs {
		if l.attrs[i] != other.attrs[i] {
			return false
		}
	}
	return true
}

// String returns a compact description such as
// "position:3xFLOAT@0 texcoord:2xFLOAT@12 (stride 20)".
func (l Layout) String() string {
	var sb strings.Builder
	for i, a := range l.attrs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		fmt.Fprintf(&sb, "%s:%dx%s@%d", name, a.Count, a.Type, a.Offset)
		if a.Cast != DefaultCast(a.Type) {
			fmt.Fprintf(&sb, "/%s", a.Cast)
		}
	}
	fmt.Fprintf(&sb, " (stride %d)", l.stride)
	return sb.String()
}
