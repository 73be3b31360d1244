// Package vertex describes the memory layout of interleaved vertex buffers.
package vertex

import "fmt"

// ComponentType is the storage type of one attribute component.
type ComponentType uint8

// Component types. The packed types store all components of one attribute
// in a single 32-bit word.
const (
	Byte ComponentType = iota + 1
	UnsignedByte
	Short
	UnsignedShort
	Int
	UnsignedInt
	HalfFloat
	Float
	Fixed
	Double
	Int2_10_10_10Rev
	UnsignedInt2_10_10_10Rev
	UnsignedInt10F11F11FRev
)

// Category groups component types by which cast modes they accept.
type Category uint8

// Type categories.
const (
	CategoryInvalid Category = iota
	CategoryFloat            // single precision (and smaller) floats
	CategoryDouble
	CategoryInteger // not-packed integers
	CategoryPacked  // packed integer words
)

// String returns the GL-style name of the type.
func (t ComponentType) String() string {
	switch t {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case Int:
		return "INT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case HalfFloat:
		return "HALF_FLOAT"
	case Float:
		return "FLOAT"
	case Fixed:
		return "FIXED"
	case Double:
		return "DOUBLE"
	case Int2_10_10_10Rev:
		return "INT_2_10_10_10_REV"
	case UnsignedInt2_10_10_10Rev:
		return "UNSIGNED_INT_2_10_10_10_REV"
	case UnsignedInt10F11F11FRev:
		return "UNSIGNED_INT_10F_11F_11F_REV"
	default:
		return fmt.Sprintf("ComponentType(%d)", uint8(t))
	}
}

// Category returns the cast category of the type.
func (t ComponentType) Category() Category {
	switch t {
	case HalfFloat, Float, Fixed:
		return CategoryFloat
	case Double:
		return CategoryDouble
	case Byte, UnsignedByte, Short, UnsignedShort, Int, UnsignedInt:
		return CategoryInteger
	case Int2_10_10_10Rev, UnsignedInt2_10_10_10Rev, UnsignedInt10F11F11FRev:
		return CategoryPacked
	default:
		return CategoryInvalid
	}
}

// IsPacked reports whether the type stores a whole attribute in one word.
func (t ComponentType) IsPacked() bool {
	return t.Category() == CategoryPacked
}

// ComponentSize returns the size in bytes of a single component.
// Packed types return 0; use AttributeSize instead.
func (t ComponentType) ComponentSize() int {
	switch t {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort, HalfFloat:
		return 2
	case Int, UnsignedInt, Float, Fixed:
		return 4
	case Double:
		return 8
	default:
		return 0
	}
}

// AttributeSize returns the byte size of an attribute with count components.
func (t ComponentType) AttributeSize(count int) int {
	if t.IsPacked() {
		return 4
	}
	return t.ComponentSize() * count
}

// ValidCount reports whether count components are legal for the type.
func (t ComponentType) ValidCount(count int) bool {
	switch t {
	case Int2_10_10_10Rev, UnsignedInt2_10_10_10Rev:
		return count == 4
	case UnsignedInt10F11F11FRev:
		return count == 3
	default:
		return count >= 1 && count <= 4
	}
}

// CastMode is how the shader sees the stored components.
type CastMode uint8

// Cast modes. CastDefault is resolved by DefaultCast when an attribute is added.
const (
	CastDefault CastMode = iota
	CastFloat
	CastNormalizedFloat
	CastDouble
	CastInt
)

// String returns the cast mode name.
func (c CastMode) String() string {
	switch c {
	case CastDefault:
		return "DEFAULT"
	case CastFloat:
		return "FLOAT"
	case CastNormalizedFloat:
		return "NORMALIZED_FLOAT"
	case CastDouble:
		return "DOUBLE"
	case CastInt:
		return "INT"
	default:
		return fmt.Sprintf("CastMode(%d)", uint8(c))
	}
}

// DefaultCast returns the cast used when none is given: floats stay floats,
// doubles stay doubles and every integer type is normalized.
func DefaultCast(t ComponentType) CastMode {
	switch t.Category() {
	case CategoryFloat:
		return CastFloat
	case CategoryDouble:
		return CastDouble
	default:
		return CastNormalizedFloat
	}
}

// ValidCast reports whether the type may be read with the given cast.
func ValidCast(t ComponentType, c CastMode) bool {
	switch t.Category() {
	case CategoryFloat:
		return c == CastFloat
	case CategoryDouble:
		return c == CastDouble || c == CastFloat
	case CategoryInteger:
		return c == CastFloat || c == CastNormalizedFloat || c == CastInt
	case CategoryPacked:
		return c == CastFloat || c == CastNormalizedFloat
	default:
		return false
	}
}
