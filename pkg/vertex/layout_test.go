package vertex

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/meshkit/internal/logger"
)

func positionLayout() Layout {
	var l Layout
	l.MustAdd("position", 3, Float)
	return l
}

func texCoordLayout() Layout {
	var l Layout
	l.MustAdd("texcoord", 2, Float)
	return l
}

func colorLayout() Layout {
	var l Layout
	l.MustAdd("color", 4, UnsignedByte)
	return l
}

func TestLayoutAppendOffsets(t *testing.T) {
	var l Layout
	l.MustAdd("position", 3, Float).
		MustAdd("normal", 4, Int2_10_10_10Rev).
		MustAdd("color", 4, UnsignedByte).
		MustAdd("weight", 1, Double)

	wantOffsets := []int{0, 12, 16, 20}
	for i, want := range wantOffsets {
		if got := l.Attribute(i).Offset; got != want {
			t.Errorf("attribute %d: expected offset %d, got %d", i, want, got)
		}
	}
	if l.Stride() != 28 {
		t.Errorf("expected stride 28, got %d", l.Stride())
	}
}

func TestLayoutStrideIsSumOfSizes(t *testing.T) {
	var l Layout
	l.MustAdd("a", 1, Byte).
		MustAdd("b", 3, Short).
		MustAdd("c", 2, HalfFloat).
		MustAdd("d", 3, UnsignedInt10F11F11FRev).
		MustAdd("e", 2, Double)

	sum := 0
	for _, a := range l.Attributes() {
		sum += a.Size()
	}
	if sum != l.Stride() {
		t.Errorf("stride %d != sum of sizes %d", l.Stride(), sum)
	}
	if l.Stride() != 1+6+4+4+16 {
		t.Errorf("unexpected stride %d", l.Stride())
	}
}

func TestLayoutDefaultCasts(t *testing.T) {
	tests := []struct {
		typ  ComponentType
		want CastMode
	}{
		{Float, CastFloat},
		{HalfFloat, CastFloat},
		{Fixed, CastFloat},
		{Double, CastDouble},
		{Byte, CastNormalizedFloat},
		{UnsignedShort, CastNormalizedFloat},
		{UnsignedInt, CastNormalizedFloat},
		{Int2_10_10_10Rev, CastNormalizedFloat},
		{UnsignedInt10F11F11FRev, CastNormalizedFloat},
	}

	for _, tc := range tests {
		if got := DefaultCast(tc.typ); got != tc.want {
			t.Errorf("DefaultCast(%s) = %s, want %s", tc.typ, got, tc.want)
		}
	}
}

func TestValidCast(t *testing.T) {
	tests := []struct {
		typ  ComponentType
		cast CastMode
		ok   bool
	}{
		{Float, CastFloat, true},
		{Float, CastNormalizedFloat, false},
		{Float, CastInt, false},
		{Float, CastDouble, false},
		{Double, CastDouble, true},
		{Double, CastFloat, true},
		{Double, CastInt, false},
		{Short, CastFloat, true},
		{Short, CastNormalizedFloat, true},
		{Short, CastInt, true},
		{Short, CastDouble, false},
		{UnsignedInt2_10_10_10Rev, CastFloat, true},
		{UnsignedInt2_10_10_10Rev, CastNormalizedFloat, true},
		{UnsignedInt2_10_10_10Rev, CastInt, false},
		{Int2_10_10_10Rev, CastInt, false},
	}

	for _, tc := range tests {
		if got := ValidCast(tc.typ, tc.cast); got != tc.ok {
			t.Errorf("ValidCast(%s, %s) = %v, want %v", tc.typ, tc.cast, got, tc.ok)
		}
	}
}

func TestLayoutRejectsPackedIntCast(t *testing.T) {
	var l Layout
	err := l.Append("normal", 4, Int2_10_10_10Rev, CastInt, NoLocation)
	if !errors.Is(err, ErrInvalidCast) {
		t.Fatalf("expected ErrInvalidCast, got %v", err)
	}
	if l.Len() != 0 || l.Stride() != 0 {
		t.Error("rejected attribute must not change the layout")
	}

	if err := l.Append("normal", 4, Int2_10_10_10Rev, CastNormalizedFloat, NoLocation); err != nil {
		t.Errorf("normalized cast rejected: %v", err)
	}
	if err := l.Append("tangent", 4, Int2_10_10_10Rev, CastFloat, NoLocation); err != nil {
		t.Errorf("float cast rejected: %v", err)
	}
}

func TestLayoutRejectsBadCounts(t *testing.T) {
	tests := []struct {
		typ   ComponentType
		count int
	}{
		{Float, 0},
		{Float, 5},
		{Int2_10_10_10Rev, 3},
		{UnsignedInt2_10_10_10Rev, 2},
		{UnsignedInt10F11F11FRev, 4},
	}
	for _, tc := range tests {
		var l Layout
		if err := l.Add("x", tc.count, tc.typ); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("%d x %s: expected ErrInvalidCount, got %v", tc.count, tc.typ, err)
		}
	}

	var l Layout
	if err := l.Add("x", 1, ComponentType(99)); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestMustAddPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	var l Layout
	l.MustAdd("bad", 7, Float)
}

func TestDoubleAsFloatWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	var l Layout
	if err := l.Append("height", 1, Double, CastFloat, NoLocation); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("expected 1 performance warning, got %d", logs.Len())
	}
}

func TestLayoutConcat(t *testing.T) {
	pos := positionLayout()
	uv := texCoordLayout()

	combined := pos.Concat(uv)
	if combined.Len() != 2 {
		t.Fatalf("expected 2 attributes, got %d", combined.Len())
	}
	if combined.Stride() != 20 {
		t.Errorf("expected stride 20, got %d", combined.Stride())
	}
	if off := combined.Attribute(1).Offset; off != 12 {
		t.Errorf("expected texcoord offset 12, got %d", off)
	}

	// Operands are untouched.
	if uv.Attribute(0).Offset != 0 || pos.Len() != 1 {
		t.Error("Concat modified its operands")
	}
}

func TestLayoutConcatAssociative(t *testing.T) {
	a, b, c := positionLayout(), texCoordLayout(), colorLayout()

	left := a.Concat(b).Concat(c)
	right := a.Concat(b.Concat(c))

	if !left.Equal(right) {
		t.Errorf("(A+B)+C != A+(B+C):\n%s\n%s", left, right)
	}
	if left.Stride() != a.Stride()+b.Stride()+c.Stride() {
		t.Errorf("unexpected stride %d", left.Stride())
	}
}

func TestLayoutExtend(t *testing.T) {
	l := positionLayout()
	l.Extend(texCoordLayout())
	l.Extend(colorLayout())

	want := positionLayout().Concat(texCoordLayout()).Concat(colorLayout())
	if !l.Equal(want) {
		t.Errorf("Extend mismatch:\n%s\n%s", l, want)
	}
}

func TestLayoutCopiesDoNotAlias(t *testing.T) {
	base := positionLayout()
	a := base
	b := base
	a.MustAdd("normal", 3, Float)
	b.MustAdd("texcoord", 2, Float)

	if a.Attribute(1).Name != "normal" || b.Attribute(1).Name != "texcoord" {
		t.Error("appending to a copy changed another copy")
	}

	b.AssignDefaultLocations()
	if base.Attribute(0).HasLocation() {
		t.Error("assigning locations on a copy changed the original")
	}
}

func TestAssignDefaultLocations(t *testing.T) {
	l := positionLayout().Concat(texCoordLayout()).Concat(colorLayout())
	for _, a := range l.Attributes() {
		if a.HasLocation() {
			t.Fatalf("%s: expected no location before assignment", a.Name)
		}
	}

	l.AssignDefaultLocations()
	for i, a := range l.Attributes() {
		if a.Location != int32(i) {
			t.Errorf("%s: expected location %d, got %d", a.Name, i, a.Location)
		}
	}
}

func TestAssignLocations(t *testing.T) {
	l := positionLayout().Concat(texCoordLayout()).Concat(colorLayout())
	reflected := map[string]int32{"position": 3, "color": 0}

	bound := l.AssignLocations(func(name string) (int32, bool) {
		loc, ok := reflected[name]
		return loc, ok
	})
	if bound != 2 {
		t.Errorf("expected 2 bound attributes, got %d", bound)
	}

	pos, _ := l.Find("position")
	uv, _ := l.Find("texcoord")
	col, _ := l.Find("color")
	if pos.Location != 3 || col.Location != 0 {
		t.Errorf("unexpected locations: position=%d color=%d", pos.Location, col.Location)
	}
	if uv.HasLocation() {
		t.Error("texcoord should stay unbound")
	}
}

func TestLayoutString(t *testing.T) {
	l := positionLayout().Concat(texCoordLayout())
	want := "position:3xFLOAT@0 texcoord:2xFLOAT@12 (stride 20)"
	if got := l.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
