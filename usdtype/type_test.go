package usdtype

import "testing"

func TestByteSize(t *testing.T) {
	cases := []struct {
		typ  Type
		want int
	}{
		{Bool, 1},
		{Uint8, 1},
		{FloatVec3, 12},
		{FloatVec4, 16},
		{DoubleVec3, 24},
		{SrgbRGBA, 4},
		{IntPair, 8},
		{IntPair2, 16},
		{FloatMat4, 64},
		{FloatMat2x3, 24},
	}
	for _, c := range cases {
		if got := c.typ.ByteSize(); got != c.want {
			t.Errorf("%v.ByteSize() = %d, want %d", c.typ, got, c.want)
		}
	}
}

func TestFlatten(t *testing.T) {
	f := FloatVec4.Flatten()
	if f.ComponentCount() != 1 || f.Kind() != KindFloat32 {
		t.Errorf("Flatten() = %+v, want 1-component float32", f)
	}
}

func TestIsSRGBEncoded(t *testing.T) {
	if !SrgbRGBA.IsSRGBEncoded() {
		t.Error("SrgbRGBA should report IsSRGBEncoded")
	}
	if FloatVec4.IsSRGBEncoded() {
		t.Error("FloatVec4 should not report IsSRGBEncoded")
	}
}

func TestIntPairShape(t *testing.T) {
	pairs, ok := IntPair3.IsIntPair()
	if !ok || pairs != 3 {
		t.Errorf("IntPair3.IsIntPair() = (%d, %v), want (3, true)", pairs, ok)
	}
	if _, ok := FloatVec3.IsIntPair(); ok {
		t.Error("FloatVec3 should not be an int pair")
	}
}

func TestMatrixShape(t *testing.T) {
	rows, cols, ok := FloatMat3x4.IsMatrix()
	if !ok || rows != 3 || cols != 4 {
		t.Errorf("FloatMat3x4.IsMatrix() = (%d, %d, %v), want (3, 4, true)", rows, cols, ok)
	}
}

func TestDefaultValueTypeRoundTrip(t *testing.T) {
	v, err := DefaultValueType(FloatVec3)
	if err != nil {
		t.Fatalf("DefaultValueType(FloatVec3): %v", err)
	}
	if v.Name != "float3" {
		t.Errorf("DefaultValueType(FloatVec3).Name = %q, want float3", v.Name)
	}
	src, ok := DefaultSourceType(v)
	if !ok || src != FloatVec3 {
		t.Errorf("DefaultSourceType(%v) = (%v, %v), want (FloatVec3, true)", v, src, ok)
	}
}

func TestDefaultValueTypeUnknown(t *testing.T) {
	_, err := DefaultValueType(Type{})
	if err == nil {
		t.Fatal("expected UnknownTypeError for zero Type")
	}
	var utErr *UnknownTypeError
	if _, ok := err.(*UnknownTypeError); !ok {
		t.Errorf("got %T, want %T", err, utErr)
	}
}

func TestCheckShapeMismatch(t *testing.T) {
	err := CheckShape(DoubleVec4, VTFloat)
	if err == nil {
		t.Fatal("expected ShapeMismatchError narrowing vec4 -> scalar")
	}
}
