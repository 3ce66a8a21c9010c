package attrwrite

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/usdscene/usderr"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

func TestCopySameShape(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6}
	out, err := Dispatch(2, src, usdtype.FloatVec3, usdtype.VTFloat3)
	if err != nil {
		t.Fatal(err)
	}
	vals, ok := out.([][3]float32)
	if !ok {
		t.Fatalf("expected [][3]float32, got %T", out)
	}
	if vals[0] != [3]float32{1, 2, 3} || vals[1] != [3]float32{4, 5, 6} {
		t.Errorf("unexpected values: %v", vals)
	}
}

func TestConvertDifferentScalarKindSameComponents(t *testing.T) {
	src := []float64{1, 2, 3}
	out, err := Dispatch(1, src, usdtype.Int32Vec3, usdtype.VTFloat3)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.([3]float32); !ok {
		t.Fatalf("expected [3]float32, got %T", out)
	}
}

func TestExpandScalarToColor(t *testing.T) {
	src := []float64{0.5}
	out, err := Dispatch(1, src, usdtype.Float32, usdtype.VTColor4f)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := out.([4]float32)
	if !ok {
		t.Fatalf("expected [4]float32, got %T", out)
	}
	if v[0] != 0.5 || v[1] != 0 || v[2] != 0 || v[3] != 1 {
		t.Errorf("unexpected expand result: %v", v)
	}
}

func TestExpandNormalizeUint8ToColor(t *testing.T) {
	src := []float64{255, 128, 0}
	out, err := Dispatch(1, src, usdtype.Uint8Vec3, usdtype.VTColor4f)
	if err != nil {
		t.Fatal(err)
	}
	v := out.([4]float32)
	if v[0] != 1 {
		t.Errorf("expected channel 0 normalized to 1, got %v", v[0])
	}
	if v[3] != 1 {
		t.Errorf("expected alpha defaulted to 1, got %v", v[3])
	}
}

func TestSrgbDecodeToColor(t *testing.T) {
	src := []float64{1, 1, 1}
	out, err := Dispatch(1, src, usdtype.SrgbRGB, usdtype.VTColor4f)
	if err != nil {
		t.Fatal(err)
	}
	v := out.([4]float32)
	if math.Abs(float64(v[0]-1)) > 1e-4 {
		t.Errorf("fully-saturated sRGB channel should decode to ~1.0, got %v", v[0])
	}
	if v[3] != 1 {
		t.Errorf("alpha should default to 1 for a 3-component sRGB source, got %v", v[3])
	}
}

func TestShapeMismatchNeverLossy(t *testing.T) {
	src := []float64{1, 2, 3, 4}
	_, err := Dispatch(1, src, usdtype.DoubleVec4, usdtype.VTFloat)
	if err == nil {
		t.Fatal("expected ShapeMismatch for a lossy 4->1 component conversion")
	}
	if !errors.Is(err, usderr.ShapeMismatch) {
		t.Errorf("expected usderr.ShapeMismatch, got %v", err)
	}
}

func TestInvalidArgumentOnLengthMismatch(t *testing.T) {
	_, err := Dispatch(2, []float64{1, 2, 3}, usdtype.Float32, usdtype.VTFloat)
	if !errors.Is(err, usderr.InvalidArgument) {
		t.Errorf("expected usderr.InvalidArgument, got %v", err)
	}
}

func TestSizeOnlyAllocation(t *testing.T) {
	out, err := Dispatch(3, nil, usdtype.Float32, usdtype.VTFloat)
	if err != nil {
		t.Fatal(err)
	}
	vals, ok := out.([]float32)
	if !ok || len(vals) != 3 {
		t.Fatalf("expected a zeroed []float32 of length 3, got %#v", out)
	}
}

func TestQuaternionFromNormalIdentity(t *testing.T) {
	x, y, z, w := QuaternionFromNormal(0, 0, 1)
	if x != 0 || y != 0 || z != 0 || w != 1 {
		t.Errorf("expected identity quaternion for (0,0,1), got (%v,%v,%v,%v)", x, y, z, w)
	}
}

func TestQuaternionFromNormalOpposite(t *testing.T) {
	x, y, z, w := QuaternionFromNormal(0, 0, -1)
	len2 := x*x + y*y + z*z + w*w
	if math.Abs(float64(len2-1)) > 1e-3 {
		t.Errorf("expected a unit quaternion, got squared length %v", len2)
	}
	if w != 0 {
		t.Errorf("expected w=0 for a 180-degree rotation, got %v", w)
	}
}

func TestQuaternionFromNormalIsUnit(t *testing.T) {
	x, y, z, w := QuaternionFromNormal(1, 1, 1)
	len2 := x*x + y*y + z*z + w*w
	if math.Abs(float64(len2-1)) > 1e-3 {
		t.Errorf("expected a unit quaternion, got squared length %v", len2)
	}
}
