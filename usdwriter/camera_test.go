package usdwriter

import (
	"testing"

	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

func cameraObject(t *testing.T) *object.Object {
	t.Helper()
	pool := object.NewPool()
	obj := pool.Create(object.KindCamera, object.TableFor(object.KindCamera))
	pos := usdtype.Array{Type: usdtype.FloatVec3, Flat: []float64{0, 0, 5}}
	dir := usdtype.Array{Type: usdtype.FloatVec3, Flat: []float64{0, 0, -1}}
	up := usdtype.Array{Type: usdtype.FloatVec3, Flat: []float64{0, 1, 0}}
	if _, _, err := obj.SetParam("position", usdtype.FloatVec3, pos, pool); err != nil {
		t.Fatalf("set position: %v", err)
	}
	if _, _, err := obj.SetParam("direction", usdtype.FloatVec3, dir, pool); err != nil {
		t.Fatalf("set direction: %v", err)
	}
	if _, _, err := obj.SetParam("up", usdtype.FloatVec3, up, pool); err != nil {
		t.Fatalf("set up: %v", err)
	}
	if _, _, err := obj.SetParam("aspect", usdtype.Float32, float32(1.5), pool); err != nil {
		t.Fatalf("set aspect: %v", err)
	}
	obj.Commit(pool)
	return obj
}

func TestUpdateCameraAuthorsTransformAndProjection(t *testing.T) {
	w := newTestWriter(t)
	entry, _ := w.Cache().FindOrCreate("cameras", "main")
	obj := cameraObject(t)

	if err := w.UpdateCamera(entry, obj, 0); err != nil {
		t.Fatalf("UpdateCamera: %v", err)
	}

	prim, ok := w.Master().Lookup(entry.Path)
	if !ok {
		t.Fatal("expected camera prim to exist")
	}
	attr, ok := prim.Attribute("xformOp:transform")
	if !ok {
		t.Fatal("expected xformOp:transform to be authored")
	}
	m, ok := attr.Uniform.([4][4]float64)
	if !ok {
		t.Fatalf("xformOp:transform has unexpected type %T", attr.Uniform)
	}
	if m[3][0] != 0 || m[3][1] != 0 || m[3][2] != 5 {
		t.Errorf("translation row = %v, want camera position (0,0,5)", m[3])
	}

	hAttr, ok := prim.Attribute("horizontalAperture")
	if !ok {
		t.Fatal("expected horizontalAperture to be authored")
	}
	if v, _ := hAttr.Uniform.(float32); v <= 0 {
		t.Errorf("horizontalAperture = %v, want a positive value", hAttr.Uniform)
	}

	vAttr, _ := prim.Attribute("verticalAperture")
	if v, _ := vAttr.Uniform.(float32); v != defaultVerticalApertureMM {
		t.Errorf("verticalAperture = %v, want %v", vAttr.Uniform, defaultVerticalApertureMM)
	}
}

func TestCross3AndNormalize3(t *testing.T) {
	x := cross3([3]float32{0, 1, 0}, [3]float32{0, 0, -1})
	if x != ([3]float32{-1, 0, 0}) {
		t.Errorf("cross3 = %v, want (-1,0,0)", x)
	}
	n := normalize3([3]float32{0, 0, 2})
	if n != ([3]float32{0, 0, 1}) {
		t.Errorf("normalize3 = %v, want unit +z", n)
	}
	if z := normalize3([3]float32{0, 0, 0}); z != ([3]float32{0, 0, 0}) {
		t.Errorf("normalize3(zero) = %v, want zero vector left unchanged", z)
	}
}
