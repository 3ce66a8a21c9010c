package usdwriter

import (
	"testing"

	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

func lightObject(t *testing.T, subtype string, params map[string]any) *object.Object {
	t.Helper()
	pool := object.NewPool()
	obj := pool.CreateTyped(object.KindLight, subtype, object.TableFor(object.KindLight))
	for name, v := range params {
		typ := usdtype.Float32
		if _, ok := v.(usdtype.Array); ok {
			typ = usdtype.FloatVec3
		}
		if _, _, err := obj.SetParam(name, typ, v, pool); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	obj.Commit(pool)
	return obj
}

func TestUpdateLightDirectionalAuthorsDistantLight(t *testing.T) {
	w := newTestWriter(t)
	entry, _ := w.Cache().FindOrCreate("lights", "sun")
	obj := lightObject(t, "directional", map[string]any{
		"color":     usdtype.Array{Type: usdtype.FloatVec3, Flat: []float64{1, 1, 1}},
		"intensity": float32(2),
		"direction": usdtype.Array{Type: usdtype.FloatVec3, Flat: []float64{0, -1, 0}},
	})

	if err := w.UpdateLight(entry, obj, 0); err != nil {
		t.Fatalf("UpdateLight: %v", err)
	}

	prim, ok := w.Master().Lookup(entry.Path)
	if !ok {
		t.Fatal("expected light prim to exist")
	}
	if prim.TypeName != "DistantLight" {
		t.Errorf("TypeName = %q, want DistantLight", prim.TypeName)
	}
	if _, ok := prim.Attribute("xformOp:transform"); !ok {
		t.Error("expected xformOp:transform to be authored for a directional light")
	}
	intensityAttr, ok := prim.Attribute("inputs:intensity")
	if !ok {
		t.Fatal("expected inputs:intensity to be authored")
	}
	if v, _ := intensityAttr.Uniform.(float32); v != 2 {
		t.Errorf("inputs:intensity = %v, want 2", intensityAttr.Uniform)
	}
}

func TestUpdateLightPointAuthorsSphereLightWithRadius(t *testing.T) {
	w := newTestWriter(t)
	entry, _ := w.Cache().FindOrCreate("lights", "bulb")
	obj := lightObject(t, "point", map[string]any{
		"position": usdtype.Array{Type: usdtype.FloatVec3, Flat: []float64{1, 2, 3}},
		"radius":   float32(0.5),
	})

	if err := w.UpdateLight(entry, obj, 0); err != nil {
		t.Fatalf("UpdateLight: %v", err)
	}

	prim, ok := w.Master().Lookup(entry.Path)
	if !ok {
		t.Fatal("expected light prim to exist")
	}
	if prim.TypeName != "SphereLight" {
		t.Errorf("TypeName = %q, want SphereLight", prim.TypeName)
	}
	translate, ok := prim.Attribute("xformOp:translate")
	if !ok {
		t.Fatal("expected xformOp:translate to be authored")
	}
	if v, _ := translate.Uniform.([3]float32); v != ([3]float32{1, 2, 3}) {
		t.Errorf("xformOp:translate = %v, want (1,2,3)", translate.Uniform)
	}
	radius, ok := prim.Attribute("inputs:radius")
	if !ok {
		t.Fatal("expected inputs:radius to be authored")
	}
	if v, _ := radius.Uniform.(float32); v != 0.5 {
		t.Errorf("inputs:radius = %v, want 0.5", radius.Uniform)
	}
}

func TestUpdateLightDomeHasNoTransform(t *testing.T) {
	w := newTestWriter(t)
	entry, _ := w.Cache().FindOrCreate("lights", "env")
	obj := lightObject(t, "dome", map[string]any{
		"intensity": float32(1.25),
	})

	if err := w.UpdateLight(entry, obj, 0); err != nil {
		t.Fatalf("UpdateLight: %v", err)
	}

	prim, ok := w.Master().Lookup(entry.Path)
	if !ok {
		t.Fatal("expected light prim to exist")
	}
	if prim.TypeName != "DomeLight" {
		t.Errorf("TypeName = %q, want DomeLight", prim.TypeName)
	}
	if _, ok := prim.Attribute("xformOp:transform"); ok {
		t.Error("dome light should not author a transform")
	}
	if _, ok := prim.Attribute("xformOp:translate"); ok {
		t.Error("dome light should not author a translate op")
	}
}
