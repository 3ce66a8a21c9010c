package usdwriter

import (
	"testing"

	"github.com/Carmen-Shannon/usdscene/connection"
	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

func noSamplers(object.Handle) (*primcache.Entry, bool) { return nil, false }

func TestUpdateMaterialConstantChannelAuthorsBothGraphs(t *testing.T) {
	w := newTestWriter(t)
	entry, _ := w.Cache().FindOrCreate("materials", "red")

	pool := object.NewPool()
	obj := pool.Create(object.KindMaterial, object.TableFor(object.KindMaterial))
	color := usdtype.Array{Type: usdtype.FloatVec4, Flat: []float64{1, 0, 0, 1}}
	if _, _, err := obj.SetParam("color", usdtype.FloatVec4, color, pool); err != nil {
		t.Fatalf("set color: %v", err)
	}
	obj.Commit(pool)

	if err := w.UpdateMaterial(entry, obj, noSamplers, 0); err != nil {
		t.Fatalf("UpdateMaterial: %v", err)
	}

	surface, ok := w.Master().Lookup(entry.Path + "/PreviewSurface")
	if !ok {
		t.Fatal("expected PreviewSurface shader prim")
	}
	if _, ok := surface.Attribute("inputs:diffuseColor"); !ok {
		t.Error("expected constant diffuseColor authored on PreviewSurface")
	}
	mdl, ok := w.Master().Lookup(entry.Path + "/MDLShader")
	if !ok {
		t.Fatal("expected MDLShader prim")
	}
	if _, ok := mdl.Attribute("inputs:diffuseColor"); !ok {
		t.Error("expected constant diffuseColor authored on MDLShader")
	}
}

func TestUpdateMaterialAttributeBoundChannelAddsReader(t *testing.T) {
	w := newTestWriter(t)
	entry, _ := w.Cache().FindOrCreate("materials", "m2")

	pool := object.NewPool()
	obj := pool.Create(object.KindMaterial, object.TableFor(object.KindMaterial))
	if _, _, err := obj.SetParam("color.attribute", usdtype.Uint8, "vertex.color", pool); err != nil {
		t.Fatalf("set color.attribute: %v", err)
	}
	obj.Commit(pool)

	if err := w.UpdateMaterial(entry, obj, noSamplers, 0); err != nil {
		t.Fatalf("UpdateMaterial: %v", err)
	}

	reader, ok := w.Master().Lookup(entry.Path + "/diffuseColorReader")
	if !ok {
		t.Fatal("expected a primvar reader prim for the attribute-bound channel")
	}
	attr, ok := reader.Attribute("inputs:varname")
	if !ok || attr.Uniform != "vertex.color" {
		t.Errorf("reader varname = %v, want vertex.color", attr)
	}
}

func TestSamplerOutputNameByComponentCount(t *testing.T) {
	cases := map[int]string{1: "r", 2: "rg", 3: "rgb", 4: "rgb"}
	for n, want := range cases {
		if got := samplerOutputName(n); got != want {
			t.Errorf("samplerOutputName(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestUpdateMaterialSamplerAttachedConnectsOutputs(t *testing.T) {
	w := newTestWriter(t)
	matEntry, _ := w.Cache().FindOrCreate("materials", "textured")
	samplerEntry, _ := w.Cache().FindOrCreate("samplers", "albedo")
	w.Master().Root(samplerEntry.Path)

	pool := object.NewPool()
	obj := pool.Create(object.KindMaterial, object.TableFor(object.KindMaterial))
	samplerObj := pool.Create(object.KindSampler, object.TableFor(object.KindSampler))
	if _, _, err := obj.SetParam("color.sampler", usdtype.Int32, samplerObj.Handle(), pool); err != nil {
		t.Fatalf("set color.sampler: %v", err)
	}
	obj.Commit(pool)

	lookup := func(h object.Handle) (*primcache.Entry, bool) {
		if h == samplerObj.Handle() {
			return samplerEntry, true
		}
		return nil, false
	}

	if err := w.UpdateMaterial(matEntry, obj, lookup, 0); err != nil {
		t.Fatalf("UpdateMaterial: %v", err)
	}

	surface, ok := w.Master().Lookup(matEntry.Path + "/PreviewSurface")
	if !ok {
		t.Fatal("expected PreviewSurface shader prim")
	}
	rel, ok := surface.Relationship("inputs:diffuseColor")
	if !ok || len(rel.Targets) != 1 || rel.Targets[0] != samplerEntry.Path+".outputs:rgb" {
		t.Errorf("diffuseColor relationship = %v, want a connection to the sampler's rgb output", rel)
	}
}

func TestUpdateSamplerEncodesImageOncePerResourceKey(t *testing.T) {
	w := newTestWriter(t)
	entry, _ := w.Cache().FindOrCreate("samplers", "tex")

	pool := object.NewPool()
	obj := pool.CreateTyped(object.KindSampler, "2D", object.TableFor(object.KindSampler))
	img := usdtype.Array{Type: usdtype.Uint8Vec4, Flat: []float64{
		1, 0, 0, 1,
		0, 1, 0, 1,
	}}
	if _, _, err := obj.SetParam("image", usdtype.Uint8Vec4, img, pool); err != nil {
		t.Fatalf("set image: %v", err)
	}
	if _, _, err := obj.SetParam("imageWidth", usdtype.Int32, int32(2), pool); err != nil {
		t.Fatalf("set imageWidth: %v", err)
	}
	if _, _, err := obj.SetParam("imageHeight", usdtype.Int32, int32(1), pool); err != nil {
		t.Fatalf("set imageHeight: %v", err)
	}
	obj.Commit(pool)

	if err := w.UpdateSampler(entry, obj, 0); err != nil {
		t.Fatalf("UpdateSampler: %v", err)
	}
	if err := w.UpdateSampler(entry, obj, 0); err != nil {
		t.Fatalf("second UpdateSampler: %v", err)
	}

	stub := w.conn.(*connection.TestStub)
	writes := 0
	for _, call := range stub.Calls() {
		if call.Op == "WriteFile" && call.Path == w.sessionDir+"/images/tex.png" {
			writes++
		}
	}
	// The PNG is encoded and written at most once: the second UpdateSampler
	// call finds the resource registry already holding the (name, t) key and
	// skips straight to rewiring the asset path.
	if writes != 1 {
		t.Errorf("images/tex.png written %d times, want exactly 1", writes)
	}
	if _, ok := stub.File(w.sessionDir + "/images/tex.png"); !ok {
		t.Error("expected images/tex.png to have been written")
	}
}
