package usdstage

import (
	"strings"
	"testing"
)

func TestRootCreatesIntermediatePrims(t *testing.T) {
	l := NewLayer("FullScene.usda")
	p := l.Root("/Root/geometries/Sphere_1")
	if p.Name() != "Sphere_1" {
		t.Fatalf("Name() = %q, want Sphere_1", p.Name())
	}

	root, ok := l.Lookup("/Root")
	if !ok {
		t.Fatal("expected /Root to be created implicitly")
	}
	geoms, ok := l.Lookup("/Root/geometries")
	if !ok {
		t.Fatal("expected /Root/geometries to be created implicitly")
	}
	if len(root.Children()) != 1 || root.Children()[0] != geoms {
		t.Error("/Root should have exactly one child, /Root/geometries")
	}
	if len(geoms.Children()) != 1 || geoms.Children()[0] != p {
		t.Error("/Root/geometries should have exactly one child, Sphere_1")
	}
}

func TestRootIsIdempotent(t *testing.T) {
	l := NewLayer("x.usda")
	p1 := l.Root("/Root/geometries/Sphere_1")
	p2 := l.Root("/Root/geometries/Sphere_1")
	if p1 != p2 {
		t.Error("Root should return the same prim for the same path")
	}
}

func TestRemoveDetachesFromParent(t *testing.T) {
	l := NewLayer("x.usda")
	l.Root("/Root/geometries/Sphere_1")
	parent, _ := l.Lookup("/Root/geometries")

	l.Remove("/Root/geometries/Sphere_1")

	if len(parent.Children()) != 0 {
		t.Error("parent should have no children after Remove")
	}
	if _, ok := l.Lookup("/Root/geometries/Sphere_1"); ok {
		t.Error("removed prim should no longer be found")
	}
}

func TestTimeSampleAttribute(t *testing.T) {
	l := NewLayer("x.usda")
	p := l.Root("/Root/geometries/Sphere_1")
	p.SetTimeSample("radius", "float", 0, float32(1.0))
	p.SetTimeSample("radius", "float", 1, float32(2.0))

	a, ok := p.Attribute("radius")
	if !ok || a.HasUniform {
		t.Fatal("radius should be a time-sampled (non-uniform) attribute")
	}
	if len(a.TimeSamples) != 2 {
		t.Fatalf("expected 2 time samples, got %d", len(a.TimeSamples))
	}
}

func TestWriteLayerProducesExpectedTokens(t *testing.T) {
	l := NewLayer("FullScene.usda")
	l.DefaultPrim = "Root"
	l.SetTimeCodeRange(0, 10)
	root := l.Root("/Root")
	root.Kind = "assembly"
	root.TypeName = ""

	mesh := l.Root("/Root/geometries/Sphere_1")
	mesh.TypeName = "UsdGeomMesh"
	mesh.SetUniformAttribute("primvars:displayColor", "color3f[]", [][3]float32{{1, 0, 0}})
	mesh.SetTimeSample("points", "point3f[]", 0, [][3]float32{{0, 0, 0}, {1, 1, 1}})

	ref := l.Root("/Root/instances/Inst_0")
	ref.AddReference(&Reference{AssetPath: "primstages/Sphere_1_Geom.usda", PrimPath: "/RootClass/geometries/Sphere_1"})

	out := string(WriteLayer(l))

	for _, want := range []string{
		"#usda 1.0",
		"defaultPrim = \"Root\"",
		"startTimeCode = 0",
		"endTimeCode = 10",
		"def \"Root\"",
		"kind = \"assembly\"",
		"def \"UsdGeomMesh\" \"Sphere_1\"",
		"color3f[] primvars:displayColor",
		"point3f[] points.timeSamples",
		"prepend references = @primstages/Sphere_1_Geom.usda@</RootClass/geometries/Sphere_1>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestValueClipMetadataIsWritten(t *testing.T) {
	l := NewLayer("x.usda")
	ref := l.Root("/Root/instances/Inst_0")
	ref.AddReference(&Reference{
		AssetPath: "clips/mesh_Geom_0.usda",
		PrimPath:  "/RootClass/geometries/mesh",
		Clip: &ClipSet{
			ManifestAssetPath: "manifests/mesh_Geom.usda",
			AssetPaths:        []string{"clips/mesh_Geom_0.usda", "clips/mesh_Geom_1.usda"},
			PrimPath:          "/RootClass/geometries/mesh",
			Active:            [][2]float64{{0, 0}, {1, 1}},
			Times:             [][2]float64{{0, 0}, {1, 1}},
		},
	})

	out := string(WriteLayer(l))
	for _, want := range []string{
		"clips = {",
		"manifestAssetPath = @manifests/mesh_Geom.usda@",
		"assetPaths = [@clips/mesh_Geom_0.usda@, @clips/mesh_Geom_1.usda@]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected clip metadata to contain %q, got:\n%s", want, out)
		}
	}
}

func TestSetVisibilityTimeSamples(t *testing.T) {
	l := NewLayer("x.usda")
	p := l.Root("/Root/instances/Inst_0")
	p.SetVisibility(0, Invisible)
	p.SetVisibility(1, Inherited)

	a, ok := p.Attribute("visibility")
	if !ok {
		t.Fatal("expected visibility attribute to be authored")
	}
	if a.TimeSamples[0] != string(Invisible) || a.TimeSamples[1] != string(Inherited) {
		t.Errorf("unexpected visibility samples: %+v", a.TimeSamples)
	}
}
