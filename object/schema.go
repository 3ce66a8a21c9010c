package object

import (
	"github.com/Carmen-Shannon/usdscene/paramtable"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// schemas lazily builds and caches one paramtable.Table per Kind, the way
// paramtable.Registry is meant to be used: built once per process, shared
// by every Object of that Kind thereafter (spec §4.2: "a per-class,
// process-lifetime immutable table initialized on first use").
var schemas = paramtable.NewRegistry()

func init() {
	schemas.Define(KindWorld.String(), buildWorldTable)
	schemas.Define(KindInstance.String(), buildInstanceTable)
	schemas.Define(KindGroup.String(), buildGroupTable)
	schemas.Define(KindSurface.String(), buildSurfaceTable)
	schemas.Define(KindVolume.String(), buildVolumeTable)
	schemas.Define(KindSpatialField.String(), buildSpatialFieldTable)
	schemas.Define(KindGeometry.String(), buildGeometryTable)
	schemas.Define(KindMaterial.String(), buildMaterialTable)
	schemas.Define(KindSampler.String(), buildSamplerTable)
	schemas.Define(KindLight.String(), buildLightTable)
	schemas.Define(KindCamera.String(), buildCameraTable)
	schemas.Define(KindDataArray.String(), buildDataArrayTable)
	schemas.Define(KindFrame.String(), buildFrameTable)
	schemas.Define(KindRenderer.String(), buildRendererTable)
}

// TableFor returns the immutable, process-lifetime parameter schema for
// kind, building it on first use.
func TableFor(k Kind) *paramtable.Table { return schemas.For(k.String()) }

// withCommon registers the parameters every entity kind accepts (spec §6):
// a printable name, the time-varying bitmask, and the current commit
// timestep (plus the "usd::time" retiming exemption object.Record already
// special-cases).
func withCommon(b *paramtable.Builder) *paramtable.Builder {
	return b.
		Register("usd::name", "", usdtype.Uint8).
		Register("usd::timevarying", uint64(0), usdtype.Uint64).
		Register("usd::timestep", int32(0), usdtype.Int32).
		Register("usd::time", float64(0), usdtype.Float64)
}

func buildWorldTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("instance", []Handle(nil), usdtype.Int32).
		Register("surface", []Handle(nil), usdtype.Int32).
		Register("volume", []Handle(nil), usdtype.Int32).
		Register("light", []Handle(nil), usdtype.Int32).
		Build()
}

func buildInstanceTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("group", Handle(Nil), usdtype.Int32).
		Register("transform", usdtype.Array{}, usdtype.FloatMat4).
		Build()
}

func buildGroupTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("surface", []Handle(nil), usdtype.Int32).
		Register("volume", []Handle(nil), usdtype.Int32).
		Register("light", []Handle(nil), usdtype.Int32).
		Build()
}

func buildSurfaceTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("geometry", Handle(Nil), usdtype.Int32).
		Register("material", Handle(Nil), usdtype.Int32).
		Build()
}

func buildVolumeTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("field", Handle(Nil), usdtype.Int32).
		Register("valueRange", usdtype.Array{}, usdtype.FloatVec2).
		Build()
}

func buildSpatialFieldTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("data", usdtype.Array{}, usdtype.Float32, usdtype.Float64).
		Register("dimensions", usdtype.Array{}, usdtype.Int32Vec3).
		Register("origin", usdtype.Array{}, usdtype.FloatVec3).
		Register("spacing", usdtype.Array{}, usdtype.FloatVec3).
		Build()
}

func buildGeometryTable() *paramtable.Table {
	b := withCommon(paramtable.NewBuilder()).
		Register("vertex.position", usdtype.Array{}, usdtype.FloatVec3, usdtype.DoubleVec3).
		Register("vertex.normal", usdtype.Array{}, usdtype.FloatVec3).
		Register("vertex.color", usdtype.Array{}, usdtype.FloatVec4, usdtype.Uint8Vec4).
		Register("vertex.texcoord", usdtype.Array{}, usdtype.FloatVec2).
		Register("vertex.radius", usdtype.Array{}, usdtype.Float32).
		Register("primitive.index", usdtype.Array{}, usdtype.Int32, usdtype.Int32Vec3, usdtype.Int32Vec4).
		Register("primitive.segment", usdtype.Array{}, usdtype.Int32Vec2).
		Register("primitive.id", usdtype.Array{}, usdtype.Uint32, usdtype.Uint64).
		Register("primitive.radius", usdtype.Array{}, usdtype.Float32).
		Register("radius", float32(1), usdtype.Float32).
		RegisterArray("vertex.attribute", 16, usdtype.Array{}, usdtype.FloatVec4, usdtype.FloatVec2, usdtype.Float32)
	return b.Build()
}

func buildMaterialTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("color", usdtype.Array{}, usdtype.FloatVec4, usdtype.FloatVec3).
		Register("color.attribute", "", usdtype.Uint8).
		Register("color.sampler", Handle(Nil), usdtype.Int32).
		Register("opacity", float32(1), usdtype.Float32).
		Register("opacity.attribute", "", usdtype.Uint8).
		Register("opacity.sampler", Handle(Nil), usdtype.Int32).
		Register("metallic", float32(0), usdtype.Float32).
		Register("metallic.sampler", Handle(Nil), usdtype.Int32).
		Register("roughness", float32(1), usdtype.Float32).
		Register("roughness.sampler", Handle(Nil), usdtype.Int32).
		Register("ior", float32(1.5), usdtype.Float32).
		Register("emissive", usdtype.Array{}, usdtype.FloatVec3).
		Register("emissive.sampler", Handle(Nil), usdtype.Int32).
		Register("emissiveIntensity", float32(0), usdtype.Float32).
		Build()
}

func buildSamplerTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("image", usdtype.Array{}, usdtype.Uint8Vec4, usdtype.SrgbRGBA, usdtype.SrgbRGB).
		Register("imageWidth", int32(0), usdtype.Int32).
		Register("imageHeight", int32(0), usdtype.Int32).
		Register("inAttribute", "vertex.texcoord", usdtype.Uint8).
		Register("wrapMode1", "clampToEdge", usdtype.Uint8).
		Register("wrapMode2", "clampToEdge", usdtype.Uint8).
		Register("wrapMode3", "clampToEdge", usdtype.Uint8).
		Build()
}

func buildLightTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("color", usdtype.Array{}, usdtype.FloatVec3).
		Register("intensity", float32(1), usdtype.Float32).
		Register("position", usdtype.Array{}, usdtype.FloatVec3).
		Register("direction", usdtype.Array{}, usdtype.FloatVec3).
		Register("radius", float32(0), usdtype.Float32).
		Build()
}

func buildCameraTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("position", usdtype.Array{}, usdtype.FloatVec3).
		Register("direction", usdtype.Array{}, usdtype.FloatVec3).
		Register("up", usdtype.Array{}, usdtype.FloatVec3).
		Register("aspect", float32(1), usdtype.Float32).
		Register("fovy", float32(0.6), usdtype.Float32).
		Register("near", float32(0.01), usdtype.Float32).
		Register("far", float32(1000), usdtype.Float32).
		Build()
}

func buildDataArrayTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).Build()
}

func buildFrameTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("world", Handle(Nil), usdtype.Int32).
		Register("camera", Handle(Nil), usdtype.Int32).
		Register("renderer", Handle(Nil), usdtype.Int32).
		Build()
}

func buildRendererTable() *paramtable.Table {
	return withCommon(paramtable.NewBuilder()).
		Register("pixelSamples", int32(16), usdtype.Int32).
		Register("ambientOcclusion", false, usdtype.Bool).
		Register("backgroundColor", usdtype.Array{}, usdtype.FloatVec4).
		Build()
}
