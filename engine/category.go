package engine

import "github.com/Carmen-Shannon/usdscene/object"

// categoryFor mirrors usdwriter's unexported categoryFor (spec §3's
// category subpaths: "worlds, instances, groups, surfaces, geometries,
// spatialfields, materials, samplers, cameras, lights" beneath both
// "/RootClass" and "/Root"; KindVolume additionally maps to "volumes"). Duplicated here rather than exported from
// usdwriter because it is the engine facade, not the writer, that decides
// which kinds go through the prim cache at all (KindRenderer and
// KindFrame deliberately do not; KindDataArray never backs a prim).
func categoryFor(k object.Kind) (category string, ok bool) {
	switch k {
	case object.KindWorld:
		return "worlds", true
	case object.KindInstance:
		return "instances", true
	case object.KindGroup:
		return "groups", true
	case object.KindSurface:
		return "surfaces", true
	case object.KindVolume:
		return "volumes", true
	case object.KindSpatialField:
		return "spatialfields", true
	case object.KindGeometry:
		return "geometries", true
	case object.KindMaterial:
		return "materials", true
	case object.KindSampler:
		return "samplers", true
	case object.KindCamera:
		return "cameras", true
	case object.KindLight:
		return "lights", true
	default:
		return "", false
	}
}
