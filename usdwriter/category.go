package usdwriter

import "github.com/Carmen-Shannon/usdscene/object"

// categoryFor returns the entity-category subpath spec §3 names ("worlds",
// "instances", "groups", "surfaces", "geometries", "spatialfields",
// "materials", "samplers", "cameras", "lights"; KindVolume additionally
// maps to "volumes") for kind. KindDataArray,
// KindFrame and KindRenderer have no persistent prim category: arrays are
// never prims, frames are a pure client-facing grouping object, and
// renderers live directly under "/Root/renderers" rather than through the
// prim cache (spec's render-settings-passthrough supplement).
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
