package usdwriter

import (
	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usdstage"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// lightAttrBits groups a light's data members the way the original
// bridge's per-light-type TimeVarying masks do: color/intensity clear
// independently from whichever placement attribute the light's subtype
// carries (direction for directional, position for point; spec §4.4.9).
const (
	bitLightColor uint64 = 1 << iota
	bitLightIntensity
	bitLightPlacement
)

// UpdateLight authors one of three UsdLux-style prims selected by
// obj.Subtype() (spec §4.4.9): "directional" (UsdLuxDistantLight, an
// xformOp:transform built the same way UpdateUsdLight builds a
// look-at view matrix for its direction), "point" (UsdLuxSphereLight,
// a translate op plus a radius), or "dome" (UsdLuxDomeLight, color and
// intensity only, no transform).
func (w *Writer) UpdateLight(entry *primcache.Entry, obj *object.Object, t float64) error {
	rec := obj.Read()
	master := w.master.Root(entry.Path)
	target := w.clipTarget(entry, t)
	bits := timeVaryingBits(rec)

	colorVarying := bits&bitLightColor != 0
	intensityVarying := bits&bitLightIntensity != 0
	placementVarying := bits&bitLightPlacement != 0

	switch obj.Subtype() {
	case "directional":
		master.TypeName = "DistantLight"
		w.writeLightCommon(master, target, rec, colorVarying, intensityVarying, t)
		w.writeDirectionalPlacement(master, target, rec, placementVarying, t)
	case "point":
		master.TypeName = "SphereLight"
		w.writeLightCommon(master, target, rec, colorVarying, intensityVarying, t)
		w.writePointPlacement(master, target, rec, placementVarying, t)
	default:
		master.TypeName = "DomeLight"
		w.writeLightCommon(master, target, rec, colorVarying, intensityVarying, t)
	}
	return nil
}

func (w *Writer) writeLightCommon(master, target *usdstage.Prim, rec *object.Record, colorVarying, intensityVarying bool, t float64) {
	if color, ok := arrayParam(rec, "color"); ok {
		writeUniformOrVarying(master, target, "inputs:color", "color3f", colorVarying, t, float32Vec3(color))
	}
	intensity := float32Param(rec, "intensity", 1)
	writeUniformOrVarying(master, target, "inputs:intensity", "float", intensityVarying, t, intensity)
}

// writeDirectionalPlacement points a distant light at "direction" the
// way UpdateUsdLight does: an eye at the origin looking along direction,
// with an approximate up vector orthogonalized by the same cross-product
// basis construction camera.go uses (spec §4.4.9).
func (w *Writer) writeDirectionalPlacement(master, target *usdstage.Prim, rec *object.Record, varying bool, t float64) {
	dir, _ := arrayParam(rec, "direction")
	forward := float32Vec3(dir)

	approxUp := [3]float32{0, 1, 0}
	if forward[1] > forward[0] {
		approxUp = [3]float32{1, 0, 0}
	}

	worldZ := negate3(forward)
	worldX := normalize3(cross3(approxUp, worldZ))
	worldY := normalize3(cross3(worldZ, worldX))

	matrix := [4][4]float64{
		{float64(worldX[0]), float64(worldX[1]), float64(worldX[2]), 0},
		{float64(worldY[0]), float64(worldY[1]), float64(worldY[2]), 0},
		{float64(worldZ[0]), float64(worldZ[1]), float64(worldZ[2]), 0},
		{0, 0, 0, 1},
	}

	master.SetUniformAttribute("xformOpOrder", "token[]", []string{"xformOp:transform"})
	writeUniformOrVarying(master, target, "xformOp:transform", usdtype.VTMatrix4d.Name, varying, t, matrix)
}

func (w *Writer) writePointPlacement(master, target *usdstage.Prim, rec *object.Record, varying bool, t float64) {
	pos, _ := arrayParam(rec, "position")
	position := float32Vec3(pos)

	master.SetUniformAttribute("xformOpOrder", "token[]", []string{"xformOp:translate"})
	writeUniformOrVarying(master, target, "xformOp:translate", "float3", varying, t, position)

	radius := float32Param(rec, "radius", 0)
	master.SetUniformAttribute("inputs:radius", "float", radius)
}
