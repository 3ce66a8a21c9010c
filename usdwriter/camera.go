package usdwriter

import (
	"math"

	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usdstage"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// cameraAttrBits groups the camera data members the way the original
// bridge's TimeVarying mask does: view (position/direction/up) and
// projection (aspect/fovy/near/far) clear independently so retiming one
// doesn't disturb the other (spec §4.4.8).
const (
	bitCameraView uint64 = 1 << iota
	bitCameraProjection
)

// defaultVerticalApertureMM is the fixed vertical film-back size spec
// §4.4.8's GfCamera-style conversion solves focal length against: mirrors
// GfCamera::SetPerspectiveFromAspectRatioAndFieldOfView's FOVVertical mode
// (fix the aperture, derive focal length from the field of view, then
// derive horizontal aperture from the aspect ratio).
const defaultVerticalApertureMM = 24.0

// UpdateCamera authors a camera prim's placement transform and GfCamera-
// style projection attributes (spec §4.4.8): position/direction/up become
// a camera-to-world xformOp:transform, and aspect/fovy/near/far become
// horizontalAperture/verticalAperture/focalLength/clippingRange.
func (w *Writer) UpdateCamera(entry *primcache.Entry, obj *object.Object, t float64) error {
	rec := obj.Read()
	master := w.master.Root(entry.Path)
	master.TypeName = "Camera"
	target := w.clipTarget(entry, t)

	bits := timeVaryingBits(rec)
	viewVarying := bits&bitCameraView != 0
	projVarying := bits&bitCameraProjection != 0

	w.writeCameraTransform(master, target, rec, viewVarying, t)
	w.writeCameraProjection(master, target, rec, projVarying, t)
	return nil
}

// writeCameraTransform builds the camera-to-world placement matrix from
// position/direction/up the same way UpdateUsdCamera does: an orthonormal
// basis with worldZ along the reverse of the look direction, authored as a
// single xformOp:transform plus a fixed 0.01 scale op kept for viewport
// gizmo sizing (spec §4.4.8).
func (w *Writer) writeCameraTransform(master, target *usdstage.Prim, rec *object.Record, varying bool, t float64) {
	pos, _ := arrayParam(rec, "position")
	dir, _ := arrayParam(rec, "direction")
	up, _ := arrayParam(rec, "up")

	position := float32Vec3(pos)
	forward := float32Vec3(dir)
	worldUp := float32Vec3(up)

	worldZ := negate3(forward)
	worldX := normalize3(cross3(worldUp, worldZ))
	worldY := normalize3(cross3(worldZ, worldX))

	matrix := [4][4]float64{
		{float64(worldX[0]), float64(worldX[1]), float64(worldX[2]), 0},
		{float64(worldY[0]), float64(worldY[1]), float64(worldY[2]), 0},
		{float64(worldZ[0]), float64(worldZ[1]), float64(worldZ[2]), 0},
		{float64(position[0]), float64(position[1]), float64(position[2]), 1},
	}

	master.SetUniformAttribute("xformOpOrder", "token[]", []string{"xformOp:transform", "xformOp:scale"})
	writeUniformOrVarying(master, target, "xformOp:transform", usdtype.VTMatrix4d.Name, varying, t, matrix)
	master.SetUniformAttribute("xformOp:scale", "float3", [3]float32{0.01, 0.01, 0.01})
}

// writeCameraProjection derives USD's aperture/focalLength attributes from
// aspect/fovy the way GfCamera::SetPerspectiveFromAspectRatioAndFieldOfView
// does in FOVVertical mode (spec §4.4.8).
func (w *Writer) writeCameraProjection(master, target *usdstage.Prim, rec *object.Record, varying bool, t float64) {
	master.SetUniformAttribute("projection", "token", "perspective")

	aspect := float32Param(rec, "aspect", 1)
	fovy := float32Param(rec, "fovy", 0.6)
	near := float32Param(rec, "near", 0.01)
	far := float32Param(rec, "far", 1000)

	verticalAperture := float32(defaultVerticalApertureMM)
	focalLength := verticalAperture / (2 * float32(math.Tan(float64(fovy)/2)))
	horizontalAperture := verticalAperture * aspect

	writeUniformOrVarying(master, target, "horizontalAperture", "float", varying, t, horizontalAperture)
	writeUniformOrVarying(master, target, "verticalAperture", "float", varying, t, verticalAperture)
	writeUniformOrVarying(master, target, "focalLength", "float", varying, t, focalLength)
	writeUniformOrVarying(master, target, "clippingRange", "float2", varying, t, [2]float32{near, far})
}

func float32Param(rec *object.Record, name string, def float32) float32 {
	v, ok := rec.Get(name)
	if !ok {
		return def
	}
	f, ok := v.(float32)
	if !ok {
		return def
	}
	return f
}

func negate3(v [3]float32) [3]float32 {
	return [3]float32{-v[0], -v[1], -v[2]}
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize3(v [3]float32) [3]float32 {
	length := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if length == 0 {
		return v
	}
	return [3]float32{v[0] / length, v[1] / length, v[2] / length}
}
