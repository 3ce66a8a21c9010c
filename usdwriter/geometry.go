package usdwriter

import (
	"math"

	"github.com/Carmen-Shannon/usdscene/attrwrite"
	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usdstage"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// geometryAttrBits names the data-member bitmask positions spec §4.4.4
// reads timeVaryingBits against for a geometry object (bit i gates
// whether attribute i is time-varying this commit).
const (
	bitPosition uint64 = 1 << iota
	bitNormal
	bitColor
	bitTexCoord
	bitIndex
	bitRadius
)

// UpdateGeometry drives the per-attribute updates for one geometry prim
// at timestep t (spec §4.4.5). subtype selects which family of derived
// data is computed: "sphere"/"cylinder"/"cone" convert point-pairs into
// point-instancer transforms, everything else (mesh/quad/triangle/curve)
// writes points/indices/normals/colors/texCoords directly, varying only
// in how faceVertexCounts (or curveVertexCounts) are derived.
func (w *Writer) UpdateGeometry(entry *primcache.Entry, obj *object.Object, t float64) error {
	rec := obj.Read()
	bits := timeVaryingBits(rec)

	master := w.master.Root(entry.Path)
	target := w.clipTarget(entry, t)

	w.ReconcileManifest(entry, bits, []string{"points", "normals", "primvars:color", "primvars:st", "positions", "scales", "orientations"})

	switch obj.Subtype() {
	case "sphere", "cylinder", "cone":
		master.TypeName = "PointInstancer"
		return w.updatePointInstancedGeometry(master, target, rec, bits, t, obj.Subtype())
	case "curve":
		master.TypeName = "BasisCurves"
		return w.updateMeshLikeGeometry(master, target, rec, bits, t, obj.Subtype())
	default:
		master.TypeName = "Mesh"
		return w.updateMeshLikeGeometry(master, target, rec, bits, t, obj.Subtype())
	}
}

// clipTarget returns the stage a time-varying attribute should be
// authored on at t: a per-timestep clip stage when PolicyTimeClipStages
// is selected, otherwise a single shared clip stage reused across every
// commit (spec §4.4.3).
func (w *Writer) clipTarget(entry *primcache.Entry, t float64) *usdstage.Prim {
	if !w.settings.ValueClipRetiming {
		return w.master.Root(entry.Path)
	}

	tc := primcache.Timecode(t)
	if w.settings.TimeVaryingPolicy == PolicySingleClipStage {
		tc = 0
	}

	raw, ok := w.cache.ClipStage(entry, tc)
	var layer *usdstage.Layer
	if ok {
		layer, _ = raw.(*usdstage.Layer)
	}
	if layer == nil {
		layer = usdstage.NewLayer(clipAssetPath(entry, tc))
		w.cache.SetClipStage(entry, tc, layer)
	}
	return layer.Root(entry.Path)
}

func clipAssetPath(entry *primcache.Entry, tc primcache.Timecode) string {
	if tc == 0 {
		return "clips/" + sanitizeName(entry.Name) + ".usda"
	}
	return "clips/" + sanitizeName(entry.Name) + "_" + formatTimecode(float64(tc)) + ".usda"
}

func formatTimecode(t float64) string {
	if t == math.Trunc(t) {
		return itoa(int64(t))
	}
	return ftoa(t)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}

func ftoa(f float64) string {
	return itoa(int64(f*1000)) // coarse but stable and dependency-free
}

// timeVaryingBits reads the "usd::timevarying" bitmask parameter clients
// set alongside the data it gates (spec §3/§6).
func timeVaryingBits(rec *object.Record) uint64 {
	v, ok := rec.Get("usd::timevarying")
	if !ok {
		return 0
	}
	b, _ := v.(uint64)
	return b
}

func arrayParam(rec *object.Record, name string) (usdtype.Array, bool) {
	v, ok := rec.Get(name)
	if !ok {
		return usdtype.Array{}, false
	}
	a, ok := v.(usdtype.Array)
	return a, ok
}

func (w *Writer) writeArrayAttr(master, target *usdstage.Prim, rec *object.Record, param, attrName string, bit uint64, bits uint64, t float64, dst usdtype.ValueType) error {
	arr, ok := arrayParam(rec, param)
	if !ok {
		return nil
	}
	return w.WriteAttribute(master, target, attrName, bits&bit != 0, t, arr.Count(), arr.Flat, arr.Type, dst)
}

// updateMeshLikeGeometry handles meshes, quads, triangles, and curves: all
// four author points/normals/colors/texCoords through the same path, and
// derive only faceVertexCounts (mesh/quad/triangle, a fixed count per
// primitive) or curveVertexCounts (curve, split whenever the index pairs
// are not contiguous) differently.
func (w *Writer) updateMeshLikeGeometry(master, target *usdstage.Prim, rec *object.Record, bits uint64, t float64, subtype string) error {
	if err := w.writeArrayAttr(master, target, rec, "vertex.position", "points", bitPosition, bits, t, usdtype.VTPoint3fArray); err != nil {
		return err
	}
	if err := w.writeArrayAttr(master, target, rec, "vertex.normal", "normals", bitNormal, bits, t, usdtype.VTNormal3fArray); err != nil {
		return err
	}
	if err := w.writeArrayAttr(master, target, rec, "vertex.color", "primvars:color", bitColor, bits, t, usdtype.VTColor4fArray); err != nil {
		return err
	}
	if err := w.writeArrayAttr(master, target, rec, "vertex.texcoord", "primvars:st", bitTexCoord, bits, t, usdtype.VTTexCoordArray); err != nil {
		return err
	}
	for i := 0; i < 16; i++ {
		name := "vertex.attribute" + itoa(int64(i))
		if _, ok := arrayParam(rec, name); ok {
			if err := w.writeArrayAttr(master, target, rec, name, "primvars:"+name, bitColor, bits, t, usdtype.VTFloat4Array); err != nil {
				return err
			}
		}
	}

	points, hasPoints := arrayParam(rec, "vertex.position")
	if err := w.writeExtent(master, target, points, hasPoints, bits&bitPosition != 0, t); err != nil {
		return err
	}

	if subtype == "curve" {
		segments, ok := arrayParam(rec, "primitive.segment")
		if !ok {
			return nil
		}
		varying := bits&bitIndex != 0
		counts := curveVertexCounts(segments)
		writeUniformOrVarying(master, target, "curveVertexCounts", "int[]", varying, t, counts)
		return w.writeArrayAttr(master, target, rec, "primitive.segment", "curveVertexIndices", bitIndex, bits, t, usdtype.VTIntArray)
	}

	indices, ok := arrayParam(rec, "primitive.index")
	if !ok {
		return nil
	}
	varying := bits&bitIndex != 0

	faceVertexCount := faceVertexCountFor(subtype)
	numPrims := len(indices.Flat) / int(faceVertexCount)
	counts := make([]int32, numPrims)
	for i := range counts {
		counts[i] = faceVertexCount
	}
	if varying {
		target.SetTimeSample("faceVertexCounts", "int[]", t, counts)
		master.ClearUniformValue("faceVertexCounts")
	} else {
		master.SetUniformAttribute("faceVertexCounts", "int[]", counts)
		target.ClearTimeSample("faceVertexCounts", t)
	}
	return w.writeArrayAttr(master, target, rec, "primitive.index", "faceVertexIndices", bitIndex, bits, t, usdtype.VTIntArray)
}

func faceVertexCountFor(subtype string) int32 {
	switch subtype {
	case "quad":
		return 4
	case "triangle":
		return 3
	default:
		return 3
	}
}

// curveVertexCounts walks index pairs and splits a new strip whenever the
// next pair's start does not continue the previous pair's end, per spec
// §4.4.5's curve rebuild rule.
func curveVertexCounts(indices usdtype.Array) []int32 {
	n := indices.Type.ComponentCount()
	if n != 2 || len(indices.Flat) < 2 {
		return nil
	}
	pairs := len(indices.Flat) / 2
	var counts []int32
	run := int32(0)
	var previousEnd float64 = math.NaN()
	for i := 0; i < pairs; i++ {
		start, end := indices.Flat[i*2], indices.Flat[i*2+1]
		if run > 0 && start != previousEnd {
			counts = append(counts, run+1)
			run = 0
		}
		run++
		previousEnd = end
	}
	if run > 0 {
		counts = append(counts, run+1)
	}
	return counts
}

// writeExtent computes the axis-aligned bounding box of the point span and
// authors it as the "extent" attribute (spec §4.4.5: "compute derived data
// if needed, e.g., extent bounds from point span").
func (w *Writer) writeExtent(master, target *usdstage.Prim, points usdtype.Array, has, varying bool, t float64) error {
	if !has || points.Type.ComponentCount() != 3 || len(points.Flat) < 3 {
		return nil
	}
	minV := [3]float32{float32(points.Flat[0]), float32(points.Flat[1]), float32(points.Flat[2])}
	maxV := minV
	for i := 1; i < points.Count(); i++ {
		for c := 0; c < 3; c++ {
			v := float32(points.Flat[i*3+c])
			if v < minV[c] {
				minV[c] = v
			}
			if v > maxV[c] {
				maxV[c] = v
			}
		}
	}
	value := [][3]float32{minV, maxV}
	if varying {
		target.SetTimeSample("extent", "float3[]", t, value)
		master.ClearUniformValue("extent")
	} else {
		master.SetUniformAttribute("extent", "float3[]", value)
		target.ClearTimeSample("extent", t)
	}
	return nil
}

// updatePointInstancedGeometry handles sphere, cylinder, and cone
// geometries, modeled as USD point instancers (spec §4.4.5). Every
// subtype shares the instancer topology fields a real UsdGeomPointInstancer
// needs to resolve: a single-shape "prototypes" relationship, zero-filled
// protoIndices (one prototype per instancer here), and stable per-instance
// "ids".
func (w *Writer) updatePointInstancedGeometry(master, target *usdstage.Prim, rec *object.Record, bits uint64, t float64, subtype string) error {
	if subtype == "sphere" {
		return w.updateSpherePointInstancer(master, target, rec, bits, t)
	}
	return w.updateSegmentPointInstancer(master, target, rec, bits, t, subtype)
}

// updateSpherePointInstancer authors sphere glyphs as instances of a unit
// Sphere prototype (spec §4.4.5/S2): positions pass through directly,
// per-instance scale is derived from whichever radius source the client
// provided (vertex.radius, primitive.radius indexed through
// primitive.index, or the scalar "radius" default), and, when
// primitive.index names only a subset of points, the gap points are
// reported as invisibleIds while ids stays stable across the full point
// count.
func (w *Writer) updateSpherePointInstancer(master, target *usdstage.Prim, rec *object.Record, bits uint64, t float64) error {
	points, ok := arrayParam(rec, "vertex.position")
	if !ok || points.Type.ComponentCount() != 3 {
		return nil
	}
	n := points.Count()

	w.writePointInstancerPrototype(master, "Sphere")

	if err := w.writeArrayAttr(master, target, rec, "vertex.position", "positions", bitPosition, bits, t, usdtype.VTPoint3fArray); err != nil {
		return err
	}

	scaleVarying := bits&(bitPosition|bitRadius) != 0
	writeUniformOrVarying(master, target, "scales", "float3[]", scaleVarying, t, sphereScales(rec, n))

	ids := geometryIDs(rec, n)
	master.SetUniformAttribute("ids", "int64[]", ids)
	master.SetUniformAttribute("protoIndices", "int[]", zeroProtoIndices(n))
	if invisible := sphereInvisibleIDs(rec, ids); len(invisible) > 0 {
		master.SetUniformAttribute("invisibleIds", "int64[]", invisible)
	}
	return nil
}

// updateSegmentPointInstancer handles cylinder and cone geometries: it
// indexes vertex.position through primitive.segment's (i0, i1) pairs and
// converts each resulting (p0, p1) into (midpoint, scale, orientation
// quaternion) per spec §4.4.5's construction: q = (cos(theta/2),
// axis*sin(theta/2)) via halfVec = normalize(segDir + (0,0,1)),
// substituting a 180-degree rotation about Y when halfVec degenerates to
// zero length.
func (w *Writer) updateSegmentPointInstancer(master, target *usdstage.Prim, rec *object.Record, bits uint64, t float64, subtype string) error {
	points, ok := arrayParam(rec, "vertex.position")
	if !ok || points.Type.ComponentCount() != 3 {
		return nil
	}
	segments, ok := arrayParam(rec, "primitive.segment")
	if !ok || segments.Type.ComponentCount() != 2 {
		return nil
	}
	n := segments.Count()

	shapeType := "Cylinder"
	if subtype == "cone" {
		shapeType = "Cone"
	}
	w.writePointInstancerPrototype(master, shapeType)

	positions := make([][3]float32, n)
	orientations := make([][4]float32, n)
	scales := make([][3]float32, n)

	for i := 0; i < n; i++ {
		i0 := int(segments.Flat[i*2])
		i1 := int(segments.Flat[i*2+1])
		p0 := [3]float32{float32(points.Flat[i0*3]), float32(points.Flat[i0*3+1]), float32(points.Flat[i0*3+2])}
		p1 := [3]float32{float32(points.Flat[i1*3]), float32(points.Flat[i1*3+1]), float32(points.Flat[i1*3+2])}
		mid, length, dir := segmentMidpointLengthDir(p0, p1)
		positions[i] = mid
		scales[i] = [3]float32{1, 1, length}
		qx, qy, qz, qw := attrwrite.QuaternionFromNormal(dir[0], dir[1], dir[2])
		orientations[i] = [4]float32{qw, qx, qy, qz}
	}

	varying := bits&bitPosition != 0
	writeUniformOrVarying(master, target, "positions", "point3f[]", varying, t, positions)
	writeUniformOrVarying(master, target, "orientations", "quath[]", varying, t, orientations)
	writeUniformOrVarying(master, target, "scales", "float3[]", varying, t, scales)

	ids := geometryIDs(rec, n)
	master.SetUniformAttribute("ids", "int64[]", ids)
	master.SetUniformAttribute("protoIndices", "int[]", zeroProtoIndices(n))
	return nil
}

// writePointInstancerPrototype ensures master has a single prototype child
// prim of the given USD schema type under Prototypes/<shapeType> and
// points master's "prototypes" relationship at it (spec §4.4.5: "modeled
// as point-instancers of a prototype shape").
func (w *Writer) writePointInstancerPrototype(master *usdstage.Prim, shapeType string) {
	protoPath := master.Path + "/Prototypes/" + shapeType
	proto := w.master.Root(protoPath)
	proto.TypeName = shapeType
	master.SetRelationship("prototypes", protoPath)
}

// geometryIDs returns the per-instance "ids" spec §4.4.5 calls for:
// primitive.id when the client supplied one matching n, otherwise the
// sequential 0..n-1 identity every UsdGeomPointInstancer needs.
func geometryIDs(rec *object.Record, n int) []int64 {
	ids := make([]int64, n)
	if idArr, ok := arrayParam(rec, "primitive.id"); ok && idArr.Count() == n {
		for i := range ids {
			ids[i] = int64(idArr.Flat[i])
		}
		return ids
	}
	for i := range ids {
		ids[i] = int64(i)
	}
	return ids
}

// zeroProtoIndices returns an all-zero protoIndices array: every instance
// indexes the instancer's single prototype (spec §4.4.5 registers exactly
// one shape per sphere/cylinder/cone geometry).
func zeroProtoIndices(n int) []int32 {
	return make([]int32, n)
}

// sphereScales derives each sphere instance's uniform (r, r, r) scale from
// whichever radius source is present, preferring the per-point
// vertex.radius, then primitive.radius indexed through primitive.index,
// and finally falling back to the scalar "radius" default (spec §4.4.5/S2:
// "UsdGeomPointInstancer scales = identical xyz").
func sphereScales(rec *object.Record, n int) [][3]float32 {
	scales := make([][3]float32, n)

	if vr, ok := arrayParam(rec, "vertex.radius"); ok && vr.Count() == n {
		for i := range scales {
			r := float32(vr.Flat[i])
			scales[i] = [3]float32{r, r, r}
		}
		return scales
	}

	if pr, ok := arrayParam(rec, "primitive.radius"); ok {
		if idx, ok := arrayParam(rec, "primitive.index"); ok && idx.Count() == pr.Count() {
			for i := 0; i < pr.Count(); i++ {
				pt := int(idx.Flat[i])
				if pt < 0 || pt >= n {
					continue
				}
				r := float32(pr.Flat[i])
				scales[pt] = [3]float32{r, r, r}
			}
			return scales
		}
	}

	r := float32Param(rec, "radius", 1)
	for i := range scales {
		scales[i] = [3]float32{r, r, r}
	}
	return scales
}

// sphereInvisibleIDs reports the ids of points primitive.index never
// references, when the client supplied sparse per-primitive indices (spec
// §4.4.5: "the writer expands per-primitive attributes into a dense
// per-point layout and authors invisibleIds for gap indices, preserving
// stable ids"). It returns nil when primitive.index is absent (every point
// is visible).
func sphereInvisibleIDs(rec *object.Record, ids []int64) []int64 {
	idx, ok := arrayParam(rec, "primitive.index")
	if !ok {
		return nil
	}
	present := make(map[int]bool, len(idx.Flat))
	for _, v := range idx.Flat {
		present[int(v)] = true
	}
	var invisible []int64
	for i, id := range ids {
		if !present[i] {
			invisible = append(invisible, id)
		}
	}
	return invisible
}

func segmentMidpointLengthDir(p0, p1 [3]float32) (mid [3]float32, length float32, dir [3]float32) {
	for c := 0; c < 3; c++ {
		mid[c] = (p0[c] + p1[c]) / 2
		dir[c] = p1[c] - p0[c]
	}
	length = float32(math.Sqrt(float64(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2])))
	if length > 0 {
		dir[0], dir[1], dir[2] = dir[0]/length, dir[1]/length, dir[2]/length
	}
	return mid, length, dir
}

func writeUniformOrVarying(master, target *usdstage.Prim, name, typeName string, varying bool, t float64, value any) {
	if varying {
		target.SetTimeSample(name, typeName, t, value)
		master.ClearUniformValue(name)
		return
	}
	master.SetUniformAttribute(name, typeName, value)
	target.ClearTimeSample(name, t)
}
