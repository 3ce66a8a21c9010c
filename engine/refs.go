package engine

import (
	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// World/Group array-of-handle bit positions, mirrored from
// usdwriter/geometry.go's geometryAttrBits convention (spec §4.4.4: "bit i
// gates whether data member i is time-varying this commit"), applied here
// to the reference-graph members buildWorldTable/buildGroupTable register
// in the same order.
const (
	bitWorldInstance uint64 = 1 << iota
	bitWorldSurface
	bitWorldVolume
	bitWorldLight
)

const (
	bitGroupSurface uint64 = 1 << iota
	bitGroupVolume
	bitGroupLight
)

const bitInstanceTransform uint64 = 1 << 0

// timeVaryingBits reads the "usd::timevarying" bitmask every kind accepts
// (spec §3/§6), duplicated from usdwriter's unexported helper of the same
// name since the writer does not export it and the facade needs it to
// decide how World/Group/Instance reference sets retime.
func timeVaryingBits(rec *object.Record) uint64 {
	v, ok := rec.Get("usd::timevarying")
	if !ok {
		return 0
	}
	b, _ := v.(uint64)
	return b
}

// materializeWorld re-authors a World's instance/surface/volume/light
// reference sets under its prim, per spec §4.4.2's addRef/manageUnusedRefs
// pattern for a world's direct children.
func (e *engine) materializeWorld(entry *primcache.Entry, obj *object.Object, t float64) error {
	rec := obj.Read()
	bits := timeVaryingBits(rec)

	for _, step := range []struct {
		param   string
		varying bool
	}{
		{"instance", bits&bitWorldInstance != 0},
		{"surface", bits&bitWorldSurface != 0},
		{"volume", bits&bitWorldVolume != 0},
		{"light", bits&bitWorldLight != 0},
	} {
		if err := e.materializeHandleArray(entry, rec, step.param, step.varying, t); err != nil {
			return err
		}
	}
	return nil
}

// materializeGroup is materializeWorld one level down: a Group holds its
// own surface/volume/light reference sets, reached via a World's instance
// -> group indirection.
func (e *engine) materializeGroup(entry *primcache.Entry, obj *object.Object, t float64) error {
	rec := obj.Read()
	bits := timeVaryingBits(rec)

	for _, step := range []struct {
		param   string
		varying bool
	}{
		{"surface", bits&bitGroupSurface != 0},
		{"volume", bits&bitGroupVolume != 0},
		{"light", bits&bitGroupLight != 0},
	} {
		if err := e.materializeHandleArray(entry, rec, step.param, step.varying, t); err != nil {
			return err
		}
	}
	return nil
}

// materializeInstance authors the single group reference (re-authored
// wholesale on every commit, like a surface's geometry/material bindings)
// plus the instance's own placement transform, time-varying only when the
// caller flagged bitInstanceTransform.
func (e *engine) materializeInstance(entry *primcache.Entry, obj *object.Object, t float64) error {
	rec := obj.Read()
	bits := timeVaryingBits(rec)

	if v, ok := rec.Get("group"); ok {
		if h, ok := v.(object.Handle); ok {
			if err := e.materializeRefSet(entry, []object.Handle{h}, "group", false, t); err != nil {
				return err
			}
		}
	}

	if v, ok := rec.Get("transform"); ok {
		if a, ok := v.(usdtype.Array); ok && len(a.Flat) > 0 {
			prim := e.writer.Master().Root(entry.Path)
			m := matrix4From(a)
			if bits&bitInstanceTransform != 0 {
				prim.SetTimeSample("xformOp:transform", usdtype.VTMatrix4d.Name, t, m)
			} else {
				prim.SetUniformAttribute("xformOp:transform", usdtype.VTMatrix4d.Name, m)
			}
			prim.SetUniformAttribute("xformOpOrder", usdtype.VTToken.Name, []string{"xformOp:transform"})
		}
	}
	return nil
}

// materializeSurface authors a Surface's single geometry and material
// bindings, each re-authored wholesale on every commit (spec §4.4.2's
// addRefNoClip: "used for references that are never time-varying").
func (e *engine) materializeSurface(entry *primcache.Entry, obj *object.Object, t float64) error {
	rec := obj.Read()

	for _, param := range []string{"geometry", "material"} {
		v, ok := rec.Get(param)
		if !ok {
			continue
		}
		h, ok := v.(object.Handle)
		if !ok {
			continue
		}
		if err := e.materializeRefSet(entry, []object.Handle{h}, param, false, t); err != nil {
			return err
		}
	}
	return nil
}

// matrix4From unflattens a column-major 16-float usdtype.Array (spec §3's
// FloatMat4 encoding) into the row tuples usdstage.write.go's formatValue
// renders as a USD matrix4d literal.
func matrix4From(a usdtype.Array) [4][4]float64 {
	var m [4][4]float64
	for i := 0; i < 16 && i < len(a.Flat); i++ {
		m[i/4][i%4] = a.Flat[i]
	}
	return m
}

// materializeHandleArray resolves rec's []object.Handle-valued param and
// hands it to materializeRefSet, silently doing nothing when the
// parameter was never set or holds the wrong shape.
func (e *engine) materializeHandleArray(parent *primcache.Entry, rec *object.Record, param string, timeVarying bool, t float64) error {
	v, ok := rec.Get(param)
	if !ok {
		return nil
	}
	hs, ok := v.([]object.Handle)
	if !ok {
		return nil
	}
	return e.materializeRefSet(parent, hs, param, timeVarying, t)
}

// materializeRefSet mirrors handles onto parent's subpathExt reference
// prims via usdwriter's addRef/addRefNoClip/manageUnusedRefs trio (spec
// §4.4.2): every live handle gets a reference authored (with value-clip
// retiming when timeVarying), and anything no longer present is retired
// through ManageUnusedRefs.
func (e *engine) materializeRefSet(parent *primcache.Entry, handles []object.Handle, subpathExt string, timeVarying bool, t float64) error {
	newChildren := make(map[string]*primcache.Entry, len(handles))
	for _, h := range handles {
		if h == object.Nil {
			continue
		}
		childObj, ok := e.pool.Lookup(h)
		if !ok {
			continue
		}
		category, ok := categoryFor(childObj.Kind())
		if !ok {
			continue
		}
		childEntry, _ := e.writer.Cache().FindOrCreate(category, childObj.Name())
		newChildren[e.writer.Cache().KeyOf(childEntry)] = childEntry

		if timeVarying {
			manifest := e.writer.ManifestAssetPath(childEntry)
			clip := e.writer.ClipAssetPathAt(childEntry, t)
			e.writer.AddRef(parent, childEntry, subpathExt, true, manifest, clip, t, t, false)
			e.writer.Cache().SetChildVisibleAt(parent, childEntry, primcache.Timecode(t))
		} else {
			e.writer.AddRefNoClip(parent, childEntry, subpathExt, false)
		}
	}
	e.writer.ManageUnusedRefs(parent, newChildren, subpathExt, timeVarying, primcache.Timecode(t), nil)
	return nil
}
