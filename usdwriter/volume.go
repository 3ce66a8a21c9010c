package usdwriter

import (
	"fmt"

	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/resource"
	"github.com/Carmen-Shannon/usdscene/usderr"
	"github.com/Carmen-Shannon/usdscene/usdtype"
	"github.com/Carmen-Shannon/usdscene/volumewriter"
)

// FieldLookup resolves the object.Handle a volume's "field" parameter
// carries to the spatial field's cache entry and its committed Object, or
// reports false while the field hasn't been created yet (spec §4.4.7's
// two-phase volume commit: a volume may reference a field the client
// hasn't committed yet).
type FieldLookup func(h object.Handle) (*primcache.Entry, *object.Object, bool)

// UpdateVolume authors a volume prim's value range directly, then enqueues
// the field-asset side of the commit onto the writer's deferred flush
// queue (spec §4.4.7/§9): the referenced spatial field may not have
// committed its voxel data yet, so the VDB encode/write happens on a
// later flush round once it has.
func (w *Writer) UpdateVolume(entry *primcache.Entry, obj *object.Object, lookup FieldLookup, t float64) error {
	rec := obj.Read()
	master := w.master.Root(entry.Path)
	master.TypeName = "Volume"

	if vr, ok := arrayParam(rec, "valueRange"); ok {
		varying := timeVaryingBits(rec) != 0
		if err := w.WriteAttribute(master, w.clipTarget(entry, t), "primvars:valueRange", varying, t, vr.Count(), vr.Flat, vr.Type, usdtype.VTFloat2); err != nil {
			return err
		}
	}

	h, ok := handleParam(rec, "field")
	if !ok {
		master.SetRelationship("field:density")
		return nil
	}
	w.flushQ.Enqueue(&volumeFlushEntry{w: w, volEntry: entry, handle: h, lookup: lookup, t: t})
	return nil
}

// volumeFlushEntry implements flush.Entry: it stays deferred until the
// referenced spatial field exists in the cache and has committed voxel
// data, then serializes that data through the VolumeWriter boundary and
// writes the resulting VDB asset exactly once per (field, timestep).
type volumeFlushEntry struct {
	w        *Writer
	volEntry *primcache.Entry
	handle   object.Handle
	lookup   FieldLookup
	t        float64
}

func (e *volumeFlushEntry) Flush(primcache.Timecode) (deferred bool, err error) {
	fieldEntry, fieldObj, found := e.lookup(e.handle)
	if !found {
		return true, nil
	}
	frec := fieldObj.Read()
	data, ok := arrayParam(frec, "data")
	if !ok || data.Count() == 0 {
		return true, nil
	}
	return false, e.w.writeFieldAsset(e.volEntry, fieldEntry, frec, data, e.t)
}

// writeFieldAsset builds a volumewriter.VolumeData from the field's
// committed parameters, serializes it through the VolumeWriter boundary
// (spec §6), writes it to volumes/<name>_<t>.vdb deduplicated through the
// shared-resource registry, and wires the volume's field:density
// relationship plus the field prim's asset attribute (spec §4.4.7).
func (w *Writer) writeFieldAsset(volEntry, fieldEntry *primcache.Entry, frec *object.Record, data usdtype.Array, t float64) error {
	dims, _ := arrayParam(frec, "dimensions")
	origin, _ := arrayParam(frec, "origin")
	spacing, _ := arrayParam(frec, "spacing")

	vd := volumewriter.VolumeData{
		Dimensions: int32Vec3(dims),
		Origin:     float32Vec3(origin),
		Spacing:    float32Vec3(spacing),
		Samples:    float32Slice(data.Flat),
	}

	key := resource.Key{Name: fieldEntry.Name, Timestep: int64(t)}
	path := "volumes/" + sanitizeName(fieldEntry.Name) + timestepSuffix(t) + ".vdb"

	fieldPrim := w.master.Root(volEntry.Path + "/" + sanitizeName(fieldEntry.Name))
	fieldPrim.TypeName = "OpenVDBAsset"
	fieldPrim.SetUniformAttribute("fieldName", "token", "density")
	fieldPrim.SetUniformAttribute("fieldDataType", "token", "float")

	master, _ := w.master.Lookup(volEntry.Path)
	if master != nil {
		master.SetRelationship("field:density", fieldPrim.Path)
	}

	if !w.resources.ShouldWrite(key, path) {
		fieldPrim.SetUniformAttribute("filePath", "asset", path)
		return nil
	}

	vw := w.volumeWriter()
	if !vw.Initialize(fieldEntry.Name) {
		return w.diag.errorf(fieldEntry.Name, fmt.Errorf("%w: usdwriter: volume writer failed to initialize for %s", usderr.LogicError, fieldEntry.Name))
	}
	defer vw.Release()

	if err := vw.ToVDB(vd); err != nil {
		return err
	}
	buf, _ := vw.GetSerializedVolumeData()

	if !w.conn.WriteFile(buf, w.sessionDir+"/"+path, true, true) {
		return w.diag.errorf(fieldEntry.Name, fmt.Errorf("%w: usdwriter: failed to write %s", usderr.IOError, path))
	}
	fieldPrim.SetUniformAttribute("filePath", "asset", path)
	return nil
}

func int32Vec3(a usdtype.Array) [3]int32 {
	var out [3]int32
	for i := 0; i < 3 && i < len(a.Flat); i++ {
		out[i] = int32(a.Flat[i])
	}
	return out
}

func float32Vec3(a usdtype.Array) [3]float32 {
	var out [3]float32
	for i := 0; i < 3 && i < len(a.Flat); i++ {
		out[i] = float32(a.Flat[i])
	}
	return out
}

func float32Slice(flat []float64) []float32 {
	out := make([]float32, len(flat))
	for i, v := range flat {
		out[i] = float32(v)
	}
	return out
}
