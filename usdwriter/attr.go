package usdwriter

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/Carmen-Shannon/usdscene/attrwrite"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usderr"
	"github.com/Carmen-Shannon/usdscene/usdstage"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// WriteAttribute implements spec §4.4.4's time-varying attribute write: if
// varying is true, the value is authored at t on target (the clip stage or
// a time-varying-capable master prim) and any stale default-time opinion
// on master is cleared; if varying is false, the value is authored at
// default-time on master and any sample previously authored at t is
// cleared. elementCount/src/srcType/dst drive attrwrite.Dispatch exactly
// as spec §4.4.10 describes.
func (w *Writer) WriteAttribute(master, target *usdstage.Prim, name string, varying bool, t float64, elementCount int, src []float64, srcType usdtype.Type, dst usdtype.ValueType) error {
	value, err := attrwrite.Dispatch(elementCount, src, srcType, dst)
	if err != nil {
		return err
	}

	if varying {
		target.SetTimeSample(name, dst.Name, t, value)
		master.ClearUniformValue(name)
	} else {
		master.SetUniformAttribute(name, dst.Name, value)
		target.ClearTimeSample(name, t)
	}

	if w.fast != nil {
		flat, ferr := flattenToBytes(value)
		if ferr == nil {
			_ = w.fast.MirrorWrite(master.Path, name, flat)
		}
	}
	return nil
}

// ReconcileManifest reinitializes entry's manifest stage when its
// timeVaryingBits have changed since the previous commit (spec §4.4.4:
// "on a timeVaryingBits transition... the manifest stage is reinitialized
// to match so downstream consumers re-bind"). attrNames lists every
// attribute name that is currently time-varying for this commit.
func (w *Writer) ReconcileManifest(entry *primcache.Entry, newBits uint64, attrNames []string) {
	if !w.settings.ValueClipRetiming || newBits == entry.LastTimeVaryingBits {
		entry.LastTimeVaryingBits = newBits
		return
	}

	manifest, _ := entry.ManifestStage.(*usdstage.Layer)
	if manifest == nil {
		manifest = usdstage.NewLayer(manifestAssetPath(entry))
		entry.ManifestStage = manifest
	}
	manifestPrim := manifest.Root(entry.Path)
	for _, name := range attrNames {
		manifestPrim.SetUniformAttribute(name, "", nil)
	}
	entry.LastTimeVaryingBits = newBits
}

func manifestAssetPath(entry *primcache.Entry) string {
	return "manifests/" + sanitizeName(entry.Name) + ".usda"
}

// flattenToBytes turns an attrwrite.Dispatch result (a scalar, a fixed-size
// tuple array, or a slice of either) into a raw little-endian byte mirror
// for the fast path, walking it with reflection the same way attrwrite's
// own buildElements walks a flat float64 slice into typed Go values. This
// is a best-effort optimization (spec §4.4.10: "the same dispatch writes
// directly into a Fabric bucket; semantics are identical" — identical
// semantics, not identical failure modes, since the mirror is purely
// additive), so an unrecognized element kind is reported rather than
// silently dropped, but never blocks the ordinary usdstage write.
func flattenToBytes(value any) ([]byte, error) {
	return appendScalarOrTuple(nil, reflect.ValueOf(value))
}

func appendScalarOrTuple(buf []byte, v reflect.Value) ([]byte, error) {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		var err error
		for i := 0; i < v.Len(); i++ {
			buf, err = appendScalarOrTuple(buf, v.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return buf, nil
	case reflect.Bool:
		if v.Bool() {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case reflect.Float32:
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v.Float()))), nil
	case reflect.Float64:
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Float())), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return binary.LittleEndian.AppendUint64(buf, uint64(v.Int())), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return binary.LittleEndian.AppendUint64(buf, v.Uint()), nil
	default:
		return nil, fmt.Errorf("%w: fastpath: unsupported mirror value kind %v", usderr.UnsupportedType, v.Kind())
	}
}
