package usdwriter

import (
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usdstage"
)

// refPrimPath is the path of the referencing prim a parent authors under
// one of its category subpaths for a given child, e.g.
// "/RootClass/worlds/MyWorld/surface/MySurface" (spec §4.4.2).
func refPrimPath(parent *primcache.Entry, subpathExt, childName string) string {
	return parent.Path + "/" + subpathExt + "/" + sanitizeName(childName)
}

// AddRefNoClip creates a referencing prim under parent/subpathExt naming
// child, with a plain internal reference to the child's canonical path and
// no value-clip metadata (spec §4.4.2's addRefNoClip). It is used for
// references that are never time-varying (e.g. a surface's geometry/
// material bindings, which are re-authored wholesale on every commit
// rather than retimed).
func (w *Writer) AddRefNoClip(parent, child *primcache.Entry, subpathExt string, instanceable bool) *usdstage.Prim {
	w.cache.AddChild(parent, child)

	refPath := refPrimPath(parent, subpathExt, child.Name)
	refPrim := w.master.Root(refPath)
	refPrim.Instanceable = instanceable
	refPrim.AddReference(&usdstage.Reference{PrimPath: child.Path, Instanceable: instanceable})
	return refPrim
}

// AddRef is AddRefNoClip plus value-clip metadata retiming the child's
// animation into the parent's timeline (spec §4.4.2's addRef). When
// timeVarying is false this degenerates to AddRefNoClip; manifestAssetPath
// and clipAssetPath are empty strings when ValueClipRetiming is disabled.
func (w *Writer) AddRef(parent, child *primcache.Entry, subpathExt string, timeVarying bool, manifestAssetPath, clipAssetPath string, parentTime, childTime float64, instanceable bool) *usdstage.Prim {
	refPrim := w.AddRefNoClip(parent, child, subpathExt, instanceable)
	if !timeVarying || !w.settings.ValueClipRetiming {
		return refPrim
	}

	refPath := refPrim.Path
	existing, _ := w.cache.RefClip(child, refPath)
	clip, _ := existing.(*usdstage.ClipSet)
	if clip == nil {
		clip = &usdstage.ClipSet{ManifestAssetPath: manifestAssetPath, PrimPath: refPath}
	}
	seedOrUpdateClip(clip, clipAssetPath, parentTime, childTime)
	w.cache.SetRefClip(child, refPath, clip)
	refPrim.AddReference(&usdstage.Reference{PrimPath: "", Clip: clip})
	return refPrim
}

// ManageUnusedRefs walks the existing referencing prims under
// parent/subpathExt and, for every child not present in newChildren, either
// makes it invisible at t (time-varying mode, only if it remains visible
// at some other timecode) or removes the reference prim entirely,
// decrementing the child's refcount (spec §4.4.2's manageUnusedRefs).
func (w *Writer) ManageUnusedRefs(parent *primcache.Entry, newChildren map[string]*primcache.Entry, subpathExt string, timeVarying bool, t primcache.Timecode, onRemove func(*primcache.Entry)) {
	for _, childKey := range append([]string(nil), parent.Children()...) {
		child, ok := w.cache.LookupKey(childKey)
		if !ok {
			continue
		}
		if _, stillWanted := newChildren[childKey]; stillWanted {
			continue
		}
		w.retireChildRef(parent, child, subpathExt, timeVarying, t, onRemove)
	}
}

// RemoveAllRefs is ManageUnusedRefs with an empty wanted set: the explicit
// bulk form spec §4.4.2 names separately.
func (w *Writer) RemoveAllRefs(parent *primcache.Entry, subpathExt string, timeVarying bool, t primcache.Timecode, onRemove func(*primcache.Entry)) {
	w.ManageUnusedRefs(parent, nil, subpathExt, timeVarying, t, onRemove)
}

func (w *Writer) retireChildRef(parent, child *primcache.Entry, subpathExt string, timeVarying bool, t primcache.Timecode, onRemove func(*primcache.Entry)) {
	refPath := refPrimPath(parent, subpathExt, child.Name)

	if timeVarying {
		becameEmpty := w.cache.SetChildInvisibleAt(parent, child, t)
		if !becameEmpty {
			if refPrim, ok := w.master.Lookup(refPath); ok {
				w.setVisibilityDefensive(refPrim, float64(t), usdstage.Invisible)
			}
			return
		}
	}

	w.master.Remove(refPath)
	w.cache.RemoveChild(parent, child)
	if onRemove != nil {
		onRemove(child)
	}
}

// ManifestAssetPath exposes manifestAssetPath to callers outside this
// package (the engine facade, when seeding AddRef's value-clip metadata
// for a reference it is creating for the first time).
func (w *Writer) ManifestAssetPath(entry *primcache.Entry) string {
	return manifestAssetPath(entry)
}

// ClipAssetPathAt exposes clipAssetPath to callers outside this package,
// resolving t to the same timecode clipTarget would use under the
// session's configured TimeVaryingPolicy.
func (w *Writer) ClipAssetPathAt(entry *primcache.Entry, t float64) string {
	tc := primcache.Timecode(t)
	if w.settings.TimeVaryingPolicy == PolicySingleClipStage {
		tc = 0
	}
	return clipAssetPath(entry, tc)
}

// setVisibilityDefensive authors visibility at t. When v is Inherited and
// the master stage has a time-code range, it also authors v at that
// range's start and end, on every such call; it does not track whether
// this is the reference's first transition to visible.
func (w *Writer) setVisibilityDefensive(p *usdstage.Prim, t float64, v usdstage.Visibility) {
	p.SetVisibility(t, v)
	if v == usdstage.Inherited {
		if w.master.TimeCodesSet {
			p.SetVisibility(w.master.StartTimeCode, v)
			p.SetVisibility(w.master.EndTimeCode, v)
		}
	}
}
