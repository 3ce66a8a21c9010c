package usdwriter

import (
	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// UpdateRenderer authors a renderer's settings directly under
// "/Root/renderers/<name>" (spec's render-settings-passthrough supplement:
// "UsdRenderer.cpp/UsdRenderManager.cpp supplement spec §4.5's
// 'render-manager passthrough' with concrete settings... stored
// uniform-only (never time-varying) on a renderer prim"). Unlike every
// other object kind, a renderer never goes through the prim cache
// (categoryFor reports KindRenderer as having no persistent category) and
// its settings are never time-sampled, matching the original's
// render-settings being process config rather than scene-graph data.
func (w *Writer) UpdateRenderer(name string, obj *object.Object) error {
	rec := obj.Read()

	path := rootPrimPath + "/renderers/" + sanitizeName(name)
	prim := w.master.Root(path)
	prim.TypeName = "RenderSettings"

	if v, ok := rec.Get("pixelSamples"); ok {
		if n, ok := v.(int32); ok {
			prim.SetUniformAttribute("inputs:pixelSamples", usdtype.VTInt.Name, n)
		}
	}
	if v, ok := rec.Get("ambientOcclusion"); ok {
		if b, ok := v.(bool); ok {
			prim.SetUniformAttribute("inputs:ambientOcclusion", usdtype.VTBool.Name, b)
		}
	}
	if bg, ok := arrayParam(rec, "backgroundColor"); ok {
		prim.SetUniformAttribute("inputs:backgroundColor", usdtype.VTFloat4.Name, float32Vec4(bg))
	}

	w.diag.statusf(name, "renderer settings authored at %s", path)
	return nil
}

func float32Vec4(a usdtype.Array) [4]float32 {
	var out [4]float32
	for i := 0; i < 4 && i < len(a.Flat); i++ {
		out[i] = float32(a.Flat[i])
	}
	return out
}
