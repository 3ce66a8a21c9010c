package usdwriter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/resource"
	"github.com/Carmen-Shannon/usdscene/usderr"
	"github.com/Carmen-Shannon/usdscene/usdstage"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// materialChannel names one material input channel and the record keys
// that back it, mirroring spec §4.4.6's authoring-priority rule: sampler
// attached, then source-attribute bound, then constant.
type materialChannel struct {
	name        string // material input name: diffuse, opacity, ...
	constParam  string // e.g. "color"
	constType   usdtype.ValueType
	attrParam   string // e.g. "color.attribute"
	samplerParam string // e.g. "color.sampler"
}

var materialChannels = []materialChannel{
	{name: "diffuseColor", constParam: "color", constType: usdtype.VTColor4f, attrParam: "color.attribute", samplerParam: "color.sampler"},
	{name: "opacity", constParam: "opacity", constType: usdtype.VTFloat, attrParam: "opacity.attribute", samplerParam: "opacity.sampler"},
	{name: "metallic", constParam: "metallic", constType: usdtype.VTFloat, samplerParam: "metallic.sampler"},
	{name: "roughness", constParam: "roughness", constType: usdtype.VTFloat, samplerParam: "roughness.sampler"},
	{name: "ior", constParam: "ior", constType: usdtype.VTFloat},
	{name: "emissiveColor", constParam: "emissive", constType: usdtype.VTColor3f, samplerParam: "emissive.sampler"},
}

const (
	previewSurfaceContext = "preview"
	mdlContext            = "mdl"
)

// renderContextOutput names the surface-output relationship for a render
// context: the universal context ("preview") binds plain "outputs:surface",
// any other context is namespaced ("outputs:mdl:surface").
func renderContextOutput(context string) string {
	if context == previewSurfaceContext {
		return "outputs:surface"
	}
	return "outputs:" + context + ":surface"
}

// UpdateMaterial builds the dual PreviewSurface/MDL shader graph for a
// material prim and rewires each channel's input to whichever of sampler,
// attribute-reader, or constant takes priority this commit (spec §4.4.6).
func (w *Writer) UpdateMaterial(entry *primcache.Entry, obj *object.Object, samplers func(h object.Handle) (*primcache.Entry, bool), t float64) error {
	rec := obj.Read()
	master := w.master.Root(entry.Path)

	surfacePrim := w.master.Root(entry.Path + "/PreviewSurface")
	surfacePrim.TypeName = "Shader"
	surfacePrim.SetUniformAttribute("info:id", "token", "UsdPreviewSurface")
	master.SetRelationship(renderContextOutput(previewSurfaceContext), surfacePrim.Path+".outputs:surface")

	mdlPrim := w.master.Root(entry.Path + "/MDLShader")
	mdlPrim.TypeName = "Shader"
	mdlPrim.SetUniformAttribute("info:sourceAsset", "asset", "OmniPBR.mdl")
	master.SetRelationship(renderContextOutput(mdlContext), mdlPrim.Path+".outputs:out")

	for _, ch := range materialChannels {
		if err := w.wireChannel(entry, rec, surfacePrim, mdlPrim, ch, samplers, t); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) wireChannel(entry *primcache.Entry, rec *object.Record, surfacePrim, mdlPrim *usdstage.Prim, ch materialChannel, samplers func(object.Handle) (*primcache.Entry, bool), t float64) error {
	readerName := entry.Path + "/" + ch.name + "Reader"

	if ch.samplerParam != "" {
		if h, ok := handleParam(rec, ch.samplerParam); ok {
			samplerEntry, found := samplers(h)
			if found {
				w.bindSampler(surfacePrim, mdlPrim, samplerEntry, ch)
				w.master.Remove(readerName)
				return nil
			}
		}
	}

	if ch.attrParam != "" {
		if name, ok := stringParam(rec, ch.attrParam); ok && name != "" {
			w.bindPrimvarReader(surfacePrim, mdlPrim, readerName, ch, name)
			return nil
		}
	}

	w.master.Remove(readerName)
	return w.writeConstantChannel(rec, surfacePrim, mdlPrim, ch, t)
}

func (w *Writer) bindSampler(surfacePrim, mdlPrim *usdstage.Prim, samplerEntry *primcache.Entry, ch materialChannel) {
	components := ch.constType.Components
	output := samplerOutputName(components)
	surfacePrim.SetRelationship("inputs:"+ch.name, samplerEntry.Path+".outputs:"+output)
	mdlPrim.SetRelationship("inputs:"+ch.name, samplerEntry.Path+".outputs:"+output)
	if ch.name == "diffuseColor" && components == 4 {
		surfacePrim.SetRelationship("inputs:opacity", samplerEntry.Path+".outputs:a")
	}
}

func samplerOutputName(components int) string {
	switch components {
	case 1:
		return "r"
	case 2:
		return "rg"
	default:
		return "rgb"
	}
}

func (w *Writer) bindPrimvarReader(surfacePrim, mdlPrim *usdstage.Prim, readerName string, ch materialChannel, attrName string) {
	reader := w.master.Root(readerName)
	reader.TypeName = "Shader"
	reader.SetUniformAttribute("info:id", "token", primvarReaderID(ch.constType.Components))
	reader.SetUniformAttribute("inputs:varname", "token", attrName)
	surfacePrim.SetRelationship("inputs:"+ch.name, reader.Path+".outputs:result")
	mdlPrim.SetRelationship("inputs:"+ch.name, reader.Path+".outputs:result")
}

func primvarReaderID(components int) string {
	switch components {
	case 1:
		return "UsdPrimvarReader_float"
	case 2:
		return "UsdPrimvarReader_float2"
	case 3:
		return "UsdPrimvarReader_float3"
	default:
		return "UsdPrimvarReader_float4"
	}
}

func (w *Writer) writeConstantChannel(rec *object.Record, surfacePrim, mdlPrim *usdstage.Prim, ch materialChannel, t float64) error {
	v, ok := rec.Get(ch.constParam)
	if !ok {
		return nil
	}

	varying := timeVaryingBits(rec) != 0
	inputName := "inputs:" + ch.name

	switch val := v.(type) {
	case usdtype.Array:
		if err := w.WriteAttribute(surfacePrim, surfacePrim, inputName, varying, t, val.Count(), val.Flat, val.Type, ch.constType); err != nil {
			return err
		}
		return w.WriteAttribute(mdlPrim, mdlPrim, inputName, varying, t, val.Count(), val.Flat, val.Type, ch.constType)
	case float32:
		writeUniformOrVarying(surfacePrim, surfacePrim, inputName, ch.constType.Name, varying, t, val)
		writeUniformOrVarying(mdlPrim, mdlPrim, inputName, ch.constType.Name, varying, t, val)
	}
	return nil
}

// handleParam reads an object.Handle-valued parameter, reporting false for
// both a missing parameter and an explicitly nil one.
func handleParam(rec *object.Record, param string) (object.Handle, bool) {
	v, ok := rec.Get(param)
	if !ok {
		return object.Nil, false
	}
	h, ok := v.(object.Handle)
	if !ok || h == object.Nil {
		return object.Nil, false
	}
	return h, true
}

func stringParam(rec *object.Record, param string) (string, bool) {
	v, ok := rec.Get(param)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case object.StringRef:
		return s.String(), true
	default:
		return "", false
	}
}

// UpdateSampler builds a sampler prim's texture-coordinate reader child and,
// when inline image data is present, PNG-encodes it (spec §4.4.6's sampler
// subsystem) and writes it through the shared-resource registry so N
// samplers naming the same (name, t) pair encode it exactly once.
func (w *Writer) UpdateSampler(entry *primcache.Entry, obj *object.Object, t float64) error {
	rec := obj.Read()
	master := w.master.Root(entry.Path)
	master.TypeName = "Shader"
	master.SetUniformAttribute("info:id", "token", samplerShaderID(obj.Subtype()))

	inAttr, _ := stringParam(rec, "inAttribute")
	if inAttr == "" {
		inAttr = "vertex.texcoord"
	}
	w.SetInAttribute(entry, inAttr)

	arr, ok := arrayParam(rec, "image")
	if !ok {
		return nil
	}
	width, _ := int32Param(rec, "imageWidth")
	height, _ := int32Param(rec, "imageHeight")
	if width <= 0 || height <= 0 {
		return nil
	}

	key := resource.Key{Name: entry.Name, Timestep: int64(t)}
	path := "images/" + sanitizeName(entry.Name) + timestepSuffix(t) + ".png"
	if !w.resources.ShouldWrite(key, path) {
		master.SetUniformAttribute("inputs:file", "asset", path)
		return nil
	}

	buf, err := encodePNGFlipped(arr, int(width), int(height))
	if err != nil {
		return err
	}
	if !w.conn.WriteFile(buf, w.sessionDir+"/"+path, true, true) {
		return w.diag.errorf(entry.Name, fmt.Errorf("%w: usdwriter: failed to write %s", usderr.IOError, path))
	}
	master.SetUniformAttribute("inputs:file", "asset", path)
	return nil
}

// SetInAttribute rewires the sampler's texture-coordinate reader child to
// read a new primvar name (spec §4.4.6).
func (w *Writer) SetInAttribute(entry *primcache.Entry, attrName string) {
	reader := w.master.Root(entry.Path + "/TexCoordReader")
	reader.TypeName = "Shader"
	reader.SetUniformAttribute("info:id", "token", "UsdPrimvarReader_float2")
	reader.SetUniformAttribute("inputs:varname", "token", attrName)
	master, _ := w.master.Lookup(entry.Path)
	if master != nil {
		master.SetRelationship("inputs:st", reader.Path+".outputs:result")
	}
}

func samplerShaderID(subtype string) string {
	switch subtype {
	case "3D":
		return "UsdUVTexture3d"
	case "1D":
		return "UsdUVTexture1d"
	default:
		return "UsdUVTexture"
	}
}

func int32Param(rec *object.Record, name string) (int32, bool) {
	v, ok := rec.Get(name)
	if !ok {
		return 0, false
	}
	n, ok := v.(int32)
	return n, ok
}

func timestepSuffix(t float64) string {
	if t == 0 {
		return ""
	}
	return "_" + formatTimecode(t)
}

// encodePNGFlipped rebuilds an image.Image from a flat channel array (1-4
// components per pixel) and encodes it, flipping rows vertically to match
// the source data's top-left origin against USD's bottom-left convention
// (spec §4.4.6: "PNG-encoded (1-4 channels, flipped vertically)").
func encodePNGFlipped(arr usdtype.Array, width, height int) ([]byte, error) {
	channels := arr.Type.ComponentCount()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := height - 1 - y
		for x := 0; x < width; x++ {
			idx := (srcY*width + x) * channels
			c := pixelAt(arr.Flat, idx, channels)
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pixelAt(flat []float64, idx, channels int) color.NRGBA {
	chan8 := func(i int) uint8 {
		if idx+i >= len(flat) {
			return 0
		}
		return uint8(flat[idx+i] * 255)
	}
	switch channels {
	case 1:
		v := chan8(0)
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	case 2:
		return color.NRGBA{R: chan8(0), G: chan8(0), B: chan8(0), A: chan8(1)}
	case 3:
		return color.NRGBA{R: chan8(0), G: chan8(1), B: chan8(2), A: 255}
	default:
		return color.NRGBA{R: chan8(0), G: chan8(1), B: chan8(2), A: chan8(3)}
	}
}
