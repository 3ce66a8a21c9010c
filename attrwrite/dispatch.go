// Package attrwrite implements the attribute write dispatch described by
// spec §4.4.10: given a source parameter's usdtype.Type and a destination
// attribute's usdtype.ValueType, it picks a span writer (Copy, Convert,
// ExpandToColor, ExpandNormalizeToColor, SrgbDecodeToColor) and produces a
// Go value ready to hand to usdstage's SetUniformAttribute/SetTimeSample.
//
// The numeric span writers themselves operate on flat []float64 component
// arrays and out-parameter style, the same shape common/math.go's
// LookAt/Mul4/Invert4 use for vector math, rather than boxing each
// component in its own allocation.
package attrwrite

import (
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/usdscene/usderr"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// Dispatch converts elementCount source elements (flattened into src, or
// nil for a size-only allocation) from srcType to dst, returning a Go
// value shaped for usdstage: a scalar/tuple when elementCount == 1, a
// slice of scalars/tuples otherwise.
func Dispatch(elementCount int, src []float64, srcType usdtype.Type, dst usdtype.ValueType) (any, error) {
	srcComponents := srcType.ComponentCount()
	dstComponents := dst.Components
	if dstComponents == 0 {
		dstComponents = 1
	}

	if src == nil {
		return buildElements(dst.Kind, dstComponents, elementCount, make([]float64, elementCount*dstComponents)), nil
	}
	if len(src) != elementCount*srcComponents {
		return nil, fmt.Errorf("%w: attrwrite: expected %d values (%d elements x %d components), got %d",
			usderr.InvalidArgument, elementCount*srcComponents, elementCount, srcComponents, len(src))
	}

	isColorDst := isColorValueType(dst)

	switch {
	case srcType.IsSRGBEncoded() && isColorDst && dstComponents == 4:
		out := srgbDecodeToColor(src, srcComponents, elementCount)
		return buildElements(dst.Kind, 4, elementCount, out), nil

	case srcComponents == dstComponents:
		// Copy (bitwise-identical scalar kinds) and Convert (constructible
		// per-element, e.g. int->float) collapse to the same flat-value
		// pass-through at this layer: both already operate on a common
		// float64 intermediate, and the actual per-component numeric cast
		// happens once, in buildScalar, when the destination's concrete Go
		// type is selected.
		return buildElements(dst.Kind, dstComponents, elementCount, src), nil

	case isColorDst && dstComponents == 4 && srcComponents >= 1 && srcComponents <= 3:
		var out []float64
		if srcType.Kind().IsInteger() && srcType.Kind().IsUnsigned() {
			out = expandNormalizeToColor(src, srcComponents, elementCount, srcType.Kind())
		} else {
			out = expandToColor(src, srcComponents, elementCount)
		}
		return buildElements(dst.Kind, 4, elementCount, out), nil

	default:
		return nil, fmt.Errorf("%w: attrwrite: %d source components cannot be written to a %d-component %s attribute",
			usderr.ShapeMismatch, srcComponents, dstComponents, dst.Name)
	}
}

func isColorValueType(v usdtype.ValueType) bool {
	switch v.Name {
	case "color3f", "color4f", "color3f[]", "color4f[]":
		return true
	default:
		return false
	}
}

// buildScalar casts one component value to dst's concrete Go numeric
// representation.
func buildScalar(kind usdtype.Kind, v float64) any {
	switch kind {
	case usdtype.KindBool:
		return v != 0
	case usdtype.KindUint8:
		return uint8(v)
	case usdtype.KindInt8:
		return int8(v)
	case usdtype.KindUint16:
		return uint16(v)
	case usdtype.KindInt16:
		return int16(v)
	case usdtype.KindUint32:
		return uint32(v)
	case usdtype.KindInt32:
		return int32(v)
	case usdtype.KindUint64:
		return uint64(v)
	case usdtype.KindInt64:
		return int64(v)
	case usdtype.KindFloat64:
		return v
	default: // Half/Float32 and anything else land on float32, USD's default precision
		return float32(v)
	}
}

// buildTuple assembles one element's components (a single component
// becomes a bare scalar; more than one becomes a fixed-size array of the
// destination's concrete type, e.g. [3]float32).
func buildTuple(kind usdtype.Kind, flat []float64) any {
	if len(flat) == 1 {
		return buildScalar(kind, flat[0])
	}
	elemType := reflect.TypeOf(buildScalar(kind, 0))
	arrType := reflect.ArrayOf(len(flat), elemType)
	arr := reflect.New(arrType).Elem()
	for i, f := range flat {
		arr.Index(i).Set(reflect.ValueOf(buildScalar(kind, f)))
	}
	return arr.Interface()
}

// buildElements packs elementCount tuples of components components each
// out of flat into a concretely-typed Go slice (e.g. []float32 or
// [][3]float32), the shape usdstage.formatValue expects.
func buildElements(kind usdtype.Kind, components, elementCount int, flat []float64) any {
	if elementCount == 0 {
		return buildTuple(kind, make([]float64, components))
	}
	tuples := make([]any, elementCount)
	for i := 0; i < elementCount; i++ {
		tuples[i] = buildTuple(kind, flat[i*components:(i+1)*components])
	}
	if elementCount == 1 {
		return tuples[0]
	}
	elemType := reflect.TypeOf(tuples[0])
	sliceVal := reflect.MakeSlice(reflect.SliceOf(elemType), elementCount, elementCount)
	for i, v := range tuples {
		sliceVal.Index(i).Set(reflect.ValueOf(v))
	}
	return sliceVal.Interface()
}

// expandToColor pads a 1-, 2-, or 3-component source into a 4-component
// RGBA color: missing color channels are zero-filled and alpha defaults
// to 1 (spec §4.4.10: "pads 1/2/3-component source into GfVec4f color").
func expandToColor(src []float64, srcComponents, elementCount int) []float64 {
	out := make([]float64, elementCount*4)
	for i := 0; i < elementCount; i++ {
		s := src[i*srcComponents : (i+1)*srcComponents]
		d := out[i*4 : i*4+4]
		for c := 0; c < 3; c++ {
			if c < srcComponents {
				d[c] = s[c]
			}
		}
		d[3] = 1
		if srcComponents == 4 {
			d[3] = s[3]
		}
	}
	return out
}

// expandNormalizeToColor is expandToColor for unsigned integer sources,
// dividing every component by the source kind's maximum representable
// value first (spec §4.4.10: "unsigned integer sources are normalized by
// dividing by type max").
func expandNormalizeToColor(src []float64, srcComponents, elementCount int, srcKind usdtype.Kind) []float64 {
	max := unsignedMax(srcKind)
	scaled := make([]float64, len(src))
	for i, v := range src {
		scaled[i] = v / max
	}
	return expandToColor(scaled, srcComponents, elementCount)
}

func unsignedMax(k usdtype.Kind) float64 {
	switch k {
	case usdtype.KindUint8:
		return 255
	case usdtype.KindUint16:
		return 65535
	case usdtype.KindUint32:
		return 4294967295
	case usdtype.KindUint64:
		return 18446744073709551615
	default:
		return 1
	}
}
