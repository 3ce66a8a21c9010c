package usdtype

// ValueType identifies a USD attribute's authored value type (the
// destination side of the attribute write dispatch). Only the shapes this
// writer actually authors are represented; ValueType.Name is the literal
// token written into the .usda attribute declaration (e.g. "float3[]").
type ValueType struct {
	Name       string
	Kind       Kind
	Components int
	Array      bool
}

func vt(name string, k Kind, n int, array bool) ValueType {
	return ValueType{Name: name, Kind: k, Components: n, Array: array}
}

// Scalar and vector USD value types used by this writer.
var (
	VTBool      = vt("bool", KindBool, 1, false)
	VTUChar     = vt("uchar", KindUint8, 1, false)
	VTInt       = vt("int", KindInt32, 1, false)
	VTInt2      = vt("int2", KindInt32, 2, false)
	VTUInt      = vt("uint", KindUint32, 1, false)
	VTInt64     = vt("int64", KindInt64, 1, false)
	VTHalf      = vt("half", KindHalf, 1, false)
	VTFloat     = vt("float", KindFloat32, 1, false)
	VTFloat2    = vt("float2", KindFloat32, 2, false)
	VTFloat3    = vt("float3", KindFloat32, 3, false)
	VTFloat4    = vt("float4", KindFloat32, 4, false)
	VTDouble    = vt("double", KindFloat64, 1, false)
	VTColor3f   = vt("color3f", KindFloat32, 3, false)
	VTColor4f   = vt("color4f", KindFloat32, 4, false)
	VTPoint3f   = vt("point3f", KindFloat32, 3, false)
	VTNormal3f  = vt("normal3f", KindFloat32, 3, false)
	VTVector3f  = vt("vector3f", KindFloat32, 3, false)
	VTTexCoord2 = vt("texCoord2f", KindFloat32, 2, false)
	VTQuatf     = vt("quatf", KindFloat32, 4, false)
	VTMatrix4d  = vt("matrix4d", KindFloat64, 16, false)
	VTAsset     = vt("asset", KindUint8, 0, false)
	VTToken     = vt("token", KindUint8, 0, false)

	// Array flavors of the above, used for per-vertex/per-primitive primvars.
	VTIntArray      = vt("int[]", KindInt32, 1, true)
	VTInt2Array     = vt("int2[]", KindInt32, 2, true)
	VTUIntArray     = vt("uint[]", KindUint32, 1, true)
	VTFloatArray    = vt("float[]", KindFloat32, 1, true)
	VTFloat2Array   = vt("float2[]", KindFloat32, 2, true)
	VTFloat3Array   = vt("float3[]", KindFloat32, 3, true)
	VTFloat4Array   = vt("float4[]", KindFloat32, 4, true)
	VTPoint3fArray  = vt("point3f[]", KindFloat32, 3, true)
	VTNormal3fArray = vt("normal3f[]", KindFloat32, 3, true)
	VTColor3fArray  = vt("color3f[]", KindFloat32, 3, true)
	VTColor4fArray  = vt("color4f[]", KindFloat32, 4, true)
	VTTexCoordArray = vt("texCoord2f[]", KindFloat32, 2, true)
	VTQuatfArray    = vt("quatf[]", KindFloat32, 4, true)
)

// defaultValueTypes maps each source Type onto the USD attribute value type
// the writer authors by default when no explicit destination is specified
// (e.g. when first declaring an attribute on a manifest stage).
var defaultValueTypes = map[Type]ValueType{
	Bool:    VTBool,
	Uint8:   VTUChar,
	Int8:    VTInt,
	Uint16:  VTInt,
	Int16:   VTInt,
	Uint32:  VTUInt,
	Int32:   VTInt,
	Uint64:  VTInt64,
	Int64:   VTInt64,
	Half:    VTHalf,
	Float32: VTFloat,
	Float64: VTDouble,

	FloatVec2: VTFloat2,
	FloatVec3: VTFloat3,
	FloatVec4: VTFloat4,

	SrgbR:    VTFloat,
	SrgbRG:   VTFloat2,
	SrgbRGB:  VTColor3f,
	SrgbRGBA: VTColor4f,

	IntPair: VTInt2,

	FloatMat4: VTMatrix4d,
}

// DefaultValueType returns the USD attribute value type this writer authors
// by default for a given source Type. It reports UnknownTypeError if t
// cannot be mapped.
func DefaultValueType(t Type) (ValueType, error) {
	if v, ok := defaultValueTypes[t]; ok {
		return v, nil
	}
	return ValueType{}, &UnknownTypeError{Detail: t.String()}
}

// DefaultSourceType is the reverse of DefaultValueType: it returns the
// source Type this writer would expect to back a given USD value type,
// completing the bidirectional map required by §4.1. Not every ValueType
// has a canonical reverse (arrays and asset/token types do not), in which
// case ok is false.
func DefaultSourceType(v ValueType) (t Type, ok bool) {
	for src, dst := range defaultValueTypes {
		if dst.Name == v.Name {
			return src, true
		}
	}
	return Undefined, false
}

// CheckShape validates that converting src into dst would not lose
// components (e.g. ANARI_FLOAT64_VEC4 into a single-component attribute).
// A conversion that narrows components (vector to scalar) or vice versa is
// rejected; equal-arity conversions of differing scalar kind are fine and
// handled downstream by attrwrite.
func CheckShape(src Type, dst ValueType) error {
	if src.components != dst.Components {
		return &ShapeMismatchError{Detail: src.String() + " -> " + dst.Name}
	}
	return nil
}
