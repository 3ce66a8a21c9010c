// Package usdtype implements the bridge's source-element type system: a
// tagged description of the client's in-memory array element shapes (scalar
// kind, component count, SRGB encoding, integer-pair or matrix layout) and
// its mapping onto the typed USD attribute value types the writer authors.
package usdtype

import "fmt"

// Kind identifies the scalar storage of a Type's components.
type Kind int

const (
	KindUnknown Kind = iota
	KindBool
	KindUint8
	KindInt8
	KindUint16
	KindInt16
	KindUint32
	KindInt32
	KindUint64
	KindInt64
	KindHalf
	KindFloat32
	KindFloat64
)

// kindSizes gives the byte size of a single scalar component of each Kind.
var kindSizes = map[Kind]int{
	KindBool:    1,
	KindUint8:   1,
	KindInt8:    1,
	KindUint16:  2,
	KindInt16:   2,
	KindUint32:  4,
	KindInt32:   4,
	KindUint64:  8,
	KindInt64:   8,
	KindHalf:    2,
	KindFloat32: 4,
	KindFloat64: 8,
}

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindUint8:
		return "uint8"
	case KindInt8:
		return "int8"
	case KindUint16:
		return "uint16"
	case KindInt16:
		return "int16"
	case KindUint32:
		return "uint32"
	case KindInt32:
		return "int32"
	case KindUint64:
		return "uint64"
	case KindInt64:
		return "int64"
	case KindHalf:
		return "half"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// IsInteger reports whether k is an integral (non-float, non-bool) kind.
func (k Kind) IsInteger() bool {
	switch k {
	case KindUint8, KindInt8, KindUint16, KindInt16, KindUint32, KindInt32, KindUint64, KindInt64:
		return true
	default:
		return false
	}
}

// IsUnsigned reports whether k is an unsigned integral kind.
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is half, float32 or float64.
func (k Kind) IsFloat() bool {
	switch k {
	case KindHalf, KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}

// Type is a source element type: a scalar Kind together with the shape
// (component count, SRGB encoding, integer-pair grouping, or matrix
// dimensions) the client's array actually holds.
//
// Zero value is Undefined.
type Type struct {
	kind       Kind
	components int
	srgb       bool
	pairs      int // >0 for integer pair vectors; components == pairs*2
	matRows    int // >0 for float matrices
	matCols    int
}

// Kind returns the scalar storage kind of t's components.
func (t Type) Kind() Kind { return t.kind }

// ComponentCount returns the number of scalar components in one element of t.
func (t Type) ComponentCount() int { return t.components }

// IsSRGBEncoded reports whether t's byte components are SRGB-encoded.
func (t Type) IsSRGBEncoded() bool { return t.srgb }

// IsIntPair reports whether t is an integer-pair vector (used for index
// pairs), and if so how many pairs it groups.
func (t Type) IsIntPair() (pairs int, ok bool) { return t.pairs, t.pairs > 0 }

// IsMatrix reports whether t is a float matrix, and if so its row/column
// extents.
func (t Type) IsMatrix() (rows, cols int, ok bool) {
	return t.matRows, t.matCols, t.matRows > 0
}

// Valid reports whether t is a recognized, non-Undefined type.
func (t Type) Valid() bool { return t.kind != KindUnknown || t.matRows > 0 }

// ByteSize returns the total size in bytes of one element of t. It is
// derived from the component layout, never stored.
func (t Type) ByteSize() int {
	sz, ok := kindSizes[t.kind]
	if !ok {
		return 0
	}
	return sz * t.components
}

// Flatten returns the scalar (1-component, non-SRGB, non-pair) Type sharing
// t's Kind. Vector types flatten to their scalar component type.
func (t Type) Flatten() Type { return Type{kind: t.kind, components: 1} }

func (t Type) String() string {
	switch {
	case t.matRows > 0:
		if t.matRows == t.matCols {
			return fmt.Sprintf("mat%d", t.matRows)
		}
		return fmt.Sprintf("mat%dx%d", t.matRows, t.matCols)
	case t.pairs > 0:
		return fmt.Sprintf("%s_pair%d", t.kind, t.pairs)
	case t.srgb:
		return fmt.Sprintf("srgb%d", t.components)
	case t.components > 1:
		return fmt.Sprintf("%s%d", t.kind, t.components)
	default:
		return t.kind.String()
	}
}

// Undefined is the zero Type, used to signal "no type"/unrepresentable.
var Undefined = Type{}

func scalar(k Kind) Type        { return Type{kind: k, components: 1} }
func vector(k Kind, n int) Type { return Type{kind: k, components: n} }

// Scalar types.
var (
	Bool    = scalar(KindBool)
	Uint8   = scalar(KindUint8)
	Int8    = scalar(KindInt8)
	Uint16  = scalar(KindUint16)
	Int16   = scalar(KindInt16)
	Uint32  = scalar(KindUint32)
	Int32   = scalar(KindInt32)
	Uint64  = scalar(KindUint64)
	Int64   = scalar(KindInt64)
	Half    = scalar(KindHalf)
	Float32 = scalar(KindFloat32)
	Float64 = scalar(KindFloat64)
)

// Vector-2/3/4 of every fundamental scalar kind.
var (
	Uint8Vec2  = vector(KindUint8, 2)
	Uint8Vec3  = vector(KindUint8, 3)
	Uint8Vec4  = vector(KindUint8, 4)
	Int8Vec2   = vector(KindInt8, 2)
	Int8Vec3   = vector(KindInt8, 3)
	Int8Vec4   = vector(KindInt8, 4)
	Uint16Vec2 = vector(KindUint16, 2)
	Uint16Vec3 = vector(KindUint16, 3)
	Uint16Vec4 = vector(KindUint16, 4)
	Int16Vec2  = vector(KindInt16, 2)
	Int16Vec3  = vector(KindInt16, 3)
	Int16Vec4  = vector(KindInt16, 4)
	Uint32Vec2 = vector(KindUint32, 2)
	Uint32Vec3 = vector(KindUint32, 3)
	Uint32Vec4 = vector(KindUint32, 4)
	Int32Vec2  = vector(KindInt32, 2)
	Int32Vec3  = vector(KindInt32, 3)
	Int32Vec4  = vector(KindInt32, 4)
	Uint64Vec2 = vector(KindUint64, 2)
	Uint64Vec3 = vector(KindUint64, 3)
	Uint64Vec4 = vector(KindUint64, 4)
	Int64Vec2  = vector(KindInt64, 2)
	Int64Vec3  = vector(KindInt64, 3)
	Int64Vec4  = vector(KindInt64, 4)
	HalfVec2   = vector(KindHalf, 2)
	HalfVec3   = vector(KindHalf, 3)
	HalfVec4   = vector(KindHalf, 4)
	FloatVec2  = vector(KindFloat32, 2)
	FloatVec3  = vector(KindFloat32, 3)
	FloatVec4  = vector(KindFloat32, 4)
	DoubleVec2 = vector(KindFloat64, 2)
	DoubleVec3 = vector(KindFloat64, 3)
	DoubleVec4 = vector(KindFloat64, 4)
)

// SRGB-encoded 1-4 channel byte types.
var (
	SrgbR    = Type{kind: KindUint8, components: 1, srgb: true}
	SrgbRG   = Type{kind: KindUint8, components: 2, srgb: true}
	SrgbRGB  = Type{kind: KindUint8, components: 3, srgb: true}
	SrgbRGBA = Type{kind: KindUint8, components: 4, srgb: true}
)

// Integer pair vectors, used for index pairs (e.g. curve segment endpoints).
var (
	IntPair  = Type{kind: KindInt32, components: 2, pairs: 1}
	IntPair2 = Type{kind: KindInt32, components: 4, pairs: 2}
	IntPair3 = Type{kind: KindInt32, components: 6, pairs: 3}
	IntPair4 = Type{kind: KindInt32, components: 8, pairs: 4}
)

// Float matrices.
var (
	FloatMat2   = Type{kind: KindFloat32, components: 4, matRows: 2, matCols: 2}
	FloatMat3   = Type{kind: KindFloat32, components: 9, matRows: 3, matCols: 3}
	FloatMat4   = Type{kind: KindFloat32, components: 16, matRows: 4, matCols: 4}
	FloatMat2x3 = Type{kind: KindFloat32, components: 6, matRows: 2, matCols: 3}
	FloatMat3x4 = Type{kind: KindFloat32, components: 12, matRows: 3, matCols: 4}
)

// UnknownTypeError is reported when a source type cannot be mapped onto any
// recognized shape.
type UnknownTypeError struct{ Detail string }

func (e *UnknownTypeError) Error() string { return "usdtype: unknown type: " + e.Detail }

// ShapeMismatchError is reported when a requested conversion would either
// lose components or disagree on vertex/primitive binding.
type ShapeMismatchError struct{ Detail string }

func (e *ShapeMismatchError) Error() string { return "usdtype: shape mismatch: " + e.Detail }
