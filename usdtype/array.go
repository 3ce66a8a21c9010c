package usdtype

// Array carries one client-supplied source array: its element Type plus the
// element components flattened into a single float64 slice, the common
// intermediate attrwrite.Dispatch expects (spec §3 "Data array": "a typed,
// strided 1D/2D/3D buffer"; this module only ever needs the flattened 1D
// view by the time data reaches the writer).
//
// Storing the Type alongside the data lets object.Record's generic
// any-valued slots double as the "alternative source type" parameters spec
// §4.2 describes, without a separate type-tag lookup: Array.Type is both
// the accepted-type validated by paramtable.Descriptor.Accepts and the
// value attrwrite.Dispatch consumes.
type Array struct {
	Type Type
	Flat []float64
}

// Count returns the number of elements in the array (Flat's length divided
// by the element's component count). It is 0 for a zero Array or a
// zero-component Type.
func (a Array) Count() int {
	n := a.Type.ComponentCount()
	if n == 0 || len(a.Flat) == 0 {
		return 0
	}
	return len(a.Flat) / n
}
