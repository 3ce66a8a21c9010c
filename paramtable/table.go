// Package paramtable implements the per-class parameter schema: a
// process-lifetime immutable table, built once per object class, that
// records which source types a named parameter accepts and its default
// value. It is the static half of §4.2; the per-object dual read/write
// records that consult it live in package object.
package paramtable

import (
	"fmt"

	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// Descriptor is a single named parameter slot: the source types it accepts
// (one to three) and its default value.
//
// A Descriptor with more than one accepted Type carries a type tag
// alongside its value at runtime (object.Record stamps the matching type
// when the value is set), mirroring the source's alternative-type
// parameters (transform ops, numeric literals accepted as either int or
// float, etc).
type Descriptor struct {
	Name    string
	Types   []usdtype.Type
	Default any
}

// HasTypeTag reports whether d accepts more than one source type and so
// needs a runtime type tag alongside its value.
func (d *Descriptor) HasTypeTag() bool { return len(d.Types) > 1 }

// Accepts reports whether t is one of d's permitted source types.
func (d *Descriptor) Accepts(t usdtype.Type) bool {
	for _, want := range d.Types {
		if want == t {
			return true
		}
	}
	return false
}

// Table is an immutable, per-class set of parameter Descriptors, indexed by
// name for O(1) lookup.
type Table struct {
	order []string
	byName map[string]*Descriptor
}

// NewBuilder starts constructing a Table. Call Register/RegisterArray any
// number of times, then Build to obtain the immutable Table.
type Builder struct {
	t *Table
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{t: &Table{byName: make(map[string]*Descriptor)}}
}

// Register adds a single named parameter accepting one to three source
// types, with the given default value. It panics if name is already
// registered or if more than three types are given (both are schema bugs,
// never a function of client input).
func (b *Builder) Register(name string, def any, types ...usdtype.Type) *Builder {
	if len(types) == 0 || len(types) > 3 {
		panic(fmt.Sprintf("paramtable: %q must accept 1-3 types, got %d", name, len(types)))
	}
	if _, exists := b.t.byName[name]; exists {
		panic(fmt.Sprintf("paramtable: %q already registered", name))
	}
	d := &Descriptor{Name: name, Types: append([]usdtype.Type(nil), types...), Default: def}
	b.t.byName[name] = d
	b.t.order = append(b.t.order, name)
	return b
}

// RegisterArray expands a single registration into count entries named
// "<prefix>0".."<prefix>(count-1)", e.g. repeated transform ops or
// primitive.attribute0..15. Each expanded entry shares the same accepted
// types and default.
func (b *Builder) RegisterArray(prefix string, count int, def any, types ...usdtype.Type) *Builder {
	for i := 0; i < count; i++ {
		b.Register(fmt.Sprintf("%s%d", prefix, i), def, types...)
	}
	return b
}

// Build finalizes the Table. The Builder must not be reused afterwards.
func (b *Builder) Build() *Table {
	t := b.t
	b.t = nil
	return t
}

// Lookup returns the Descriptor registered under name, or (nil, false) if
// the name is unknown. Unknown parameter names are silently ignored by
// callers per spec §6 ("unknown parameter names are silently ignored").
func (t *Table) Lookup(name string) (*Descriptor, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Names returns every registered parameter name, in registration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of registered parameters.
func (t *Table) Len() int { return len(t.order) }
