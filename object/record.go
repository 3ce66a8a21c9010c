package object

import (
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/usdscene/paramtable"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// UnsupportedTypeError is reported (as a warning, not a hard failure) when
// SetParam is called with a source type outside a parameter's accepted set
// (spec §6: "parameters set with a source type outside the permitted set
// emit a warning and are not applied").
type UnsupportedTypeError struct {
	Param string
	Type  usdtype.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("object: parameter %q does not accept type %v", e.Param, e.Type)
}

// slot holds one parameter's live value plus its change flag. TypeTag is
// only meaningful when the originating Descriptor.HasTypeTag() is true.
type slot struct {
	typeTag usdtype.Type
	value   any
	changed bool
	isRef   bool // true if value is a Handle or StringRef (participates in refcounting)
}

// Record is one of the two (write or read) parameter records a
// Parameterized object owns (spec §3 "Parameter record (read/write)").
type Record struct {
	table *paramtable.Table
	slots map[string]*slot
}

func newRecord(table *paramtable.Table) *Record {
	return &Record{table: table, slots: make(map[string]*slot)}
}

// valueEqual implements the "content comparison, not just pointer"
// requirement of spec §4.2's setParam.
func valueEqual(a, b any) bool {
	if sa, ok := a.(StringRef); ok {
		sb, ok := b.(StringRef)
		return ok && sa.sameContent(sb)
	}
	return reflect.DeepEqual(a, b)
}

func isRefValue(v any) bool {
	switch v.(type) {
	case Handle, StringRef, []Handle:
		return true
	default:
		return false
	}
}

// SetParam validates typ against name's accepted types, compares value
// against the current write-slot content, and if different, releases any
// old object/string reference, installs the new value, and reports whether
// the parameter changed. Unknown names are silently ignored (applied=false, no
// error). Disallowed types report UnsupportedTypeError and leave the slot
// untouched.
func (r *Record) SetParam(name string, typ usdtype.Type, value any, rc RefCounter) (applied, changed bool, err error) {
	d, ok := r.table.Lookup(name)
	if !ok {
		return false, false, nil
	}
	if !d.Accepts(typ) {
		return false, false, &UnsupportedTypeError{Param: name, Type: typ}
	}
	s, exists := r.slots[name]
	if !exists {
		s = &slot{}
		r.slots[name] = s
	}
	if exists && valueEqual(s.value, value) {
		return true, false, nil
	}
	if s.isRef {
		releaseRef(s.value, rc)
	}
	newIsRef := isRefValue(value)
	if newIsRef {
		retainRef(value, rc)
	}
	s.typeTag = typ
	s.value = value
	s.isRef = newIsRef
	s.changed = true
	return true, true, nil
}

func retainRef(v any, rc RefCounter) {
	switch x := v.(type) {
	case Handle:
		if x != Nil && rc != nil {
			rc.IncRefInternal(x)
		}
	case StringRef:
		x.Retain()
	case []Handle:
		if rc == nil {
			return
		}
		for _, h := range x {
			if h != Nil {
				rc.IncRefInternal(h)
			}
		}
	}
}

func releaseRef(v any, rc RefCounter) {
	switch x := v.(type) {
	case Handle:
		if x != Nil && rc != nil {
			rc.DecRefInternal(x)
		}
	case StringRef:
		x.Release()
	case []Handle:
		if rc == nil {
			return
		}
		for _, h := range x {
			if h != Nil {
				rc.DecRefInternal(h)
			}
		}
	}
}

// ResetParam releases name's current value (if any) and restores its
// registered default.
func (r *Record) ResetParam(name string, rc RefCounter) {
	d, ok := r.table.Lookup(name)
	if !ok {
		return
	}
	s, exists := r.slots[name]
	if !exists {
		return
	}
	if s.isRef {
		releaseRef(s.value, rc)
	}
	s.value = d.Default
	s.isRef = isRefValue(d.Default)
	if s.isRef {
		retainRef(s.value, rc)
	}
	s.changed = true
}

// ResetParams resets every registered parameter in the table to its
// default.
func (r *Record) ResetParams(rc RefCounter) {
	for _, name := range r.table.Names() {
		if _, exists := r.slots[name]; exists {
			r.ResetParam(name, rc)
		}
	}
}

// Get returns the current value of name and whether it has been set.
func (r *Record) Get(name string) (value any, ok bool) {
	s, exists := r.slots[name]
	if !exists {
		return nil, false
	}
	return s.value, true
}

// Changed reports whether name's value changed since the last
// TransferWriteToRead (or since creation).
func (r *Record) Changed(name string) bool {
	s, exists := r.slots[name]
	return exists && s.changed
}

// clearChanged resets every slot's changed flag, called after a commit.
func (r *Record) clearChanged() {
	for _, s := range r.slots {
		s.changed = false
	}
}

// transferWriteToRead implements §4.2's transferWriteToRead: per-parameter
// bytewise (content) compare of write vs read; on difference, retain the
// write side's ref before releasing the read side's (so an identical-target
// case is a no-op), then copy the value across. Setting "usd::time" never
// flips paramChanged on the destination, so retiming an existing reference
// does not force a full re-commit.
func transferWriteToRead(write, read *Record, rc RefCounter) (anyChanged bool) {
	for name, ws := range write.slots {
		if !ws.changed {
			continue
		}
		rs, exists := read.slots[name]
		if !exists {
			rs = &slot{}
			read.slots[name] = rs
		}
		if valueEqual(rs.value, ws.value) {
			continue
		}
		if ws.isRef {
			retainRef(ws.value, rc)
		}
		if rs.isRef {
			releaseRef(rs.value, rc)
		}
		rs.typeTag = ws.typeTag
		rs.value = ws.value
		rs.isRef = ws.isRef
		if name != "usd::time" {
			rs.changed = true
			anyChanged = true
		}
	}
	return anyChanged
}
