package object

import "sync/atomic"

// StringRef is a refcounted string holder so that string-typed parameters
// participate in the same retain/release machinery as object-typed ones
// (spec §4.2: "Strings are wrapped in a refcounted holder so they
// participate uniformly").
type StringRef struct {
	s  string
	rc *int32
}

// NewStringRef wraps s with an initial refcount of 1.
func NewStringRef(s string) StringRef {
	n := int32(1)
	return StringRef{s: s, rc: &n}
}

// Retain increments the refcount and returns the receiver for chaining.
func (r StringRef) Retain() StringRef {
	if r.rc != nil {
		atomic.AddInt32(r.rc, 1)
	}
	return r
}

// Release decrements the refcount.
func (r StringRef) Release() {
	if r.rc != nil {
		atomic.AddInt32(r.rc, -1)
	}
}

// RefCount returns the current refcount, or 0 for the zero StringRef.
func (r StringRef) RefCount() int32 {
	if r.rc == nil {
		return 0
	}
	return atomic.LoadInt32(r.rc)
}

// String returns the wrapped string value.
func (r StringRef) String() string { return r.s }

// sameContent reports whether two StringRef values hold the same text,
// regardless of refcount holder identity (content comparison, spec §4.2).
func (r StringRef) sameContent(other StringRef) bool { return r.s == other.s }
