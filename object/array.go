package object

// ObjectArray is the object-handle-array flavor of spec §3's "Data array":
// a client-owned []Handle buffer that participates in refcounting the way
// a single Handle-valued parameter does, but over a whole slice, plus the
// "map transparently snapshots the prior contents so that differences can
// be reconciled at unmap" protocol spec §5 describes.
type ObjectArray struct {
	handles  []Handle
	snapshot []Handle
	mapped   bool
}

// NewObjectArray wraps an initial slice of handles, retaining an internal
// reference on each (the array itself counts as one graph-owned referrer
// per contained object).
func NewObjectArray(handles []Handle, rc RefCounter) *ObjectArray {
	a := &ObjectArray{handles: append([]Handle(nil), handles...)}
	for _, h := range a.handles {
		if h != Nil && rc != nil {
			rc.IncRefInternal(h)
		}
	}
	return a
}

// Map snapshots the array's current contents and returns the live slice for
// the caller to mutate in place.
func (a *ObjectArray) Map() []Handle {
	a.snapshot = append([]Handle(nil), a.handles...)
	a.mapped = true
	return a.handles
}

// Unmap diffs the (possibly mutated) live slice against the Map-time
// snapshot: handles removed from the slice are internally released,
// handles newly present are internally retained, so the net refcount
// change reflects only what actually swapped (spec §5: "unmap diffs
// against the snapshot to restore correct internal refcounts on swapped
// elements").
func (a *ObjectArray) Unmap(rc RefCounter) {
	if !a.mapped {
		return
	}
	a.mapped = false

	before := counts(a.snapshot)
	after := counts(a.handles)
	for h, n := range before {
		if h == Nil {
			continue
		}
		if diff := n - after[h]; diff > 0 && rc != nil {
			for i := 0; i < diff; i++ {
				rc.DecRefInternal(h)
			}
		}
	}
	for h, n := range after {
		if h == Nil {
			continue
		}
		if diff := n - before[h]; diff > 0 && rc != nil {
			for i := 0; i < diff; i++ {
				rc.IncRefInternal(h)
			}
		}
	}
	a.snapshot = nil
}

// Handles returns the array's current contents without entering the
// map/unmap protocol.
func (a *ObjectArray) Handles() []Handle { return append([]Handle(nil), a.handles...) }

// Release drops the internal reference this array holds on every
// contained handle, called when the array object itself is destroyed.
func (a *ObjectArray) Release(rc RefCounter) {
	for _, h := range a.handles {
		if h != Nil && rc != nil {
			rc.DecRefInternal(h)
		}
	}
}

func counts(hs []Handle) map[Handle]int {
	m := make(map[Handle]int, len(hs))
	for _, h := range hs {
		m[h]++
	}
	return m
}
