package object

import (
	"sync"

	"github.com/Carmen-Shannon/usdscene/paramtable"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

// Object is a single parameterized scene entity: a Kind tag, the parameter
// table that governs what it accepts, and the write/read Record pair that
// Commit moves values between (spec §3, §4.2).
type Object struct {
	handle  Handle
	kind    Kind
	subtype string
	name    string
	table   *paramtable.Table

	write *Record
	read  *Record

	refsPublic  int32
	refsIntern  int32
	initialized bool
}

// Handle returns the object's stable identifier.
func (o *Object) Handle() Handle { return o.handle }

// Kind returns the object's polymorphic variant.
func (o *Object) Kind() Kind { return o.kind }

// Subtype returns the object's variant-specific subtype, e.g. "sphere" for
// a KindGeometry, set once at creation (spec §3's Geometry/Sampler/Light
// sub-kinds: "mesh/sphere/cylinder/cone/curve/quad/triangle",
// "1D/2D/3D", "directional/point/dome").
func (o *Object) Subtype() string { return o.subtype }

// Name returns the object's printable name, set via the "usd::name"
// parameter convention and surfaced independently for diagnostics/logging.
func (o *Object) Name() string { return o.name }

// SetParam validates typ against name's accepted set and stages value on
// the write-side Record. Call Commit to make it visible on the read side.
// Arrays of objects (ANARI_ARRAY of handles) are expected to arrive already
// flattened into a single value, e.g. []Handle, per spec §4.2.
func (o *Object) SetParam(name string, typ usdtype.Type, value any, rc RefCounter) (applied, changed bool, err error) {
	applied, changed, err = o.write.SetParam(name, typ, value, rc)
	if applied && changed && name == "usd::name" {
		if s, ok := value.(StringRef); ok {
			o.name = s.String()
		} else if s, ok := value.(string); ok {
			o.name = s
		}
	}
	return applied, changed, err
}

// ResetParam restores name to its registered default on the write side.
func (o *Object) ResetParam(name string, rc RefCounter) { o.write.ResetParam(name, rc) }

// ResetParams restores every set parameter to its registered default on the
// write side.
func (o *Object) ResetParams(rc RefCounter) { o.write.ResetParams(rc) }

// Read returns the committed (read-side) Record, the one consumed by the
// USD writer stage.
func (o *Object) Read() *Record { return o.read }

// Write returns the staged (write-side) Record, the one clients mutate.
func (o *Object) Write() *Record { return o.write }

// Commit transfers every changed write-side value to the read side,
// adjusting internal refcounts as it goes, and reports whether anything
// actually changed (spec §4.2 transferWriteToRead).
func (o *Object) Commit(rc RefCounter) (changed bool) {
	changed = transferWriteToRead(o.write, o.read, rc)
	o.write.clearChanged()
	o.initialized = true
	return changed
}

// Pool owns the lifecycle of every Object: allocation, public/internal
// refcounting, and destruction once both counts reach zero (spec §3:
// "Every object is heap-allocated, intrusive-refcounted with separate
// public (client-owned) and internal (graph-owned) counts; destruction
// occurs when both reach zero.").
type Pool struct {
	mu      sync.RWMutex
	ids     idpool
	objects map[Handle]*Object
}

// NewPool returns an empty object pool.
func NewPool() *Pool {
	return &Pool{objects: make(map[Handle]*Object)}
}

// Create allocates a new Object of kind using table as its parameter
// schema, with one public reference already held by the caller.
func (p *Pool) Create(kind Kind, table *paramtable.Table) *Object {
	return p.CreateTyped(kind, "", table)
}

// CreateTyped is Create plus a variant-specific subtype string (spec §3's
// sub-kinds), stamped once and never changed thereafter.
func (p *Pool) CreateTyped(kind Kind, subtype string, table *paramtable.Table) *Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := Handle(p.ids.alloc())
	obj := &Object{
		handle:     h,
		kind:       kind,
		subtype:    subtype,
		table:      table,
		write:      newRecord(table),
		read:       newRecord(table),
		refsPublic: 1,
	}
	p.objects[h] = obj
	return obj
}

// Lookup returns the object behind h, if it is still live.
func (p *Pool) Lookup(h Handle) (*Object, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	obj, ok := p.objects[h]
	return obj, ok
}

// Retain increments h's public refcount. It is a no-op for a dead or Nil
// handle.
func (p *Pool) Retain(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if obj, ok := p.objects[h]; ok {
		obj.refsPublic++
	}
}

// Release decrements h's public refcount and destroys the object once both
// refcounts have reached zero.
func (p *Pool) Release(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	obj, ok := p.objects[h]
	if !ok {
		return
	}
	if obj.refsPublic > 0 {
		obj.refsPublic--
	}
	p.destroyIfUnreferenced(obj)
}

// IncRefInternal implements RefCounter: it bumps h's graph-owned refcount,
// called whenever a committed parameter on another object newly targets h.
func (p *Pool) IncRefInternal(h Handle) {
	if h == Nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if obj, ok := p.objects[h]; ok {
		obj.refsIntern++
	}
}

// DecRefInternal implements RefCounter: it drops h's graph-owned refcount,
// destroying the object if both refcounts have reached zero.
func (p *Pool) DecRefInternal(h Handle) {
	if h == Nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	obj, ok := p.objects[h]
	if !ok {
		return
	}
	if obj.refsIntern > 0 {
		obj.refsIntern--
	}
	p.destroyIfUnreferenced(obj)
}

// destroyIfUnreferenced removes obj from the pool and recycles its handle
// once both refcounts are zero. Caller must hold p.mu.
func (p *Pool) destroyIfUnreferenced(obj *Object) {
	if obj.refsPublic > 0 || obj.refsIntern > 0 {
		return
	}
	delete(p.objects, obj.handle)
	p.ids.free(int(obj.handle))
}

// RefCounts reports the current public/internal refcounts of h, for tests
// and diagnostics.
func (p *Pool) RefCounts(h Handle) (public, internal int32, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	obj, exists := p.objects[h]
	if !exists {
		return 0, 0, false
	}
	return obj.refsPublic, obj.refsIntern, true
}

// Len reports the number of live objects, for tests and diagnostics.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.objects)
}
