// Package resource implements the shared-resource registry (spec §4.3's
// sibling concept referenced from §4.4.6 samplers and §4.4.7 volumes): a
// refcounted, (name, timestep)-keyed dedup table so that N objects naming
// the same external resource at the same timestep write it to backing
// storage exactly once per timestep.
package resource

import (
	"fmt"
	"sync"
)

// Key identifies a shared resource. Name is optional: when empty, every
// Key is unique per owning object and timestep (spec: "absent a name,
// each key is unique per object+timestep"), which this package implements
// by having the caller pass a per-object discriminator as part of Name in
// that case (e.g. a synthesized "<objectHandle>").
type Key struct {
	Name     string
	Timestep int64
}

func (k Key) String() string {
	if k.Name == "" {
		return fmt.Sprintf("<anon>@%d", k.Timestep)
	}
	return fmt.Sprintf("%s@%d", k.Name, k.Timestep)
}

// entry tracks one registered resource: its refcount and whether it has
// already been committed to backing storage this frame/commit cycle.
type entry struct {
	refCount      int
	writtenThisRun bool
	path           string
}

// Registry is the shared-resource registry described by spec §4.3/§4.4.6:
// reference-counted, keyed by (name, timestep), with a per-resource
// "written this frame" flag so repeated commits of the same unchanged
// resource skip re-encoding/re-writing it.
type Registry struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

// NewRegistry returns an empty shared-resource registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]*entry)}
}

// Acquire increments k's refcount, creating the entry if absent, and
// reports whether it already existed (i.e. this call is sharing an
// existing resource rather than introducing a new one).
func (r *Registry) Acquire(k Key) (existed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[k]
	if !ok {
		e = &entry{}
		r.entries[k] = e
	}
	e.refCount++
	return ok
}

// Release decrements k's refcount and removes the entry once it reaches
// zero, returning true if the entry was removed.
func (r *Registry) Release(k Key) (removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[k]
	if !ok {
		return false
	}
	if e.refCount > 0 {
		e.refCount--
	}
	if e.refCount == 0 {
		delete(r.entries, k)
		return true
	}
	return false
}

// RefCount reports k's current refcount (0 if absent).
func (r *Registry) RefCount(k Key) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[k]; ok {
		return e.refCount
	}
	return 0
}

// ShouldWrite reports whether k's backing resource still needs to be
// written this run, and if so, marks it written so subsequent callers
// sharing the same key skip the work (spec: "written to backing storage
// at most once per timestep per unique name"). path is recorded so later
// readers of the same key (e.g. a second sampler referencing the same
// image) can retrieve where it landed without redoing the write.
func (r *Registry) ShouldWrite(k Key, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[k]
	if !ok {
		e = &entry{}
		r.entries[k] = e
	}
	if e.writtenThisRun {
		return false
	}
	e.writtenThisRun = true
	e.path = path
	return true
}

// Path returns the backing-storage path recorded for k, if any write has
// occurred for it yet.
func (r *Registry) Path(k Key) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[k]
	if !ok || e.path == "" {
		return "", false
	}
	return e.path, true
}

// ResetWrittenFlags clears every entry's writtenThisRun flag, called once
// per commit/flush cycle (spec: "modified this frame" is a per-cycle
// concept, not sticky across cycles) so the next cycle re-evaluates
// whether each resource's content actually changed before skipping it.
func (r *Registry) ResetWrittenFlags() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.writtenThisRun = false
	}
}

// Len reports the number of tracked keys, for tests and diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
