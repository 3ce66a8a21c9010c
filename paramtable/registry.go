package paramtable

import "sync"

// Registry lazily builds and caches one Table per object class, so that
// each class's schema is constructed exactly once for the lifetime of the
// process, regardless of how many objects of that class are created.
//
// This mirrors the one-time-builder pattern used throughout the corpus for
// per-kind static configuration (e.g. shader annotation tables), adapted
// here to per-class parameter schemas instead of a single global table.
type Registry struct {
	mu       sync.Mutex
	builders map[string]func() *Table
	tables   map[string]*Table
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]func() *Table),
		tables:   make(map[string]*Table),
	}
}

// Define registers the builder function used to construct class's Table the
// first time it is requested via For. Calling Define twice for the same
// class replaces the builder only if the Table has not yet been built.
func (r *Registry) Define(class string, build func() *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, built := r.tables[class]; built {
		return
	}
	r.builders[class] = build
}

// For returns the Table for class, building it on first use and caching it
// thereafter. It panics if class was never Define'd (a schema bug).
func (r *Registry) For(class string) *Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[class]; ok {
		return t
	}
	build, ok := r.builders[class]
	if !ok {
		panic("paramtable: no builder defined for class " + class)
	}
	t := build()
	r.tables[class] = t
	return t
}
