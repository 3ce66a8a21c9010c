package primcache

import "sync"

// Manager is the named cache of prim Entries and their parent/child graph,
// grounded on UsdBridgePrimCacheManager (FindPrimCache/CreatePrimCache/
// AddChild/RemoveChild/RemoveUnreferencedPrimCaches) and on the teacher's
// loader's mutex-guarded map cache (engine/loader/loader.go's
// `modelCache map[string]model.Model` behind `sync.RWMutex`).
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewManager returns an empty prim cache.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*Entry)}
}

// FindOrCreate returns the Entry for (category, name), creating it if
// absent. existedInCache reports whether an Entry was already tracked
// under this key (spec §4.3 findOrCreate's "already-existed-in-cache").
// The caller is responsible for correlating "already-existed-in-stage"
// against the USD layer itself (usdwriter owns that check, since it alone
// knows what prims the stage already contains).
func (m *Manager) FindOrCreate(category, name string) (entry *Entry, existedInCache bool) {
	key := entryKey(category, name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		return e, true
	}
	e := &Entry{
		Category:       category,
		Name:           name,
		Path:           Path(category, name),
		visibleAtTimes: make(map[string]map[Timecode]struct{}),
	}
	m.entries[key] = e
	return e, false
}

// Lookup returns the Entry for (category, name) without creating it.
func (m *Manager) Lookup(category, name string) (*Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[entryKey(category, name)]
	return e, ok
}

// LookupKey returns the Entry stored under key, the same key recorded in
// a parent Entry's Children() list. Exported so callers walking a child
// list (e.g. ManageUnusedRefs) can resolve keys back to Entries without
// this package exposing entryKey's construction.
func (m *Manager) LookupKey(key string) (*Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

// RefClip returns the opaque value-clip descriptor recorded against
// refPath on entry, if any.
func (m *Manager) RefClip(e *Entry, refPath string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e.RefClips == nil {
		return nil, false
	}
	v, ok := e.RefClips[refPath]
	return v, ok
}

// SetRefClip records the opaque value-clip descriptor for refPath on
// entry, allocating the per-entry map on first use.
func (m *Manager) SetRefClip(e *Entry, refPath string, clip any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.RefClips == nil {
		e.RefClips = make(map[string]any)
	}
	e.RefClips[refPath] = clip
}

// AddChild appends child to parent's child list (if not already present)
// and increments child's refcount.
func (m *Manager) AddChild(parent, child *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entryKey(child.Category, child.Name)
	if parent.indexOfChild(key) >= 0 {
		return
	}
	parent.children = append(parent.children, key)
	child.refCount++
}

// RemoveChild removes child from parent's child list (if present) and
// decrements child's refcount. It also discards any visibility timecodes
// parent recorded for child.
func (m *Manager) RemoveChild(parent, child *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entryKey(child.Category, child.Name)
	idx := parent.indexOfChild(key)
	if idx < 0 {
		return
	}
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)
	delete(parent.visibleAtTimes, key)
	if child.refCount > 0 {
		child.refCount--
	}
}

// SetChildVisibleAt records that child is visible at t under parent.
func (m *Manager) SetChildVisibleAt(parent, child *Entry, t Timecode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entryKey(child.Category, child.Name)
	set, ok := parent.visibleAtTimes[key]
	if !ok {
		set = make(map[Timecode]struct{})
		parent.visibleAtTimes[key] = set
	}
	set[t] = struct{}{}
}

// SetChildInvisibleAt removes t from the set of timecodes at which child
// is visible under parent. It reports true iff t was present and removing
// it left the set empty, the signal the writer uses to decide whether to
// remove the child reference prim entirely (spec §4.3).
func (m *Manager) SetChildInvisibleAt(parent, child *Entry, t Timecode) (becameEmpty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entryKey(child.Category, child.Name)
	set, ok := parent.visibleAtTimes[key]
	if !ok {
		return false
	}
	if _, present := set[t]; !present {
		return false
	}
	delete(set, t)
	return len(set) == 0
}

// RemoveUnreferenced runs the two-pass GC described in spec §4.3: first
// recursively decrement children of every zero-refcount entry (collecting
// any entry that newly drops to zero refcount as a result), then erase
// every zero-refcount entry, invoking onRemove for each so the caller can
// delete the backing prim/resource files.
func (m *Manager) RemoveUnreferenced(onRemove func(e *Entry)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dead := make(map[string]*Entry)
	var collect func(key string, e *Entry)
	collect = func(key string, e *Entry) {
		if e.refCount > 0 {
			return
		}
		if _, already := dead[key]; already {
			return
		}
		dead[key] = e
		for _, childKey := range e.children {
			if child, ok := m.entries[childKey]; ok {
				if child.refCount > 0 {
					child.refCount--
				}
				collect(childKey, child)
			}
		}
	}
	for key, e := range m.entries {
		if e.refCount == 0 {
			collect(key, e)
		}
	}

	for key, e := range dead {
		delete(m.entries, key)
		if onRemove != nil {
			onRemove(e)
		}
	}
}

// ClipStage returns the clip stage lazily allocated for entry at t, if any.
func (m *Manager) ClipStage(e *Entry, t Timecode) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e.ClipStages == nil {
		return nil, false
	}
	s, ok := e.ClipStages[t]
	return s, ok
}

// SetClipStage records the clip stage for entry at t, allocating the
// per-entry map on first use.
func (m *Manager) SetClipStage(e *Entry, t Timecode, stage any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ClipStages == nil {
		e.ClipStages = make(map[Timecode]any)
	}
	e.ClipStages[t] = stage
}

// KeyOf returns the internal lookup key for e, the same string recorded in
// a parent Entry's Children() list and expected as a map key by
// ManageUnusedRefs' newChildren argument. Exported so callers outside this
// package (the engine facade, materializing a World/Group/Instance/Surface's
// child reference set) can build that map without reimplementing the
// sanitize-and-join rule entryKey applies.
func (m *Manager) KeyOf(e *Entry) string {
	return entryKey(e.Category, e.Name)
}

// Len reports the number of live entries, for tests and diagnostics.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns every live Entry, in no particular order. Callers that
// need a stable order (e.g. writing manifest/clip layers out in a
// deterministic sequence) should sort by e.Path themselves.
func (m *Manager) Entries() []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out
}
