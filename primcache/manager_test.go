package primcache

import "testing"

func TestSanitizeIdempotent(t *testing.T) {
	cases := []string{"Mesh 01", "123abc", "_already_ok", "a/b.c-d", ""}
	for _, c := range cases {
		once := sanitize(c)
		twice := sanitize(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for %q: %q vs %q", c, once, twice)
		}
	}
}

func TestSanitizeRules(t *testing.T) {
	if got := sanitize("1mesh"); got != "_mesh" {
		t.Errorf("leading digit: got %q, want _mesh", got)
	}
	if got := sanitize("my mesh.01"); got != "my_mesh_01" {
		t.Errorf("internal punctuation: got %q, want my_mesh_01", got)
	}
	if got := sanitize("_ok"); got != "_ok" {
		t.Errorf("leading underscore preserved: got %q", got)
	}
}

func TestFindOrCreateDeterministicPath(t *testing.T) {
	m := NewManager()
	e, existed := m.FindOrCreate("geometries", "Sphere 1")
	if existed {
		t.Fatal("first FindOrCreate should report not-existed")
	}
	want := "/RootClass/geometries/Sphere_1"
	if e.Path != want {
		t.Errorf("Path = %q, want %q", e.Path, want)
	}

	e2, existed2 := m.FindOrCreate("geometries", "Sphere 1")
	if !existed2 {
		t.Fatal("second FindOrCreate should report existed")
	}
	if e2 != e {
		t.Error("expected same Entry for identical (category, name)")
	}
}

func TestFindOrCreateCollisionAfterSanitize(t *testing.T) {
	m := NewManager()
	e1, _ := m.FindOrCreate("materials", "foo bar")
	e2, existed2 := m.FindOrCreate("materials", "foo.bar")
	if !existed2 || e1 != e2 {
		t.Error("objects whose sanitized names collide must resolve to the same entry")
	}
}

func TestAddRemoveChildRefcount(t *testing.T) {
	m := NewManager()
	parent, _ := m.FindOrCreate("groups", "g0")
	child, _ := m.FindOrCreate("geometries", "mesh0")

	if child.RefCount() != 0 {
		t.Fatalf("fresh entry refcount = %d, want 0", child.RefCount())
	}
	m.AddChild(parent, child)
	if child.RefCount() != 1 {
		t.Fatalf("after AddChild refcount = %d, want 1", child.RefCount())
	}
	if len(parent.Children()) != 1 {
		t.Fatalf("parent should have 1 child, got %d", len(parent.Children()))
	}

	m.AddChild(parent, child)
	if len(parent.Children()) != 1 {
		t.Error("AddChild should be idempotent for an already-listed child")
	}

	m.RemoveChild(parent, child)
	if child.RefCount() != 0 {
		t.Errorf("after RemoveChild refcount = %d, want 0", child.RefCount())
	}
	if len(parent.Children()) != 0 {
		t.Error("parent child list should be empty after RemoveChild")
	}
}

func TestVisibilityTimecodes(t *testing.T) {
	m := NewManager()
	parent, _ := m.FindOrCreate("groups", "g0")
	child, _ := m.FindOrCreate("geometries", "mesh0")
	m.AddChild(parent, child)

	m.SetChildVisibleAt(parent, child, 1)
	m.SetChildVisibleAt(parent, child, 2)

	if became := m.SetChildInvisibleAt(parent, child, 1); became {
		t.Error("removing one of two visible timecodes should not report empty")
	}
	if became := m.SetChildInvisibleAt(parent, child, 2); !became {
		t.Error("removing the last visible timecode should report empty")
	}
	if became := m.SetChildInvisibleAt(parent, child, 99); became {
		t.Error("removing an absent timecode should report false")
	}
}

func TestRemoveUnreferencedCascades(t *testing.T) {
	m := NewManager()
	root, _ := m.FindOrCreate("groups", "root")
	mid, _ := m.FindOrCreate("groups", "mid")
	leaf, _ := m.FindOrCreate("geometries", "leaf")
	other, _ := m.FindOrCreate("groups", "other")

	m.AddChild(root, mid)
	m.AddChild(mid, leaf)
	m.AddChild(other, leaf) // leaf has a second, independent referrer
	m.AddChild(other, other) // other holds itself, so it is not unreferenced

	// root has zero refcount (nothing external references it); the GC
	// must recursively walk root -> mid -> leaf, dropping leaf's refcount
	// from 2 to 1 without collecting it, since other still references it.
	var removed []string
	m.RemoveUnreferenced(func(e *Entry) { removed = append(removed, e.Name) })

	names := map[string]bool{}
	for _, n := range removed {
		names[n] = true
	}
	if !names["root"] || !names["mid"] {
		t.Fatalf("expected root and mid collected in one cascading pass, got %v", removed)
	}
	if names["leaf"] || names["other"] {
		t.Fatalf("leaf (still referenced by other) and other must survive, got %v", removed)
	}
	if leaf.RefCount() != 1 {
		t.Errorf("leaf refcount after GC = %d, want 1 (still held by other)", leaf.RefCount())
	}
	if m.Len() != 2 {
		t.Errorf("manager should retain leaf and other, got %d entries", m.Len())
	}
}

func TestEntriesReturnsEveryLiveEntry(t *testing.T) {
	m := NewManager()
	a, _ := m.FindOrCreate("geometries", "a")
	b, _ := m.FindOrCreate("materials", "b")

	entries := m.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() returned %d entries, want 2", len(entries))
	}
	seen := map[*Entry]bool{}
	for _, e := range entries {
		seen[e] = true
	}
	if !seen[a] || !seen[b] {
		t.Error("Entries() should include every entry created via FindOrCreate")
	}
}
