package resource

import "testing"

func TestAcquireDedupByKey(t *testing.T) {
	r := NewRegistry()
	k := Key{Name: "checker", Timestep: 3}

	if existed := r.Acquire(k); existed {
		t.Fatal("first Acquire should report not-existed")
	}
	if existed := r.Acquire(k); !existed {
		t.Fatal("second Acquire of the same key should report existed")
	}
	if got := r.RefCount(k); got != 2 {
		t.Errorf("RefCount = %d, want 2", got)
	}
}

func TestReleaseRemovesAtZero(t *testing.T) {
	r := NewRegistry()
	k := Key{Name: "checker", Timestep: 3}
	r.Acquire(k)
	r.Acquire(k)

	if removed := r.Release(k); removed {
		t.Fatal("release from refcount 2 should not remove yet")
	}
	if removed := r.Release(k); !removed {
		t.Fatal("release from refcount 1 should remove the entry")
	}
	if r.Len() != 0 {
		t.Errorf("registry should be empty, got %d entries", r.Len())
	}
}

func TestShouldWriteOncePerKey(t *testing.T) {
	r := NewRegistry()
	k := Key{Name: "x", Timestep: 0}

	if !r.ShouldWrite(k, "images/x.png") {
		t.Fatal("first ShouldWrite for a key should return true")
	}
	if r.ShouldWrite(k, "images/x.png") {
		t.Fatal("second ShouldWrite for the same key this run should return false")
	}
	path, ok := r.Path(k)
	if !ok || path != "images/x.png" {
		t.Errorf("Path = %q, %v; want images/x.png, true", path, ok)
	}
}

func TestResetWrittenFlagsAllowsRewrite(t *testing.T) {
	r := NewRegistry()
	k := Key{Name: "x", Timestep: 0}

	r.ShouldWrite(k, "images/x.png")
	r.ResetWrittenFlags()

	if !r.ShouldWrite(k, "images/x.png") {
		t.Error("after ResetWrittenFlags, ShouldWrite should return true again")
	}
}

func TestAnonymousKeysAreDistinctPerTimestep(t *testing.T) {
	r := NewRegistry()
	k1 := Key{Timestep: 0}
	k2 := Key{Timestep: 1}
	if k1 == k2 {
		t.Fatal("sanity: distinct timesteps must not compare equal")
	}
	r.Acquire(k1)
	r.Acquire(k2)
	if r.Len() != 2 {
		t.Errorf("anonymous keys at different timesteps should not collapse, got %d entries", r.Len())
	}
}
