package object

import (
	"testing"

	"github.com/Carmen-Shannon/usdscene/paramtable"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

func testTable() *paramtable.Table {
	return paramtable.NewBuilder().
		Register("usd::name", "", usdtype.Uint8).
		Register("usd::timestep", int32(0), usdtype.Int32).
		Register("usd::time", float64(0), usdtype.Float64).
		Register("child", Handle(Nil), usdtype.Int32).
		Build()
}

func TestSetParamChangeDetection(t *testing.T) {
	pool := NewPool()
	obj := pool.Create(KindGroup, testTable())

	applied, changed, err := obj.SetParam("usd::name", usdtype.Uint8, NewStringRef("foo"), pool)
	if err != nil || !applied || !changed {
		t.Fatalf("first set: applied=%v changed=%v err=%v", applied, changed, err)
	}
	if obj.Name() != "foo" {
		t.Errorf("Name() = %q, want foo", obj.Name())
	}

	applied, changed, err = obj.SetParam("usd::name", usdtype.Uint8, NewStringRef("foo"), pool)
	if err != nil || !applied || changed {
		t.Fatalf("identical set should not report changed: applied=%v changed=%v err=%v", applied, changed, err)
	}

	applied, _, err = obj.SetParam("bogus", usdtype.Uint8, "x", pool)
	if err != nil || applied {
		t.Errorf("unknown parameter should be silently ignored, got applied=%v err=%v", applied, err)
	}

	_, _, err = obj.SetParam("usd::name", usdtype.Float32, NewStringRef("bar"), pool)
	if err == nil {
		t.Error("expected UnsupportedTypeError for wrong type")
	}
	if _, ok := err.(*UnsupportedTypeError); !ok {
		t.Errorf("expected *UnsupportedTypeError, got %T", err)
	}
}

func TestUsdTimeDoesNotFlipChanged(t *testing.T) {
	pool := NewPool()
	obj := pool.Create(KindFrame, testTable())

	obj.SetParam("usd::time", usdtype.Float64, 1.0, pool)
	if obj.Commit(pool) {
		t.Fatal("setting only usd::time must not report changed, even on the first commit")
	}

	obj.SetParam("usd::time", usdtype.Float64, 2.0, pool)
	if obj.Commit(pool) {
		t.Error("retiming usd::time must not flip paramChanged on commit")
	}
	v, ok := obj.Read().Get("usd::time")
	if !ok || v.(float64) != 2.0 {
		t.Errorf("usd::time should still be transferred to the read side, got %v ok=%v", v, ok)
	}
}

func TestRefcountConservation(t *testing.T) {
	pool := NewPool()
	parent := pool.Create(KindGroup, testTable())
	child := pool.Create(KindGeometry, testTable())

	if pub, intern, _ := pool.RefCounts(child.Handle()); pub != 1 || intern != 0 {
		t.Fatalf("fresh child: public=%d internal=%d, want 1,0", pub, intern)
	}

	parent.SetParam("child", usdtype.Int32, child.Handle(), pool)
	parent.Commit(pool)
	if _, intern, _ := pool.RefCounts(child.Handle()); intern != 1 {
		t.Fatalf("after commit referencing child, internal=%d, want 1", intern)
	}

	parent.SetParam("child", usdtype.Int32, Nil, pool)
	parent.Commit(pool)
	if _, intern, _ := pool.RefCounts(child.Handle()); intern != 0 {
		t.Fatalf("after commit clearing reference, internal=%d, want 0", intern)
	}

	pool.Release(child.Handle())
	if _, _, ok := pool.RefCounts(child.Handle()); ok {
		t.Error("child should be destroyed once both refcounts reach zero")
	}
}

func TestReleaseDestroysOnlyAtZero(t *testing.T) {
	pool := NewPool()
	obj := pool.Create(KindCamera, testTable())
	pool.Retain(obj.Handle())

	pool.Release(obj.Handle())
	if _, ok := pool.Lookup(obj.Handle()); !ok {
		t.Fatal("object should survive first release while a second public ref is held")
	}

	pool.Release(obj.Handle())
	if _, ok := pool.Lookup(obj.Handle()); ok {
		t.Error("object should be destroyed once public refcount reaches zero")
	}
}

func TestResetParamRestoresDefault(t *testing.T) {
	pool := NewPool()
	obj := pool.Create(KindGroup, testTable())

	obj.SetParam("usd::timestep", usdtype.Int32, int32(5), pool)
	obj.Commit(pool)

	obj.ResetParam("usd::timestep", pool)
	obj.Commit(pool)

	v, ok := obj.Read().Get("usd::timestep")
	if !ok || v.(int32) != 0 {
		t.Errorf("usd::timestep after reset = %v, want 0", v)
	}
}

func TestHandleRecycledAfterDestruction(t *testing.T) {
	pool := NewPool()
	obj := pool.Create(KindLight, testTable())
	h := obj.Handle()
	pool.Release(h)

	next := pool.Create(KindLight, testTable())
	if next.Handle() != h {
		t.Errorf("expected recycled handle %d, got %d", h, next.Handle())
	}
}
