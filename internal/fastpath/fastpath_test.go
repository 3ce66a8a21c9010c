package fastpath

import "testing"

// TestNilAcceleratorIsANoOp confirms every method tolerates a nil receiver,
// the state a caller is in whenever Open's capability query failed (no GPU
// adapter available) and the fast path was never attached.
func TestNilAcceleratorIsANoOp(t *testing.T) {
	var a *Accelerator

	if err := a.MirrorWrite("/Root/geometry/mesh0", "points", []byte{1, 2, 3}); err != nil {
		t.Fatalf("MirrorWrite on nil Accelerator returned an error: %v", err)
	}
	if _, ok := a.Buffer("/Root/geometry/mesh0", "points"); ok {
		t.Fatal("Buffer reported a mirrored buffer on a nil Accelerator")
	}
	a.Close()
}
