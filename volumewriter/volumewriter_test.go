package volumewriter

import "testing"

func TestReferenceWriterRoundTrip(t *testing.T) {
	w := New()
	if !w.Initialize("field0") {
		t.Fatal("Initialize returned false")
	}

	data := VolumeData{
		Dimensions: [3]int32{2, 2, 1},
		Origin:     [3]float32{0, 0, 0},
		Spacing:    [3]float32{1, 1, 1},
		Samples:    []float32{0, 1, 2, 3},
	}
	if err := w.ToVDB(data); err != nil {
		t.Fatalf("ToVDB: %v", err)
	}

	b, n := w.GetSerializedVolumeData()
	if n != len(b) || n == 0 {
		t.Fatalf("GetSerializedVolumeData returned inconsistent length: %d vs %d", n, len(b))
	}
	if string(b[:4]) != "UVDB" {
		t.Fatalf("unexpected magic header: %q", b[:4])
	}

	w.Release()
	b2, n2 := w.GetSerializedVolumeData()
	if b2 != nil || n2 != 0 {
		t.Fatalf("Release did not clear buffer")
	}
}

func TestToVDBRejectsShapeMismatch(t *testing.T) {
	w := New()
	w.Initialize("field0")
	data := VolumeData{Dimensions: [3]int32{2, 2, 2}, Samples: []float32{1, 2}}
	if err := w.ToVDB(data); err == nil {
		t.Fatal("expected an error for mismatched sample count")
	}
}

func TestToVDBRequiresInitialize(t *testing.T) {
	w := New()
	data := VolumeData{Dimensions: [3]int32{1, 1, 1}, Samples: []float32{1}}
	if err := w.ToVDB(data); err == nil {
		t.Fatal("expected an error when ToVDB is called before Initialize")
	}
}
