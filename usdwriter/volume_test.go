package usdwriter

import (
	"testing"

	"github.com/Carmen-Shannon/usdscene/connection"
	"github.com/Carmen-Shannon/usdscene/internal/flush"
	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usdtype"
)

func volumeAndField(t *testing.T) (vol, field *object.Object) {
	t.Helper()
	pool := object.NewPool()
	field = pool.Create(object.KindSpatialField, object.TableFor(object.KindSpatialField))
	vol = pool.Create(object.KindVolume, object.TableFor(object.KindVolume))
	if _, _, err := vol.SetParam("field", usdtype.Int32, field.Handle(), pool); err != nil {
		t.Fatalf("set field: %v", err)
	}
	vol.Commit(pool)
	return vol, field
}

func commitFieldData(t *testing.T, field *object.Object) {
	t.Helper()
	pool := object.NewPool()
	dims := usdtype.Array{Type: usdtype.Int32Vec3, Flat: []float64{2, 2, 1}}
	origin := usdtype.Array{Type: usdtype.FloatVec3, Flat: []float64{0, 0, 0}}
	spacing := usdtype.Array{Type: usdtype.FloatVec3, Flat: []float64{1, 1, 1}}
	data := usdtype.Array{Type: usdtype.Float32, Flat: []float64{0, 1, 2, 3}}
	if _, _, err := field.SetParam("dimensions", usdtype.Int32Vec3, dims, pool); err != nil {
		t.Fatalf("set dimensions: %v", err)
	}
	if _, _, err := field.SetParam("origin", usdtype.FloatVec3, origin, pool); err != nil {
		t.Fatalf("set origin: %v", err)
	}
	if _, _, err := field.SetParam("spacing", usdtype.FloatVec3, spacing, pool); err != nil {
		t.Fatalf("set spacing: %v", err)
	}
	if _, _, err := field.SetParam("data", usdtype.Float32, data, pool); err != nil {
		t.Fatalf("set data: %v", err)
	}
	field.Commit(pool)
}

func TestUpdateVolumeDefersUntilFieldDataCommitted(t *testing.T) {
	w := newTestWriter(t)
	volEntry, _ := w.Cache().FindOrCreate("volumes", "fog")
	vol, field := volumeAndField(t)

	notYetFound := func(object.Handle) (*primcache.Entry, *object.Object, bool) { return nil, nil, false }
	if err := w.UpdateVolume(volEntry, vol, notYetFound, 0); err != nil {
		t.Fatalf("UpdateVolume: %v", err)
	}
	if err := w.flushQ.Run(0); err != nil {
		t.Fatalf("flushQ.Run: %v", err)
	}
	if w.flushQ.Len() != 1 {
		t.Fatalf("flushQ.Len() = %d, want 1 (field not yet committed, entry stays queued)", w.flushQ.Len())
	}

	fieldEntry, _ := w.Cache().FindOrCreate("spatialfields", "fog_density")
	commitFieldData(t, field)
	found := func(object.Handle) (*primcache.Entry, *object.Object, bool) { return fieldEntry, field, true }

	// Replace the still-deferred entry with one that can resolve, as the
	// engine facade would on the next commit carrying a live lookup.
	w.flushQ = flush.NewQueue(0, 0, 0)
	if err := w.UpdateVolume(volEntry, vol, found, 0); err != nil {
		t.Fatalf("UpdateVolume (resolved): %v", err)
	}
	if err := w.flushQ.Run(0); err != nil {
		t.Fatalf("flushQ.Run (resolved): %v", err)
	}
	if w.flushQ.Len() != 0 {
		t.Fatalf("flushQ.Len() = %d, want 0 once the field has data", w.flushQ.Len())
	}

	master, ok := w.Master().Lookup(volEntry.Path)
	if !ok {
		t.Fatal("expected volume prim to exist")
	}
	rel, ok := master.Relationship("field:density")
	if !ok || len(rel.Targets) != 1 {
		t.Fatalf("field:density relationship = %v, want one target", rel)
	}

	stub := w.conn.(*connection.TestStub)
	if _, ok := stub.File(w.sessionDir + "/volumes/fog_density.vdb"); !ok {
		t.Error("expected volumes/fog_density.vdb to have been written")
	}
}

func TestUpdateVolumeWithNoFieldClearsRelationship(t *testing.T) {
	w := newTestWriter(t)
	entry, _ := w.Cache().FindOrCreate("volumes", "empty")
	pool := object.NewPool()
	vol := pool.Create(object.KindVolume, object.TableFor(object.KindVolume))
	vol.Commit(pool)

	noField := func(object.Handle) (*primcache.Entry, *object.Object, bool) { return nil, nil, false }
	if err := w.UpdateVolume(entry, vol, noField, 0); err != nil {
		t.Fatalf("UpdateVolume: %v", err)
	}
	if w.flushQ.Len() != 0 {
		t.Errorf("flushQ.Len() = %d, want 0 when the volume has no field", w.flushQ.Len())
	}
	master, ok := w.Master().Lookup(entry.Path)
	if !ok {
		t.Fatal("expected volume prim to exist")
	}
	rel, ok := master.Relationship("field:density")
	if !ok || len(rel.Targets) != 0 {
		t.Errorf("field:density relationship = %v, want no targets", rel)
	}
}
