package object

import (
	"testing"

	"github.com/Carmen-Shannon/usdscene/usdtype"
)

func TestTableForEveryKind(t *testing.T) {
	kinds := []Kind{
		KindWorld, KindInstance, KindGroup, KindSurface, KindVolume,
		KindSpatialField, KindGeometry, KindMaterial, KindSampler,
		KindLight, KindCamera, KindDataArray, KindFrame, KindRenderer,
	}
	for _, k := range kinds {
		table := TableFor(k)
		if table == nil || table.Len() == 0 {
			t.Errorf("TableFor(%v) returned an empty table", k)
		}
		// Calling twice must return the cached, identical table (built once
		// per process per spec §4.2).
		if TableFor(k) != table {
			t.Errorf("TableFor(%v) rebuilt the table on second call", k)
		}
	}
}

func TestGeometrySchemaAcceptsVertexPosition(t *testing.T) {
	d, ok := TableFor(KindGeometry).Lookup("vertex.position")
	if !ok {
		t.Fatal("vertex.position not registered on geometry schema")
	}
	if !d.Accepts(usdtype.FloatVec3) {
		t.Error("vertex.position should accept FloatVec3")
	}
}
