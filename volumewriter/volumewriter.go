// Package volumewriter implements the external VolumeWriter boundary spec
// §6 describes: a small serialize-to-bytes contract the USD writer calls
// into so that spatial-field parameter data can be turned into an
// OpenVDB-style asset without the core depending on any particular VDB
// library. No OpenVDB Go binding exists anywhere in this module's
// dependency surface or the retrieval pack, so the reference
// implementation here treats the byte encoding as an opaque, writer-owned
// contract, the same way the teacher's engine/renderer/material package
// treats GPU resource references as opaque until the loader's GPU-init
// phase fills them in.
package volumewriter

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/usdscene/usderr"
)

// VolumeData is the flattened payload a spatial field commits: its voxel
// grid dimensions, origin, voxel spacing, and the scalar samples
// themselves (row-major, X fastest).
type VolumeData struct {
	Dimensions [3]int32
	Origin     [3]float32
	Spacing    [3]float32
	Samples    []float32
}

// Writer is the external VolumeWriter boundary (spec §6):
//
//	initialize(logObj) -> bool
//	toVDB(volumeData)
//	getSerializedVolumeData() -> (bytes, size)
//	release()
//
// logObj in the original interface is the diagnostic target for
// initialization failures; here callers pass the owning object's name.
// The reference implementation in this package ignores it.
type Writer interface {
	Initialize(logObj string) bool
	ToVDB(data VolumeData) error
	GetSerializedVolumeData() ([]byte, int)
	Release()
}

// memoryWriter is the reference Writer: it encodes VolumeData into a
// small self-describing binary buffer rather than a real VDB file (no VDB
// library is available to this module), but it honors the two-phase
// contract exactly — ToVDB stages, GetSerializedVolumeData hands back the
// staged bytes, Release frees them.
type memoryWriter struct {
	initialized bool
	buf         []byte
}

// New returns a reference in-memory VolumeWriter.
func New() Writer {
	return &memoryWriter{}
}

func (w *memoryWriter) Initialize(logObj string) bool {
	w.initialized = true
	w.buf = nil
	return true
}

// ToVDB serializes data into w's internal buffer. The encoding is this
// module's own: an 8-byte magic/version header, the grid dimensions,
// origin, spacing, and the raw float32 sample payload, little-endian
// throughout. It is not a real OpenVDB stream; it exists so the writer's
// two-phase volume commit (spec §4.4.7/§9) has real bytes to flush to
// disk when no VDB encoder is linked in.
func (w *memoryWriter) ToVDB(data VolumeData) error {
	if !w.initialized {
		return fmt.Errorf("%w: volumewriter: ToVDB called before Initialize", usderr.LogicError)
	}
	n := int(data.Dimensions[0]) * int(data.Dimensions[1]) * int(data.Dimensions[2])
	if n <= 0 {
		return fmt.Errorf("%w: volumewriter: zero-size volume %v", usderr.InvalidArgument, data.Dimensions)
	}
	if len(data.Samples) != n {
		return fmt.Errorf("%w: volumewriter: expected %d samples for dimensions %v, got %d",
			usderr.ShapeMismatch, n, data.Dimensions, len(data.Samples))
	}

	buf := make([]byte, 0, 8+12+12+12+len(data.Samples)*4)
	buf = append(buf, 'U', 'V', 'D', 'B', 0, 1, 0, 0)
	for _, d := range data.Dimensions {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(d))
	}
	for _, f := range data.Origin {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	for _, f := range data.Spacing {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	for _, f := range data.Samples {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	w.buf = buf
	return nil
}

func (w *memoryWriter) GetSerializedVolumeData() ([]byte, int) {
	return w.buf, len(w.buf)
}

func (w *memoryWriter) Release() {
	w.buf = nil
	w.initialized = false
}
