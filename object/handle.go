package object

// Handle identifies an Object. It is the only thing client code and other
// Objects hold onto; the Object itself always lives in a Pool.
type Handle int

// Nil is the invalid Handle.
const Nil Handle = 0

// Kind enumerates the polymorphic Object variants (spec §3).
type Kind int

const (
	KindWorld Kind = iota
	KindInstance
	KindGroup
	KindSurface
	KindVolume
	KindSpatialField
	KindGeometry
	KindMaterial
	KindSampler
	KindLight
	KindCamera
	KindDataArray
	KindFrame
	KindRenderer
)

func (k Kind) String() string {
	switch k {
	case KindWorld:
		return "world"
	case KindInstance:
		return "instance"
	case KindGroup:
		return "group"
	case KindSurface:
		return "surface"
	case KindVolume:
		return "volume"
	case KindSpatialField:
		return "spatialfield"
	case KindGeometry:
		return "geometry"
	case KindMaterial:
		return "material"
	case KindSampler:
		return "sampler"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	case KindDataArray:
		return "array"
	case KindFrame:
		return "frame"
	case KindRenderer:
		return "renderer"
	default:
		return "unknown"
	}
}

// RefCounter is implemented by whatever owns the object graph (the Pool
// itself) so that Record can bump/drop the internal refcount of any
// Handle-valued parameter it stores, without needing to know about Pool's
// other bookkeeping.
type RefCounter interface {
	IncRefInternal(h Handle)
	DecRefInternal(h Handle)
}
