// Package fastpath is the optional Fabric/USD-RT-equivalent accelerator
// spec §4.4.10 describes: "if a Fabric / USD-RT accelerator is attached,
// the same dispatch writes directly into a Fabric bucket; semantics are
// identical." There is no Fabric SDK in this module's dependency surface,
// so this package mirrors the same idea onto a real GPU buffer using
// github.com/cogentcore/webgpu, the teacher's own GPU backend
// (engine/renderer/wgpu_renderer_backend.go): one wgpu.Buffer per
// (prim path, attribute name) pair, refreshed with wgpu.Queue.WriteBuffer
// the same way the renderer mirrors bind_group_provider.BufferWrite
// entries into GPU memory every frame.
//
// The accelerator is attached only when a capability query at session
// open succeeds (an adapter/device can actually be acquired); callers
// must treat it as optional and fall back to the usdstage-only write path
// when Attach fails or is never called, per spec §9's design note.
package fastpath

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// key identifies one mirrored attribute span.
type key struct {
	primPath string
	attr     string
}

// Accelerator mirrors authored attribute spans into GPU buffer memory
// alongside the usdstage write, so a downstream USD-RT-style consumer can
// read the same data without waiting on the next flush to disk.
type Accelerator struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	buffers map[key]*wgpu.Buffer
	sizes   map[key]uint64
}

// Open attempts to acquire a GPU device for accelerated mirroring. It
// never panics on failure (unlike the teacher's interactive-window
// constructor) because attaching the fast path is optional: callers
// should fall back to the ordinary usdstage write path when ok is false.
func Open(forceFallbackAdapter bool) (acc *Accelerator, ok bool) {
	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		return nil, false
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "usdscene fastpath device",
	})
	if err != nil {
		return nil, false
	}

	return &Accelerator{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
		buffers:  make(map[key]*wgpu.Buffer),
		sizes:    make(map[key]uint64),
	}, true
}

// MirrorWrite writes data into the GPU buffer backing (primPath, attr),
// (re)allocating it first if it does not exist yet or has grown too
// small, the same grow-or-reuse policy the teacher's InitMeshBuffers
// applies to vertex/index buffers.
func (a *Accelerator) MirrorWrite(primPath, attr string, data []byte) error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	k := key{primPath, attr}
	size := a.sizes[k]
	if buf, ok := a.buffers[k]; !ok || size < uint64(len(data)) {
		if buf != nil {
			buf.Release()
		}
		newBuf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            primPath + "#" + attr,
			Size:             uint64(len(data)),
			Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return fmt.Errorf("fastpath: allocate buffer for %s/%s: %w", primPath, attr, err)
		}
		a.buffers[k] = newBuf
		a.sizes[k] = uint64(len(data))
	}

	a.queue.WriteBuffer(a.buffers[k], 0, data)
	return nil
}

// Buffer returns the GPU buffer mirroring (primPath, attr), if one has
// been written yet.
func (a *Accelerator) Buffer(primPath, attr string) (*wgpu.Buffer, bool) {
	if a == nil {
		return nil, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buffers[key{primPath, attr}]
	return b, ok
}

// Close releases every mirrored buffer. It is safe to call on a nil
// Accelerator.
func (a *Accelerator) Close() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, buf := range a.buffers {
		buf.Release()
		delete(a.buffers, k)
	}
}
