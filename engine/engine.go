// Package engine is the bridge's Engine Facade (spec §4.5): the single
// entry point client code drives instead of touching object.Pool and
// usdwriter.Writer directly. It owns object creation and commit, a
// device-wide deferred-commit queue, and the translation from a committed
// object's Kind into the right usdwriter.Update* call or reference-graph
// materialization.
//
// Structurally this plays the role the teacher's engine.go/engine_builder.go
// played for a game loop — a struct built through functional options,
// exposed behind a narrow interface, with lifecycle methods (Open/Close
// here, where the teacher had Run/Quit) — generalized from "drive a tick
// and render loop" to "drive a scene-graph commit and flush loop".
package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/usdscene/connection"
	"github.com/Carmen-Shannon/usdscene/object"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/usderr"
	"github.com/Carmen-Shannon/usdscene/usdtype"
	"github.com/Carmen-Shannon/usdscene/usdwriter"
)

// engine implements the Engine interface.
type engine struct {
	conn     connection.Connection
	settings usdwriter.Settings

	pool   *object.Pool
	writer *usdwriter.Writer

	deferCommits bool
	pending      []object.Handle
	pendingSet   map[object.Handle]bool
}

// Engine is the bridge's client-facing API (spec §4.5/§6): create and
// parameterize objects, commit them, and drive the device-wide flush that
// turns committed state into USD.
type Engine interface {
	// Open installs cb as the session's diagnostic delegate and opens the
	// session and scene stage (spec §4.5 openSession).
	Open(cb usdwriter.DiagnosticFunc, userData any) error

	// Close uninstalls the diagnostic delegate and shuts the session down.
	Close()

	// Create allocates a new object of kind/subtype, stamps its printable
	// name, and returns its handle with one public reference already held
	// by the caller (spec §3's newObject).
	Create(kind object.Kind, subtype, name string) object.Handle

	// Retain increments h's public refcount.
	Retain(h object.Handle)

	// Release decrements h's public refcount, destroying the object once
	// both refcounts reach zero.
	Release(h object.Handle)

	// SetParam stages value on h's write-side record (spec §4.2 setParam).
	// A source type outside the parameter's accepted set reports
	// *object.UnsupportedTypeError without otherwise touching the object.
	SetParam(h object.Handle, name string, typ usdtype.Type, value any) error

	// ResetParam restores name to its registered default on h's write side.
	ResetParam(h object.Handle, name string)

	// ResetParams restores every set parameter on h to its default.
	ResetParams(h object.Handle)

	// Commit transfers h's staged parameters to the read side and queues
	// the object for materialization: immediately, if the engine was built
	// without WithDeferredCommits, or on the next FlushAll/Render
	// otherwise. Reports whether anything actually changed.
	Commit(h object.Handle) bool

	// FlushAll drains every pending commit at timecode t, dispatching each
	// object to its usdwriter.Update* call (or reference-graph
	// materialization), then runs the writer's own fixed-point flush for
	// deferred volume/field commits (spec §5, §9).
	FlushAll(t primcache.Timecode) error

	// Render is FlushAll followed by SaveScene, the convenience operation
	// for "commit a frame and write it out". frame must be a live
	// KindFrame handle.
	Render(frame object.Handle, t primcache.Timecode) error

	// GarbageCollect runs the prim cache's two-pass GC and saves.
	GarbageCollect() error

	// SetEnableSaving toggles whether Render/GarbageCollect actually write
	// the master stage to the Connection. FlushAll never writes it.
	SetEnableSaving(v bool)

	// SetOutputEnabled gates whether diagnostics reach the installed
	// callback (spec §7).
	SetOutputEnabled(v bool)

	// RefCounts reports h's current public/internal refcounts, for tests
	// and diagnostics.
	RefCounts(h object.Handle) (public, internal int32, ok bool)
}

// NewEngine constructs an Engine from options, defaulting to a void
// connection (no I/O) and usdwriter's default settings. Mirrors the
// teacher's NewEngine: build with sensible defaults, apply every option,
// then finish construction from the resulting fields.
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		pool:       object.NewPool(),
		conn:       connection.NewVoid(),
		settings:   usdwriter.DefaultSettings(),
		pendingSet: make(map[object.Handle]bool),
	}
	for _, opt := range options {
		opt(e)
	}
	e.writer = usdwriter.New(e.conn, e.settings)
	return e
}

func (e *engine) Open(cb usdwriter.DiagnosticFunc, userData any) error {
	return e.writer.OpenSession(cb, userData)
}

func (e *engine) Close() {
	e.writer.Close()
}

func (e *engine) Create(kind object.Kind, subtype, name string) object.Handle {
	obj := e.pool.CreateTyped(kind, subtype, object.TableFor(kind))
	obj.SetParam("usd::name", usdtype.Uint8, object.NewStringRef(name), e.pool)
	obj.Commit(e.pool)
	return obj.Handle()
}

func (e *engine) Retain(h object.Handle) { e.pool.Retain(h) }

func (e *engine) Release(h object.Handle) { e.pool.Release(h) }

func (e *engine) SetParam(h object.Handle, name string, typ usdtype.Type, value any) error {
	obj, ok := e.pool.Lookup(h)
	if !ok {
		return fmt.Errorf("%w: engine: SetParam on unknown handle %d", usderr.LogicError, h)
	}
	_, _, err := obj.SetParam(name, typ, value, e.pool)
	return err
}

func (e *engine) ResetParam(h object.Handle, name string) {
	if obj, ok := e.pool.Lookup(h); ok {
		obj.ResetParam(name, e.pool)
	}
}

func (e *engine) ResetParams(h object.Handle) {
	if obj, ok := e.pool.Lookup(h); ok {
		obj.ResetParams(e.pool)
	}
}

func (e *engine) Commit(h object.Handle) bool {
	obj, ok := e.pool.Lookup(h)
	if !ok {
		return false
	}
	changed := obj.Commit(e.pool)
	if !e.pendingSet[h] {
		e.pendingSet[h] = true
		e.pending = append(e.pending, h)
	}
	if !e.deferCommits {
		_ = e.FlushAll(primcache.Timecode(e.currentTime(obj)))
	}
	return changed
}

// currentTime reads the "usd::time" parameter every kind accepts (spec
// §6), the retiming value a commit is associated with absent an explicit
// FlushAll/Render timecode.
func (e *engine) currentTime(obj *object.Object) float64 {
	if v, ok := obj.Read().Get("usd::time"); ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

func (e *engine) FlushAll(t primcache.Timecode) error {
	round := e.pending
	e.pending = nil
	e.pendingSet = make(map[object.Handle]bool)

	var firstErr error
	for _, h := range round {
		if err := e.materialize(h, float64(t)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := e.writer.Flush(t); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (e *engine) Render(frame object.Handle, t primcache.Timecode) error {
	obj, ok := e.pool.Lookup(frame)
	if !ok || obj.Kind() != object.KindFrame {
		return fmt.Errorf("%w: engine: Render requires a live frame handle", usderr.InvalidArgument)
	}
	if err := e.FlushAll(t); err != nil {
		return err
	}
	return e.writer.SaveScene()
}

func (e *engine) GarbageCollect() error {
	return e.writer.GarbageCollect()
}

func (e *engine) SetEnableSaving(v bool) { e.writer.SetEnableSaving(v) }

func (e *engine) SetOutputEnabled(v bool) { e.writer.SetOutputEnabled(v) }

func (e *engine) RefCounts(h object.Handle) (public, internal int32, ok bool) {
	return e.pool.RefCounts(h)
}

// materialize dispatches a single committed handle to the writer
// operation (or reference-graph materializer) appropriate to its Kind.
// World/Light/Camera are additionally pinned under the synthetic root
// entry so their refcount reflects direct scene-graph attachment even
// when no World/Group/Instance references them (spec's refcount
// invariant: "1 if c is a root-attached world/light/camera").
func (e *engine) materialize(h object.Handle, t float64) error {
	obj, ok := e.pool.Lookup(h)
	if !ok {
		return nil
	}

	switch obj.Kind() {
	case object.KindGeometry:
		return e.writer.UpdateGeometry(e.entryFor(obj), obj, t)
	case object.KindMaterial:
		return e.writer.UpdateMaterial(e.entryFor(obj), obj, e.samplerLookup, t)
	case object.KindSampler:
		return e.writer.UpdateSampler(e.entryFor(obj), obj, t)
	case object.KindLight:
		entry := e.entryFor(obj)
		e.pinToRoot(entry)
		return e.writer.UpdateLight(entry, obj, t)
	case object.KindCamera:
		entry := e.entryFor(obj)
		e.pinToRoot(entry)
		return e.writer.UpdateCamera(entry, obj, t)
	case object.KindVolume:
		return e.writer.UpdateVolume(e.entryFor(obj), obj, e.fieldLookup, t)
	case object.KindSpatialField:
		e.entryFor(obj) // cached for lazy lookup by a volume's FieldLookup; no update of its own
		return nil
	case object.KindRenderer:
		return e.writer.UpdateRenderer(obj.Name(), obj)
	case object.KindWorld:
		entry := e.entryFor(obj)
		e.pinToRoot(entry)
		return e.materializeWorld(entry, obj, t)
	case object.KindGroup:
		return e.materializeGroup(e.entryFor(obj), obj, t)
	case object.KindInstance:
		return e.materializeInstance(e.entryFor(obj), obj, t)
	case object.KindSurface:
		return e.materializeSurface(e.entryFor(obj), obj, t)
	case object.KindFrame, object.KindDataArray:
		return nil
	default:
		return nil
	}
}

// entryFor finds or creates obj's prim-cache entry under its kind's
// category subpath (spec §4.3 findOrCreate), keyed by its committed name.
func (e *engine) entryFor(obj *object.Object) *primcache.Entry {
	category, ok := categoryFor(obj.Kind())
	if !ok {
		return nil
	}
	entry, _ := e.writer.Cache().FindOrCreate(category, obj.Name())
	return entry
}

// samplerLookup resolves a material's color/opacity/metallic/roughness/
// emissive sampler handle into its prim-cache entry (usdwriter.Writer's
// UpdateMaterial callback parameter).
func (e *engine) samplerLookup(h object.Handle) (*primcache.Entry, bool) {
	obj, ok := e.pool.Lookup(h)
	if !ok {
		return nil, false
	}
	entry := e.entryFor(obj)
	return entry, entry != nil
}

// fieldLookup resolves a volume's "field" handle into its prim-cache
// entry and backing object (usdwriter.FieldLookup).
func (e *engine) fieldLookup(h object.Handle) (*primcache.Entry, *object.Object, bool) {
	obj, ok := e.pool.Lookup(h)
	if !ok {
		return nil, nil, false
	}
	entry := e.entryFor(obj)
	return entry, obj, entry != nil
}

// rootEntry returns the synthetic sentinel cache entry every root-attached
// World/Light/Camera is added as a child of. It self-references on first
// creation (AddChild(root, root)) so its own refcount never drops to zero
// and primcache.Manager.RemoveUnreferenced never collects it (and, with
// it, the root-attachment pin every live World/Light/Camera depends on).
func (e *engine) rootEntry() *primcache.Entry {
	root, existed := e.writer.Cache().FindOrCreate("root", "scene")
	if !existed {
		e.writer.Cache().AddChild(root, root)
	}
	return root
}

// pinToRoot attaches entry under the sentinel root entry, idempotently
// (AddChild no-ops if entry is already a child), giving it the
// "root-attached" +1 refcount spec's invariant describes.
func (e *engine) pinToRoot(entry *primcache.Entry) {
	e.writer.Cache().AddChild(e.rootEntry(), entry)
}
