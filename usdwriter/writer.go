package usdwriter

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/usdscene/connection"
	"github.com/Carmen-Shannon/usdscene/internal/fastpath"
	"github.com/Carmen-Shannon/usdscene/internal/flush"
	"github.com/Carmen-Shannon/usdscene/primcache"
	"github.com/Carmen-Shannon/usdscene/resource"
	"github.com/Carmen-Shannon/usdscene/usderr"
	"github.com/Carmen-Shannon/usdscene/usdstage"
	"github.com/Carmen-Shannon/usdscene/volumewriter"
)

// sceneLayerName is the filename spec §4.4.1's openSceneStage
// establishes in the session directory.
const sceneLayerName = "FullScene.usda"

const (
	rootClassPath = "/RootClass"
	rootPrimPath  = "/Root"
)

// Writer is the USD Writer (spec §4.4): the component that owns the prim
// cache, the master stage, and the per-kind initialize/update operations
// client commits ultimately drive. One Writer backs one session.
type Writer struct {
	mu sync.Mutex

	settings Settings
	conn     connection.Connection
	diag     *diagnostics

	cache     *primcache.Manager
	resources *resource.Registry
	flushQ    *flush.Queue
	fast      *fastpath.Accelerator

	master     *usdstage.Layer
	sessionDir string

	sessionValid bool

	vol volumewriter.Writer
}

// volumeWriter returns the VolumeWriter boundary (spec §6) volume commits
// serialize through, lazily constructing the reference in-memory
// implementation on first use. Settings has no option to supply another
// implementation.
func (w *Writer) volumeWriter() volumewriter.Writer {
	if w.vol == nil {
		w.vol = volumewriter.New()
	}
	return w.vol
}

// New constructs a Writer against conn, not yet opened. Call
// InitializeSession then OpenSceneStage before any prim operations.
func New(conn connection.Connection, settings Settings) *Writer {
	return &Writer{
		settings:  settings,
		conn:      conn,
		diag:      newDiagnostics(),
		cache:     primcache.NewManager(),
		resources: resource.NewRegistry(),
		flushQ:    flush.NewQueue(0, 0, 0),
	}
}

// OpenSession installs cb as the diagnostic delegate for the session's
// lifetime (spec §4.5 openSession), then runs InitializeSession and
// OpenSceneStage.
func (w *Writer) OpenSession(cb DiagnosticFunc, userData any) error {
	w.diag.install(cb, userData)
	if err := w.InitializeSession(); err != nil {
		return err
	}
	return w.OpenSceneStage()
}

// InitializeSession resolves the working directory, discovers an unused
// (or, if CreateNewSession is false, the most recent) Session_<N>
// directory, and creates its required subdirectories (spec §4.4.1). On
// any failure it reports IOError and leaves the session invalid.
func (w *Writer) InitializeSession() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.conn.Initialize(w.settings.connectionSettings(), w.diag.logger) {
		return w.diag.errorf("", fmt.Errorf("%w: usdwriter: connection failed to initialize", usderr.IOError))
	}

	maxNr := w.conn.MaxSessionNr()
	nr := maxNr + 1
	if !w.settings.CreateNewSession && maxNr >= 0 {
		nr = maxNr
	}
	sessionDir := fmt.Sprintf("Session_%d", nr)

	if !w.conn.CreateFolder(sessionDir, true, !w.settings.CreateNewSession) {
		return w.diag.errorf("", fmt.Errorf("%w: usdwriter: failed to create %s", usderr.IOError, sessionDir))
	}
	for _, sub := range []string{"manifests", "clips", "primstages", "images", "volumes"} {
		path := sessionDir + "/" + sub
		if !w.conn.CreateFolder(path, true, true) {
			return w.diag.errorf("", fmt.Errorf("%w: usdwriter: failed to create %s", usderr.IOError, path))
		}
	}

	w.sessionDir = sessionDir
	w.sessionValid = true

	if w.settings.EnableFastPath {
		if acc, ok := fastpath.Open(false); ok {
			w.fast = acc
		} else {
			w.diag.warnf("", "fast path requested but no GPU adapter was available; falling back to usdstage-only writes")
		}
	}

	w.diag.statusf("", "session initialized at %s", sessionDir)
	return nil
}

// OpenSceneStage starts a new, empty FullScene.usda layer for the session
// directory and establishes "/RootClass" (a USD class prim) and "/Root"
// (its default prim, kind=assembly), per spec §4.4.1. An existing
// FullScene.usda in a reused session directory is not read back.
func (w *Writer) OpenSceneStage() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sessionValid {
		return fmt.Errorf("%w: usdwriter: OpenSceneStage called before a valid session", usderr.SessionInvalid)
	}

	w.master = usdstage.NewLayer(sceneLayerName)
	w.master.DefaultPrim = "Root"

	rootClass := w.master.Root(rootClassPath)
	rootClass.Specifier = usdstage.SpecifierClass

	root := w.master.Root(rootPrimPath)
	root.Kind = "assembly"

	for _, category := range []string{
		"worlds", "instances", "groups", "surfaces", "volumes",
		"spatialfields", "geometries", "materials", "samplers",
		"cameras", "lights", "renderers",
	} {
		w.master.Root(rootPrimPath + "/" + category)
	}

	w.diag.statusf("", "scene stage opened: %s/%s", w.sessionDir, sceneLayerName)
	return nil
}

func (w *Writer) checkSession() error {
	if !w.sessionValid {
		return fmt.Errorf("%w: usdwriter: operation attempted before a valid session", usderr.SessionInvalid)
	}
	return nil
}

// Flush drains, at timecode t, any entries the flush queue has
// accumulated (volume-style deferred commits) to a fixed point (spec §5,
// §9).
func (w *Writer) Flush(t primcache.Timecode) error {
	if err := w.checkSession(); err != nil {
		return err
	}
	return w.flushQ.Run(t)
}

// Defer enqueues e on the device-wide flush list instead of materializing
// it immediately (spec §5: "commit may be deferred").
func (w *Writer) Defer(e flush.Entry) {
	w.flushQ.Enqueue(e)
}

// SaveScene writes the master stage (and, transitively, every manifest
// and clip stage it sublayers) to the Connection. It is a no-op when
// EnableSaving is false (spec §4.5).
func (w *Writer) SaveScene() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.settings.EnableSaving {
		return nil
	}
	if err := w.writeManifestsAndClipsLocked(); err != nil {
		return err
	}
	return w.writeLayerLocked(w.master, "")
}

// writeManifestsAndClipsLocked persists every cache entry's manifest and
// per-timestep clip stages (spec §4.4.3/§4.4.4) into the session's
// "manifests"/"clips" subdirectories, and sublayers each onto the master
// stage so the written FullScene.usda actually composes them. Their
// Identifiers already carry the "manifests/"/"clips/" prefix (see
// manifestAssetPath/clipAssetPath), matching what AddRef records as each
// reference's ClipSet.ManifestAssetPath/AssetPaths, so they are written
// relative to the session root (subdir "") rather than doubly-prefixed.
func (w *Writer) writeManifestsAndClipsLocked() error {
	for _, entry := range w.cache.Entries() {
		if manifest, ok := entry.ManifestStage.(*usdstage.Layer); ok && manifest != nil {
			if err := w.writeLayerLocked(manifest, ""); err != nil {
				return err
			}
			w.master.AddSubLayer(manifest.Identifier)
		}
		for _, clip := range entry.ClipStages {
			layer, ok := clip.(*usdstage.Layer)
			if !ok || layer == nil {
				continue
			}
			if err := w.writeLayerLocked(layer, ""); err != nil {
				return err
			}
			w.master.AddSubLayer(layer.Identifier)
		}
	}
	return nil
}

func (w *Writer) writeLayerLocked(l *usdstage.Layer, subdir string) error {
	buf := usdstage.WriteLayer(l)

	path := w.sessionDir + "/" + l.Identifier
	if subdir != "" {
		path = w.sessionDir + "/" + subdir + "/" + l.Identifier
	}
	if !w.conn.WriteFile(buf, path, true, true) {
		return w.diag.errorf("", fmt.Errorf("%w: usdwriter: failed to write %s", usderr.IOError, path))
	}
	return nil
}

// GarbageCollect runs the prim cache's two-pass GC, removes the
// corresponding prims and shared resources from the master stage, then
// saves (spec §4.5: "garbageCollect runs §4.3 GC, then saves").
func (w *Writer) GarbageCollect() error {
	w.mu.Lock()
	w.cache.RemoveUnreferenced(func(e *primcache.Entry) {
		w.master.Remove(e.Path)
		if e.ResourceCollect != nil {
			e.ResourceCollect()
		}
	})
	w.mu.Unlock()
	return w.SaveScene()
}

// Close uninstalls the diagnostic delegate and shuts down the connection
// (spec's supplemented diagnostic-delegate-scoping feature: "the delegate
// installed for the lifetime of a session and explicitly uninstalled on
// closeSession").
func (w *Writer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.diag.uninstall()
	w.fast.Close()
	w.conn.Shutdown()
	w.sessionValid = false
}

// SetEnableSaving toggles spec §4.5's "enable-saving flag" at runtime,
// independent of the Settings a session was opened with (useful for a
// facade that wants to batch several frames before writing to disk).
func (w *Writer) SetEnableSaving(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settings.EnableSaving = v
}

// SetOutputEnabled gates whether diagnostics reach the installed callback
// (spec §7: "when outputEnabled=false, USD-internal diagnostics are
// swallowed").
func (w *Writer) SetOutputEnabled(v bool) {
	w.diag.setOutputEnabled(v)
}

// Cache exposes the prim cache manager for the engine facade and
// per-kind updaters in this package.
func (w *Writer) Cache() *primcache.Manager { return w.cache }

// Master exposes the master stage layer.
func (w *Writer) Master() *usdstage.Layer { return w.master }
