package engine

import (
	"github.com/Carmen-Shannon/usdscene/connection"
	"github.com/Carmen-Shannon/usdscene/usdwriter"
)

// EngineBuilderOption is a functional option for configuring an Engine,
// applied directly to the engine instance during NewEngine (mirrors the
// teacher's engine_builder.go EngineBuilderOption shape).
type EngineBuilderOption func(*engine)

// WithConnection selects the I/O boundary the engine's Writer opens its
// session through. Defaults to connection.NewVoid() (no I/O) when unset.
func WithConnection(conn connection.Connection) EngineBuilderOption {
	return func(e *engine) { e.conn = conn }
}

// WithWriterSettings configures the usdwriter.Settings the engine's
// Writer is constructed with, via usdwriter's own functional options
// (WithHost, WithWorkingDir, WithValueClipRetiming, etc.).
func WithWriterSettings(opts ...usdwriter.Option) EngineBuilderOption {
	return func(e *engine) { e.settings = usdwriter.NewSettings(opts...) }
}

// WithDeferredCommits controls whether Commit materializes its object
// immediately (false, the default) or only queues it for the next
// FlushAll/Render call (true) — useful for batching an entire frame's
// worth of commits before a single device-wide flush.
func WithDeferredCommits(v bool) EngineBuilderOption {
	return func(e *engine) { e.deferCommits = v }
}
