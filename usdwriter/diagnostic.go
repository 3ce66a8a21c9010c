package usdwriter

import (
	"fmt"
	"log"
	"os"

	"github.com/Carmen-Shannon/usdscene/usderr"
)

// Severity mirrors usderr.Severity for the diagnostic callback spec §6
// describes: "(level ∈ {Status,Warning,Error}, userData, message)".
type Severity = usderr.Severity

// DiagnosticFunc is the client-supplied log callback installed at
// openSession (spec §4.5: "installs a diagnostic delegate bridging USD
// internal diagnostics to the client's status callback").
type DiagnosticFunc func(level Severity, userData any, message string)

// diagnostics is the installable delegate: built on *log.Logger the way
// the teacher's engine/profiler.Profiler and engine/engine.go use the
// standard log package, gated by an outputEnabled flag (spec §7: "when
// outputEnabled=false, USD-internal diagnostics are swallowed").
type diagnostics struct {
	logger        *log.Logger
	outputEnabled bool
	callback      DiagnosticFunc
	userData      any
}

func newDiagnostics() *diagnostics {
	return &diagnostics{
		logger:        log.New(os.Stderr, "", log.LstdFlags),
		outputEnabled: true,
	}
}

// install attaches a client callback for the lifetime of a session (spec's
// supplemented diagnostic-delegate-scoping feature); uninstall clears it.
func (d *diagnostics) install(cb DiagnosticFunc, userData any) {
	d.callback = cb
	d.userData = userData
}

func (d *diagnostics) uninstall() {
	d.callback = nil
	d.userData = nil
}

func (d *diagnostics) setOutputEnabled(v bool) { d.outputEnabled = v }

// report is the sole path every internal diagnostic travels (spec §7:
// "errors are reported through the diagnostic callback with severity, a
// stable status code, and a printf-style message... not thrown as
// exceptions across the API boundary").
func (d *diagnostics) report(level Severity, objName, format string, args ...any) {
	if !d.outputEnabled {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if objName != "" {
		msg = fmt.Sprintf("%s: %s", objName, msg)
	}
	d.logger.Printf("[usdwriter] %s: %s", levelPrefix(level), msg)
	if d.callback != nil {
		d.callback(level, d.userData, msg)
	}
}

func (d *diagnostics) statusf(objName, format string, args ...any) {
	d.report(usderr.Status, objName, format, args...)
}

func (d *diagnostics) warnf(objName, format string, args ...any) {
	d.report(usderr.Warning, objName, format, args...)
}

func (d *diagnostics) errorf(objName string, err error) error {
	d.report(usderr.Error, objName, "%v", err)
	return err
}

func levelPrefix(level Severity) string {
	return level.String()
}
