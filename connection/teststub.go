package connection

import (
	"log"
	"sync"
)

// Call records one invocation against a TestStub, for assertions in
// tests exercising usdwriter without touching a real filesystem.
type Call struct {
	Op         string
	Path       string
	IsRelative bool
	Data       []byte
}

// TestStub is the fourth Connection implementation spec §6 calls for: an
// in-memory, call-recording double distinct from void — where void always
// succeeds silently, TestStub lets a test program failures (via
// FailOn) and inspect exactly what was written (via File).
type TestStub struct {
	mu       sync.Mutex
	calls    []Call
	files    map[string][]byte
	failOn   map[string]bool
	maxSession int
}

// NewTestStub returns an empty recording Connection double.
func NewTestStub() *TestStub {
	return &TestStub{
		files:      make(map[string][]byte),
		failOn:     make(map[string]bool),
		maxSession: -1,
	}
}

// FailOn makes the next operation against path report failure, for
// exercising IOError propagation.
func (t *TestStub) FailOn(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failOn[path] = true
}

// Calls returns every recorded operation in order.
func (t *TestStub) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// File returns the content last written to path, if any.
func (t *TestStub) File(path string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.files[path]
	return b, ok
}

// SetMaxSessionNr seeds the value MaxSessionNr reports, for simulating an
// existing session directory tree.
func (t *TestStub) SetMaxSessionNr(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxSession = n
}

func (t *TestStub) shouldFail(path string) bool {
	if t.failOn[path] {
		delete(t.failOn, path)
		return true
	}
	return false
}

func (t *TestStub) Initialize(Settings, *log.Logger) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "Initialize"})
	return true
}

func (t *TestStub) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "Shutdown"})
}

func (t *TestStub) MaxSessionNr() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxSession
}

func (t *TestStub) CreateFolder(path string, isRelative, mayExist bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "CreateFolder", Path: path, IsRelative: isRelative})
	return !t.shouldFail(path)
}

func (t *TestStub) RemoveFolder(path string, isRelative bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "RemoveFolder", Path: path, IsRelative: isRelative})
	return !t.shouldFail(path)
}

func (t *TestStub) WriteFile(data []byte, path string, isRelative, binary bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "WriteFile", Path: path, IsRelative: isRelative, Data: data})
	if t.shouldFail(path) {
		return false
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	t.files[path] = stored
	return true
}

func (t *TestStub) RemoveFile(path string, isRelative bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "RemoveFile", Path: path, IsRelative: isRelative})
	if t.shouldFail(path) {
		return false
	}
	delete(t.files, path)
	return true
}

func (t *TestStub) ProcessUpdates() bool { return true }
