package connection

import "log"

// void is the test double described by spec §6 ("four implementations:
// local, remote, void, test-stub"): every operation reports success
// without touching any real storage, useful for exercising the writer's
// logic (path assignment, refcounting, clip retiming) without a
// filesystem.
type void struct{}

// NewVoid returns a Connection that accepts every operation and performs
// no I/O.
func NewVoid() Connection { return void{} }

func (void) Initialize(Settings, *log.Logger) bool      { return true }
func (void) Shutdown()                                  {}
func (void) MaxSessionNr() int                          { return -1 }
func (void) CreateFolder(string, bool, bool) bool       { return true }
func (void) RemoveFolder(string, bool) bool             { return true }
func (void) WriteFile([]byte, string, bool, bool) bool  { return true }
func (void) RemoveFile(string, bool) bool               { return true }
func (void) ProcessUpdates() bool                       { return true }
