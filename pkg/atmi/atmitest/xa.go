package atmitest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/endurox-dev/exgo/pkg/atmi/xadrv"
)

// Library is an in-memory shared object exporting fixed symbols.
type Library struct {
	mu      sync.Mutex
	symbols map[string]uintptr
	closed  int
}

// NewLibrary returns a library exporting the given symbols.
func NewLibrary(symbols map[string]uintptr) *Library {
	l := &Library{symbols: make(map[string]uintptr, len(symbols))}
	for k, v := range symbols {
		l.symbols[k] = v
	}
	return l
}

func (l *Library) Lookup(symbol string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.symbols[symbol]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("undefined symbol: %s", symbol)
}

func (l *Library) Close() error {
	l.mu.Lock()
	l.closed++
	l.mu.Unlock()
	return nil
}

// Closed reports how many times Close was called.
func (l *Library) Closed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Loader implements xadrv.Loader over in-memory libraries.
type Loader struct {
	mu    sync.Mutex
	self  *Library
	libs  map[string]*Library
	codes map[uintptr]int
	opens []string
	calls []uintptr

	// OpenDelay slows Open down so concurrent callers pile up behind it.
	OpenDelay time.Duration
}

// NewLoader returns a loader whose process image exports nothing.
func NewLoader() *Loader {
	return &Loader{
		self:  NewLibrary(nil),
		libs:  make(map[string]*Library),
		codes: make(map[uintptr]int),
	}
}

// SetSelf replaces the process image.
func (l *Loader) SetSelf(lib *Library) {
	l.mu.Lock()
	l.self = lib
	l.mu.Unlock()
}

// AddLibrary makes lib openable at path.
func (l *Loader) AddLibrary(path string, lib *Library) {
	l.mu.Lock()
	l.libs[path] = lib
	l.mu.Unlock()
}

// SetStatus makes calling fn return status.
func (l *Loader) SetStatus(fn uintptr, status int) {
	l.mu.Lock()
	l.codes[fn] = status
	l.mu.Unlock()
}

func (l *Loader) Self() xadrv.Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.self
}

func (l *Loader) Open(path string) (xadrv.Library, error) {
	if l.OpenDelay > 0 {
		time.Sleep(l.OpenDelay)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opens = append(l.opens, path)
	lib, ok := l.libs[path]
	if !ok {
		return nil, fmt.Errorf("%s: cannot open shared object file: No such file or directory", path)
	}
	return lib, nil
}

func (l *Loader) Call(fn uintptr) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fn)
	return l.codes[fn]
}

// Opens lists the paths passed to Open.
func (l *Loader) Opens() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.opens...)
}

// Calls lists the initializers invoked.
func (l *Loader) Calls() []uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uintptr(nil), l.calls...)
}

// ErrBootstrap is returned by a Process configured to fail BootstrapRuntime.
var ErrBootstrap = errors.New("atmitest: bootstrap failed")

// Process implements xadrv.ProcessState.
type Process struct {
	mu        sync.Mutex
	managed   bool
	failBoot  bool
	checks    int
	boots     int
	shutdowns int
	noSuspend int
}

// NewProcess returns a process state; managed selects the host role.
func NewProcess(managed bool) *Process { return &Process{managed: managed} }

// FailBootstrap makes BootstrapRuntime return ErrBootstrap.
func (p *Process) FailBootstrap() {
	p.mu.Lock()
	p.failBoot = true
	p.mu.Unlock()
}

func (p *Process) HasManagedContext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checks++
	return p.managed
}

func (p *Process) BootstrapRuntime() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failBoot {
		return ErrBootstrap
	}
	p.boots++
	return nil
}

func (p *Process) ShutdownRuntime() error {
	p.mu.Lock()
	p.shutdowns++
	p.mu.Unlock()
	return nil
}

func (p *Process) DisableAPISuspend() {
	p.mu.Lock()
	p.noSuspend++
	p.mu.Unlock()
}

// RoleChecks counts HasManagedContext calls.
func (p *Process) RoleChecks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checks
}

// Bootstraps counts successful BootstrapRuntime calls.
func (p *Process) Bootstraps() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.boots
}

// Shutdowns counts ShutdownRuntime calls.
func (p *Process) Shutdowns() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdowns
}

// SuspendDisabled counts DisableAPISuspend calls.
func (p *Process) SuspendDisabled() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.noSuspend
}
