package xadrv

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/endurox-dev/exgo/pkg/atmi/logging"
)

var (
	// ErrNoLibrary reports that the switch is not in the process image and
	// NDRX_XA_RMLIB names no library to load it from.
	ErrNoLibrary = errors.New("xadrv: NDRX_XA_RMLIB is not set")

	// ErrInitFailed reports a non-zero status from the driver initializer.
	ErrInitFailed = errors.New("xadrv: driver initialization failed")
)

// DriverLoadError describes a failed resolution step.
type DriverLoadError struct {
	Step   string
	Path   string
	Symbol string
	Err    error
}

func (e *DriverLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("xadrv: %s %s: %v", e.Step, e.Symbol, e.Err)
	}
	return fmt.Sprintf("xadrv: %s %s in %s: %v", e.Step, e.Symbol, e.Path, e.Err)
}

func (e *DriverLoadError) Unwrap() error { return e.Err }

// Library is a loaded shared object, or the process image itself.
type Library interface {
	Lookup(symbol string) (uintptr, error)
	Close() error
}

// Loader finds and opens driver libraries and calls their initializers.
type Loader interface {
	// Self returns the running process image.
	Self() Library
	Open(path string) (Library, error)
	// Call invokes an exported `int fn(void)` and returns its status.
	Call(fn uintptr) int
}

// ProcessState answers role questions about the running process.
type ProcessState interface {
	// HasManagedContext reports whether the process already runs the bridge
	// on its own, that is, it is a host.
	HasManagedContext() bool
	// BootstrapRuntime creates the embedded runtime for a native-only host.
	BootstrapRuntime() error
	ShutdownRuntime() error
	DisableAPISuspend()
}

// Role tells whether the process hosts the bridge or embeds it.
type Role int

const (
	RoleUnknown Role = iota
	RoleHost
	RoleEmbedded
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// State is the resolver's position in its one-way state machine.
type State int

const (
	Unresolved State = iota
	ProbingProcessImage
	FoundInProcess
	LoadingLibrary
	LoadFailed
	Bound
	RoleDetermined
	Initialized
)

var stateNames = [...]string{
	Unresolved:          "unresolved",
	ProbingProcessImage: "probing-process-image",
	FoundInProcess:      "found-in-process",
	LoadingLibrary:      "loading-library",
	LoadFailed:          "load-failed",
	Bound:               "bound",
	RoleDetermined:      "role-determined",
	Initialized:         "initialized",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// SourceProcess is the Binding source of a switch found in the running
// process image.
const SourceProcess = "process"

// Binding is the outcome of a successful resolution.
type Binding struct {
	Switch uintptr
	Role   Role
	// OwnsRuntime is set when the resolver bootstrapped the embedded
	// runtime and Shutdown has to tear it down.
	OwnsRuntime bool
	// Source is SourceProcess or the path of the loaded library.
	Source string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// Resolver resolves the XA switch once and caches the outcome.
type Resolver struct {
	cfg    Config
	loader Loader
	proc   ProcessState
	log    logging.Logger

	once    sync.Once
	mu      sync.Mutex
	state   State
	binding *Binding
	err     error
}

// New returns an unresolved Resolver.
func New(cfg Config, loader Loader, proc ProcessState, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:    cfg.withDefaults(),
		loader: loader,
		proc:   proc,
		log:    logging.New(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.log = r.log.With("component", "xadrv")
	return r
}

// Resolve runs the resolution on first use. Concurrent callers block until
// it finishes and all of them observe the same result.
func (r *Resolver) Resolve() (*Binding, error) {
	r.once.Do(func() {
		b, err := r.resolve()
		r.mu.Lock()
		r.binding, r.err = b, err
		r.mu.Unlock()
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.binding, r.err
}

// Switch returns the address of the XA switch, or 0 when the resource
// manager is unavailable.
func (r *Resolver) Switch() uintptr {
	b, err := r.Resolve()
	if err != nil {
		return 0
	}
	return b.Switch
}

// State reports the current resolution state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Shutdown tears down the embedded runtime when this resolver created it.
// Host processes manage their own runtime and are left untouched.
func (r *Resolver) Shutdown() error {
	r.mu.Lock()
	b := r.binding
	r.mu.Unlock()
	if b == nil || !b.OwnsRuntime {
		return nil
	}
	r.log.Info(context.Background(), "shutting down embedded runtime")
	return r.proc.ShutdownRuntime()
}

func (r *Resolver) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Resolver) fail(err error) (*Binding, error) {
	r.setState(LoadFailed)
	r.log.Error(context.Background(), "XA switch unavailable", "error", err)
	return nil, err
}

func (r *Resolver) resolve() (*Binding, error) {
	ctx := context.Background()
	sym := r.cfg.Symbol

	r.setState(ProbingProcessImage)
	lib, sw, source, err := r.locate(ctx, sym)
	if err != nil {
		return r.fail(err)
	}
	r.setState(Bound)

	b := &Binding{Switch: sw, Source: source}
	initSym := r.cfg.HostInitSymbol
	if r.proc.HasManagedContext() {
		b.Role = RoleHost
		r.log.Info(ctx, "managed runtime already active, running as host")
	} else {
		b.Role = RoleEmbedded
		initSym = r.cfg.EmbeddedInitSymbol
		r.log.Info(ctx, "native-only process, bootstrapping embedded runtime")
		if err := r.proc.BootstrapRuntime(); err != nil {
			r.closeLoaded(lib, source)
			return r.fail(&DriverLoadError{Step: "bootstrap runtime for", Symbol: sym, Err: err})
		}
		b.OwnsRuntime = true
	}
	r.setState(RoleDetermined)

	if err := r.initDriver(lib, initSym, source); err != nil {
		if b.OwnsRuntime {
			if serr := r.proc.ShutdownRuntime(); serr != nil {
				r.log.Warn(ctx, "failed to shut down embedded runtime", "error", serr)
			}
		}
		r.closeLoaded(lib, source)
		return r.fail(err)
	}
	r.proc.DisableAPISuspend()

	r.setState(Initialized)
	r.log.Info(ctx, "XA switch resolved", "symbol", sym, "source", source, "role", b.Role.String())
	return b, nil
}

// locate finds the switch in the process image, falling back to the
// configured library.
func (r *Resolver) locate(ctx context.Context, sym string) (Library, uintptr, string, error) {
	self := r.loader.Self()
	if sw, err := self.Lookup(sym); err == nil && sw != 0 {
		r.setState(FoundInProcess)
		r.log.Debug(ctx, "switch found in process image", "symbol", sym)
		return self, sw, SourceProcess, nil
	}

	r.setState(LoadingLibrary)
	path := r.cfg.RMLib
	r.log.Debug(ctx, "switch not in process image, loading library", "symbol", sym, "path", path)
	if path == "" {
		return nil, 0, "", &DriverLoadError{Step: "locate", Symbol: sym, Err: ErrNoLibrary}
	}
	lib, err := r.loader.Open(path)
	if err != nil {
		return nil, 0, "", &DriverLoadError{Step: "open library for", Path: path, Symbol: sym, Err: err}
	}
	sw, err := lib.Lookup(sym)
	if err == nil && sw == 0 {
		err = errors.New("symbol resolved to NULL")
	}
	if err != nil {
		r.closeLoaded(lib, path)
		return nil, 0, "", &DriverLoadError{Step: "lookup", Path: path, Symbol: sym, Err: err}
	}
	return lib, sw, path, nil
}

func (r *Resolver) initDriver(lib Library, sym, source string) error {
	path := source
	if source == SourceProcess {
		path = ""
	}
	fn, err := lib.Lookup(sym)
	if err == nil && fn == 0 {
		err = errors.New("symbol resolved to NULL")
	}
	if err != nil {
		return &DriverLoadError{Step: "lookup", Path: path, Symbol: sym, Err: err}
	}
	if st := r.loader.Call(fn); st != 0 {
		return &DriverLoadError{Step: "call", Path: path, Symbol: sym, Err: fmt.Errorf("%w: status %d", ErrInitFailed, st)}
	}
	return nil
}

// closeLoaded closes lib unless it is the process image.
func (r *Resolver) closeLoaded(lib Library, source string) {
	if lib == nil || source == SourceProcess {
		return
	}
	if err := lib.Close(); err != nil {
		r.log.Warn(context.Background(), "failed to close driver library", "path", source, "error", err)
	}
}
