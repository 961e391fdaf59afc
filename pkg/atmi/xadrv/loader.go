package xadrv

import (
	"context"
	"fmt"
	"sync"

	"github.com/endurox-dev/exgo/pkg/atmi"
	"github.com/endurox-dev/exgo/pkg/atmi/internal/backend"
)

// NativeLoader returns the dlopen based Loader.
func NativeLoader() Loader { return dlLoader{} }

type dlLoader struct{}

func (dlLoader) Self() Library { return selfImage{} }

func (dlLoader) Open(path string) (Library, error) {
	h, err := backend.Dlopen(path)
	if err != nil {
		return nil, err
	}
	return &dlLibrary{h: h}, nil
}

func (dlLoader) Call(fn uintptr) int { return backend.CallInit(fn) }

type selfImage struct{}

func (selfImage) Lookup(symbol string) (uintptr, error) {
	if p := backend.DlsymDefault(symbol); p != 0 {
		return p, nil
	}
	return 0, fmt.Errorf("symbol %q not in process image", symbol)
}

func (selfImage) Close() error { return nil }

type dlLibrary struct {
	h uintptr
}

func (l *dlLibrary) Lookup(symbol string) (uintptr, error) { return backend.Dlsym(l.h, symbol) }

func (l *dlLibrary) Close() error {
	if l.h == 0 {
		return nil
	}
	err := backend.Dlclose(l.h)
	l.h = 0
	return err
}

// AtmiProcess returns the ProcessState backed by package atmi: the process
// is a host once it created an ATMI context of its own.
func AtmiProcess(opts ...atmi.Option) ProcessState { return atmiProcess{opts: opts} }

type atmiProcess struct {
	opts []atmi.Option
}

func (atmiProcess) HasManagedContext() bool { return atmi.HostActive() }

func (p atmiProcess) BootstrapRuntime() error {
	_, err := atmi.BootstrapEmbedded(p.opts...)
	return err
}

func (atmiProcess) ShutdownRuntime() error { return atmi.ShutdownEmbedded() }

func (atmiProcess) DisableAPISuspend() { backend.DisableAPISuspend() }

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns the process-wide resolver. Configuration comes from the
// environment; an unreadable environment falls back to the built-in symbol
// names with no library path. opts apply only to the call that creates the
// resolver, the embedded runtime logs through the same logger.
func Default(opts ...Option) *Resolver {
	defaultOnce.Do(func() {
		r := New(Config{}, NativeLoader(), nil, opts...)
		cfg, err := LoadConfig()
		if err != nil {
			r.log.Warn(context.Background(), "failed to read XA driver configuration", "error", err)
		} else {
			r.cfg = cfg.withDefaults()
		}
		r.proc = AtmiProcess(atmi.WithLogger(r.log))
		defaultResolver = r
	})
	return defaultResolver
}

// Switch returns the XA switch of the process-wide resolver, or 0.
func Switch() uintptr { return Default().Switch() }
