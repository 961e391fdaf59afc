package atmi

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/endurox-dev/exgo/pkg/atmi/logging"
)

// ContextToken identifies a native ATMI context. NullContext is the unbound
// sentinel.
type ContextToken uintptr

// NullContext is TPNULLCONTEXT.
const NullContext ContextToken = 0

// ContextCarrier is implemented by values that belong to a Context, such as
// buffers and expression trees.
type ContextCarrier interface {
	AtmiContext() *Context
}

// Context carries one native ATMI context. The token is allocated the first
// time the context is bound and installed on the calling OS thread for the
// duration of each boundary crossing.
//
// A Context is not safe for concurrent use: the native context is single
// threaded. Nested use from within With on the same goroutine is reentrant.
type Context struct {
	token   ContextToken
	native  Native
	tr      *Translator
	buffers BufferTranslator
	log     logging.Logger
	obs     Observer

	depth    int
	live     map[NativeHandle]string
	closed   bool
	embedded bool
}

// hostActive records that this process created a context of its own, which
// makes it the managed-runtime host as far as driver role detection goes.
var hostActive atomic.Bool

// HostActive reports whether this process hosts its own ATMI contexts.
func HostActive() bool { return hostActive.Load() }

// NewContext creates a context. The error catalog is checked against the
// native error names first; a mismatch fails here instead of at the first
// translated error.
func NewContext(opts ...Option) (*Context, error) {
	c, err := newContext(buildOptions(opts))
	if err != nil {
		return nil, err
	}
	hostActive.Store(true)
	return c, nil
}

func newContext(o options) (*Context, error) {
	if err := o.catalog.Verify(o.native); err != nil {
		o.logger.Error(context.Background(), "error catalog verification failed", "error", err)
		return nil, fmt.Errorf("atmi: error catalog out of sync: %w", err)
	}
	c := &Context{
		native:  o.native,
		tr:      newTranslator(o),
		buffers: o.buffers,
		log:     o.logger.With("component", "context"),
		obs:     o.observer,
		live:    make(map[NativeHandle]string),
	}
	runtime.SetFinalizer(c, func(c *Context) { _ = c.Close() })
	return c, nil
}

// Token returns the native token, or NullContext before the first binding.
func (c *Context) Token() ContextToken { return c.token }

// Translator returns the error translator used by the context.
func (c *Context) Translator() *Translator { return c.tr }

// AtmiContext makes a Context its own carrier.
func (c *Context) AtmiContext() *Context { return c }

// NativeHandle exposes the token through the handle registry.
func (c *Context) NativeHandle() NativeHandle { return NativeHandle(c.token) }

// SetNativeHandle adopts an already allocated native context.
func (c *Context) SetNativeHandle(h NativeHandle) { c.token = ContextToken(h) }

func (c *Context) ensureToken() error {
	if c.token != NullContext {
		return nil
	}
	tok, err := c.native.NewContext()
	if err != nil {
		return c.tr.Raise(err)
	}
	c.token = tok
	c.log.Debug(context.Background(), "context allocated", "token", uintptr(tok))
	return nil
}

// Binding is the scoped guard returned by Bind. Release unbinds the context
// when the outermost binding ends.
type Binding struct {
	c    *Context
	done bool
}

// Bind installs the context on the calling OS thread. The goroutine stays
// locked to that thread until the outermost Binding is released.
func (c *Context) Bind() (*Binding, error) {
	if c == nil {
		return nil, &BindingError{Op: "bind", Type: "*atmi.Context", Field: "ctx"}
	}
	if c.closed {
		return nil, ErrContextClosed
	}
	if c.depth > 0 {
		c.depth++
		return &Binding{c: c}, nil
	}

	runtime.LockOSThread()
	if err := c.ensureToken(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	if cur := c.native.CurrentContext(); cur != NullContext && cur != c.token {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: token %#x is installed", ErrContextBusy, uintptr(cur))
	}
	if err := c.native.SetContext(c.token, 0); err != nil {
		runtime.UnlockOSThread()
		return nil, c.tr.Raise(err)
	}
	c.depth = 1
	c.obs.ContextBound(c.token)
	c.log.Debug(context.Background(), "context bound", "token", uintptr(c.token), "tid", threadID())
	return &Binding{c: c}, nil
}

// Release ends the binding. It is safe to call more than once.
func (b *Binding) Release() {
	if b == nil || b.done {
		return
	}
	b.done = true
	c := b.c
	c.depth--
	if c.depth > 0 {
		return
	}
	if err := c.native.SetContext(NullContext, 0); err != nil {
		c.log.Error(context.Background(), "failed to unset context", "token", uintptr(c.token), "error", err)
	}
	c.obs.ContextUnbound(c.token)
	c.log.Debug(context.Background(), "context unbound", "token", uintptr(c.token), "tid", threadID())
	runtime.UnlockOSThread()
}

// With runs fn with the context bound and unbinds it on every exit path,
// panics included.
func (c *Context) With(fn func() error) error {
	b, err := c.Bind()
	if err != nil {
		return err
	}
	defer b.Release()
	return fn()
}

// ResolveContext finds the context behind a carrier.
func ResolveContext(carrier any) (*Context, error) {
	var c *Context
	switch v := carrier.(type) {
	case *Context:
		c = v
	case ContextCarrier:
		c = v.AtmiContext()
	}
	if c == nil {
		return nil, &BindingError{Op: "resolve context", Type: fmt.Sprintf("%T", carrier), Field: "ctx"}
	}
	return c, nil
}

// WithContext resolves the context behind carrier and runs fn with it bound.
// A carrier without a context fails before any native call.
func WithContext(carrier any, fn func(*Context) error) error {
	c, err := ResolveContext(carrier)
	if err != nil {
		return err
	}
	return c.With(func() error { return fn(c) })
}

func (c *Context) raise(err error) error { return c.tr.Raise(err) }

func (c *Context) track(h NativeHandle, kind string) {
	c.live[h] = kind
	c.obs.HandleAcquired(kind)
}

// release frees a handle allocated by this context. Handles already freed,
// for example by Close, are skipped.
func (c *Context) release(h NativeHandle, kind string) error {
	if c.closed {
		return nil
	}
	if _, ok := c.live[h]; !ok {
		return nil
	}
	return c.With(func() error {
		c.freeNative(h, kind)
		delete(c.live, h)
		c.obs.HandleReleased(kind)
		c.log.Debug(context.Background(), "handle released", "kind", kind, "handle", uintptr(h))
		return nil
	})
}

func (c *Context) freeNative(h NativeHandle, kind string) {
	switch kind {
	case kindExpr:
		c.native.FreeExpr(h)
	default:
		c.native.Free(h)
	}
}

// LiveHandles lists the handles allocated by this context and not yet
// released, in ascending order.
func (c *Context) LiveHandles() []NativeHandle {
	out := make([]NativeHandle, 0, len(c.live))
	for h := range c.live {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// Close frees every live handle, then the native context. It is idempotent
// and must not be called from inside With. If the handles cannot be freed,
// for example because another context is bound on the thread, the context
// stays open and Close can be retried.
func (c *Context) Close() error {
	if c == nil || c.closed {
		return nil
	}
	if c.depth > 0 {
		return fmt.Errorf("%w: close inside an active binding", ErrContextBusy)
	}
	if len(c.live) > 0 {
		err := c.With(func() error {
			for _, h := range c.LiveHandles() {
				kind := c.live[h]
				c.freeNative(h, kind)
				c.obs.HandleReleased(kind)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	runtime.SetFinalizer(c, nil)
	c.live = nil
	if c.token != NullContext {
		c.native.FreeContext(c.token)
		c.log.Debug(context.Background(), "context freed", "token", uintptr(c.token))
	}
	c.token = NullContext
	c.closed = true
	return nil
}

// Closed reports whether Close has completed.
func (c *Context) Closed() bool { return c.closed }

var (
	embeddedMu sync.Mutex
	embedded   *Context
)

// BootstrapEmbedded creates the process-wide context used when the bridge is
// loaded by a native-only process (for example a transaction manager) that
// has no runtime of its own. It does not mark the process as a host.
// Repeated calls return the same context.
func BootstrapEmbedded(opts ...Option) (*Context, error) {
	embeddedMu.Lock()
	defer embeddedMu.Unlock()
	if embedded != nil {
		return embedded, nil
	}
	c, err := newContext(buildOptions(opts))
	if err != nil {
		return nil, err
	}
	c.embedded = true
	if err := c.With(func() error { return nil }); err != nil {
		_ = c.Close()
		return nil, err
	}
	embedded = c
	c.log.Info(context.Background(), "embedded runtime bootstrapped", "token", uintptr(c.token))
	return c, nil
}

// EmbeddedContext returns the bootstrapped context, or nil.
func EmbeddedContext() *Context {
	embeddedMu.Lock()
	defer embeddedMu.Unlock()
	return embedded
}

// ShutdownEmbedded closes the bootstrapped context, if any.
func ShutdownEmbedded() error {
	embeddedMu.Lock()
	defer embeddedMu.Unlock()
	if embedded == nil {
		return nil
	}
	err := embedded.Close()
	embedded = nil
	return err
}

// Embedded reports whether c is the bootstrapped embedded-runtime context.
func (c *Context) Embedded() bool { return c.embedded }
