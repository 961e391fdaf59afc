// Package atmitest provides an in-memory stand-in for the middleware so the
// bridge can be exercised without the native libraries.
package atmitest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/endurox-dev/exgo/pkg/atmi"
)

type nameKey struct {
	d    atmi.Domain
	code int
}

// Native implements atmi.Native. The installed context is tracked per OS
// thread, like the real thread-local slot.
type Native struct {
	mu sync.Mutex

	nextCtx atmi.ContextToken
	nextPtr atmi.NativeHandle

	contexts  map[atmi.ContextToken]bool
	installed map[int]atmi.ContextToken
	buffers   map[atmi.NativeHandle]atmi.BufferType
	exprs     map[atmi.NativeHandle]string
	frees     map[atmi.NativeHandle]int
	freedIn   map[atmi.NativeHandle]atmi.ContextToken
	names     map[nameKey]string
	setCalls  int
	newCalls  int

	// FailNewContext, when set, is returned by NewContext.
	FailNewContext error
}

// NewNative returns an empty fake middleware.
func NewNative() *Native {
	return &Native{
		nextCtx:   0x1000,
		nextPtr:   0x7f0000,
		contexts:  make(map[atmi.ContextToken]bool),
		installed: make(map[int]atmi.ContextToken),
		buffers:   make(map[atmi.NativeHandle]atmi.BufferType),
		exprs:     make(map[atmi.NativeHandle]string),
		frees:     make(map[atmi.NativeHandle]int),
		freedIn:   make(map[atmi.NativeHandle]atmi.ContextToken),
		names:     make(map[nameKey]string),
	}
}

var knownTypes = map[string]bool{
	"UBF": true, "STRING": true, "JSON": true, "CARRAY": true, "VIEW": true, "NULL": true,
}

func atmiErr(code int, format string, args ...any) error {
	return &atmi.ErrorRecord{Domain: atmi.DomainATMI, Code: code, Message: fmt.Sprintf(format, args...)}
}

func (n *Native) ErrorName(d atmi.Domain, code int) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if name, ok := n.names[nameKey{d, code}]; ok {
		return name
	}
	return atmi.CodeName(d, code)
}

// OverrideName makes ErrorName report name for (d, code). Used to simulate a
// middleware release whose codes are unknown to the catalog.
func (n *Native) OverrideName(d atmi.Domain, code int, name string) {
	n.mu.Lock()
	n.names[nameKey{d, code}] = name
	n.mu.Unlock()
}

func (n *Native) NewContext() (atmi.ContextToken, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newCalls++
	if n.FailNewContext != nil {
		return atmi.NullContext, n.FailNewContext
	}
	n.nextCtx += 0x10
	n.contexts[n.nextCtx] = true
	return n.nextCtx, nil
}

func (n *Native) FreeContext(tok atmi.ContextToken) {
	n.mu.Lock()
	delete(n.contexts, tok)
	n.mu.Unlock()
}

func (n *Native) SetContext(tok atmi.ContextToken, _ int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.setCalls++
	tid := threadID()
	if tok == atmi.NullContext {
		delete(n.installed, tid)
		return nil
	}
	if !n.contexts[tok] {
		return atmiErr(atmi.TPEINVAL, "invalid context %#x", uintptr(tok))
	}
	n.installed[tid] = tok
	return nil
}

func (n *Native) CurrentContext() atmi.ContextToken {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.installed[threadID()]
}

func (n *Native) currentLocked() (atmi.ContextToken, error) {
	tok := n.installed[threadID()]
	if tok == atmi.NullContext {
		return tok, atmiErr(atmi.TPEPROTO, "no context installed on thread")
	}
	return tok, nil
}

func (n *Native) Alloc(btype, subtype string, size int64) (atmi.NativeHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := n.currentLocked(); err != nil {
		return 0, err
	}
	if btype == "" {
		return 0, atmiErr(atmi.TPEINVAL, "buffer type is NULL or empty")
	}
	if !knownTypes[btype] {
		return 0, atmiErr(atmi.TPENOENT, "unknown buffer type [%s]", btype)
	}
	n.nextPtr += 0x100
	n.buffers[n.nextPtr] = atmi.BufferType{Type: btype, Subtype: subtype, Size: size}
	return n.nextPtr, nil
}

// AddBuffer registers a buffer as if the dispatcher had received it.
func (n *Native) AddBuffer(btype, subtype string, size int64) atmi.NativeHandle {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextPtr += 0x100
	n.buffers[n.nextPtr] = atmi.BufferType{Type: btype, Subtype: subtype, Size: size}
	return n.nextPtr
}

func (n *Native) Types(h atmi.NativeHandle) (atmi.BufferType, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	bt, ok := n.buffers[h]
	if !ok {
		return atmi.BufferType{}, atmiErr(atmi.TPEINVAL, "not an ATMI buffer: %#x", uintptr(h))
	}
	return bt, nil
}

func (n *Native) Free(h atmi.NativeHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frees[h]++
	n.freedIn[h] = n.installed[threadID()]
	delete(n.buffers, h)
}

func (n *Native) CompileExpr(expr string) (atmi.NativeHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := n.currentLocked(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(expr) == "" || strings.Count(expr, "(") != strings.Count(expr, ")") {
		return 0, &atmi.ErrorRecord{Domain: atmi.DomainUBF, Code: atmi.BSYNTAX, Message: "syntax error in expression: " + expr}
	}
	n.nextPtr += 0x100
	n.exprs[n.nextPtr] = expr
	return n.nextPtr, nil
}

func (n *Native) FreeExpr(h atmi.NativeHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frees[h]++
	n.freedIn[h] = n.installed[threadID()]
	delete(n.exprs, h)
}

// FreeCount reports how many times h was passed to a native free.
func (n *Native) FreeCount(h atmi.NativeHandle) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.frees[h]
}

// FreedIn reports the context installed when h was freed.
func (n *Native) FreedIn(h atmi.NativeHandle) atmi.ContextToken {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.freedIn[h]
}

// BoundThreads counts threads with a non-null context installed.
func (n *Native) BoundThreads() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.installed)
}

// LiveContexts counts allocated and not yet freed contexts.
func (n *Native) LiveContexts() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.contexts)
}

// LiveBuffers counts buffers not yet freed.
func (n *Native) LiveBuffers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.buffers)
}

// SetCalls counts SetContext invocations, null included.
func (n *Native) SetCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.setCalls
}

// NewContextCalls counts NewContext invocations.
func (n *Native) NewContextCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.newCalls
}

// Install puts tok on the calling thread without going through a Context.
// Callers must hold runtime.LockOSThread.
func (n *Native) Install(tok atmi.ContextToken) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if tok == atmi.NullContext {
		delete(n.installed, threadID())
		return
	}
	n.contexts[tok] = true
	n.installed[threadID()] = tok
}
