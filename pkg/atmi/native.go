package atmi

import (
	"sync"

	"github.com/endurox-dev/exgo/pkg/atmi/internal/backend"
)

// BufferType describes a typed buffer as reported by tptypes.
type BufferType struct {
	Type    string
	Subtype string
	Size    int64
}

// Native is the downstream surface of the middleware. Failing calls return an
// *ErrorRecord read from the native error state of the calling thread.
//
// Implementations are called only between SetContext(tok) and
// SetContext(NullContext) on one locked OS thread, except NewContext,
// FreeContext and ErrorName.
type Native interface {
	NameSource

	NewContext() (ContextToken, error)
	FreeContext(tok ContextToken)
	SetContext(tok ContextToken, flags int64) error
	CurrentContext() ContextToken

	Alloc(btype, subtype string, size int64) (NativeHandle, error)
	Types(h NativeHandle) (BufferType, error)
	Free(h NativeHandle)

	CompileExpr(expr string) (NativeHandle, error)
	FreeExpr(h NativeHandle)
}

// DefaultNative returns the cgo-backed native layer. Without the endurox
// build tag every call reports ErrNotBuilt.
func DefaultNative() Native { return cgoNative{} }

// NativeBuilt reports whether DefaultNative talks to a linked middleware.
func NativeBuilt() bool { return backend.Built() }

// installed mirrors the middleware's thread-local context slot so that
// CurrentContext never has to call tpgetctxt, which detaches the context.
var installed sync.Map // thread id -> ContextToken

type cgoNative struct{}

func (cgoNative) ErrorName(d Domain, code int) string {
	return backend.ErrorName(int(d), code)
}

func (cgoNative) NewContext() (ContextToken, error) {
	tok, err := backend.NewContext()
	return ContextToken(tok), remap(err)
}

func (cgoNative) FreeContext(tok ContextToken) { backend.FreeContext(uintptr(tok)) }

func (cgoNative) SetContext(tok ContextToken, flags int64) error {
	if err := backend.SetContext(uintptr(tok), flags); err != nil {
		return remap(err)
	}
	if tok == NullContext {
		installed.Delete(threadID())
	} else {
		installed.Store(threadID(), tok)
	}
	return nil
}

func (cgoNative) CurrentContext() ContextToken {
	if v, ok := installed.Load(threadID()); ok {
		return v.(ContextToken)
	}
	return NullContext
}

func (cgoNative) Alloc(btype, subtype string, size int64) (NativeHandle, error) {
	ptr, err := backend.Alloc(btype, subtype, size)
	return NativeHandle(ptr), remap(err)
}

func (cgoNative) Types(h NativeHandle) (BufferType, error) {
	btype, subtype, size, err := backend.Types(uintptr(h))
	if err != nil {
		return BufferType{}, remap(err)
	}
	return BufferType{Type: btype, Subtype: subtype, Size: size}, nil
}

func (cgoNative) Free(h NativeHandle) { backend.Free(uintptr(h)) }

func (cgoNative) CompileExpr(expr string) (NativeHandle, error) {
	ptr, err := backend.CompileExpr(expr)
	return NativeHandle(ptr), remap(err)
}

func (cgoNative) FreeExpr(h NativeHandle) { backend.FreeExpr(uintptr(h)) }
