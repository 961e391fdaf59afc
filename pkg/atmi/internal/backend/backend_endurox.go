//go:build cgo && endurox

package backend

/*
#cgo LDFLAGS: -latmi -lubf -lnstd -lpthread -lrt -ldl -lm
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
#include <atmi.h>
#include <ubf.h>
#include <nerror.h>
#include <ndrx_config.h>

extern void ndrx_xa_noapisusp(int val);

static const char *exgo_version(void) { return NDRX_VERSION; }

static int exgo_tperrno(void) { return tperrno; }
static int exgo_berror(void) { return Berror; }

// Contexts, buffers and trees are held on the Go side as uintptr_t. They
// are owned by the middleware and never dereferenced in Go.
static void exgo_tpfreectxt(uintptr_t ctx) { tpfreectxt((TPCONTEXT_T)ctx); }
static int exgo_tpsetctxt(uintptr_t ctx, long flags) { return tpsetctxt((TPCONTEXT_T)ctx, flags); }
static void exgo_tpfree(uintptr_t ptr) { tpfree((char *)ptr); }
static void exgo_bboolfree(uintptr_t tree) { Bboolfree((char *)tree); }

static long exgo_tptypes(uintptr_t ptr, char *type, char *subtype) {
	return tptypes((char *)ptr, type, subtype);
}
*/
import "C"

import (
	"unsafe"
)

// Built reports whether the native middleware is linked in.
func Built() bool { return true }

// Version returns the middleware release the bridge was compiled against.
func Version() string { return C.GoString(C.exgo_version()) }

func atmiFault() *Fault {
	code := int(C.exgo_tperrno())
	return &Fault{Domain: DomainATMI, Code: code, Message: C.GoString(C.tpstrerror(C.int(code)))}
}

func ubfFault() *Fault {
	code := int(C.exgo_berror())
	return &Fault{Domain: DomainUBF, Code: code, Message: C.GoString(C.Bstrerror(C.int(code)))}
}

// NewContext allocates a native ATMI context without installing it.
func NewContext() (uintptr, error) {
	ctx := C.tpnewctxt(0, 0)
	if ctx == nil {
		return 0, atmiFault()
	}
	return uintptr(unsafe.Pointer(ctx)), nil
}

// FreeContext releases a native ATMI context.
func FreeContext(tok uintptr) {
	C.exgo_tpfreectxt(C.uintptr_t(tok))
}

// SetContext installs tok on the calling OS thread. A zero token unsets the
// current context (TPNULLCONTEXT).
func SetContext(tok uintptr, flags int64) error {
	if C.exgo_tpsetctxt(C.uintptr_t(tok), C.long(flags)) == -1 {
		return atmiFault()
	}
	return nil
}

// Alloc allocates a typed buffer in the currently installed context.
func Alloc(btype, subtype string, size int64) (uintptr, error) {
	ct := C.CString(btype)
	defer C.free(unsafe.Pointer(ct))
	var cs *C.char
	if subtype != "" {
		cs = C.CString(subtype)
		defer C.free(unsafe.Pointer(cs))
	}
	ptr := C.tpalloc(ct, cs, C.long(size))
	if ptr == nil {
		return 0, atmiFault()
	}
	return uintptr(unsafe.Pointer(ptr)), nil
}

// Types reports the type, subtype and allocated size of a typed buffer.
func Types(ptr uintptr) (string, string, int64, error) {
	var btype [16]C.char
	var subtype [33]C.char
	size := C.exgo_tptypes(C.uintptr_t(ptr), &btype[0], &subtype[0])
	if size == -1 {
		return "", "", 0, atmiFault()
	}
	return C.GoString(&btype[0]), C.GoString(&subtype[0]), int64(size), nil
}

// Free releases a typed buffer (tpfree). The native call has no failure mode.
func Free(ptr uintptr) {
	C.exgo_tpfree(C.uintptr_t(ptr))
}

// CompileExpr compiles a UBF boolean expression.
func CompileExpr(expr string) (uintptr, error) {
	ce := C.CString(expr)
	defer C.free(unsafe.Pointer(ce))
	tree := C.Bboolco(ce)
	if tree == nil {
		return 0, ubfFault()
	}
	return uintptr(unsafe.Pointer(tree)), nil
}

// FreeExpr releases a compiled expression tree.
func FreeExpr(ptr uintptr) {
	C.exgo_bboolfree(C.uintptr_t(ptr))
}

// ErrorName maps a native error code to its symbolic name using the
// domain's own lookup function.
func ErrorName(domain, code int) string {
	switch domain {
	case DomainATMI:
		return C.GoString(C.tpecodestr(C.int(code)))
	case DomainNSTD:
		return C.GoString(C.ndrx_Necodestr(C.int(code)))
	case DomainUBF:
		return C.GoString(C.Becodestr(C.int(code)))
	default:
		return ""
	}
}

// DisableAPISuspend turns off transaction suspend around context switches.
func DisableAPISuspend() {
	C.ndrx_xa_noapisusp(1)
}
