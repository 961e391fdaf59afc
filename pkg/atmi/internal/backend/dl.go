//go:build cgo && !windows

package backend

/*
#define _GNU_SOURCE
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

static void* exgo_dlsym_default(const char* name) {
	dlerror();
	return dlsym(RTLD_DEFAULT, name);
}

static void* exgo_dlopen(const char* path) {
	return dlopen(path, RTLD_NOW);
}

static const char* exgo_dlerror(void) {
	return dlerror();
}

// Library handles cross into Go as uintptr_t: they are opaque and owned by
// the dynamic loader.
// Clear dlerror, call dlsym, and return the error (if any) alongside the symbol.
static void* exgo_dlsym(uintptr_t h, const char* name, char** err) {
	dlerror();
	void* p = dlsym((void*)h, name);
	char* e = dlerror();
	if (e) { *err = e; return NULL; }
	*err = NULL;
	return p;
}

static int exgo_dlclose(uintptr_t h) {
	return dlclose((void*)h);
}

static int exgo_call_init(uintptr_t fn) {
	return ((int (*)(void))fn)();
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

func dlerr() string {
	if e := C.exgo_dlerror(); e != nil {
		return C.GoString(e)
	}
	return "unknown dlerror"
}

// DlsymDefault resolves name in the running process image. Zero means the
// symbol is not present.
func DlsymDefault(name string) uintptr {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	return uintptr(C.exgo_dlsym_default(cs))
}

// Dlopen opens a shared object with immediate binding.
func Dlopen(path string) (uintptr, error) {
	cs := C.CString(path)
	defer C.free(unsafe.Pointer(cs))
	h := C.exgo_dlopen(cs)
	if h == nil {
		return 0, fmt.Errorf("dlopen(%q) failed: %s", path, dlerr())
	}
	return uintptr(h), nil
}

// Dlsym resolves name in the library opened by Dlopen.
func Dlsym(lib uintptr, name string) (uintptr, error) {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	var cerr *C.char
	p := C.exgo_dlsym(C.uintptr_t(lib), cs, &cerr)
	if cerr != nil {
		return 0, fmt.Errorf("dlsym(%q) failed: %s", name, C.GoString(cerr))
	}
	if p == nil {
		return 0, fmt.Errorf("dlsym(%q) returned NULL", name)
	}
	return uintptr(p), nil
}

// Dlclose closes a library handle.
func Dlclose(lib uintptr) error {
	if C.exgo_dlclose(C.uintptr_t(lib)) != 0 {
		return fmt.Errorf("dlclose failed: %s", dlerr())
	}
	return nil
}

// CallInit invokes an exported `int fn(void)` initializer.
func CallInit(fn uintptr) int {
	return int(C.exgo_call_init(C.uintptr_t(fn)))
}
