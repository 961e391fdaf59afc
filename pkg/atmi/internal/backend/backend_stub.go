//go:build !cgo || !endurox

package backend

// Stub implementations for builds without the native middleware. These allow
// the package to compile but return ErrNotBuilt when called.

// Built reports whether the native middleware is linked in.
func Built() bool { return false }

func Version() string { return "" }

func NewContext() (uintptr, error) { return 0, ErrNotBuilt }

func FreeContext(uintptr) {}

func SetContext(uintptr, int64) error { return ErrNotBuilt }

func Alloc(string, string, int64) (uintptr, error) { return 0, ErrNotBuilt }

func Types(uintptr) (string, string, int64, error) { return "", "", 0, ErrNotBuilt }

func Free(uintptr) {}

func CompileExpr(string) (uintptr, error) { return 0, ErrNotBuilt }

func FreeExpr(uintptr) {}

// ErrorName returns an empty name so callers fall back to the static tables.
func ErrorName(int, int) string { return "" }

func DisableAPISuspend() {}
