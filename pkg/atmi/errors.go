package atmi

import (
	"errors"
	"fmt"

	"github.com/endurox-dev/exgo/pkg/atmi/internal/backend"
)

var (
	// ErrBinding matches every *BindingError.
	ErrBinding = errors.New("atmi: carrier binding mismatch")

	// ErrContextClosed is returned by operations on a closed Context.
	ErrContextClosed = errors.New("atmi: context has been closed")

	// ErrContextBusy rejects binding a context on a thread that already has a
	// different context installed.
	ErrContextBusy = errors.New("atmi: another context is bound to this thread")

	// ErrUnbound reports an operation on a zero handle.
	ErrUnbound = errors.New("atmi: handle is unbound")

	// ErrReleased reports use of a handle after its one-time release.
	ErrReleased = errors.New("atmi: handle has been released")

	// ErrNotBuilt reports that the native bindings were not linked into the
	// current binary.
	ErrNotBuilt = backend.ErrNotBuilt
)

// BindingError reports a carrier whose shape does not expose an expected
// field. It is a programming or version-skew defect, never a runtime
// condition to recover from.
type BindingError struct {
	Op    string
	Type  string
	Field string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("atmi: %s: carrier %s does not expose %s", e.Op, e.Type, e.Field)
}

func (e *BindingError) Is(target error) bool { return target == ErrBinding }

// ErrorRecord is a native failure as reported by the middleware: domain,
// code and message. It lives only until it is translated.
type ErrorRecord struct {
	Domain  Domain
	Code    int
	Message string
}

func (r *ErrorRecord) Error() string {
	return fmt.Sprintf("atmi: native %s error %d: %s", r.Domain, r.Code, r.Message)
}

// Error is a translated native error. Every catalog entry is an *Error
// sentinel; errors.Is matches on domain and code so the message is free to
// differ.
type Error struct {
	Domain  Domain
	Code    int
	Name    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s (%d)", e.Domain, e.Name, e.Code)
	}
	return fmt.Sprintf("%s %s (%d): %s", e.Domain, e.Name, e.Code, e.Message)
}

// TypeName returns the catalog key of the error, for example
// "UbfBBADFLDException".
func (e *Error) TypeName() string { return TypeName(e.Domain, e.Name) }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Domain == e.Domain && t.Code == e.Code
}

// CatalogMismatch reports a native error code with no catalog entry. The
// translator never returns it: it is handed to the fatal hook because the
// catalog is out of sync with the native error code set.
type CatalogMismatch struct {
	Domain   Domain
	Code     int
	TypeName string
}

func (e *CatalogMismatch) Error() string {
	return fmt.Sprintf("atmi: error catalog has no type %s for %s code %d", e.TypeName, e.Domain, e.Code)
}

// remap turns backend failures into public errors. Native faults become
// ErrorRecords so the translator can pick them up.
func remap(err error) error {
	if err == nil {
		return nil
	}
	var f *backend.Fault
	if errors.As(err, &f) {
		return &ErrorRecord{Domain: Domain(f.Domain), Code: f.Code, Message: f.Message}
	}
	return err
}
