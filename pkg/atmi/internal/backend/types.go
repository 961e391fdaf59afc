package backend

import (
	"errors"
	"fmt"
)

// Error domains as numbered by the native libraries' error plumbing.
const (
	DomainATMI = 1
	DomainNSTD = 2
	DomainUBF  = 3
)

var (
	// ErrNotBuilt reports that the native bindings were not linked into the
	// current binary.
	ErrNotBuilt = errors.New("atmi/internal/backend: native bindings not built")

	// ErrCGONotEnabled signals that the package was compiled without cgo and
	// therefore cannot load shared objects.
	ErrCGONotEnabled = errors.New("atmi/internal/backend: cgo not enabled")
)

// Fault is the raw error record read from the native error state right after
// a failing call.
type Fault struct {
	Domain  int
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("native fault domain=%d code=%d: %s", f.Domain, f.Code, f.Message)
}
