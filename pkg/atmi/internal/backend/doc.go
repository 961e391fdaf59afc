// Package backend hosts the thin cgo layer that links the Go API to the
// native Enduro/X libraries. The real implementation lives behind build tags
// (cgo plus the endurox tag) so that the rest of the repository can compile
// and test without the middleware headers installed.
//
// Nothing above this package imports "C". Pointers cross the boundary as
// uintptr values and are never dereferenced on the Go side.
package backend
