// Package internalcheck holds policy tests run over the bridge sources.
//
// It has no API of its own. The tests load the packages with
// golang.org/x/tools/go/packages and fail on constructs the bridge does not
// allow, such as cgo outside the backend or printing from library code.
package internalcheck
