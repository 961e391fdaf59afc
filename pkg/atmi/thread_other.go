//go:build !linux

package atmi

// threadID has no portable implementation outside Linux; every thread maps
// to the same key, so the cgo native tracks one installed context per process.
func threadID() int { return 0 }
