//go:build linux

package atmi

import "golang.org/x/sys/unix"

// threadID identifies the OS thread the calling goroutine runs on. It is
// only stable while the goroutine holds runtime.LockOSThread.
func threadID() int { return unix.Gettid() }
