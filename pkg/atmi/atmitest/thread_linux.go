//go:build linux

package atmitest

import "golang.org/x/sys/unix"

func threadID() int { return unix.Gettid() }
