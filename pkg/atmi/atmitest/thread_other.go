//go:build !linux

package atmitest

func threadID() int { return 0 }
