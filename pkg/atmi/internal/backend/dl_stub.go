//go:build !cgo || windows

package backend

func DlsymDefault(string) uintptr { return 0 }

func Dlopen(string) (uintptr, error) { return 0, ErrCGONotEnabled }

func Dlsym(uintptr, string) (uintptr, error) { return 0, ErrCGONotEnabled }

func Dlclose(uintptr) error { return nil }

func CallInit(uintptr) int { return -1 }
