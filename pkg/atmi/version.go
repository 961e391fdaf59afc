package atmi

import "github.com/endurox-dev/exgo/pkg/atmi/internal/backend"

// Version is the bridge release, set at build time via ldflags.
var Version = "v0.0.0-in-progress"

// MiddlewareVersion returns the Enduro/X release the native bindings were
// compiled against, or "unknown" without them.
func MiddlewareVersion() string {
	if v := backend.Version(); v != "" {
		return v
	}
	return "unknown"
}
