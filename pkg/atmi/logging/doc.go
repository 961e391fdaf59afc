// Package logging provides a minimal logging facade for the ATMI bridge.
//
// The Logger interface wraps a context-aware subset of log/slog. The bridge
// logs every boundary crossing at debug level, process role decisions at
// info, and catalog or driver lookup failures at error.
//
//	logger := logging.New(nil) // slog.Default()
//	ctx, err := atmi.NewContext(atmi.WithLogger(logger))
//
// Deployments that already run zap can hand the bridge the same core:
//
//	z, _ := zap.NewProduction()
//	logger := logging.NewZap(z)
package logging
