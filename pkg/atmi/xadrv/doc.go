// Package xadrv resolves the XA resource-manager switch for the bridge.
//
// The transaction manager asks for the switch once per process. The first
// request looks for the switch symbol in the running image, falls back to
// the library named by NDRX_XA_RMLIB, decides whether the process hosts its
// own runtime or needs an embedded one, and runs the matching driver
// initializer. The result, success or failure, is cached for the life of the
// process: a failed resolution means the resource manager is unavailable and
// retry policy belongs to the caller.
package xadrv
