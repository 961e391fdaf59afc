// Package atmi bridges Go code to the Enduro/X ATMI runtime.
//
// The package covers four concerns of the boundary:
//
//   - Handles: native buffers and expression trees are wrapped in owning
//     carriers (Buffer, ExprTree) whose only legal operations are use and a
//     one-time Free. Acquire and Bind read and store handles on arbitrary
//     carriers tagged `atmi:"cptr"`.
//   - Contexts: every native call runs with the right ATMI context installed
//     on the calling OS thread. Context.With and Context.Bind install it and
//     always restore the null context afterwards.
//   - Errors: native error codes from the ATMI, standard library and UBF
//     domains are translated into catalog errors (ErrTPENOENT, ErrBBADFLD,
//     ...). A code with no catalog entry terminates the process.
//   - Values: inbound service calls are converted into SvcInfo values in one
//     step, or not at all.
//
// Without the endurox build tag the package compiles against stubs and
// DefaultNative reports ErrNotBuilt. Tests use atmitest.Native instead.
//
//	ctx, err := atmi.NewContext()
//	if err != nil {
//	    return err
//	}
//	defer ctx.Close()
//
//	buf, err := ctx.Alloc("UBF", "", 1024)
//	if errors.Is(err, atmi.ErrTPEINVAL) {
//	    ...
//	}
//	defer buf.Free()
package atmi
