// Package engine checks annotated binaries against a real WebAssembly host.
//
// Injected annotation sections must not change how a host sees a module:
// the binary has to compile, the host must report the annotation custom
// sections unchanged, and every exported function in a merged Model must
// match the host's signature for it.
//
//	eng, err := engine.New(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close(ctx)
//
//	report, err := eng.Verify(ctx, binary, model)
//
// The engine wraps a wazero runtime. It is safe for concurrent use; each
// call compiles its own module and releases it before returning.
package engine
