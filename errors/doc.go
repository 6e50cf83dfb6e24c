// Package errors provides structured error types for wasm-annotate.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a location path, the offending value, a detail
// message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidParam).
//		Path("types", "2", "params", "0").
//		Value(0x42).
//		Detail("unrecognized parameter tag").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TrailingBytes(errors.PhaseDecode, []string{"persist"}, 1)
//	err := errors.OutOfBounds(errors.PhaseMerge, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind matches on Kind alone, regardless of phase.
package errors
