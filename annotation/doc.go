// Package annotation encodes, decodes and merges the type annotations that
// ride inside WebAssembly module binaries as custom sections.
//
// Three sub-sections are defined:
//
//	types    function signatures whose parameters use the extended tag set
//	typeMap  function index -> annotated type index overrides
//	persist  externals (func, table, memory, global) that hold durable state
//
// # Encoding
//
//	blob, err := annotation.Encode(&annotation.Annotations{
//	    Types:   []annotation.FunctionType{{Params: []annotation.TypeTag{annotation.I32}}},
//	    TypeMap: []annotation.TypeMapEntry{{Func: 0, Type: 0}},
//	})
//	out, err := annotation.Inject(blob, moduleBytes)
//
// A nil field on Annotations omits the sub-section entirely; an empty
// non-nil slice writes a section with a zero count.
//
// # Merging
//
// Merge combines a module's native type, import, function and export
// sections with the annotation sub-sections into a Model. Every function
// without results is assigned an annotated type: an explicit typeMap
// override when present, otherwise its native signature (shared by every
// function using the same native type index).
//
//	model, err := annotation.MergeBinary(moduleBytes)
//
// Any inconsistency aborts the merge; there is no partial result. Errors
// are *errors.Error values and can be classified with errors.IsKind.
package annotation
