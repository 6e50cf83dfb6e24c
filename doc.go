// Package wasmannotate embeds parameter type annotations in WebAssembly
// module binaries and folds them into one type model.
//
// Annotations are three custom sections inserted right after the module
// preamble: "types" lists annotated function signatures, "typeMap" assigns
// them to defined functions, and "persist" marks functions, tables,
// memories and globals that hold durable state. Hosts that do not know
// the sections ignore them.
//
// # Architecture Overview
//
//	wasmannotate/
//	├── annotation/        Type tags, section codecs, injection and merge
//	├── engine/            wazero compile and host cross-check
//	├── wasm/              Core module section reading and encoding
//	├── errors/            Structured error types
//	├── internal/binary/   LEB128 reader and writer
//	└── cmd/annotate/      Command line tool
//
// # Quick Start
//
// Annotate a module and read the merged model back:
//
//	bin, err := annotation.EncodeAndInject(&annotation.Annotations{
//	    Types:   []annotation.FunctionType{{Params: []annotation.TypeTag{annotation.Actor}}},
//	    TypeMap: []annotation.TypeMapEntry{{Func: 0, Type: 0}},
//	}, module)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	model, err := annotation.MergeBinary(bin)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ft, _ := model.TypeOf(model.Exports["send"])
//
// # Errors
//
// Every failure is an *errors.Error carrying the phase it happened in and
// a kind. Test for a kind with errors.IsKind. No operation returns a
// partial result alongside an error.
//
// # Thread Safety
//
// Encoding, decoding and merging share no state and may run concurrently.
// Loggers must be configured before first use.
package wasmannotate
