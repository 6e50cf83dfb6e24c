// Package wasm reads and writes the parts of the WebAssembly binary format
// that the annotation pipeline depends on.
//
// Sections are exposed in file order, which matters for annotation
// merging: custom sections may appear anywhere and later sections of the
// same kind replace earlier ones.
//
//	sections, err := wasm.ReadSections(data)
//	for _, s := range sections {
//	    switch s.ID {
//	    case wasm.SectionType:
//	        types, err := wasm.DecodeTypeSection(s.Data)
//	        ...
//	    }
//	}
//
// Only the type, import, function and export sections are decoded into
// structures. Every other known section is kept as raw bytes so a Module
// can be written back without loss of the parts this package ignores.
//
// ParseModule collects the decoded sections into a Module; Module.Encode
// writes it back in canonical section order.
package wasm
