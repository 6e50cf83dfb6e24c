package wasm

// Module holds the decoded sections of a WebAssembly module.
type Module struct {
	Types          []FuncType
	Imports        []Import
	Funcs          []uint32 // Type indices for declared functions
	Exports        []Export
	CustomSections []CustomSection

	// Raw holds every other section undecoded, in file order.
	Raw []Section
}

// Section is one section as it appears in the binary.
type Section struct {
	Data   []byte // Payload, excluding id and size
	Offset int    // Offset of the section id byte in the module
	ID     byte
}

// FuncType represents a WebAssembly function signature with parameter and result types.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ValType is a single-byte value type encoding.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	default:
		return "unknown"
	}
}

// Import represents an imported function, table, memory, global, or tag.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item.
// Kind uses KindFunc, KindTable, KindMemory, KindGlobal, or KindTag constants.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	TypeIdx uint32 // Function type, or tag signature for KindTag
	Kind    byte
}

// TableType describes a table with element type and size limits.
type TableType struct {
	Limits   Limits
	ElemType byte
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for tables and memories.
type Limits struct {
	Max      *uint64
	Min      uint64
	Shared   bool
	Memory64 bool
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Export describes an exported item.
// Kind uses KindFunc, KindTable, KindMemory, KindGlobal, or KindTag constants.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// NumImportedFuncs returns the number of imported functions, which is the
// offset of the first defined function in the function index space.
func (m *Module) NumImportedFuncs() int {
	return CountImportedFuncs(m.Imports)
}

// CountImportedFuncs counts the function imports in imports.
func CountImportedFuncs(imports []Import) int {
	n := 0
	for _, imp := range imports {
		if imp.Desc.Kind == KindFunc {
			n++
		}
	}
	return n
}

// GetFuncType returns the signature of the function at funcIdx in the
// function index space, or nil if the index or its type index is out of range.
func (m *Module) GetFuncType(funcIdx uint32) *FuncType {
	var typeIdx uint32
	imported := uint32(0)
	found := false
	for _, imp := range m.Imports {
		if imp.Desc.Kind != KindFunc {
			continue
		}
		if imported == funcIdx {
			typeIdx = imp.Desc.TypeIdx
			found = true
			break
		}
		imported++
	}
	if !found {
		local := funcIdx - imported
		if funcIdx < imported || int(local) >= len(m.Funcs) {
			return nil
		}
		typeIdx = m.Funcs[local]
	}
	if int(typeIdx) >= len(m.Types) {
		return nil
	}
	return &m.Types[typeIdx]
}
