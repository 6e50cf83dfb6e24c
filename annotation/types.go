package annotation

// Sub-section names as they appear in the custom section header.
const (
	SectionTypes   = "types"
	SectionTypeMap = "typeMap"
	SectionPersist = "persist"
)

// FunctionType is an annotated function signature. Annotated functions
// never return values.
type FunctionType struct {
	Params []TypeTag
	Return ReturnSlot
}

// ReturnSlot is the reserved byte that terminates every encoded function
// type. It is always written as zero. A nonzero byte read from the wire is
// kept as ReservedUnused so callers can see it; decoding does not reject it.
type ReturnSlot struct {
	raw byte
}

// NoReturn is the only slot value this package writes.
var NoReturn = ReturnSlot{}

// ReservedUnused wraps a nonzero reserved byte.
func ReservedUnused(b byte) ReturnSlot {
	return ReturnSlot{raw: b}
}

// IsNoReturn reports whether the slot holds zero.
func (s ReturnSlot) IsNoReturn() bool {
	return s.raw == 0
}

// Reserved returns the raw byte and whether it was nonzero.
func (s ReturnSlot) Reserved() (byte, bool) {
	return s.raw, s.raw != 0
}

// TypeMapEntry assigns annotated type Type to the function at index Func.
// Func counts defined functions only, starting at zero.
type TypeMapEntry struct {
	Func uint32
	Type uint32
}

// PersistEntry marks an external as durable state of the given type.
// Index is in the index space selected by Form and is not checked.
type PersistEntry struct {
	Form  ExternalKind
	Index uint32
	Type  TypeTag
}

// Annotations is the full set of sub-sections for one module. A nil field
// means the sub-section is absent.
type Annotations struct {
	Types   []FunctionType
	TypeMap []TypeMapEntry
	Persist []PersistEntry
}

// Model is the result of merging annotations into a module's native
// sections.
type Model struct {
	// Indexes maps a function index (imports first) to a position in Types.
	Indexes map[uint32]uint32
	// Exports maps an exported function name to its function index.
	Exports map[string]uint32
	Types   []FunctionType
	Persist []PersistEntry
}

// TypeOf returns the annotated type of the function at funcIdx.
func (m *Model) TypeOf(funcIdx uint32) (FunctionType, bool) {
	idx, ok := m.Indexes[funcIdx]
	if !ok || int(idx) >= len(m.Types) {
		return FunctionType{}, false
	}
	return m.Types[idx], true
}
