package wasm

import (
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/wasm-annotate/internal/binary"
)

// Parsing errors returned by ReadSections and ParseModule.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

// ReadSections splits a module binary into its sections in file order.
// Section payloads are not decoded.
func ReadSections(data []byte) ([]Section, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	var sections []Section
	var lastSectionOrder int
	for {
		offset := r.Position()
		sectionID, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, r.WrapError("section header", err)
		}

		// Custom sections can appear anywhere
		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 0 {
				return nil, fmt.Errorf("unknown section ID: 0x%02x", sectionID)
			}
			if order <= lastSectionOrder {
				return nil, fmt.Errorf("section %d appears out of order", sectionID)
			}
			lastSectionOrder = order
		}

		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}
		sections = append(sections, Section{ID: sectionID, Offset: offset, Data: payload})
	}
	return sections, nil
}

// sectionOrder returns the canonical ordering for a section ID, or 0 for
// IDs that are not known sections.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6 // Tag comes after Memory, before Global
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11 // DataCount must come before Code
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

// ParseModule parses a module binary, decoding the type, import, function
// and export sections. Other sections are retained in Module.Raw.
func ParseModule(data []byte) (*Module, error) {
	sections, err := ReadSections(data)
	if err != nil {
		return nil, err
	}

	m := &Module{}
	for _, s := range sections {
		switch s.ID {
		case SectionCustom:
			cs, err := DecodeCustomSection(s.Data)
			if err != nil {
				return nil, fmt.Errorf("custom section: %w", err)
			}
			m.CustomSections = append(m.CustomSections, cs)
		case SectionType:
			if m.Types, err = DecodeTypeSection(s.Data); err != nil {
				return nil, fmt.Errorf("type section: %w", err)
			}
		case SectionImport:
			if m.Imports, err = DecodeImportSection(s.Data); err != nil {
				return nil, fmt.Errorf("import section: %w", err)
			}
		case SectionFunction:
			if m.Funcs, err = DecodeFunctionSection(s.Data); err != nil {
				return nil, fmt.Errorf("function section: %w", err)
			}
		case SectionExport:
			if m.Exports, err = DecodeExportSection(s.Data); err != nil {
				return nil, fmt.Errorf("export section: %w", err)
			}
		default:
			m.Raw = append(m.Raw, s)
		}
	}
	return m, nil
}

// DecodeCustomSection splits a custom section payload into name and data.
func DecodeCustomSection(payload []byte) (CustomSection, error) {
	r := binary.NewReader(payload)
	name, err := r.ReadName()
	if err != nil {
		return CustomSection{}, err
	}
	rest, err := r.ReadRemaining()
	if err != nil {
		return CustomSection{}, err
	}
	return CustomSection{Name: name, Data: rest}, nil
}

// DecodeTypeSection decodes a type section payload. Only function types
// are supported; GC type forms are rejected.
func DecodeTypeSection(payload []byte) ([]FuncType, error) {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	types := make([]FuncType, 0, min(int(count), r.Len()))
	for i := uint32(0); i < count; i++ {
		form, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read type form at index %d: %w", i, err)
		}
		if form != FuncTypeByte {
			return nil, fmt.Errorf("unsupported type form 0x%02x at index %d", form, i)
		}
		ft, err := readFuncType(r)
		if err != nil {
			return nil, fmt.Errorf("type %d: %w", i, err)
		}
		types = append(types, ft)
	}
	if err := expectEnd(r); err != nil {
		return nil, err
	}
	return types, nil
}

func readFuncType(r *binary.Reader) (FuncType, error) {
	params, err := readValTypes(r)
	if err != nil {
		return FuncType{}, err
	}
	results, err := readValTypes(r)
	if err != nil {
		return FuncType{}, err
	}
	return FuncType{Params: params, Results: results}, nil
}

func readValTypes(r *binary.Reader) ([]ValType, error) {
	count, err := r.ReadU32()
	if err != nil || count == 0 {
		return nil, err
	}
	types := make([]ValType, 0, min(int(count), r.Len()))
	for i := uint32(0); i < count; i++ {
		vt, err := readValType(r)
		if err != nil {
			return nil, err
		}
		types = append(types, vt)
	}
	return types, nil
}

func readValType(r *binary.Reader) (ValType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch vt := ValType(b); vt {
	case ValI32, ValI64, ValF32, ValF64, ValV128, ValFuncRef, ValExtern:
		return vt, nil
	default:
		return 0, fmt.Errorf("unsupported value type 0x%02x", b)
	}
}

// DecodeImportSection decodes an import section payload.
func DecodeImportSection(payload []byte) ([]Import, error) {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	imports := make([]Import, 0, min(int(count), r.Len()))
	for i := uint32(0); i < count; i++ {
		module, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}

		imp := Import{Module: module, Name: name, Desc: ImportDesc{Kind: kind}}

		switch kind {
		case KindFunc:
			imp.Desc.TypeIdx, err = r.ReadU32()
			if err != nil {
				return nil, err
			}
		case KindTable:
			table, err := readTableType(r)
			if err != nil {
				return nil, err
			}
			imp.Desc.Table = &table
		case KindMemory:
			limits, err := readLimits(r)
			if err != nil {
				return nil, err
			}
			imp.Desc.Memory = &MemoryType{Limits: limits}
		case KindGlobal:
			global, err := readGlobalType(r)
			if err != nil {
				return nil, err
			}
			imp.Desc.Global = &global
		case KindTag:
			if _, err := r.ReadByte(); err != nil {
				return nil, err
			}
			imp.Desc.TypeIdx, err = r.ReadU32()
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("invalid import kind: 0x%02x", kind)
		}
		imports = append(imports, imp)
	}
	if err := expectEnd(r); err != nil {
		return nil, err
	}
	return imports, nil
}

func readLimits(r *binary.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	l := Limits{
		Shared:   flags&LimitsShared != 0,
		Memory64: flags&LimitsMemory64 != 0,
	}
	l.Min, err = r.ReadU64()
	if err != nil {
		return Limits{}, err
	}
	if flags&LimitsHasMax != 0 {
		maxVal, err := r.ReadU64()
		if err != nil {
			return Limits{}, err
		}
		l.Max = &maxVal
	}
	if !l.Memory64 && (l.Min > 0xFFFFFFFF || (l.Max != nil && *l.Max > 0xFFFFFFFF)) {
		return Limits{}, fmt.Errorf("limits exceed 32 bits")
	}
	return l, nil
}

func readTableType(r *binary.Reader) (TableType, error) {
	elemType, err := r.ReadByte()
	if err != nil {
		return TableType{}, err
	}
	if ValType(elemType) != ValFuncRef && ValType(elemType) != ValExtern {
		return TableType{}, fmt.Errorf("unsupported table element type 0x%02x", elemType)
	}
	limits, err := readLimits(r)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: elemType, Limits: limits}, nil
}

func readGlobalType(r *binary.Reader) (GlobalType, error) {
	vt, err := readValType(r)
	if err != nil {
		return GlobalType{}, err
	}
	mut, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	return GlobalType{ValType: vt, Mutable: mut != 0}, nil
}

// DecodeFunctionSection decodes a function section payload into the type
// index of each defined function.
func DecodeFunctionSection(payload []byte) ([]uint32, error) {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	funcs := make([]uint32, 0, min(int(count), r.Len()))
	for i := uint32(0); i < count; i++ {
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, idx)
	}
	if err := expectEnd(r); err != nil {
		return nil, err
	}
	return funcs, nil
}

// DecodeExportSection decodes an export section payload.
func DecodeExportSection(payload []byte) ([]Export, error) {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	exports := make([]Export, 0, min(int(count), r.Len()))
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if kind > KindTag {
			return nil, fmt.Errorf("invalid export kind: 0x%02x", kind)
		}
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		exports = append(exports, Export{Name: name, Kind: kind, Idx: idx})
	}
	if err := expectEnd(r); err != nil {
		return nil, err
	}
	return exports, nil
}

func expectEnd(r *binary.Reader) error {
	if r.Len() != 0 {
		return r.WrapError("section end", fmt.Errorf("%d trailing bytes", r.Len()))
	}
	return nil
}
