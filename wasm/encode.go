package wasm

import (
	"sort"

	"github.com/wippyai/wasm-annotate/internal/binary"
)

// Encode encodes the module to WebAssembly binary format. Known sections
// are written in canonical order, custom sections last.
func (m *Module) Encode() []byte {
	type pending struct {
		data []byte
		id   byte
	}
	var sections []pending

	if len(m.Types) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.Byte(FuncTypeByte)
			writeValTypes(sec, ft.Params)
			writeValTypes(sec, ft.Results)
		}
		sections = append(sections, pending{id: SectionType, data: sec.Bytes()})
	}

	if len(m.Imports) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(imp.Desc.Kind)
			switch imp.Desc.Kind {
			case KindFunc:
				sec.WriteU32(imp.Desc.TypeIdx)
			case KindTable:
				if imp.Desc.Table != nil {
					sec.Byte(imp.Desc.Table.ElemType)
					writeLimits(sec, imp.Desc.Table.Limits)
				}
			case KindMemory:
				if imp.Desc.Memory != nil {
					writeLimits(sec, imp.Desc.Memory.Limits)
				}
			case KindGlobal:
				if imp.Desc.Global != nil {
					sec.Byte(byte(imp.Desc.Global.ValType))
					if imp.Desc.Global.Mutable {
						sec.Byte(1)
					} else {
						sec.Byte(0)
					}
				}
			case KindTag:
				sec.Byte(0)
				sec.WriteU32(imp.Desc.TypeIdx)
			}
		}
		sections = append(sections, pending{id: SectionImport, data: sec.Bytes()})
	}

	if len(m.Funcs) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, typeIdx := range m.Funcs {
			sec.WriteU32(typeIdx)
		}
		sections = append(sections, pending{id: SectionFunction, data: sec.Bytes()})
	}

	if len(m.Exports) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Idx)
		}
		sections = append(sections, pending{id: SectionExport, data: sec.Bytes()})
	}

	for _, s := range m.Raw {
		if s.ID == SectionCustom {
			continue
		}
		sections = append(sections, pending{id: s.ID, data: s.Data})
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sectionOrder(sections[i].id) < sectionOrder(sections[j].id)
	})

	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)
	for _, s := range sections {
		writeSection(w, s.id, s.data)
	}
	for _, cs := range m.CustomSections {
		sec := binary.NewWriter()
		sec.WriteName(cs.Name)
		sec.WriteBytes(cs.Data)
		writeSection(w, SectionCustom, sec.Bytes())
	}
	return w.Bytes()
}

func writeSection(w *binary.Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

func writeValTypes(w *binary.Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	if l.Shared {
		flags |= LimitsShared
	}
	if l.Memory64 {
		flags |= LimitsMemory64
	}
	w.Byte(flags)
	writeU64(w, l.Min)
	if l.Max != nil {
		writeU64(w, *l.Max)
	}
}

func writeU64(w *binary.Writer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.Byte(b)
		if v == 0 {
			break
		}
	}
}
