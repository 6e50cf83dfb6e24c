package wasm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-annotate/wasm"
)

func sampleModule() *wasm.Module {
	maxPages := uint64(2)
	return &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32}},
			{Params: []wasm.ValType{wasm.ValI64, wasm.ValF32}, Results: []wasm.ValType{wasm.ValI32}},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "log", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 0}},
			{Module: "env", Name: "mem", Desc: wasm.ImportDesc{Kind: wasm.KindMemory, Memory: &wasm.MemoryType{Limits: wasm.Limits{Min: 1, Max: &maxPages}}}},
			{Module: "env", Name: "g", Desc: wasm.ImportDesc{Kind: wasm.KindGlobal, Global: &wasm.GlobalType{ValType: wasm.ValI64, Mutable: true}}},
			{Module: "env", Name: "tbl", Desc: wasm.ImportDesc{Kind: wasm.KindTable, Table: &wasm.TableType{ElemType: byte(wasm.ValFuncRef), Limits: wasm.Limits{Min: 4}}}},
		},
		Funcs: []uint32{0, 1},
		Exports: []wasm.Export{
			{Name: "run", Kind: wasm.KindFunc, Idx: 1},
			{Name: "calc", Kind: wasm.KindFunc, Idx: 2},
		},
		Raw: []wasm.Section{
			{ID: wasm.SectionCode, Data: []byte{0x02, 0x02, 0x00, 0x0B, 0x04, 0x00, 0x41, 0x00, 0x0B}},
		},
		CustomSections: []wasm.CustomSection{{Name: "note", Data: []byte{0x01, 0x02}}},
	}
}

func TestParseModuleRoundTrip(t *testing.T) {
	original := sampleModule()
	data := original.Encode()

	parsed, err := wasm.ParseModule(data)
	require.NoError(t, err)

	require.Equal(t, original.Types, parsed.Types)
	require.Equal(t, original.Imports, parsed.Imports)
	require.Equal(t, original.Funcs, parsed.Funcs)
	require.Equal(t, original.Exports, parsed.Exports)
	require.Equal(t, original.CustomSections, parsed.CustomSections)
	require.Len(t, parsed.Raw, 1)
	require.Equal(t, wasm.SectionCode, parsed.Raw[0].ID)
	require.Equal(t, original.Raw[0].Data, parsed.Raw[0].Data)

	require.Equal(t, data, parsed.Encode())
}

func TestReadSectionsOrderAndOffsets(t *testing.T) {
	data := sampleModule().Encode()

	sections, err := wasm.ReadSections(data)
	require.NoError(t, err)

	var ids []byte
	for _, s := range sections {
		ids = append(ids, s.ID)
		require.Equal(t, s.ID, data[s.Offset])
	}
	require.Equal(t, []byte{
		wasm.SectionType, wasm.SectionImport, wasm.SectionFunction,
		wasm.SectionExport, wasm.SectionCode, wasm.SectionCustom,
	}, ids)
	require.Equal(t, wasm.PreambleSize, sections[0].Offset)
}

func TestReadSectionsErrors(t *testing.T) {
	header := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "bad magic", data: []byte{0x00, 0x61, 0x73, 0x6E, 0x01, 0x00, 0x00, 0x00}, want: wasm.ErrInvalidMagic},
		{name: "bad version", data: []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}, want: wasm.ErrInvalidVersion},
		{name: "short header", data: header[:5]},
		{name: "unknown section", data: append(append([]byte{}, header...), 0x20, 0x00)},
		{name: "out of order", data: append(append([]byte{}, header...), wasm.SectionFunction, 0x01, 0x00, wasm.SectionType, 0x01, 0x00)},
		{name: "truncated payload", data: append(append([]byte{}, header...), wasm.SectionType, 0x05, 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.ReadSections(tt.data)
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestReadSectionsCustomAnywhere(t *testing.T) {
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		wasm.SectionCustom, 0x02, 0x01, 'a',
		wasm.SectionType, 0x01, 0x00,
		wasm.SectionCustom, 0x02, 0x01, 'b',
		wasm.SectionFunction, 0x01, 0x00,
	}
	sections, err := wasm.ReadSections(data)
	require.NoError(t, err)
	require.Len(t, sections, 4)

	cs, err := wasm.DecodeCustomSection(sections[2].Data)
	require.NoError(t, err)
	require.Equal(t, "b", cs.Name)
	require.Empty(t, cs.Data)
}

func TestDecodeSectionErrors(t *testing.T) {
	_, err := wasm.DecodeTypeSection([]byte{0x01, 0x5F, 0x00, 0x00})
	require.ErrorContains(t, err, "unsupported type form")

	_, err = wasm.DecodeTypeSection([]byte{0x01, 0x60, 0x01, 0x7B, 0x00, 0xFF})
	require.ErrorContains(t, err, "trailing")

	_, err = wasm.DecodeFunctionSection([]byte{0x02, 0x00})
	require.Error(t, err)

	_, err = wasm.DecodeExportSection([]byte{0x01, 0x01, 'f', 0x09, 0x00})
	require.ErrorContains(t, err, "invalid export kind")

	_, err = wasm.DecodeImportSection([]byte{0x01, 0x00, 0x00, 0x07})
	require.ErrorContains(t, err, "invalid import kind")
}

func TestGetFuncType(t *testing.T) {
	m := sampleModule()
	require.Equal(t, 1, m.NumImportedFuncs())

	require.Equal(t, &m.Types[0], m.GetFuncType(0))
	require.Equal(t, &m.Types[0], m.GetFuncType(1))
	require.Equal(t, &m.Types[1], m.GetFuncType(2))
	require.Nil(t, m.GetFuncType(3))

	m.Funcs = append(m.Funcs, 9)
	require.Nil(t, m.GetFuncType(3))
}

func TestValTypeString(t *testing.T) {
	require.Equal(t, "i32", wasm.ValI32.String())
	require.Equal(t, "externref", wasm.ValExtern.String())
	require.Equal(t, "unknown", wasm.ValType(0x42).String())
}
