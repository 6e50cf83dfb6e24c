package annotation

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-annotate/errors"
	"github.com/wippyai/wasm-annotate/wasm"
)

// Section is one module section as seen by Merge. ID selects which fields
// are meaningful: Name and Payload for custom sections, Types, Imports,
// Funcs or Exports for the corresponding native section. Other IDs are
// ignored.
type Section struct {
	Name    string
	Payload []byte
	Types   []wasm.FuncType
	Imports []wasm.Import
	Funcs   []uint32
	Exports []wasm.Export
	ID      byte
}

// SectionsFromBinary decodes the sections of a module binary that Merge
// consumes, preserving file order.
func SectionsFromBinary(module []byte) ([]Section, error) {
	raw, err := wasm.ReadSections(module)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "read module sections")
	}

	sections := make([]Section, 0, len(raw))
	for _, s := range raw {
		sec := Section{ID: s.ID}
		switch s.ID {
		case wasm.SectionCustom:
			cs, err := wasm.DecodeCustomSection(s.Data)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "custom section")
			}
			sec.Name, sec.Payload = cs.Name, cs.Data
		case wasm.SectionType:
			sec.Types, err = wasm.DecodeTypeSection(s.Data)
		case wasm.SectionImport:
			sec.Imports, err = wasm.DecodeImportSection(s.Data)
		case wasm.SectionFunction:
			sec.Funcs, err = wasm.DecodeFunctionSection(s.Data)
		case wasm.SectionExport:
			sec.Exports, err = wasm.DecodeExportSection(s.Data)
		default:
			continue
		}
		if err != nil {
			return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "section at offset "+strconv.Itoa(s.Offset))
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

// MergeBinary decodes a module binary and merges its annotations.
func MergeBinary(module []byte) (*Model, error) {
	sections, err := SectionsFromBinary(module)
	if err != nil {
		return nil, err
	}
	return Merge(sections)
}

// Merge folds the annotation sub-sections into the module's native
// sections and returns the resulting model.
//
// Function indexes in Indexes and Exports follow the module's function
// index space: imported functions first, so defined functions are offset
// by the number of function imports only. Table, memory and global imports
// do not shift them.
//
// Functions whose native signature returns values get no annotated type.
// Functions taking params other than i32, i64, f32 or f64 get one only
// through a typeMap entry.
//
// The most recent type, import, function and export sections are used.
// Missing annotation sections leave Types and Persist empty; malformed
// ones abort the merge.
func Merge(sections []Section) (*Model, error) {
	model := &Model{
		Types:   []FunctionType{},
		Indexes: make(map[uint32]uint32),
		Exports: make(map[string]uint32),
		Persist: []PersistEntry{},
	}

	// function index (defined functions only) -> annotated type index
	overrides := make(map[uint32]uint32)

	var (
		types   []wasm.FuncType
		imports []wasm.Import
		funcs   []uint32
		exports []wasm.Export
	)

	for _, s := range sections {
		switch s.ID {
		case wasm.SectionCustom:
			switch s.Name {
			case SectionTypes:
				decoded, err := DecodeTypes(s.Payload)
				if err != nil {
					return nil, err
				}
				model.Types = decoded
			case SectionTypeMap:
				entries, err := DecodeTypeMap(s.Payload)
				if err != nil {
					return nil, err
				}
				for _, e := range entries {
					overrides[e.Func] = e.Type
				}
			case SectionPersist:
				entries, err := DecodePersist(s.Payload)
				if err != nil {
					return nil, err
				}
				model.Persist = entries
			}
		case wasm.SectionType:
			types = s.Types
		case wasm.SectionImport:
			imports = s.Imports
		case wasm.SectionFunction:
			funcs = s.Funcs
		case wasm.SectionExport:
			exports = s.Exports
		}
	}

	importedFuncs := uint32(wasm.CountImportedFuncs(imports))

	// native type index -> annotated type index, for functions without overrides
	shared := make(map[uint32]uint32)

	for local, typeIdx := range funcs {
		path := []string{"function", strconv.Itoa(local)}
		if int(typeIdx) >= len(types) {
			return nil, errors.OutOfBounds(errors.PhaseMerge, path, int(typeIdx), len(types))
		}
		native := types[typeIdx]
		funcIdx := uint32(local) + importedFuncs

		if len(native.Results) > 0 {
			Logger().Debug("function returns values, not annotated", zap.Uint32("func", funcIdx))
			continue
		}

		customIdx, overridden := overrides[uint32(local)]
		switch {
		case overridden:
			if int(customIdx) >= len(model.Types) {
				return nil, errors.OutOfBounds(errors.PhaseMerge, append(path, SectionTypeMap), int(customIdx), len(model.Types))
			}
			if err := checkOverride(path, model.Types[customIdx], native); err != nil {
				return nil, err
			}
			Logger().Debug("annotated type from typeMap",
				zap.Uint32("func", funcIdx), zap.Uint32("type", customIdx))
		default:
			idx, ok := shared[typeIdx]
			if !ok {
				ft, ok := fromNative(native)
				if !ok {
					Logger().Debug("native signature has non-scalar params, not annotated",
						zap.Uint32("func", funcIdx), zap.Uint32("nativeType", typeIdx))
					continue
				}
				model.Types = append(model.Types, ft)
				idx = uint32(len(model.Types) - 1)
				shared[typeIdx] = idx
				Logger().Debug("annotated type from native signature",
					zap.Uint32("func", funcIdx), zap.Uint32("nativeType", typeIdx), zap.Uint32("type", idx))
			}
			customIdx = idx
		}
		model.Indexes[funcIdx] = customIdx
	}

	for _, exp := range exports {
		if exp.Kind != wasm.KindFunc {
			continue
		}
		path := []string{"export", exp.Name}
		typeIdx, err := funcTypeIndex(path, exp.Idx, imports, importedFuncs, funcs)
		if err != nil {
			return nil, err
		}
		if int(typeIdx) >= len(types) {
			return nil, errors.OutOfBounds(errors.PhaseMerge, path, int(typeIdx), len(types))
		}
		if len(types[typeIdx].Results) > 0 {
			return nil, errors.New(errors.PhaseMerge, errors.KindNoReturnTypesAllowed).
				Path(path...).
				Value(exp.Idx).
				Detail("no return types allowed").
				Build()
		}
		model.Exports[exp.Name] = exp.Idx
	}

	return model, nil
}

// checkOverride verifies that an annotated type can stand in for a native
// signature: same arity, and each annotated parameter is either a host
// scalar or carried by a native i32.
func checkOverride(path []string, custom FunctionType, native wasm.FuncType) error {
	if len(custom.Params) != len(native.Params) {
		return errors.New(errors.PhaseMerge, errors.KindInvalidParamLength).
			Path(path...).
			Detail("annotated type has %d params, native type has %d", len(custom.Params), len(native.Params)).
			Build()
	}
	for i, p := range native.Params {
		if !custom.Params[i].IsScalar() && p != wasm.ValI32 {
			return errors.New(errors.PhaseMerge, errors.KindInvalidBaseParamType).
				Path(append(path, "params", strconv.Itoa(i))...).
				Detail("%s must be passed as i32, native type is %s", custom.Params[i], p).
				Build()
		}
	}
	return nil
}

// fromNative converts a native signature into an annotated type. Only
// scalar params carry over; a signature with v128 or reference params has
// no faithful annotated form and reports false.
func fromNative(native wasm.FuncType) (FunctionType, bool) {
	params := make([]TypeTag, len(native.Params))
	for i, p := range native.Params {
		tag := TypeTag(p)
		if !tag.IsScalar() {
			return FunctionType{}, false
		}
		params[i] = tag
	}
	return FunctionType{Params: params}, true
}

// funcTypeIndex resolves the native type index of the function at funcIdx.
func funcTypeIndex(path []string, funcIdx uint32, imports []wasm.Import, importedFuncs uint32, funcs []uint32) (uint32, error) {
	if funcIdx >= importedFuncs {
		local := funcIdx - importedFuncs
		if int(local) >= len(funcs) {
			return 0, errors.OutOfBounds(errors.PhaseMerge, path, int(funcIdx), int(importedFuncs)+len(funcs))
		}
		return funcs[local], nil
	}
	n := uint32(0)
	for _, imp := range imports {
		if imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		if n == funcIdx {
			return imp.Desc.TypeIdx, nil
		}
		n++
	}
	return 0, errors.OutOfBounds(errors.PhaseMerge, path, int(funcIdx), int(importedFuncs))
}
