package annotation

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-annotate/errors"
	"github.com/wippyai/wasm-annotate/internal/binary"
)

// funcTypeForm marks the start of each record in the types sub-section.
const funcTypeForm byte = 0x60

// EncodeTypes encodes the types sub-section payload.
func EncodeTypes(types []FunctionType) ([]byte, error) {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(types)))
	for i, ft := range types {
		w.Byte(funcTypeForm)
		w.WriteU32(uint32(len(ft.Params)))
		for j, p := range ft.Params {
			if !p.Valid() {
				return nil, errors.UnknownTypeTag(errors.PhaseEncode, paramPath(i, j), p.Wire())
			}
			w.Byte(p.Wire())
		}
		w.Byte(0)
	}
	return w.Bytes(), nil
}

// DecodeTypes decodes a types sub-section payload.
func DecodeTypes(payload []byte) ([]FunctionType, error) {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return nil, truncated(SectionTypes, err)
	}

	types := make([]FunctionType, 0, min(int(count), r.Len()))
	for i := 0; i < int(count); i++ {
		form, err := r.ReadByte()
		if err != nil {
			return nil, truncated(SectionTypes, err)
		}
		if form != funcTypeForm {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidForm).
				Path(SectionTypes, strconv.Itoa(i)).
				Value(form).
				Detail("expected function type marker 0x60").
				Build()
		}

		paramCount, err := r.ReadU32()
		if err != nil {
			return nil, truncated(SectionTypes, err)
		}
		params := make([]TypeTag, 0, min(int(paramCount), r.Len()))
		for j := 0; j < int(paramCount); j++ {
			b, err := r.ReadByte()
			if err != nil {
				return nil, truncated(SectionTypes, err)
			}
			tag, err := TagFromWire(b)
			if err != nil {
				return nil, errors.InvalidParam(errors.PhaseDecode, paramPath(i, j), err)
			}
			params = append(params, tag)
		}

		reserved, err := r.ReadByte()
		if err != nil {
			return nil, truncated(SectionTypes, err)
		}
		slot := ReservedUnused(reserved)
		if !slot.IsNoReturn() {
			Logger().Debug("nonzero reserved byte in annotated type",
				zap.Int("type", i), zap.Uint8("value", reserved))
		}

		types = append(types, FunctionType{Params: params, Return: slot})
	}

	if r.Len() != 0 {
		return nil, errors.TrailingBytes(errors.PhaseDecode, []string{SectionTypes}, r.Len())
	}
	return types, nil
}

// EncodeTypeMap encodes the typeMap sub-section payload.
func EncodeTypeMap(entries []TypeMapEntry) []byte {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(entries)))
	for _, e := range entries {
		w.WriteU32(e.Func)
		w.WriteU32(e.Type)
	}
	return w.Bytes()
}

// DecodeTypeMap decodes a typeMap sub-section payload. Entries are returned
// in wire order without checking for duplicates.
func DecodeTypeMap(payload []byte) ([]TypeMapEntry, error) {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return nil, truncated(SectionTypeMap, err)
	}

	entries := make([]TypeMapEntry, 0, min(int(count), r.Len()))
	for i := 0; i < int(count); i++ {
		fn, err := r.ReadU32()
		if err != nil {
			return nil, truncated(SectionTypeMap, err)
		}
		typ, err := r.ReadU32()
		if err != nil {
			return nil, truncated(SectionTypeMap, err)
		}
		entries = append(entries, TypeMapEntry{Func: fn, Type: typ})
	}

	if r.Len() != 0 {
		return nil, errors.TrailingBytes(errors.PhaseDecode, []string{SectionTypeMap}, r.Len())
	}
	return entries, nil
}

// EncodePersist encodes the persist sub-section payload.
func EncodePersist(entries []PersistEntry) ([]byte, error) {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(entries)))
	for i, e := range entries {
		if !e.Form.Valid() {
			return nil, errors.UnknownExternalKind(errors.PhaseEncode, persistPath(i, "form"), e.Form.Wire())
		}
		if !e.Type.Valid() {
			return nil, errors.UnknownTypeTag(errors.PhaseEncode, persistPath(i, "type"), e.Type.Wire())
		}
		w.Byte(e.Form.Wire())
		w.WriteU32(e.Index)
		w.Byte(e.Type.Wire())
	}
	return w.Bytes(), nil
}

// DecodePersist decodes a persist sub-section payload.
func DecodePersist(payload []byte) ([]PersistEntry, error) {
	r := binary.NewReader(payload)
	count, err := r.ReadU32()
	if err != nil {
		return nil, truncated(SectionPersist, err)
	}

	entries := make([]PersistEntry, 0, min(int(count), r.Len()))
	for i := 0; i < int(count); i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, truncated(SectionPersist, err)
		}
		form, err := KindFromWire(b)
		if err != nil {
			return nil, errors.InvalidForm(errors.PhaseDecode, persistPath(i, "form"), "invalid form", err)
		}

		index, err := r.ReadU32()
		if err != nil {
			return nil, truncated(SectionPersist, err)
		}

		b, err = r.ReadByte()
		if err != nil {
			return nil, truncated(SectionPersist, err)
		}
		tag, err := TagFromWire(b)
		if err != nil {
			return nil, errors.InvalidParam(errors.PhaseDecode, persistPath(i, "type"), err)
		}

		entries = append(entries, PersistEntry{Form: form, Index: index, Type: tag})
	}

	if r.Len() != 0 {
		return nil, errors.TrailingBytes(errors.PhaseDecode, []string{SectionPersist}, r.Len())
	}
	return entries, nil
}

func truncated(section string, cause error) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(section).
		Detail("truncated payload").
		Cause(cause).
		Build()
}

func paramPath(typeIdx, paramIdx int) []string {
	return []string{SectionTypes, strconv.Itoa(typeIdx), "params", strconv.Itoa(paramIdx)}
}

func persistPath(entry int, field string) []string {
	return []string{SectionPersist, strconv.Itoa(entry), field}
}
