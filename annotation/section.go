package annotation

import (
	"strconv"

	"github.com/wippyai/wasm-annotate/errors"
	"github.com/wippyai/wasm-annotate/internal/binary"
	"github.com/wippyai/wasm-annotate/wasm"
)

// Encode frames every present sub-section of a as a custom section and
// concatenates them in the order types, typeMap, persist.
func Encode(a *Annotations) ([]byte, error) {
	w := binary.NewWriter()
	if a == nil {
		return w.Bytes(), nil
	}

	if a.Types != nil {
		payload, err := EncodeTypes(a.Types)
		if err != nil {
			return nil, err
		}
		w.WriteBytes(EncodeSection(SectionTypes, payload))
	}
	if a.TypeMap != nil {
		w.WriteBytes(EncodeSection(SectionTypeMap, EncodeTypeMap(a.TypeMap)))
	}
	if a.Persist != nil {
		payload, err := EncodePersist(a.Persist)
		if err != nil {
			return nil, err
		}
		w.WriteBytes(EncodeSection(SectionPersist, payload))
	}
	return w.Bytes(), nil
}

// EncodeSection wraps payload in a custom section envelope:
// id 0, size, name, payload. The size covers the name length field, the
// name and the payload.
func EncodeSection(name string, payload []byte) []byte {
	size := binary.SizeU32(uint32(len(name))) + len(name) + len(payload)
	w := binary.NewWriter()
	w.Byte(wasm.SectionCustom)
	w.WriteU32(uint32(size))
	w.WriteName(name)
	w.WriteBytes(payload)
	return w.Bytes()
}

// ReadSections reads a concatenation of custom sections such as the output
// of Encode.
func ReadSections(blob []byte) ([]wasm.CustomSection, error) {
	r := binary.NewReader(blob)
	var sections []wasm.CustomSection
	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, truncated("section", err)
		}
		if id != wasm.SectionCustom {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidForm).
				Path("section", strconv.Itoa(len(sections))).
				Value(id).
				Detail("expected custom section id 0").
				Build()
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, truncated("section", err)
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, truncated("section", err)
		}
		cs, err := wasm.DecodeCustomSection(payload)
		if err != nil {
			return nil, truncated("section", err)
		}
		sections = append(sections, cs)
	}
	return sections, nil
}

// FromCustomSections decodes the annotation sub-sections among sections.
// Sections with other names are ignored. A repeated sub-section replaces
// the earlier one.
func FromCustomSections(sections []wasm.CustomSection) (*Annotations, error) {
	a := &Annotations{}
	for _, cs := range sections {
		var err error
		switch cs.Name {
		case SectionTypes:
			a.Types, err = DecodeTypes(cs.Data)
		case SectionTypeMap:
			a.TypeMap, err = DecodeTypeMap(cs.Data)
		case SectionPersist:
			a.Persist, err = DecodePersist(cs.Data)
		}
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Decode reverses Encode.
func Decode(blob []byte) (*Annotations, error) {
	sections, err := ReadSections(blob)
	if err != nil {
		return nil, err
	}
	return FromCustomSections(sections)
}

// Extract decodes the annotations carried by a module binary.
func Extract(module []byte) (*Annotations, error) {
	raw, err := wasm.ReadSections(module)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "read module sections")
	}
	var customs []wasm.CustomSection
	for _, s := range raw {
		if s.ID != wasm.SectionCustom {
			continue
		}
		cs, err := wasm.DecodeCustomSection(s.Data)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "custom section name")
		}
		customs = append(customs, cs)
	}
	return FromCustomSections(customs)
}
