package annotation

import (
	"github.com/wippyai/wasm-annotate/errors"
)

// TypeTag is the single-byte wire code of an annotated value type.
type TypeTag byte

// Type tags. The scalar codes coincide with the host value type encodings.
const (
	I32    TypeTag = 0x7f
	I64    TypeTag = 0x7e
	F32    TypeTag = 0x7d
	F64    TypeTag = 0x7c
	AnyRef TypeTag = 0x70
	Actor  TypeTag = 0x6f
	Module TypeTag = 0x6e
	Func   TypeTag = 0x6d
	Data   TypeTag = 0x6c
	Elem   TypeTag = 0x6b
	Link   TypeTag = 0x6a
	ID     TypeTag = 0x5f
)

var typeTagNames = map[TypeTag]string{
	I32:    "i32",
	I64:    "i64",
	F32:    "f32",
	F64:    "f64",
	AnyRef: "anyref",
	Actor:  "actor",
	Module: "module",
	Func:   "func",
	Data:   "data",
	Elem:   "elem",
	Link:   "link",
	ID:     "id",
}

var typeTagsByName = func() map[string]TypeTag {
	m := make(map[string]TypeTag, len(typeTagNames))
	for tag, name := range typeTagNames {
		m[name] = tag
	}
	return m
}()

// TypeTags returns every defined tag in wire-code order, highest first.
func TypeTags() []TypeTag {
	return []TypeTag{I32, I64, F32, F64, AnyRef, Actor, Module, Func, Data, Elem, Link, ID}
}

// TagFromWire maps a wire byte to its tag.
func TagFromWire(b byte) (TypeTag, error) {
	t := TypeTag(b)
	if _, ok := typeTagNames[t]; !ok {
		return 0, errors.UnknownTypeTag(errors.PhaseDecode, nil, b)
	}
	return t, nil
}

// ParseTypeTag maps a symbolic name such as "actor" to its tag.
func ParseTypeTag(name string) (TypeTag, error) {
	t, ok := typeTagsByName[name]
	if !ok {
		return 0, errors.New(errors.PhaseLoad, errors.KindUnknownTypeTag).
			Value(name).
			Detail("unrecognized type name").
			Build()
	}
	return t, nil
}

// Wire returns the tag's wire byte.
func (t TypeTag) Wire() byte {
	return byte(t)
}

// Valid reports whether t is one of the defined tags.
func (t TypeTag) Valid() bool {
	_, ok := typeTagNames[t]
	return ok
}

// IsScalar reports whether t is a host scalar (i32, i64, f32, f64).
func (t TypeTag) IsScalar() bool {
	switch t {
	case I32, I64, F32, F64:
		return true
	}
	return false
}

func (t TypeTag) String() string {
	if name, ok := typeTagNames[t]; ok {
		return name
	}
	return "unknown"
}

// ExternalKind identifies the index space a persist entry refers to.
type ExternalKind byte

const (
	ExternalFunc   ExternalKind = 0x00
	ExternalTable  ExternalKind = 0x01
	ExternalMemory ExternalKind = 0x02
	ExternalGlobal ExternalKind = 0x03
)

var externalKindNames = [...]string{"func", "table", "memory", "global"}

// KindFromWire maps a wire byte to its external kind.
func KindFromWire(b byte) (ExternalKind, error) {
	if int(b) >= len(externalKindNames) {
		return 0, errors.UnknownExternalKind(errors.PhaseDecode, nil, b)
	}
	return ExternalKind(b), nil
}

// ParseExternalKind maps "func", "table", "memory" or "global" to its kind.
func ParseExternalKind(name string) (ExternalKind, error) {
	for i, n := range externalKindNames {
		if n == name {
			return ExternalKind(i), nil
		}
	}
	return 0, errors.New(errors.PhaseLoad, errors.KindUnknownExternalKind).
		Value(name).
		Detail("unrecognized external kind name").
		Build()
}

// Wire returns the kind's wire byte.
func (k ExternalKind) Wire() byte {
	return byte(k)
}

// Valid reports whether k is one of the four defined kinds.
func (k ExternalKind) Valid() bool {
	return int(k) < len(externalKindNames)
}

func (k ExternalKind) String() string {
	if k.Valid() {
		return externalKindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t TypeTag) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.UnknownTypeTag(errors.PhaseEncode, nil, byte(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TypeTag) UnmarshalText(text []byte) error {
	v, err := ParseTypeTag(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k ExternalKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.UnknownExternalKind(errors.PhaseEncode, nil, byte(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ExternalKind) UnmarshalText(text []byte) error {
	v, err := ParseExternalKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
