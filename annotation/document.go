package annotation

import (
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/wippyai/wasm-annotate/errors"
)

// Document forms. JSON is accepted as well since it is valid YAML.
type typeDoc struct {
	Form   string   `yaml:"form"`
	Params []string `yaml:"params"`
}

type typeMapDoc struct {
	Func uint32 `yaml:"func"`
	Type uint32 `yaml:"type"`
}

type persistDoc struct {
	Form  string `yaml:"form"`
	Index uint32 `yaml:"index"`
	Type  string `yaml:"type"`
}

type annotationsDoc struct {
	Types   *[]typeDoc    `yaml:"types,omitempty"`
	TypeMap *[]typeMapDoc `yaml:"typeMap,omitempty"`
	Persist *[]persistDoc `yaml:"persist,omitempty"`
}

type modelDoc struct {
	Indexes map[uint32]uint32 `yaml:"indexes"`
	Exports map[string]uint32 `yaml:"exports"`
	Types   []typeDoc         `yaml:"types"`
	Persist []persistDoc      `yaml:"persist"`
}

// LoadDocument reads an annotation document from path.
func LoadDocument(path string) (*Annotations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read "+path)
	}
	return ParseDocument(data)
}

// ParseDocument parses a YAML or JSON annotation document:
//
//	types:
//	  - form: func
//	    params: [i32, actor]
//	typeMap:
//	  - {func: 0, type: 0}
//	persist:
//	  - {form: global, index: 0, type: data}
//
// A missing key leaves the corresponding field nil. The form of a type
// defaults to "func".
func ParseDocument(data []byte) (*Annotations, error) {
	var doc annotationsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "parse annotation document")
	}

	a := &Annotations{}
	if doc.Types != nil {
		a.Types = make([]FunctionType, 0, len(*doc.Types))
		for i, td := range *doc.Types {
			if td.Form != "" && td.Form != "func" {
				return nil, errors.New(errors.PhaseLoad, errors.KindInvalidForm).
					Path(SectionTypes, strconv.Itoa(i), "form").
					Value(td.Form).
					Detail("invalid form").
					Build()
			}
			params := make([]TypeTag, 0, len(td.Params))
			for j, name := range td.Params {
				tag, err := ParseTypeTag(name)
				if err != nil {
					return nil, errors.InvalidParam(errors.PhaseLoad, paramPath(i, j), err)
				}
				params = append(params, tag)
			}
			a.Types = append(a.Types, FunctionType{Params: params})
		}
	}
	if doc.TypeMap != nil {
		a.TypeMap = make([]TypeMapEntry, 0, len(*doc.TypeMap))
		for _, e := range *doc.TypeMap {
			a.TypeMap = append(a.TypeMap, TypeMapEntry{Func: e.Func, Type: e.Type})
		}
	}
	if doc.Persist != nil {
		a.Persist = make([]PersistEntry, 0, len(*doc.Persist))
		for i, e := range *doc.Persist {
			form, err := ParseExternalKind(e.Form)
			if err != nil {
				return nil, errors.InvalidForm(errors.PhaseLoad, persistPath(i, "form"), "invalid form", err)
			}
			tag, err := ParseTypeTag(e.Type)
			if err != nil {
				return nil, errors.InvalidParam(errors.PhaseLoad, persistPath(i, "type"), err)
			}
			a.Persist = append(a.Persist, PersistEntry{Form: form, Index: e.Index, Type: tag})
		}
	}
	return a, nil
}

// MarshalDocument renders annotations in the ParseDocument format.
func MarshalDocument(a *Annotations) ([]byte, error) {
	var doc annotationsDoc
	if a.Types != nil {
		types := typeDocs(a.Types)
		doc.Types = &types
	}
	if a.TypeMap != nil {
		entries := make([]typeMapDoc, 0, len(a.TypeMap))
		for _, e := range a.TypeMap {
			entries = append(entries, typeMapDoc{Func: e.Func, Type: e.Type})
		}
		doc.TypeMap = &entries
	}
	if a.Persist != nil {
		entries := persistDocs(a.Persist)
		doc.Persist = &entries
	}
	return yaml.Marshal(doc)
}

// MarshalModel renders a merged model as YAML.
func MarshalModel(m *Model) ([]byte, error) {
	return yaml.Marshal(modelDoc{
		Types:   typeDocs(m.Types),
		Indexes: m.Indexes,
		Exports: m.Exports,
		Persist: persistDocs(m.Persist),
	})
}

func typeDocs(types []FunctionType) []typeDoc {
	docs := make([]typeDoc, 0, len(types))
	for _, ft := range types {
		params := make([]string, 0, len(ft.Params))
		for _, p := range ft.Params {
			params = append(params, p.String())
		}
		docs = append(docs, typeDoc{Form: "func", Params: params})
	}
	return docs
}

func persistDocs(entries []PersistEntry) []persistDoc {
	docs := make([]persistDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, persistDoc{Form: e.Form.String(), Index: e.Index, Type: e.Type.String()})
	}
	return docs
}
