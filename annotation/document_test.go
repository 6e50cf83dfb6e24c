package annotation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-annotate/annotation"
	"github.com/wippyai/wasm-annotate/errors"
)

const sampleDocument = `
types:
  - form: func
    params: [i32, actor]
  - params: []
typeMap:
  - {func: 0, type: 0}
  - {func: 2, type: 1}
persist:
  - {form: global, index: 0, type: data}
  - {form: table, index: 1, type: elem}
`

func TestParseDocument(t *testing.T) {
	a, err := annotation.ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	require.Equal(t, &annotation.Annotations{
		Types: []annotation.FunctionType{
			{Params: []annotation.TypeTag{annotation.I32, annotation.Actor}},
			{Params: []annotation.TypeTag{}},
		},
		TypeMap: []annotation.TypeMapEntry{{Func: 0, Type: 0}, {Func: 2, Type: 1}},
		Persist: []annotation.PersistEntry{
			{Form: annotation.ExternalGlobal, Index: 0, Type: annotation.Data},
			{Form: annotation.ExternalTable, Index: 1, Type: annotation.Elem},
		},
	}, a)
}

func TestParseDocumentJSON(t *testing.T) {
	a, err := annotation.ParseDocument([]byte(`{"types":[{"form":"func","params":["i32"]}],"typeMap":[{"func":0,"type":0}]}`))
	require.NoError(t, err)
	require.Nil(t, a.Persist)
	require.Equal(t, []annotation.FunctionType{{Params: []annotation.TypeTag{annotation.I32}}}, a.Types)
	require.Equal(t, []annotation.TypeMapEntry{{Func: 0, Type: 0}}, a.TypeMap)
}

func TestParseDocumentPresentButEmpty(t *testing.T) {
	a, err := annotation.ParseDocument([]byte("typeMap: []\n"))
	require.NoError(t, err)
	require.Nil(t, a.Types)
	require.NotNil(t, a.TypeMap)
	require.Empty(t, a.TypeMap)
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{name: "bad form", doc: "types:\n  - form: struct\n    params: []\n", kind: errors.KindInvalidForm},
		{name: "bad param", doc: "types:\n  - params: [i32, v128]\n", kind: errors.KindInvalidParam},
		{name: "bad persist kind", doc: "persist:\n  - {form: tag, index: 0, type: i32}\n", kind: errors.KindInvalidForm},
		{name: "bad persist type", doc: "persist:\n  - {form: global, index: 0, type: string}\n", kind: errors.KindInvalidParam},
		{name: "not yaml", doc: "types: [\n", kind: errors.KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := annotation.ParseDocument([]byte(tt.doc))
			require.True(t, errors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestMarshalDocumentRoundTrip(t *testing.T) {
	a, err := annotation.ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	data, err := annotation.MarshalDocument(a)
	require.NoError(t, err)

	back, err := annotation.ParseDocument(data)
	require.NoError(t, err)
	require.Equal(t, a, back)
}

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o600))

	a, err := annotation.LoadDocument(path)
	require.NoError(t, err)
	require.Len(t, a.Types, 2)

	_, err = annotation.LoadDocument(filepath.Join(t.TempDir(), "missing.yaml"))
	require.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestMarshalModel(t *testing.T) {
	model, err := annotation.Merge(nil)
	require.NoError(t, err)
	model.Types = append(model.Types, annotation.FunctionType{Params: []annotation.TypeTag{annotation.Actor}})
	model.Indexes[1] = 0
	model.Exports["main"] = 1

	data, err := annotation.MarshalModel(model)
	require.NoError(t, err)
	require.Contains(t, string(data), "actor")
	require.Contains(t, string(data), "main: 1")
}
