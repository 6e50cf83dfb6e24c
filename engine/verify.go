package engine

import (
	"bytes"
	"context"
	"sort"
	"strconv"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-annotate/annotation"
	"github.com/wippyai/wasm-annotate/errors"
	"github.com/wippyai/wasm-annotate/wasm"
)

var annotationSections = map[string]bool{
	annotation.SectionTypes:   true,
	annotation.SectionTypeMap: true,
	annotation.SectionPersist: true,
}

// Verify compiles binary and checks that the host agrees with model:
// annotation custom sections are visible byte for byte, and every export
// in the model exists at the same function index with no results and a
// parameter list compatible with its annotated type.
//
// The returned Module is the host's view, also on mismatch.
func (e *Engine) Verify(ctx context.Context, binary []byte, model *annotation.Model) (*Module, error) {
	host, err := e.Inspect(ctx, binary)
	if err != nil {
		return nil, err
	}
	if err := checkCustomSections(binary, host); err != nil {
		return host, err
	}
	if model == nil {
		return host, nil
	}

	byName := make(map[string]ExportedFunc, len(host.Exports))
	for _, f := range host.Exports {
		byName[f.Name] = f
	}

	names := make([]string, 0, len(model.Exports))
	for name := range model.Exports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		funcIdx := model.Exports[name]
		path := []string{"exports", name}
		f, ok := byName[name]
		if !ok {
			return host, errors.NotFound(errors.PhaseValidate, "export", name)
		}
		if f.Index != funcIdx {
			return host, mismatch(path, "function index %d, host has %d", funcIdx, f.Index)
		}
		if len(f.Results) > 0 {
			return host, errors.New(errors.PhaseValidate, errors.KindNoReturnTypesAllowed).
				Path(path...).
				Detail("host signature %s", f.Signature()).
				Build()
		}
		ft, ok := model.TypeOf(funcIdx)
		if !ok {
			continue
		}
		if len(ft.Params) != len(f.Params) {
			return host, mismatch(path, "%d annotated params, host signature %s", len(ft.Params), f.Signature())
		}
		for i, tag := range ft.Params {
			if !compatible(tag, f.Params[i]) {
				return host, mismatch(append(path, "params", strconv.Itoa(i)), "%s over host %s", tag, api.ValueTypeName(f.Params[i]))
			}
		}
	}

	Logger().Debug("verified annotated module", zap.Int("exports", len(model.Exports)))
	return host, nil
}

// compatible reports whether an annotated tag can describe a host param.
// Scalars may relabel any param; other tags ride on i32 handles.
func compatible(tag annotation.TypeTag, host api.ValueType) bool {
	return tag.IsScalar() || host == api.ValueTypeI32
}

func checkCustomSections(binary []byte, host *Module) error {
	m, err := wasm.ParseModule(binary)
	if err != nil {
		return errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, err, "parse module")
	}

	var want []wasm.CustomSection
	for _, cs := range m.CustomSections {
		if annotationSections[cs.Name] {
			want = append(want, cs)
		}
	}

	var got []CustomSection
	for _, cs := range host.CustomSections {
		if annotationSections[cs.Name] {
			got = append(got, cs)
		}
	}

	if len(got) != len(want) {
		return mismatch([]string{"custom"}, "%d annotation sections, host sees %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Name != want[i].Name || !bytes.Equal(got[i].Data, want[i].Data) {
			return mismatch([]string{"custom", want[i].Name}, "host payload differs")
		}
	}
	return nil
}

func mismatch(path []string, format string, args ...any) error {
	return errors.New(errors.PhaseValidate, errors.KindMismatch).
		Path(path...).
		Detail(format, args...).
		Build()
}
