package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-annotate/errors"
)

// Engine compiles module binaries with wazero.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per module in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// Interpreter selects the wazero interpreter instead of the compiler.
	Interpreter bool
}

// New creates an engine. A nil cfg uses defaults.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.Interpreter {
		runtimeCfg = wazero.NewRuntimeConfigInterpreter()
	}
	runtimeCfg = runtimeCfg.WithCustomSections(true)
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}, nil
}

// Close releases the runtime and everything compiled by it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// ExportedFunc is the host's view of one exported function.
type ExportedFunc struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
	Index   uint32
}

// Signature renders the function as (params) -> (results).
func (f ExportedFunc) Signature() string {
	return fmt.Sprintf("(%s) -> (%s)", valueTypeNames(f.Params), valueTypeNames(f.Results))
}

// CustomSection is a custom section as reported by the host.
type CustomSection struct {
	Name string
	Data []byte
}

// Module is the host's view of a compiled binary.
type Module struct {
	Exports        []ExportedFunc
	CustomSections []CustomSection
}

// Inspect compiles binary and returns its exported functions, sorted by
// name, and custom sections in file order.
func (e *Engine) Inspect(ctx context.Context, binary []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, binary)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseValidate, errors.KindInvalidData, err, "compile failed")
	}
	defer func() {
		if err := compiled.Close(ctx); err != nil {
			Logger().Warn("failed to close compiled module", zap.Error(err))
		}
	}()

	m := &Module{}
	for name, def := range compiled.ExportedFunctions() {
		m.Exports = append(m.Exports, ExportedFunc{
			Name:    name,
			Index:   def.Index(),
			Params:  def.ParamTypes(),
			Results: def.ResultTypes(),
		})
	}
	sort.Slice(m.Exports, func(i, j int) bool { return m.Exports[i].Name < m.Exports[j].Name })

	for _, cs := range compiled.CustomSections() {
		m.CustomSections = append(m.CustomSections, CustomSection{Name: cs.Name(), Data: cs.Data()})
	}

	Logger().Debug("compiled module",
		zap.Int("exports", len(m.Exports)),
		zap.Int("customSections", len(m.CustomSections)))
	return m, nil
}

func valueTypeNames(types []api.ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return strings.Join(names, ", ")
}
