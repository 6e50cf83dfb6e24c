package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-annotate/annotation"
	"github.com/wippyai/wasm-annotate/engine"
)

func newVerifyCmd() *cobra.Command {
	var (
		inPath string
		cfg    engine.Config
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compile a module with wazero and check it against its annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := readModule(inPath)
			if err != nil {
				return err
			}
			model, err := annotation.MergeBinary(module)
			if err != nil {
				return err
			}
			host, err := verifyModule(cmd.Context(), module, model, &cfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, f := range host.Exports {
				marker := " "
				if _, ok := model.Exports[f.Name]; ok {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %s%s\n", marker, f.Name, f.Signature())
			}
			fmt.Fprintf(w, "ok: %d annotated exports match\n", len(model.Exports))
			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "Input module")
	cmd.Flags().BoolVar(&cfg.Interpreter, "interpreter", false, "Use the wazero interpreter")
	cmd.Flags().Uint32Var(&cfg.MemoryLimitPages, "memory-limit-pages", 0, "Memory limit in 64KiB pages (0 for default)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func verifyModule(ctx context.Context, module []byte, model *annotation.Model, cfg *engine.Config) (*engine.Module, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	eng, err := engine.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := eng.Close(ctx); err != nil {
			engine.Logger().Warn("failed to close engine", zap.Error(err))
		}
	}()
	return eng.Verify(ctx, module, model)
}
