package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-annotate/annotation"
	"github.com/wippyai/wasm-annotate/engine"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "annotate",
		Short: "Embed and inspect WebAssembly type annotations",
		Long: `annotate manages the "types", "typeMap" and "persist" custom sections
that describe reference-typed parameters and persistable externals of a
WebAssembly module.

Examples:
  annotate encode --annotations types.yaml --in module.wasm --out annotated.wasm
  annotate decode --in annotated.wasm
  annotate inspect --in annotated.wasm -i
  annotate verify --in annotated.wasm`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := zap.NewNop()
			if verbose {
				var err error
				log, err = zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
			}
			annotation.SetLogger(log)
			engine.SetLogger(log)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newInspectCmd(),
		newVerifyCmd(),
	)
	return root
}

func readModule(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return data, nil
}
