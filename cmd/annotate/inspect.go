package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/wasm-annotate/annotation"
)

func newInspectCmd() *cobra.Command {
	var (
		inPath      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Merge annotations with the module and print the type model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					return fmt.Errorf("interactive mode needs a terminal")
				}
				return runInteractive(inPath)
			}

			module, err := readModule(inPath)
			if err != nil {
				return err
			}
			model, err := annotation.MergeBinary(module)
			if err != nil {
				return err
			}
			out, err := annotation.MarshalModel(model)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "Input module")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the model in a TUI")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
