package main

import (
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-annotate/annotation"
)

func newDecodeCmd() *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Print the annotations embedded in a module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := readModule(inPath)
			if err != nil {
				return err
			}
			a, err := annotation.Extract(module)
			if err != nil {
				return err
			}
			out, err := annotation.MarshalDocument(a)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "Input module")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
