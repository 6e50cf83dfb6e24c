package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-annotate/annotation"
)

func newEncodeCmd() *cobra.Command {
	var (
		annotationsPath string
		inPath          string
		outPath         string
		verify          bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Inject an annotation document into a module",
		Long: `Encode the annotations of a YAML or JSON document as custom sections and
insert them right after the module preamble. The input module is not
modified; the result is written to --out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := annotation.LoadDocument(annotationsPath)
			if err != nil {
				return err
			}
			module, err := readModule(inPath)
			if err != nil {
				return err
			}

			out, err := annotation.EncodeAndInject(doc, module)
			if err != nil {
				return err
			}

			if verify {
				model, err := annotation.MergeBinary(out)
				if err != nil {
					return err
				}
				if _, err := verifyModule(cmd.Context(), out, model, nil); err != nil {
					return err
				}
			}

			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return fmt.Errorf("write module: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d annotation bytes)\n",
				outPath, len(out), len(out)-len(module))
			return nil
		},
	}

	cmd.Flags().StringVar(&annotationsPath, "annotations", "", "Annotation document (YAML or JSON)")
	cmd.Flags().StringVar(&inPath, "in", "", "Input module")
	cmd.Flags().StringVar(&outPath, "out", "", "Output module")
	cmd.Flags().BoolVar(&verify, "verify", false, "Merge and check the result against wazero before writing")
	_ = cmd.MarkFlagRequired("annotations")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
