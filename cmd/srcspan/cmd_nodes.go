package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/srcspan/format"
)

func newNodesCmd(g *globals) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "nodes <file>",
		Short: "Annotate a Python file and list every node with its tokens and text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := g.annotate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := enc.Encode(tree); err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			for _, u := range tree.Unsupported() {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: unsupported construct %s\n", args[0], u)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "line", "output format: line or json")

	return cmd
}
