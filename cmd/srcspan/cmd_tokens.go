package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/srcspan/format"
	"github.com/dhamidi/srcspan/python/parser"
	"github.com/dhamidi/srcspan/span"
)

func newTokensCmd(g *globals) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "List the tokens of a Python file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read %s: %w", filename, err)
			}

			raw, err := parser.NewLexer(string(data), filename).Tokenize()
			if err != nil {
				return fmt.Errorf("tokenize: %w", err)
			}

			enc, err := format.NewTokenEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := enc.Encode(span.NewCode(string(data), raw)); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "line", "output format: line or json")

	return cmd
}
