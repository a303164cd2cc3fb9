package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/srcspan/workspace"
)

func newLSPCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := workspace.NewLSPServer(version, g.cfg.Watch.Interval,
				workspace.WithDialect(g.cfg.Dialect),
				workspace.WithExclude(g.cfg.Watch.Exclude))
			return server.RunStdio()
		},
	}
}
