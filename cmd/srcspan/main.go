package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/srcspan/config"
)

const version = "0.1.0"

// globals holds the configuration after flags are applied.
type globals struct {
	configPath string
	dialect    string
	color      string
	verbose    int
	logFile    string
	cfg        *config.Config
}

func main() {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:           "srcspan",
		Short:         "Map Python syntax tree nodes to their tokens and source text",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "configuration file (default "+config.FileName+")")
	flags.StringVar(&g.dialect, "dialect", "", "tree source: python or treesitter")
	flags.StringVar(&g.color, "color", "", "colour output: auto, always or never")
	flags.CountVarP(&g.verbose, "verbose", "v", "log more (repeatable)")
	flags.StringVar(&g.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newTokensCmd(g))
	rootCmd.AddCommand(newNodesCmd(g))
	rootCmd.AddCommand(newTextCmd(g))
	rootCmd.AddCommand(newCheckCmd(g))
	rootCmd.AddCommand(newLSPCmd(g))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "srcspan:", err)
		os.Exit(1)
	}
}

func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Dialect = g.dialect
	}
	if flags.Changed("color") {
		cfg.Color = g.color
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbosity = g.verbose
	}
	if flags.Changed("log-file") {
		cfg.Log.File = g.logFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	g.cfg = cfg

	var logFile *string
	if cfg.Log.File != "" {
		logFile = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, logFile)
	return nil
}
