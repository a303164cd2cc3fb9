package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dhamidi/srcspan/project"
	"github.com/dhamidi/srcspan/workspace"
)

func newCheckCmd(g *globals) *cobra.Command {
	var workers int
	var verify bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Annotate Python files and check their token spans",
		Long: `Annotate every .py file below the given paths, check that each node's
token range contains its children and, for the python dialect, that the
text of every statement and expression parses back to the same tree.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := workspace.Options{
				Dialect: g.cfg.Dialect,
				Workers: g.cfg.Workers,
				Verify:  g.cfg.Verify,
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if cmd.Flags().Changed("verify") {
				opts.Verify = verify
			}

			paths, err := expand(args, g.cfg.Watch.Exclude)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			s := g.styles()
			out := cmd.OutOrStdout()
			failed, err := runCheck(ctx, out, s, paths, opts)
			if err != nil {
				return err
			}
			if watch {
				return watchCheck(ctx, out, s, args, g, opts)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(paths))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "j", 4, "files checked in parallel")
	cmd.Flags().BoolVar(&verify, "verify", true, "re-parse node text (python dialect)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check files when they change")

	return cmd
}

// expand replaces directories in args with the Python files below them.
func expand(args []string, exclude []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		proj, err := project.LoadFrom(arg, exclude)
		if err != nil {
			return nil, err
		}
		paths = append(paths, proj.Files...)
	}
	return paths, nil
}

func runCheck(ctx context.Context, out io.Writer, s *styles, paths []string, opts workspace.Options) (int, error) {
	results, err := workspace.CheckFiles(ctx, paths, opts)
	if err != nil {
		return 0, err
	}
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
			fmt.Fprintf(out, "%s %v\n", s.fail.Sprint("FAIL"), r.Err)
			continue
		}
		fmt.Fprintf(out, "%s   %s %s\n", s.ok.Sprint("ok"), r.Path, s.dim.Sprintf("(%d nodes)", r.Nodes))
		for _, u := range r.Unsupported {
			fmt.Fprintf(out, "     %s %s\n", s.warn.Sprint("unsupported"), u)
		}
	}
	return failed, nil
}

// watchCheck re-checks changed files under every directory argument until
// ctx ends.
func watchCheck(ctx context.Context, out io.Writer, s *styles, args []string, g *globals, opts workspace.Options) error {
	for _, arg := range args {
		if info, err := os.Stat(arg); err != nil || !info.IsDir() {
			continue
		}
		first := true
		fw := workspace.NewWatcher(arg, g.cfg.Watch.Interval, g.cfg.Watch.Exclude, func(path string, removed bool) {
			if removed {
				fmt.Fprintf(out, "%s %s\n", s.dim.Sprint("gone"), path)
				return
			}
			if first {
				return
			}
			if _, err := runCheck(ctx, out, s, []string{path}, opts); err != nil {
				fmt.Fprintf(out, "%s %s: %v\n", s.fail.Sprint("FAIL"), path, err)
			}
		})
		fw.Poll()
		first = false
		fw.Start()
		defer fw.Stop()
	}
	<-ctx.Done()
	return nil
}
