package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/srcspan/python/parser"
	"github.com/dhamidi/srcspan/python/stdast"
	"github.com/dhamidi/srcspan/span"
)

type Options struct {
	Dialect string
	Workers int
	// Verify re-parses node text. Only the python dialect supports it.
	Verify bool
}

// Result is the outcome of checking one file. Err names the file.
type Result struct {
	Path        string
	Nodes       int
	Unsupported []span.Unsupported
	Err         error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// CheckFiles annotates every file in paths, at most opts.Workers at a
// time, and checks the containment of node ranges. Failures are reported
// per file; the returned error is only set when ctx ends first.
func CheckFiles(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(ctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func checkFile(ctx context.Context, path string, opts Options) Result {
	r := Result{Path: path}
	content, err := os.ReadFile(path)
	if err != nil {
		r.Err = err
		return r
	}

	tree, err := Annotate(ctx, opts.Dialect, path, string(content))
	if err != nil {
		r.Err = withPath(path, err)
		return r
	}
	r.Nodes = len(tree.Nodes())
	r.Unsupported = tree.Unsupported()

	if err := tree.Check(); err != nil {
		r.Err = fmt.Errorf("%s: containment: %w", path, err)
		return r
	}
	if opts.Verify && tree.Dialect().Name() == "python" {
		if err := stdast.Verify(tree); err != nil {
			r.Err = fmt.Errorf("%s: round trip: %w", path, err)
		}
	}
	return r
}

// withPath prefixes err with path unless it already reports a position in
// the file.
func withPath(path string, err error) error {
	var synErr *parser.SyntaxError
	var tokErr *parser.TokenError
	if errors.As(err, &synErr) || errors.As(err, &tokErr) {
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}
