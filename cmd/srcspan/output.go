package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/dhamidi/srcspan/span"
	"github.com/dhamidi/srcspan/workspace"
)

// styles holds the colours of terminal output.
type styles struct {
	kind *color.Color
	span *color.Color
	ok   *color.Color
	fail *color.Color
	warn *color.Color
	dim  *color.Color
}

func (g *globals) styles() *styles {
	switch g.cfg.Color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != ""
	}
	return &styles{
		kind: color.New(color.Bold, color.FgHiBlue),
		span: color.New(color.FgYellow, color.Underline),
		ok:   color.New(color.FgGreen),
		fail: color.New(color.Bold, color.FgRed),
		warn: color.New(color.FgMagenta),
		dim:  color.New(color.Faint),
	}
}

func (g *globals) annotate(ctx context.Context, filename string) (*span.Tree, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	tree, err := workspace.Annotate(ctx, g.cfg.Dialect, filename, string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tree, nil
}
