package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/srcspan/span"
)

func newTextCmd(g *globals) *cobra.Command {
	var unmarked bool
	cmd := &cobra.Command{
		Use:   "text <file> <line:col>",
		Short: "Show the nodes that start at a position, outermost first",
		Long: `Show the nodes whose first token is the token at line:col, with their
text highlighted in its source lines. Lines count from 1 and columns from 0
in code points.

With --unmarked the highlighted text comes from the positions the parser
records for each node instead of from its tokens.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, col, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			tree, err := g.annotate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tok := tree.Code().TokenAt(line, col)
			var found []span.Node
			for _, n := range tree.Nodes() {
				if tree.FirstToken(n) == tok {
					found = append(found, n)
				}
			}
			if len(found) == 0 {
				return fmt.Errorf("no node starts at %s", tok)
			}

			textRange := tree.TextRange
			if unmarked {
				u, err := span.NewUnmarked(tree.Code().Text(), tree.Dialect(), tree.Root())
				if err != nil {
					return err
				}
				textRange = u.TextRange
			}

			s := g.styles()
			out := cmd.OutOrStdout()
			for _, n := range found {
				printNode(out, s, tree, n, textRange)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unmarked, "unmarked", false, "locate text from node positions instead of tokens")
	return cmd
}

func parsePosition(arg string) (int, int, error) {
	l, c, ok := strings.Cut(arg, ":")
	if !ok {
		return 0, 0, fmt.Errorf("position %q is not line:col", arg)
	}
	line, err := strconv.Atoi(l)
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("bad line in %q", arg)
	}
	col, err := strconv.Atoi(c)
	if err != nil || col < 0 {
		return 0, 0, fmt.Errorf("bad column in %q", arg)
	}
	return line, col, nil
}

// printNode writes a header for n and its source lines with the text in
// textRange highlighted.
func printNode(out io.Writer, s *styles, tree *span.Tree, n span.Node, textRange func(span.Node) (int, int)) {
	first, last := tree.FirstToken(n), tree.LastToken(n)
	fmt.Fprintf(out, "%s %s\n",
		s.kind.Sprint(tree.Dialect().Kind(n)),
		s.dim.Sprintf("tokens %d..%d %s-%s", first.Index, last.Index, first.Start, last.End))

	text := tree.Code().Text()
	start, end := textRange(n)
	from := strings.LastIndexByte(text[:start], '\n') + 1
	to := len(text)
	if i := strings.IndexByte(text[end:], '\n'); i >= 0 {
		to = end + i
	}
	fmt.Fprintf(out, "%s%s%s\n\n", text[from:start], s.span.Sprint(text[start:end]), text[end:to])
}
