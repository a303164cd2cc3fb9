package span

import (
	"sort"

	"github.com/dhamidi/srcspan/token"
)

type intervalKind int

const (
	rootInterval intervalKind = iota
	pairInterval
	emptyInterval
)

// interval spans token indices [low, high]. The children of a pair cover
// the tokens strictly between its brackets, the children of the root
// cover the whole sequence. Siblings are contiguous.
type interval struct {
	kind     intervalKind
	low      int
	high     int
	children []*interval
	lows     []int
	highs    []int
}

func (n *interval) add(child *interval) {
	prev := n.children[len(n.children)-1]
	if child.low != prev.high+1 {
		n.children = append(n.children, &interval{kind: emptyInterval, low: prev.high + 1, high: child.low - 1})
	}
	n.children = append(n.children, child)
}

func (n *interval) finalize() {
	last := n.children[len(n.children)-1]
	if last.high < n.high-1 {
		n.children = append(n.children, &interval{kind: emptyInterval, low: last.high + 1, high: n.high - 1})
	}
	// The first child is the placeholder seeded by newInterval.
	n.children = n.children[1:]
	n.lows = make([]int, len(n.children))
	n.highs = make([]int, len(n.children))
	for i, c := range n.children {
		n.lows[i] = c.low
		n.highs[i] = c.high
	}
}

func newInterval(kind intervalKind, low, high int) *interval {
	return &interval{
		kind:     kind,
		low:      low,
		high:     high,
		children: []*interval{{kind: emptyInterval, low: low, high: low}},
	}
}

// enclosing returns the bounds of the smallest interval under n that
// contains [low, high].
func (n *interval) enclosing(low, high int) (int, int) {
	switch n.kind {
	case emptyInterval:
		return low, high
	case pairInterval:
		if low == n.low {
			return low, n.high
		}
		if high == n.high {
			return n.low, high
		}
	}
	if len(n.children) == 0 {
		return low, high
	}

	lowi := sort.Search(len(n.lows), func(i int) bool { return n.lows[i] > low }) - 1
	lowi = max(lowi, 0)
	a := n.children[lowi]
	if high <= a.high {
		return a.enclosing(low, high)
	}
	hii := min(sort.SearchInts(n.highs, high), len(n.children)-1)
	b := n.children[hii]
	return a.widenLow(low), b.widenHigh(high)
}

func (n *interval) widenLow(low int) int {
	if n.kind == pairInterval {
		return n.low
	}
	return low
}

func (n *interval) widenHigh(high int) int {
	if n.kind == pairInterval {
		return n.high
	}
	return high
}

// BracketIndex answers "smallest balanced span enclosing these tokens"
// queries over the brackets of a token sequence.
type BracketIndex struct {
	root    *interval
	matches []int
}

// NewBracketIndex scans tokens once. Closers with no opener are ignored
// and openers that are never closed extend to the last token.
func NewBracketIndex(tokens []token.Token) *BracketIndex {
	root := newInterval(rootInterval, 0, len(tokens))
	root.children[0] = &interval{kind: emptyInterval, low: -1, high: -1}

	matches := make([]int, len(tokens))
	for i := range matches {
		matches[i] = -1
	}

	stack := []*interval{root}
	var want []string
	for i := range tokens {
		t := &tokens[i]
		if closer, ok := token.Closer(t); ok {
			n := newInterval(pairInterval, i, len(tokens)-1)
			stack[len(stack)-1].add(n)
			stack = append(stack, n)
			want = append(want, closer)
			continue
		}
		if token.IsCloser(t) && len(want) > 0 && want[len(want)-1] == t.Text {
			n := stack[len(stack)-1]
			n.high = i
			matches[n.low] = i
			matches[i] = n.low
			n.finalize()
			stack = stack[:len(stack)-1]
			want = want[:len(want)-1]
		}
	}
	for len(stack) > 1 {
		stack[len(stack)-1].finalize()
		stack = stack[:len(stack)-1]
	}
	root.finalize()

	return &BracketIndex{root: root, matches: matches}
}

// Enclosing returns the bounds of the smallest bracket pair, or bracket
// free run of tokens, that contains [low, high]. A balanced range is
// returned unchanged.
func (b *BracketIndex) Enclosing(low, high int) (int, int) {
	return b.root.enclosing(low, high)
}

// Match returns the index of the bracket paired with the one at i, or -1.
func (b *BracketIndex) Match(i int) int {
	if i < 0 || i >= len(b.matches) {
		return -1
	}
	return b.matches[i]
}
