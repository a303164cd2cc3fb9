package workspace

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/srcspan/linenum"
	"github.com/dhamidi/srcspan/span"
)

const lsName = "srcspan"

// LSPServer answers hover and selection range requests from the token
// spans of open documents. Positions use UTF-16 columns.
type LSPServer struct {
	workspace *Workspace
	watcher   *Watcher
	opts      []Option
	interval  time.Duration
	handler   protocol.Handler
	server    *server.Server
	version   string
}

// NewLSPServer creates a server whose workspace is built with opts once
// the client names its root. A positive interval watches the root for
// changes made outside the editor.
func NewLSPServer(version string, interval time.Duration, opts ...Option) *LSPServer {
	ls := &LSPServer{
		version:  version,
		interval: interval,
		opts:     opts,
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentHover:          ls.textDocumentHover,
		TextDocumentSelectionRange: ls.textDocumentSelectionRange,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.workspace = New(rootDir, ls.opts...)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.HoverProvider = true
	capabilities.SelectionRangeProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if ls.interval > 0 {
		ls.watcher = ls.workspace.Watch(ls.interval)
		ls.watcher.Start()
		return nil
	}
	return ls.workspace.ScanAll()
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	return ls.workspace.UpdateFile(path, []byte(params.TextDocument.Text))
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			return ls.workspace.UpdateFile(path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		return ls.workspace.UpdateFile(path, []byte(*params.Text))
	}
	return ls.workspace.ScanFile(path)
}

// tree returns the annotated tree of the document at uri, or nil.
func (ls *LSPServer) tree(uri string) *span.Tree {
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	doc := ls.workspace.GetFile(path)
	if doc == nil || doc.Tree == nil {
		return nil
	}
	return doc.Tree
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	tree := ls.tree(params.TextDocument.URI)
	if tree == nil {
		return nil, nil
	}
	chain := tree.NodesAt(toOffset(tree, params.Position))
	if len(chain) == 0 {
		return nil, nil
	}

	n := chain[len(chain)-1]
	first, last := tree.FirstToken(n), tree.LastToken(n)
	r := toRange(tree, n)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind: protocol.MarkupKindMarkdown,
			Value: fmt.Sprintf("**%s**\n\ntokens %d..%d: %s to %s",
				tree.Dialect().Kind(n), first.Index, last.Index, first, last),
		},
		Range: &r,
	}, nil
}

func (ls *LSPServer) textDocumentSelectionRange(ctx *glsp.Context, params *protocol.SelectionRangeParams) ([]protocol.SelectionRange, error) {
	tree := ls.tree(params.TextDocument.URI)
	if tree == nil {
		return nil, nil
	}

	var ranges []protocol.SelectionRange
	for _, pos := range params.Positions {
		var sel *protocol.SelectionRange
		for _, n := range tree.NodesAt(toOffset(tree, pos)) {
			r := toRange(tree, n)
			if sel != nil && sel.Range == r {
				continue
			}
			sel = &protocol.SelectionRange{Range: r, Parent: sel}
		}
		if sel == nil {
			sel = &protocol.SelectionRange{Range: protocol.Range{Start: pos, End: pos}}
		}
		ranges = append(ranges, *sel)
	}
	return ranges, nil
}

func toOffset(tree *span.Tree, pos protocol.Position) int {
	return tree.Code().Lines().LineToOffsetUnit(int(pos.Line)+1, int(pos.Character), linenum.UTF16)
}

func toPosition(lines *linenum.Index, offset int) protocol.Position {
	line, col := lines.OffsetToLineUnit(offset, linenum.UTF16)
	return protocol.Position{Line: protocol.UInteger(line - 1), Character: protocol.UInteger(col)}
}

func toRange(tree *span.Tree, n span.Node) protocol.Range {
	start, end := tree.TextRange(n)
	lines := tree.Code().Lines()
	return protocol.Range{Start: toPosition(lines, start), End: toPosition(lines, end)}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
