package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"
)

func (h *Handler) handleTextDocumentRename(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params lsp.RenameParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	if !validName(params.NewName) {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "invalid variable name %q: use letters only", params.NewName)
	}

	f, ok := h.file(params.TextDocument.URI)
	if !ok {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "document not found: %v", params.TextDocument.URI)
	}

	binder, name, ok := symbolAt(f, params.Position)
	if !ok {
		return nil, nil
	}
	if binder == nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "cannot rename free variable %s", name)
	}

	var edits []lsp.TextEdit
	for _, loc := range references(f, binder) {
		edits = append(edits, lsp.TextEdit{
			Range:   f.locationRange(loc),
			NewText: params.NewName,
		})
	}

	slog.InfoContext(ctx, "rename", "from", name, "to", params.NewName, "edits", len(edits))

	return lsp.WorkspaceEdit{
		Changes: map[string][]lsp.TextEdit{
			params.TextDocument.URI: edits,
		},
	}, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
