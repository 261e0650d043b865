package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"
)

func (h *Handler) handleTextDocumentDidChange(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params lsp.DidChangeTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	if len(params.ContentChanges) == 0 {
		return nil, nil
	}

	// Full sync: the last change carries the whole document.
	text, ok := changeText(params.ContentChanges[len(params.ContentChanges)-1])
	if !ok {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "unsupported content change %T", params.ContentChanges[len(params.ContentChanges)-1])
	}
	return nil, h.updateFile(ctx, params.TextDocument.URI, text, params.TextDocument.Version)
}

func changeText(change any) (string, bool) {
	switch c := change.(type) {
	case lsp.TextDocumentContentChangeEventWhole:
		return c.Text, true
	case *lsp.TextDocumentContentChangeEventWhole:
		return c.Text, true
	case lsp.TextDocumentContentChangeEvent:
		return c.Text, true
	case *lsp.TextDocumentContentChangeEvent:
		return c.Text, true
	case map[string]any:
		text, ok := c["text"].(string)
		return text, ok
	}
	return "", false
}
