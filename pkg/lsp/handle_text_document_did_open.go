package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"
)

func (h *Handler) handleTextDocumentDidOpen(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params lsp.DidOpenTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	doc := params.TextDocument
	return nil, h.updateFile(ctx, doc.URI, doc.Text, doc.Version)
}
