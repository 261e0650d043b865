package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"
)

func (h *Handler) handleTextDocumentDidClose(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params lsp.DidCloseTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	return nil, h.closeFile(ctx, params.TextDocument.URI)
}
