package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"
)

func (h *Handler) handleTextDocumentDefinition(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params lsp.DefinitionParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f, ok := h.file(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	binder, _, ok := symbolAt(f, params.Position)
	if !ok || binder == nil {
		return nil, nil
	}

	loc := binderNameLoc(binder)
	if loc == nil {
		return nil, nil
	}
	return []lsp.Location{{
		URI:   params.TextDocument.URI,
		Range: f.locationRange(loc),
	}}, nil
}
