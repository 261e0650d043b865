package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"

	"github.com/msdscript/msdscript/pkg/msd"
)

func (h *Handler) handleTextDocumentFormatting(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params lsp.DocumentFormattingParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f, ok := h.file(params.TextDocument.URI)
	if !ok {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "document not found: %v", params.TextDocument.URI)
	}

	// Unparseable documents are left alone; the parse error is already a
	// diagnostic.
	if f.AST == nil {
		return []lsp.TextEdit{}, nil
	}

	formatted := msd.Pretty(f.AST) + "\n"
	if formatted == f.Text {
		return []lsp.TextEdit{}, nil
	}

	return []lsp.TextEdit{
		{
			Range: lsp.Range{
				Start: lsp.Position{Line: 0, Character: 0},
				End:   documentEnd(f.Text),
			},
			NewText: formatted,
		},
	}, nil
}
