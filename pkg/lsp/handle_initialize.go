package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"
)

func (h *Handler) handleInitialize(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params lsp.InitializeParams
	if req.HasParams() {
		if err := req.UnmarshalParams(&params); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "initialize")

	return lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync:           lsp.TextDocumentSyncKindFull,
			HoverProvider:              true,
			DefinitionProvider:         true,
			DocumentFormattingProvider: true,
			RenameProvider:             true,
		},
		ServerInfo: &lsp.InitializeResultServerInfo{Name: "msdscript"},
	}, nil
}

func (h *Handler) handleInitialized(ctx context.Context, req *jrpc2.Request) (any, error) {
	return nil, nil
}
