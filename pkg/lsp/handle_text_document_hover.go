package lsp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"

	"github.com/msdscript/msdscript/pkg/msd"
)

func (h *Handler) handleTextDocumentHover(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params lsp.HoverParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f, ok := h.file(params.TextDocument.URI)
	if !ok || f.AST == nil {
		return nil, nil
	}

	node, loc := f.tokenAtPosition(params.Position)
	if node == nil {
		return nil, nil
	}

	content := hoverContent(f, node, loc)
	if content == "" {
		return nil, nil
	}

	slog.DebugContext(ctx, "hover", "uri", params.TextDocument.URI, "position", params.Position, "node", fmt.Sprintf("%T", node))

	rng := f.locationRange(loc)
	return &lsp.Hover{
		Contents: lsp.MarkupContent{Kind: lsp.MarkupKindMarkdown, Value: content},
		Range:    &rng,
	}, nil
}

func hoverContent(f *File, node msd.Node, loc *msd.SourceLocation) string {
	switch n := node.(type) {
	case *msd.Var:
		binder, ok := f.Binders[n]
		if !ok {
			return fmt.Sprintf("`%s`: free variable", n.Name)
		}
		return describeBinder(binder)
	case *msd.Let:
		if loc == n.NameLoc {
			return describeBinder(n)
		}
		return codeBlock(n.String())
	case *msd.Fun:
		if loc == n.ParamLoc {
			return describeBinder(n)
		}
		return codeBlock(n.String())
	case *msd.If:
		return codeBlock(n.String())
	case *msd.Num:
		return fmt.Sprintf("`%d`: number", n.Val)
	case *msd.Bool:
		return fmt.Sprintf("`%s`: boolean", n)
	}
	return ""
}

func describeBinder(binder msd.Node) string {
	switch b := binder.(type) {
	case *msd.Let:
		return codeBlock(fmt.Sprintf("_let %s = %s", b.Name, b.Bound)) +
			fmt.Sprintf("\n\nbound at %s", b.NameLoc)
	case *msd.Fun:
		return codeBlock(fmt.Sprintf("_fun (%s)", b.Param)) +
			fmt.Sprintf("\n\nparameter `%s` declared at %s", b.Param, b.ParamLoc)
	}
	return ""
}

func codeBlock(src string) string {
	return "```msdscript\n" + src + "\n```"
}
