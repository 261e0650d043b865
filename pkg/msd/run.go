package msd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kr/pretty"

	"github.com/msdscript/msdscript/pkg/ioctx"
)

// Evaluate parses src and interprets it in the empty environment. Evaluation
// errors point back into src.
func Evaluate(ctx context.Context, filename, src string) (Value, error) {
	node, err := ParseReader(filename, strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return Interp(WithEvalContext(ctx, NewEvalContext(filename, src)), node)
}

// Run parses src and renders it according to mode: the value's display
// form, the canonical form, or the pretty form. With debug set, the parsed
// tree is dumped to the context's stderr.
func Run(ctx context.Context, mode Mode, filename, src string, debug bool) (string, error) {
	node, err := ParseReader(filename, strings.NewReader(src))
	if err != nil {
		return "", err
	}

	if debug {
		_, _ = pretty.Fprintf(ioctx.StderrFromContext(ctx), "%# v\n", node)
	}
	slog.DebugContext(ctx, "parsed expression", "mode", mode, "canonical", node.String())

	switch mode {
	case ModeInterp:
		ctx = WithEvalContext(ctx, NewEvalContext(filename, src))
		val, err := Interp(ctx, node)
		if err != nil {
			return "", err
		}
		return val.String(), nil
	case ModePrint:
		return node.String(), nil
	case ModePrettyPrint:
		return Pretty(node), nil
	default:
		return "", fmt.Errorf("unknown mode %s", mode)
	}
}
