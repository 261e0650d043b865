// Package service exposes the msdscript modes as JSON-RPC 2.0 methods.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/x/ansi"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/iancoleman/strcase"

	"github.com/msdscript/msdscript/pkg/msd"
)

// Error codes reported for msdscript failures. They sit in the range JSON-RPC
// leaves to applications.
const (
	CodeBadInput        jrpc2.Code = -32001
	CodeInvalidInput    jrpc2.Code = -32002
	CodeIntegerOverflow jrpc2.Code = -32003
	CodeUnboundVariable jrpc2.Code = -32004
	CodeInvalidOperand  jrpc2.Code = -32005
)

var errorCodes = []struct {
	kind error
	code jrpc2.Code
}{
	{msd.ErrBadInput, CodeBadInput},
	{msd.ErrInvalidInput, CodeInvalidInput},
	{msd.ErrIntegerOverflow, CodeIntegerOverflow},
	{msd.ErrUnboundVariable, CodeUnboundVariable},
	{msd.ErrInvalidOperand, CodeInvalidOperand},
}

// Params is the argument of every method.
type Params struct {
	Source   string `json:"source"`
	Filename string `json:"filename,omitempty"`
}

// Result is the return value of every method. Value is only set by interp:
// a number, a boolean, or {"param", "body"} for a function.
type Result struct {
	Output string          `json:"output"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// MethodName returns the JSON-RPC method serving mode, e.g. "prettyPrint".
func MethodName(mode msd.Mode) string {
	return strcase.ToLowerCamel(mode.String())
}

// Methods returns a handler for every mode, keyed by method name.
func Methods() handler.Map {
	methods := handler.Map{}
	for _, mode := range msd.Modes() {
		methods[MethodName(mode)] = handler.New(modeHandler(mode))
	}
	return methods
}

func modeHandler(mode msd.Mode) func(context.Context, *Params) (*Result, error) {
	return func(ctx context.Context, params *Params) (*Result, error) {
		slog.DebugContext(ctx, "handling request", "mode", mode, "source", params.Source)
		if mode == msd.ModeInterp {
			val, err := msd.Evaluate(ctx, params.Filename, params.Source)
			if err != nil {
				return nil, toRPCError(err)
			}
			raw, err := json.Marshal(val)
			if err != nil {
				return nil, err
			}
			return &Result{Output: val.String(), Value: raw}, nil
		}
		out, err := msd.Run(ctx, mode, params.Filename, params.Source, false)
		if err != nil {
			return nil, toRPCError(err)
		}
		return &Result{Output: out}, nil
	}
}

func toRPCError(err error) error {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.kind) {
			return &jrpc2.Error{Code: ec.code, Message: ansi.Strip(err.Error())}
		}
	}
	return err
}

// Serve answers line-delimited JSON-RPC requests from r on w until r is
// exhausted or ctx is done.
func Serve(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	srv := jrpc2.NewServer(Methods(), &jrpc2.ServerOptions{
		Logger:     func(text string) { slog.DebugContext(ctx, text) },
		NewContext: func() context.Context { return ctx },
	})

	slog.InfoContext(ctx, "serving JSON-RPC", "methods", srv.ServerInfo().Methods)
	srv.Start(channel.Line(r, w))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			srv.Stop()
		case <-done:
		}
	}()

	return srv.Wait()
}
