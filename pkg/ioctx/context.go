// Package ioctx threads the process's standard streams through a
// context.Context so commands can be run against buffers in tests.
package ioctx

import (
	"context"
	"io"
	"strings"
)

type stdinKey struct{}
type stdoutKey struct{}
type stderrKey struct{}

// StdinFromContext returns the context's stdin, or an empty reader.
func StdinFromContext(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok {
		return r
	}
	return strings.NewReader("")
}

func StdinToContext(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

// StdoutFromContext returns the context's stdout, or io.Discard.
func StdoutFromContext(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}
	return io.Discard
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// StderrFromContext returns the context's stderr, or io.Discard.
func StderrFromContext(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stderrKey{}).(io.Writer); ok {
		return w
	}
	return io.Discard
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

// WithStdio stores all three streams at once.
func WithStdio(ctx context.Context, in io.Reader, out, errOut io.Writer) context.Context {
	ctx = StdinToContext(ctx, in)
	ctx = StdoutToContext(ctx, out)
	return StderrToContext(ctx, errOut)
}
