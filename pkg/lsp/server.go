package lsp

import (
	"context"
	"io"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// Serve runs the language server on r and w using LSP header framing until
// the client exits, the stream closes or ctx is done.
func Serve(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	h := NewHandler()
	srv := jrpc2.NewServer(h.Methods(), &jrpc2.ServerOptions{
		AllowPush:  true,
		Logger:     func(text string) { slog.DebugContext(ctx, text) },
		NewContext: func() context.Context { return ctx },
	})
	h.SetServer(srv)

	slog.InfoContext(ctx, "starting LSP server")
	srv.Start(channel.LSP(r, w))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			srv.Stop()
		case <-done:
		}
	}()

	err := srv.Wait()
	slog.InfoContext(ctx, "LSP server closed", "error", err)
	return err
}
