package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/msdscript/msdscript/pkg/ioctx"
	"github.com/msdscript/msdscript/pkg/service"
)

func serveCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the modes as JSON-RPC 2.0 methods on stdin/stdout",
		Long: `Reads one JSON-RPC request per line from stdin and writes one response per
line to stdout. The methods interp, print and prettyPrint take
{"source": "..."} and return {"output": "..."}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := ioctx.StdoutFromContext(ctx)
			wc, ok := out.(io.WriteCloser)
			if !ok {
				wc = nopWriteCloser{out}
			}
			return service.Serve(ctx, ioctx.StdinFromContext(ctx), wc)
		},
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
