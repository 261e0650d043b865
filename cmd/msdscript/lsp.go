package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/msdscript/msdscript/pkg/ioctx"
	"github.com/msdscript/msdscript/pkg/lsp"
)

func lspCmd(cfg *Config) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server on stdin/stdout",
		Long: `Speaks the Language Server Protocol on stdin/stdout. Open documents get
parse error and free variable diagnostics, and the server answers
formatting, hover, definition and rename requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if logFile != "" {
				f, err := os.Create(logFile)
				if err != nil {
					return fmt.Errorf("open lsp log: %w", err)
				}
				defer f.Close() //nolint:errcheck

				level := slog.LevelInfo
				if cfg.Debug {
					level = slog.LevelDebug
				}
				slog.SetDefault(slog.New(tint.NewHandler(f, &tint.Options{
					Level:   level,
					NoColor: true,
				})))
			}

			out := ioctx.StdoutFromContext(ctx)
			wc, ok := out.(io.WriteCloser)
			if !ok {
				wc = nopWriteCloser{out}
			}
			return lsp.Serve(ctx, ioctx.StdinFromContext(ctx), wc)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write server logs to this file instead of stderr")

	return cmd
}
