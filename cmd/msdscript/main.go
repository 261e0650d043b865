package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/ansi"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/msdscript/msdscript/pkg/ioctx"
	"github.com/msdscript/msdscript/pkg/msd"
)

// Config holds the application configuration
type Config struct {
	Debug       bool
	ConfigFile  string
	Interp      bool
	Print       bool
	PrettyPrint bool
	Lines       bool

	// Project is loaded before any command runs.
	Project *msd.ProjectConfig
}

func main() {
	ctx := ioctx.WithStdio(context.Background(), os.Stdin, os.Stdout, os.Stderr)
	if err := fang.Execute(ctx, newRootCmd(),
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			printError(w, err)
		}),
	); err != nil {
		os.Exit(1)
	}
}

// printError writes err on its own line, dropping source highlighting when w
// is not a terminal.
func printError(w io.Writer, err error) {
	msg := err.Error()
	if !isTerminal(w) {
		msg = ansi.Strip(msg)
	}
	_, _ = fmt.Fprintln(w, msg)
}

func newRootCmd() *cobra.Command {
	cfg := &Config{}

	rootCmd := &cobra.Command{
		Use:   "msdscript [flags] [file]",
		Short: "MSDScript interpreter",
		Long: `MSDScript is a small expression language with integers, booleans,
_let bindings, _if conditionals and single-argument functions.

The expression is read from the file argument, or from stdin.`,
		Example: `  # Evaluate an expression
  echo '_let x = 5 _in x * x' | msdscript --interp

  # Print it with minimal parentheses
  msdscript --pretty-print expr.msd

  # Evaluate each line separately
  msdscript --interp --lines < exprs.txt`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			setupLogging(ctx, cfg.Debug)

			project, err := loadProject(cfg.ConfigFile)
			if err != nil {
				return err
			}
			cfg.Project = project
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := cfg.mode()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close() //nolint:errcheck
				return run(cmd.Context(), cfg, mode, args[0], f)
			}
			return run(cmd.Context(), cfg, mode, "", ioctx.StdinFromContext(cmd.Context()))
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&cfg.Interp, "interp", false, "Evaluate the expression and print its value")
	flags.BoolVar(&cfg.Print, "print", false, "Print the expression fully parenthesized")
	flags.BoolVar(&cfg.PrettyPrint, "pretty-print", false, "Print the expression with minimal parentheses")
	flags.BoolVar(&cfg.Lines, "lines", false, "Treat each input line as a separate expression")

	persistent := rootCmd.PersistentFlags()
	persistent.BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	persistent.StringVar(&cfg.ConfigFile, "config", "", "Path to msdscript.toml (searched for upwards by default)")

	rootCmd.AddCommand(replCmd(cfg), serveCmd(cfg), lspCmd(cfg), difftestCmd(cfg))

	return rootCmd
}

// mode picks the mode named by flags, falling back to the project config.
func (cfg *Config) mode() (msd.Mode, error) {
	var modes []msd.Mode
	if cfg.Interp {
		modes = append(modes, msd.ModeInterp)
	}
	if cfg.Print {
		modes = append(modes, msd.ModePrint)
	}
	if cfg.PrettyPrint {
		modes = append(modes, msd.ModePrettyPrint)
	}
	switch len(modes) {
	case 0:
		return cfg.Project.Mode, nil
	case 1:
		return modes[0], nil
	default:
		return 0, fmt.Errorf("only one of --interp, --print and --pretty-print may be given")
	}
}

func setupLogging(ctx context.Context, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	stderr := ioctx.StderrFromContext(ctx)
	handler := tint.NewHandler(stderr, &tint.Options{
		Level:   level,
		NoColor: !isTerminal(stderr),
	})
	slog.SetDefault(slog.New(handler))
}

func loadProject(path string) (*msd.ProjectConfig, error) {
	var (
		project *msd.ProjectConfig
		err     error
	)
	if path != "" {
		project, err = msd.LoadProjectConfig(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return nil, err
		}
		path, project, err = msd.FindProjectConfig(wd)
	}
	if err != nil {
		return nil, err
	}
	if project == nil {
		project = msd.DefaultProjectConfig()
	} else {
		slog.Debug("loaded project config", "path", path)
	}
	if err := project.ApplyEnv(); err != nil {
		return nil, err
	}
	return project, nil
}

// run handles the root command: the whole input is one expression, or with
// --lines each non-blank line is one. Output stops at the first error.
func run(ctx context.Context, cfg *Config, mode msd.Mode, filename string, r io.Reader) error {
	stdout := ioctx.StdoutFromContext(ctx)

	if !cfg.Lines {
		src, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		out, err := msd.Run(ctx, mode, filename, string(src), cfg.Debug)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, out)
		return err
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		out, err := msd.Run(ctx, mode, filename, line, cfg.Debug)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(stdout, out); err != nil {
			return err
		}
	}
	return scanner.Err()
}
