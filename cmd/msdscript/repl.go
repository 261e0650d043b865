package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/msdscript/msdscript/pkg/ioctx"
	"github.com/msdscript/msdscript/pkg/msd"
)

const (
	promptMain = "msd> "
	promptCont = "...> "
)

var (
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	welcomeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type replCommandDef struct {
	name string
	desc string
}

var replCommandDefs = []replCommandDef{
	{"help", "Show this help"},
	{"mode", "Show or set the mode (interp, print, pretty-print)"},
	{"debug", "Toggle dumping the parsed tree"},
	{"quit", "Exit the REPL"},
}

// lineReader is the part of *liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type repl struct {
	in     lineReader
	out    io.Writer
	styled bool
	mode   msd.Mode
	debug  bool
}

func replCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context(), cfg)
		},
	}
}

func runREPL(ctx context.Context, cfg *Config) error {
	ln := liner.NewLiner()
	defer ln.Close() //nolint:errcheck
	ln.SetCtrlCAborts(true)

	histPath := cfg.Project.HistoryPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer saveHistory(ln, histPath)

	mode, err := cfg.mode()
	if err != nil {
		return err
	}

	stdout := ioctx.StdoutFromContext(ctx)
	r := &repl{
		in:     ln,
		out:    stdout,
		styled: isTerminal(stdout),
		mode:   mode,
		debug:  cfg.Debug,
	}
	return r.loop(ctx)
}

func saveHistory(ln *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("failed to create history directory", "error", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("failed to save history", "error", err)
		return
	}
	defer f.Close() //nolint:errcheck
	if _, err := ln.WriteHistory(f); err != nil {
		slog.Warn("failed to save history", "error", err)
	}
}

// styleLines renders each line on its own, so multi-line output is not
// padded out to a block.
func styleLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

func (r *repl) println(s string) {
	if !r.styled {
		s = ansi.Strip(s)
	}
	_, _ = fmt.Fprintln(r.out, s)
}

func (r *repl) loop(ctx context.Context) error {
	r.println(welcomeStyle.Render("MSDScript REPL") + dimStyle.Render(" (mode "+r.mode.String()+", :help for commands)"))

	for {
		src, ok, err := r.read()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		r.in.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if quit := r.handleCommand(trimmed[1:]); quit {
				return nil
			}
			continue
		}

		out, err := msd.Run(ctx, r.mode, "", src, r.debug)
		if err != nil {
			r.println(styleLines(errorStyle, err.Error()))
			continue
		}
		r.println(styleLines(resultStyle, out))
	}
}

// read prompts until it has a complete expression or command. ok is false
// at end of input.
func (r *repl) read() (src string, ok bool, err error) {
	var buf strings.Builder
	for {
		prompt := promptMain
		if buf.Len() > 0 {
			prompt = promptCont
		}
		line, err := r.in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C drops whatever was typed so far.
			buf.Reset()
			continue
		}
		if err != nil {
			return "", false, err
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		src := buf.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || strings.TrimSpace(src) == "" {
			return src, true, nil
		}
		if _, perr := msd.Parse(src); msd.IsIncomplete(perr) {
			continue
		}
		return src, true, nil
	}
}

func (r *repl) handleCommand(cmdLine string) (quit bool) {
	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		r.println(errorStyle.Render("empty command"))
		return false
	}

	switch cmd, args := parts[0], parts[1:]; cmd {
	case "help":
		r.println("Available commands:")
		maxName := 0
		for _, def := range replCommandDefs {
			maxName = max(maxName, len(def.name))
		}
		for _, def := range replCommandDefs {
			r.println(dimStyle.Render(fmt.Sprintf("  :%-*s - %s", maxName, def.name, def.desc)))
		}
		r.println(dimStyle.Render("Expressions may span lines; input continues until it parses."))

	case "mode":
		if len(args) == 0 {
			r.println(resultStyle.Render("Mode: " + r.mode.String()))
			return false
		}
		mode, err := msd.ParseMode(args[0])
		if err != nil {
			r.println(errorStyle.Render(err.Error()))
			return false
		}
		r.mode = mode
		r.println(resultStyle.Render("Mode set to " + mode.String() + "."))

	case "debug":
		r.debug = !r.debug
		status := "disabled"
		if r.debug {
			status = "enabled"
		}
		r.println(resultStyle.Render(fmt.Sprintf("Debug mode %s.", status)))

	case "quit", "exit":
		return true

	default:
		r.println(errorStyle.Render(fmt.Sprintf("unknown command :%s (try :help)", cmd)))
	}
	return false
}
