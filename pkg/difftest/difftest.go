// Package difftest checks msdscript command-line implementations against
// each other by feeding them random expressions.
package difftest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/exec"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/msdscript/msdscript/pkg/msd"
)

const (
	DefaultIterations = 100
	DefaultTimeout    = 5 * time.Second
)

// Result is the outcome of one subprocess run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (r Result) describe() string {
	if r.ExitCode == 0 {
		return r.Stdout
	}
	return fmt.Sprintf("exit %d: %s", r.ExitCode, strings.TrimSpace(r.Stderr))
}

// agrees compares what a caller of the binary observes. Error messages on
// stderr are free to differ.
func (r Result) agrees(other Result) bool {
	return r.Stdout == other.Stdout && r.ExitCode == other.ExitCode
}

// Mismatch reports an input on which two runs that should agree did not.
type Mismatch struct {
	Input string
	Mode  msd.Mode
	Check string
	Want  string
	Got   string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s: %s on input %q: expected %q, got %q", m.Mode, m.Check, m.Input, m.Want, m.Got)
}

// Runner drives one or two msdscript binaries. With one binary it checks
// the binary's modes against each other; with two it checks that both
// binaries produce the same output for every mode.
type Runner struct {
	Binaries   []string
	Iterations int
	Timeout    time.Duration

	// Rand drives input generation. A time-seeded source is used if nil.
	Rand *rand.Rand

	// Env is added to the environment of every subprocess.
	Env []string
}

// Run generates Iterations inputs and checks each one, stopping at the
// first failure.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.Binaries) < 1 || len(r.Binaries) > 2 {
		return pkgerrors.Errorf("expected one or two binaries, got %d", len(r.Binaries))
	}
	rng := r.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	iterations := r.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	for i := range iterations {
		var input string
		if len(r.Binaries) == 1 {
			input = NestedExpr(rng)
		} else {
			input = ExprString(rng)
		}
		slog.InfoContext(ctx, "trying", "iteration", i+1, "input", input)

		var err error
		if len(r.Binaries) == 1 {
			err = r.Check(ctx, input)
		} else {
			err = r.Compare(ctx, input)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Check runs every mode of the first binary on input and verifies that the
// printed forms evaluate to the same value as the input, and that
// pretty-printing is idempotent.
func (r *Runner) Check(ctx context.Context, input string) error {
	bin := r.Binaries[0]

	results, err := r.runModes(ctx, bin, input)
	if err != nil {
		return err
	}
	for _, mode := range msd.Modes() {
		if res := results[mode]; res.ExitCode != 0 {
			return &Mismatch{Input: input, Mode: mode, Check: "exit status", Want: "exit 0", Got: res.describe()}
		}
	}
	interp := results[msd.ModeInterp]
	pretty := results[msd.ModePrettyPrint]

	checks := []struct {
		mode  msd.Mode
		from  msd.Mode
		check string
		want  Result
	}{
		{msd.ModeInterp, msd.ModePrint, "interp of print output", interp},
		{msd.ModeInterp, msd.ModePrettyPrint, "interp of pretty-print output", interp},
		{msd.ModePrettyPrint, msd.ModePrettyPrint, "pretty-print of pretty-print output", pretty},
	}

	got := make([]Result, len(checks))
	eg, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		eg.Go(func() error {
			res, err := r.exec(gctx, bin, c.mode, results[c.from].Stdout)
			got[i] = res
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, c := range checks {
		if !got[i].agrees(c.want) {
			return &Mismatch{Input: input, Mode: c.mode, Check: c.check, Want: c.want.describe(), Got: got[i].describe()}
		}
	}
	return nil
}

// Compare runs every mode of both binaries on input and requires identical
// stdout and exit status.
func (r *Runner) Compare(ctx context.Context, input string) error {
	if len(r.Binaries) != 2 {
		return pkgerrors.Errorf("comparison needs two binaries, got %d", len(r.Binaries))
	}

	var first, second map[msd.Mode]Result
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		first, err = r.runModes(gctx, r.Binaries[0], input)
		return err
	})
	eg.Go(func() (err error) {
		second, err = r.runModes(gctx, r.Binaries[1], input)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, mode := range msd.Modes() {
		a, b := first[mode], second[mode]
		if !a.agrees(b) {
			return &Mismatch{
				Input: input,
				Mode:  mode,
				Check: fmt.Sprintf("%s versus %s", r.Binaries[0], r.Binaries[1]),
				Want:  a.describe(),
				Got:   b.describe(),
			}
		}
	}
	return nil
}

func (r *Runner) runModes(ctx context.Context, bin, input string) (map[msd.Mode]Result, error) {
	modes := msd.Modes()
	results := make([]Result, len(modes))

	eg, gctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		eg.Go(func() error {
			res, err := r.exec(gctx, bin, mode, input)
			results[i] = res
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	byMode := make(map[msd.Mode]Result, len(modes))
	for i, mode := range modes {
		byMode[mode] = results[i]
	}
	return byMode, nil
}

// exec runs bin in mode with input on stdin. A non-zero exit is reported in
// the Result; only failures to run at all are errors.
func (r *Runner) exec(ctx context.Context, bin string, mode msd.Mode, input string) (Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "--"+mode.String())
	cmd.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.WaitDelay = time.Second
	isolate(cmd)

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{}, pkgerrors.Wrapf(ctx.Err(), "%s --%s timed out after %s on input %q", bin, mode, timeout, input)
	} else if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, pkgerrors.Wrapf(err, "running %s --%s", bin, mode)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}
