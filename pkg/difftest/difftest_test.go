package difftest

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msdscript/msdscript/pkg/msd"
)

const fakeEnv = "MSDSCRIPT_FAKE_CLI"

// TestMain lets the test binary stand in for msdscript. Runners started by
// these tests set fakeEnv, and the name the binary is invoked under picks
// its behavior.
func TestMain(m *testing.M) {
	if os.Getenv(fakeEnv) != "" {
		os.Exit(fakeCLI(strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")))
	}
	os.Exit(m.Run())
}

func fakeCLI(behavior string) int {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: msdscript --MODE")
		return 1
	}
	mode, err := msd.ParseMode(strings.TrimPrefix(os.Args[1], "--"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch behavior {
	case "hang":
		time.Sleep(time.Minute)
	case "crash":
		fmt.Fprintln(os.Stderr, "boom")
		return 2
	}

	out, err := msd.Run(context.Background(), mode, "", string(src), false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if behavior == "loose" && mode == msd.ModePrettyPrint {
		// Drops every parenthesis, which changes the meaning of most
		// products of sums.
		out = strings.NewReplacer("(", "", ")", "").Replace(out)
	}
	fmt.Println(out)
	return 0
}

// fakeBinary links the test binary under name.
func fakeBinary(t *testing.T, name string) string {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	if err := os.Symlink(exe, path); err != nil {
		t.Skipf("cannot link test binary: %v", err)
	}
	return path
}

func newRunner(bins ...string) *Runner {
	return &Runner{
		Binaries:   bins,
		Iterations: 10,
		Timeout:    30 * time.Second,
		Rand:       rand.New(rand.NewPCG(7, 11)),
		Env:        []string{fakeEnv + "=1"},
	}
}

func TestRunSingleBinary(t *testing.T) {
	r := newRunner(fakeBinary(t, "msdscript"))
	require.NoError(t, r.Run(context.Background()))
}

func TestRunTwoBinaries(t *testing.T) {
	r := newRunner(fakeBinary(t, "msdscript"), fakeBinary(t, "other"))
	require.NoError(t, r.Run(context.Background()))
}

func TestRunArgs(t *testing.T) {
	r := newRunner()
	require.ErrorContains(t, r.Run(context.Background()), "expected one or two binaries, got 0")

	r = newRunner("a", "b", "c")
	require.ErrorContains(t, r.Run(context.Background()), "expected one or two binaries, got 3")
}

func TestCheckDetectsLoosePrettyPrinter(t *testing.T) {
	r := newRunner(fakeBinary(t, "loose"))

	require.NoError(t, r.Check(context.Background(), "1+2*3"))

	err := r.Check(context.Background(), "(1+2)*3")
	var mismatch *Mismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "(1+2)*3", mismatch.Input)
	assert.Equal(t, msd.ModeInterp, mismatch.Mode)
	assert.Equal(t, "interp of pretty-print output", mismatch.Check)
	assert.Equal(t, "9\n", mismatch.Want)
	assert.Equal(t, "7\n", mismatch.Got)
	assert.EqualError(t, err, `interp: interp of pretty-print output on input "(1+2)*3": expected "9\n", got "7\n"`)
}

func TestCheckRequiresSuccess(t *testing.T) {
	r := newRunner(fakeBinary(t, "crash"))

	var mismatch *Mismatch
	require.ErrorAs(t, r.Check(context.Background(), "1"), &mismatch)
	assert.Equal(t, msd.ModeInterp, mismatch.Mode)
	assert.Equal(t, "exit status", mismatch.Check)
	assert.Equal(t, "exit 2: boom", mismatch.Got)
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	good := fakeBinary(t, "msdscript")

	r := newRunner(good, fakeBinary(t, "loose"))
	require.NoError(t, r.Compare(ctx, "1+2"))
	// Both fail the same way.
	require.NoError(t, r.Compare(ctx, "_let x = 1 _in y"))

	err := r.Compare(ctx, "(1+2)*3")
	var mismatch *Mismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, msd.ModePrettyPrint, mismatch.Mode)
	assert.Equal(t, "(1 + 2) * 3\n", mismatch.Want)
	assert.Equal(t, "1 + 2 * 3\n", mismatch.Got)

	r = newRunner(good, fakeBinary(t, "crash"))
	err = r.Compare(ctx, "1")
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, msd.ModeInterp, mismatch.Mode)
	assert.Equal(t, "1\n", mismatch.Want)
	assert.Equal(t, "exit 2: boom", mismatch.Got)

	r = newRunner(good)
	require.ErrorContains(t, r.Compare(ctx, "1"), "comparison needs two binaries")
}

func TestTimeout(t *testing.T) {
	r := newRunner(fakeBinary(t, "hang"))
	r.Timeout = 200 * time.Millisecond

	start := time.Now()
	err := r.Check(context.Background(), "1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorContains(t, err, "timed out after 200ms")
	require.Less(t, time.Since(start), 30*time.Second)
}

func TestMissingBinary(t *testing.T) {
	r := newRunner(filepath.Join(t.TempDir(), "nope"))
	err := r.Check(context.Background(), "1")
	require.Error(t, err)
	require.NotErrorAs(t, err, new(*Mismatch))
}
