package msd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectConfigFile)
	writeFile(t, path, `
mode = "pretty-print"

[repl]
history = "/tmp/msd-history"

[difftest]
iterations = 25
timeout = "250ms"
seed = 42
`)

	config, err := LoadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ModePrettyPrint, config.Mode)
	assert.Equal(t, "/tmp/msd-history", config.REPL.History)
	assert.Equal(t, 25, config.DiffTest.Iterations)
	assert.Equal(t, int64(42), config.DiffTest.Seed)

	timeout, err := config.DiffTest.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, timeout)
}

func TestLoadProjectConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectConfigFile)
	writeFile(t, path, `mode = "print"`)

	config, err := LoadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ModePrint, config.Mode)
	assert.Equal(t, 100, config.DiffTest.Iterations)
	assert.Equal(t, "5s", config.DiffTest.Timeout)
}

func TestLoadProjectConfigErrors(t *testing.T) {
	t.Run("unknown mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ProjectConfigFile)
		writeFile(t, path, `mode = "compile"`)
		_, err := LoadProjectConfig(path)
		require.ErrorContains(t, err, "compile")
	})

	t.Run("bad timeout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ProjectConfigFile)
		writeFile(t, path, "[difftest]\ntimeout = \"soon\"\n")
		_, err := LoadProjectConfig(path)
		require.ErrorContains(t, err, "difftest timeout")
	})
}

func TestFindProjectConfig(t *testing.T) {
	t.Run("walks up to parent", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, ProjectConfigFile), `mode = "print"`)
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0755))

		path, config, err := FindProjectConfig(nested)
		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, filepath.Join(root, ProjectConfigFile), path)
		assert.Equal(t, ModePrint, config.Mode)
	})

	t.Run("stops at .git", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, ProjectConfigFile), `mode = "print"`)
		repo := filepath.Join(root, "repo")
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))

		path, config, err := FindProjectConfig(repo)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Nil(t, config)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MSDSCRIPT_MODE", "prettyPrint")
	t.Setenv("MSDSCRIPT_DIFFTEST_ITERATIONS", "7")
	t.Setenv("MSDSCRIPT_DIFFTEST_TIMEOUT", "1s")

	config := DefaultProjectConfig()
	require.NoError(t, config.ApplyEnv())
	assert.Equal(t, ModePrettyPrint, config.Mode)
	assert.Equal(t, 7, config.DiffTest.Iterations)
	assert.Equal(t, "1s", config.DiffTest.Timeout)

	t.Setenv("MSDSCRIPT_DIFFTEST_ITERATIONS", "many")
	require.ErrorContains(t, DefaultProjectConfig().ApplyEnv(), "MSDSCRIPT_DIFFTEST_ITERATIONS")
}

func TestHistoryPath(t *testing.T) {
	config := DefaultProjectConfig()
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/data", "msdscript", "history"), config.HistoryPath())

	config.REPL.History = "/custom/history"
	assert.Equal(t, "/custom/history", config.HistoryPath())
}

func TestModeNames(t *testing.T) {
	assert.Equal(t, "interp", ModeInterp.String())
	assert.Equal(t, "print", ModePrint.String())
	assert.Equal(t, "pretty-print", ModePrettyPrint.String())

	for _, name := range []string{"pretty-print", "prettyPrint", "pretty_print", "PrettyPrint"} {
		mode, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, ModePrettyPrint, mode, name)
	}

	_, err := ParseMode("eval")
	require.Error(t, err)
}
