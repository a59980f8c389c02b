package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runIn runs the binary with dir as working directory and extra environment.
func runIn(t *testing.T, dir, stdin string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = strings.NewReader(stdin)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func initWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runStmtmerge(t, "init", dir)
	require.NoError(t, err)

	for _, name := range []string{"statement_jan.csv", "statement_feb.csv"} {
		data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "input", name), data, 0o644))
	}
	return dir
}

func TestRun_Merges(t *testing.T) {
	dir := initWorkspace(t)

	out, err := runIn(t, dir, "", []string{"STMTMERGE_TIMESTAMP=false"})
	require.NoError(t, err, "run failed: %s", out)
	assert.Contains(t, out, "Done!")
	assert.NotContains(t, out, "Press Enter")

	data, err := os.ReadFile(filepath.Join(dir, "output", "data_merged.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header + 6 unique movements.
	assert.Len(t, lines, 7)
	assert.NotContains(t, lines[0], "pointer")
	assert.Contains(t, lines[0], "year_month")

	_, err = os.Stat(filepath.Join(dir, "output", "data_merged.xlsx"))
	require.NoError(t, err)
}

func TestRun_DateStampedOutput(t *testing.T) {
	dir := initWorkspace(t)

	out, err := runIn(t, dir, "", nil)
	require.NoError(t, err, out)

	entries, err := os.ReadDir(filepath.Join(dir, "output"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Regexp(t, `^data_merged_\d{4}-\d{2}-\d{2}\.(csv|xlsx)$`, e.Name())
	}
}

func TestRun_PauseOnExit(t *testing.T) {
	dir := initWorkspace(t)

	out, err := runIn(t, dir, "\n", []string{"STMTMERGE_PAUSE_ON_EXIT=true"})
	require.NoError(t, err, out)
	assert.Contains(t, out, "Done!")
	assert.Contains(t, out, "Press Enter to continue...")
}

func TestRun_MissingReplacements(t *testing.T) {
	dir := initWorkspace(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "replacements.xlsx")))

	out, err := runIn(t, dir, "", nil)
	require.Error(t, err)
	assert.Contains(t, out, "replacement table missing")
	assert.NotContains(t, out, "Done!")
}

func TestRun_RejectsArgs(t *testing.T) {
	dir := initWorkspace(t)
	_, err := runIn(t, dir, "", nil, "unexpected")
	require.Error(t, err)
}
