package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/service"
)

// writeConfig writes a config file pointing at a fresh SQLite database in a
// temporary directory and returns its path.
func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "server:\n" +
		"  log_level: error\n" +
		"  log_format: text\n" +
		"database:\n" +
		"  driver: sqlite\n" +
		"  url: " + filepath.Join(dir, "xtlz.db") + "\n" +
		"llm:\n" +
		"  provider: none\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(t.Context())

	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	out, err := run(t, cfg, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "database at version")

	out, err = run(t, cfg, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "VERSION")
	assert.Contains(t, out, "applied")
	assert.NotContains(t, out, "pending")

	_, err = run(t, cfg, "migrate", "sideways")
	assert.Error(t, err)
}

func TestCollectionCommands(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)
	_, err := run(t, cfg, "migrate", "up")
	require.NoError(t, err)

	seed, err := service.SeedCollection(domain.NewProfile("Ann", domain.LevelB2), time.Now())
	require.NoError(t, err)
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	importPath := filepath.Join(t.TempDir(), "collection.json")
	require.NoError(t, os.WriteFile(importPath, data, 0o600))

	out, err := run(t, cfg, "import", importPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 cards and 1 rules")

	out, err = run(t, cfg, "export")
	require.NoError(t, err)
	var exported domain.Collection
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Len(t, exported.Cards, 2)
	assert.Len(t, exported.Rules, 1)
	assert.Equal(t, "Ann", exported.Profile.Name)

	exportPath := filepath.Join(t.TempDir(), "export.json")
	_, err = run(t, cfg, "export", "--out", exportPath)
	require.NoError(t, err)
	written, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.JSONEq(t, out, string(written))

	out, err = run(t, cfg, "due", "--limit", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "ITEM")
	assert.Contains(t, out, "Serendipity")
	assert.Contains(t, out, "Piece of cake")
}

func TestDueCommandOnEmptyCollection(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)
	_, err := run(t, cfg, "migrate", "up")
	require.NoError(t, err)

	out, err := run(t, cfg, "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to review right now.")
}

func TestImportCommandRejectsBadInput(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)
	_, err := run(t, cfg, "migrate", "up")
	require.NoError(t, err)

	_, err = run(t, cfg, "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read import file")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = run(t, cfg, "import", bad)
	assert.ErrorContains(t, err, "failed to decode collection")
}

func TestRootCommandRejectsMissingConfig(t *testing.T) {
	t.Parallel()

	_, err := run(t, filepath.Join(t.TempDir(), "nope.yaml"), "due")
	assert.ErrorContains(t, err, "failed to load configuration")
}
