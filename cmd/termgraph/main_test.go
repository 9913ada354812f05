package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/termgraph"
	"github.com/poiesic/termgraph/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TERMGRAPH_CONFIG", "TERMGRAPH_DB_PATH", "TERMGRAPH_LLM_API_KEY",
		"TERMGRAPH_FEATURE_GRAPH", "TERMGRAPH_FEATURE_REWRITE", "TERMGRAPH_FEATURE_STRICT",
		"TERMGRAPH_KILL_SWITCH", "TERMGRAPH_AMBIGUITY_POLICY",
	} {
		t.Setenv(name, "")
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"termgraph", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	isolateEnv(t)
	app := newApp()
	err := app.Run([]string{"termgraph", "--log-level", "loud", "seed", "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRequiredArguments(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "db")

	_, err := run(t, "", "--db", dbPath, "query")
	assert.ErrorContains(t, err, "query text is required")

	_, err = run(t, "", "--db", dbPath, "review", "approve", "--id", "1")
	assert.ErrorContains(t, err, "definition")

	_, err = run(t, "", "--db", dbPath, "backfill")
	assert.ErrorContains(t, err, "dir")

	_, err = run(t, "", "--db", dbPath, "seed")
	assert.ErrorContains(t, err, "seed file is required")
}

func TestCommands_EndToEnd(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TERMGRAPH_FEATURE_GRAPH", "true")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db")

	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`
concepts:
  - key: GREEN_STATUS
    aliases:
      - alias: green
    definitions:
      - definition: All release gates passed.
`), 0o600))

	out, err := run(t, "", "--db", dbPath, "seed", seedPath)
	require.NoError(t, err)
	assert.Contains(t, out, "concepts: 1, aliases: 1, definitions: 1")

	out, err = run(t, "", "--db", dbPath, "query", "is", "it", "green?")
	require.NoError(t, err)
	assert.Contains(t, out, "- GREEN_STATUS: All release gates passed.")

	out, err = run(t, "Internally we call this 'LF'.", "--db", dbPath, "ingest", "--doc-id", "memo-1", "--team", "finance")
	require.NoError(t, err)
	assert.Contains(t, out, "1 new candidates")

	out, err = run(t, "", "--db", dbPath, "review", "list", "--team", "finance")
	require.NoError(t, err)
	assert.Contains(t, out, "LF")
	assert.Contains(t, out, "team=finance")

	id := onlyCandidateID(t, dbPath)
	out, err = run(t, "", "--db", dbPath, "review", "approve",
		"--id", fmt.Sprint(id), "--definition", "Ledger freeze window.", "--reviewer", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, `approved "LF" as LF version 1`)

	_, err = run(t, "", "--db", dbPath, "review", "reject", "--id", fmt.Sprint(id))
	assert.ErrorContains(t, err, "already reviewed")

	out, err = run(t, "", "--db", dbPath, "query", "--team", "finance", "--json", "When does LF start?")
	require.NoError(t, err)
	assert.Contains(t, out, `"conceptKey": "LF"`)
}

func TestQuery_KillSwitch(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TERMGRAPH_KILL_SWITCH", "true")
	t.Setenv("TERMGRAPH_FEATURE_GRAPH", "true")

	out, err := run(t, "", "--db", filepath.Join(t.TempDir(), "db"), "query", "raw", "text")
	require.NoError(t, err)
	assert.Equal(t, "raw text\n", out)
}

func TestBackfillCommand(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "a.md"), []byte("Internally we call this 'blue lane'."), 0o600))

	dbPath := filepath.Join(dir, "db")
	_, err := run(t, "", "--db", dbPath, "backfill", "--dir", docs)
	require.NoError(t, err)

	out, err := run(t, "", "--db", dbPath, "review", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "blue lane")
}

func onlyCandidateID(t *testing.T, dbPath string) uint64 {
	t.Helper()
	db, err := termgraph.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	all, err := db.CandidateRepository().ListCandidates(context.Background(), storage.CandidateFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	return uint64(all[0].Id)
}
