package backfill

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/ingestion"
	"github.com/poiesic/termgraph/storage"
	"github.com/poiesic/termgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newPipeline(t *testing.T) (*ingestion.Pipeline, storage.CandidateRepository) {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	miner, err := ingestion.NewMiner(repos.Candidates)
	require.NoError(t, err)
	pipeline, err := ingestion.NewPipeline(miner, ingestion.WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, repos.Candidates
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "b")
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "notes/c.TXT", "c")
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, ".git/d.txt", "hidden")

	paths, err := CollectFiles(root)
	require.NoError(t, err)

	ids := make([]string, len(paths))
	for i, p := range paths {
		ids[i] = DocumentID(root, p)
	}
	assert.Equal(t, []string{"a.txt", "b.md", "notes/c.TXT"}, ids)
}

func TestCollectFiles_Errors(t *testing.T) {
	_, err := CollectFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = CollectFiles(file)
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestNewRunner_RequiresPipeline(t *testing.T) {
	_, err := NewRunner(nil, nil, nil)
	assert.ErrorIs(t, err, ErrPipelineRequired)
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "Internally we call this 'alpha'.")
	writeFile(t, root, "sub/b.md", "The release was green, aka 'green status'.")
	writeFile(t, root, "skip.csv", "Internally we call this 'ignored'.")

	pipeline, candidates := newPipeline(t)
	var out bytes.Buffer
	runner, err := NewRunner(pipeline, &Config{
		BatchSize:      1,
		ReportInterval: 1,
		Author:         "importer",
		Scope:          core.Scope{Team: "qa"},
	}, &out)
	require.NoError(t, err)

	summary, err := runner.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 2, summary.Inserted)
	assert.Empty(t, summary.Failed)

	all, err := candidates.ListCandidates(context.Background(), storage.CandidateFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	docs := map[string]string{}
	for _, c := range all {
		docs[c.TermNormalized] = c.DocumentId
		assert.Equal(t, "importer", c.Author)
		assert.Equal(t, "qa", c.Scope.Team)
	}
	assert.Equal(t, "a.txt", docs["alpha"])
	assert.Equal(t, "sub/b.md", docs["green status"])

	assert.Contains(t, out.String(), "Starting backfill of 2 documents")
	assert.Contains(t, out.String(), "2/2")
	assert.Contains(t, out.String(), "Backfill complete")
}

func TestRun_EmptyDirectory(t *testing.T) {
	pipeline, _ := newPipeline(t)
	var out bytes.Buffer
	runner, err := NewRunner(pipeline, nil, &out)
	require.NoError(t, err)

	summary, err := runner.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Files)
	assert.Contains(t, out.String(), "No documents found")
}

func TestRun_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "text")

	pipeline, _ := newPipeline(t)
	runner, err := NewRunner(pipeline, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
