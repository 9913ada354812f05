// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backfill

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/ingestion"
)

// DefaultBatchSize is the number of documents read and mined per batch.
const DefaultBatchSize = 50

// Extensions lists the file extensions a backfill picks up.
var Extensions = []string{".txt", ".md"}

// Config holds configuration for a backfill run.
type Config struct {
	// BatchSize is the number of documents mined per batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// Author and SourceType are recorded on every mined candidate
	Author     string
	SourceType string

	// Scope qualifies every mined candidate
	Scope core.Scope
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 10,
		SourceType:     "backfill",
	}
}

// Summary reports the outcome of a backfill run.
type Summary struct {
	Files    int
	Inserted int
	Failed   []string // document ids that could not be mined
}

// Runner walks a directory and mines every document in it.
type Runner struct {
	pipeline *ingestion.Pipeline
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewRunner creates a backfill runner. A nil config uses DefaultConfig and
// a nil progress writer discards progress output.
func NewRunner(pipeline *ingestion.Pipeline, config *Config, progress io.Writer) (*Runner, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Runner{
		pipeline: pipeline,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "backfill"),
	}, nil
}

// Run mines every matching file under root. Document ids are the file paths
// relative to root, slash separated. A document that fails to mine is
// recorded in Summary.Failed and does not stop the run; a failure to walk
// or read the directory does.
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	paths, err := CollectFiles(root)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Files: len(paths)}
	if len(paths) == 0 {
		fmt.Fprintf(r.progress, "No documents found under %s\n", root)
		return summary, nil
	}

	fmt.Fprintf(r.progress, "Starting backfill of %d documents (batch size: %d)\n",
		len(paths), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(paths), r.config.ReportInterval)
	tracker.Start()

	for i := 0; i < len(paths); i += r.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		end := min(i+r.config.BatchSize, len(paths))
		docs, err := r.readBatch(root, paths[i:end])
		if err != nil {
			return summary, err
		}

		for _, res := range r.pipeline.IngestDocuments(ctx, docs) {
			if res.Err != nil {
				summary.Failed = append(summary.Failed, res.DocumentId)
				continue
			}
			summary.Inserted += res.Inserted
		}
		tracker.Increment(len(docs))
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Backfill complete. %d documents, %d new candidates, %d failed in %v\n",
		summary.Files, summary.Inserted, len(summary.Failed), elapsed.Round(time.Millisecond))
	r.logger.Info("backfill complete", "root", root, "files", summary.Files,
		"inserted", summary.Inserted, "failed", len(summary.Failed))
	return summary, nil
}

func (r *Runner) readBatch(root string, paths []string) ([]ingestion.Document, error) {
	docs := make([]ingestion.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, ingestion.Document{
			Text: string(data),
			Metadata: ingestion.Metadata{
				DocumentId: DocumentID(root, path),
				Author:     r.config.Author,
				SourceType: r.config.SourceType,
				Scope:      r.config.Scope,
			},
		})
	}
	return docs, nil
}

// CollectFiles returns the sorted paths of files under root whose extension
// is one of Extensions. Hidden directories are skipped.
func CollectFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExtension(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// DocumentID returns the slash separated path of file relative to root.
func DocumentID(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

func hasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
