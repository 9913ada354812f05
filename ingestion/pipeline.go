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

package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/termgraph/storage"
)

// DefaultRetryDelay is the first backoff delay after a transaction conflict.
const DefaultRetryDelay = 50 * time.Millisecond

// Document is one text to mine.
type Document struct {
	Text     string
	Metadata Metadata
}

// DocumentResult reports the outcome of mining one document.
type DocumentResult struct {
	DocumentId string
	Inserted   int
	Err        error
}

// Pipeline mines documents concurrently.
type Pipeline struct {
	miner       *Miner
	pool        *ants.Pool
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithRetry sets how often a document upsert is attempted when it hits a
// transaction conflict. Default is 3 attempts starting at 50ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline around miner.
func NewPipeline(miner *Miner, opts ...Option) (*Pipeline, error) {
	if miner == nil {
		return nil, ErrMinerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		miner:       miner,
		pool:        pool,
		maxAttempts: 3,
		baseDelay:   DefaultRetryDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion-pipeline")
	return p, nil
}

// Ingest mines a single document, retrying transaction conflicts.
func (p *Pipeline) Ingest(ctx context.Context, doc Document) (int, error) {
	var inserted int
	err := RetryWithBackoff(ctx, func() error {
		var err error
		inserted, err = p.miner.IngestSlangCandidates(ctx, doc.Text, doc.Metadata)
		return err
	}, p.maxAttempts, p.baseDelay, func(err error) bool {
		return errors.Is(err, storage.ErrConflict)
	})
	return inserted, err
}

// IngestDocuments mines docs concurrently and waits for all of them.
// Results are in the order of docs. A failed document does not stop the
// others; its error is reported in its result.
func (p *Pipeline) IngestDocuments(ctx context.Context, docs []Document) []DocumentResult {
	results := make([]DocumentResult, len(docs))
	var wg sync.WaitGroup
	for i, doc := range docs {
		results[i].DocumentId = doc.Metadata.DocumentId
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			results[i].Inserted, results[i].Err = p.Ingest(ctx, doc)
			if results[i].Err != nil {
				p.logger.Error("error mining document", "document", doc.Metadata.DocumentId, "err", results[i].Err)
			}
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
		}
	}
	wg.Wait()
	return results
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
