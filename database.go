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

// Package termgraph wires the concept store, the query flow, the candidate
// miner and the review workflow into one handle.
package termgraph

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/termgraph/ai"
	"github.com/poiesic/termgraph/ai/openai"
	"github.com/poiesic/termgraph/backfill"
	"github.com/poiesic/termgraph/config"
	"github.com/poiesic/termgraph/health"
	"github.com/poiesic/termgraph/httpapi"
	"github.com/poiesic/termgraph/ingestion"
	"github.com/poiesic/termgraph/queryflow"
	"github.com/poiesic/termgraph/resolve"
	"github.com/poiesic/termgraph/review"
	"github.com/poiesic/termgraph/storage"
	"github.com/poiesic/termgraph/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Database owns the store and the process-wide services built on it.
type Database struct {
	repos       *badger.Repositories
	provider    ai.AIProvider
	classifier  ai.TermClassifier
	registry    *prometheus.Registry
	flowMetrics *queryflow.Metrics
	mineMetrics *ingestion.Metrics
	httpMetrics *httpapi.Metrics
	healthCache *health.Cache
	settings    config.Config
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	classifier ai.TermClassifier
	inMemory   bool
	settings   config.Config
}

// WithAIConfig configures the fallback classifier. It is only built when
// the config carries an API key.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithClassifier installs a fallback classifier directly, bypassing
// WithAIConfig.
func WithClassifier(classifier ai.TermClassifier) DatabaseOption {
	return func(o *databaseOptions) {
		o.classifier = classifier
	}
}

// WithInMemory keeps the store in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithSettings supplies feature flags and tuning loaded by package config.
func WithSettings(cfg config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.settings = cfg
	}
}

// NewDatabase opens the store at filePath and builds the shared services.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{settings: config.Default()}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}
	repos, err := badger.NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	db := &Database{
		repos:       repos,
		classifier:  options.classifier,
		registry:    prometheus.NewRegistry(),
		healthCache: &health.Cache{},
		settings:    options.settings,
		logger:      slog.Default(),
	}

	if db.classifier == nil && options.aiConfig.Enabled() {
		provider, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
		db.provider = provider
		db.classifier = provider.TermClassifier()
	}

	db.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	db.flowMetrics = queryflow.NewMetrics(db.registry)
	db.mineMetrics = ingestion.NewMetrics(db.registry)
	db.httpMetrics = httpapi.NewMetrics(db.registry)
	return db, nil
}

// Open builds a Database from loaded settings.
func Open(cfg config.Config) (*Database, error) {
	opts := []DatabaseOption{WithSettings(cfg), WithAIConfig(cfg.AIConfig())}
	if cfg.Store.InMemory {
		opts = append(opts, WithInMemory())
	}
	return NewDatabase(cfg.Store.Path, opts...)
}

// Close releases the classifier and the store.
func (db *Database) Close() error {
	var errs []error
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) ConceptRepository() storage.ConceptRepository {
	return db.repos.Concepts
}

func (db *Database) CandidateRepository() storage.CandidateRepository {
	return db.repos.Candidates
}

func (db *Database) ReviewRepository() storage.ReviewRepository {
	return db.repos.Reviews
}

// Registry gathers every metric the services record.
func (db *Database) Registry() *prometheus.Registry {
	return db.registry
}

// Settings returns the configuration the database was opened with.
func (db *Database) Settings() config.Config {
	return db.settings
}

func (db *Database) NewResolver(opts ...resolve.Option) (*resolve.Resolver, error) {
	return resolve.NewResolver(db.repos.Concepts, opts...)
}

// NewQueryFlow builds a query flow with the configured classifier and
// metrics. Options are applied after those defaults.
func (db *Database) NewQueryFlow(opts ...queryflow.Option) (*queryflow.Flow, error) {
	resolver, err := db.NewResolver()
	if err != nil {
		return nil, err
	}
	base := []queryflow.Option{queryflow.WithMetrics(db.flowMetrics)}
	if db.classifier != nil {
		base = append(base, queryflow.WithClassifier(db.classifier))
	}
	return queryflow.NewFlow(resolver, append(base, opts...)...)
}

// QueryRequest fills the switches of a request from the feature flags.
func (db *Database) QueryRequest(query string) queryflow.Request {
	f := db.settings.Features
	return queryflow.Request{
		Query:           query,
		AmbiguityPolicy: f.Policy(),
		RewriteEnabled:  f.LLMRewrite,
		GraphEnabled:    f.GraphExpansion,
		StrictGrounding: f.StrictGrounding,
	}
}

func (db *Database) NewMiner(opts ...ingestion.MinerOption) (*ingestion.Miner, error) {
	return ingestion.NewMiner(db.repos.Candidates, append([]ingestion.MinerOption{ingestion.WithMetrics(db.mineMetrics)}, opts...)...)
}

// NewIngestionPipeline builds a pipeline sized from the ingest settings.
// The caller must Release it.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	miner, err := db.NewMiner()
	if err != nil {
		return nil, err
	}
	base := []ingestion.Option{}
	if n := db.settings.Ingest.Workers; n > 0 {
		base = append(base, ingestion.WithPoolSize(n))
	}
	if n := db.settings.Ingest.MaxAttempts; n > 0 {
		base = append(base, ingestion.WithRetry(n, ingestion.DefaultRetryDelay))
	}
	return ingestion.NewPipeline(miner, append(base, opts...)...)
}

func (db *Database) NewReviewService(opts ...review.Option) (*review.Service, error) {
	return review.NewService(db.repos.Concepts, db.repos.Candidates, db.repos.Reviews, opts...)
}

// NewHealthChecker builds a checker sharing the database's result cache.
func (db *Database) NewHealthChecker(opts ...health.Option) (*health.Checker, error) {
	base := []health.Option{health.WithTTL(db.settings.Health.CacheTTL)}
	return health.NewChecker(db.repos.Backend, db.healthCache, append(base, opts...)...)
}

// NewBackfillRunner builds a runner over pipeline.
func (db *Database) NewBackfillRunner(pipeline *ingestion.Pipeline, cfg *backfill.Config, progress io.Writer) (*backfill.Runner, error) {
	return backfill.NewRunner(pipeline, cfg, progress)
}

// NewRouter builds the HTTP API over every service. The returned release
// func frees the ingestion pipeline.
func (db *Database) NewRouter() (*gin.Engine, func(), error) {
	flow, err := db.NewQueryFlow()
	if err != nil {
		return nil, nil, err
	}
	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return nil, nil, err
	}
	reviews, err := db.NewReviewService()
	if err != nil {
		pipeline.Release()
		return nil, nil, err
	}
	checker, err := db.NewHealthChecker()
	if err != nil {
		pipeline.Release()
		return nil, nil, err
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Flow:     flow,
		Pipeline: pipeline,
		Review:   reviews,
		Health:   checker,
		Features: db.settings.Features,
		Gatherer: db.registry,
		Metrics:  db.httpMetrics,
		Logger:   db.logger,
	})
	return router, pipeline.Release, nil
}
