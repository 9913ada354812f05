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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/termgraph/backfill"
	"github.com/poiesic/termgraph/ingestion"
	"github.com/poiesic/termgraph/seed"
	"github.com/urfave/cli/v2"
)

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:   "ingest",
		Usage:  "Mine one document for term candidates",
		Action: ingestAction,
		Flags: append(scopeFlags(),
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Document to mine; reads stdin when omitted",
			},
			&cli.StringFlag{
				Name:  "doc-id",
				Usage: "Document identifier recorded on candidates (default: the file path)",
			},
			&cli.StringFlag{
				Name:  "author",
				Usage: "Author recorded on candidates",
			},
			&cli.StringFlag{
				Name:  "source-type",
				Usage: "Source type recorded on candidates",
				Value: ingestion.DefaultSourceType,
			},
		),
	}
}

func ingestAction(c *cli.Context) error {
	var (
		data []byte
		err  error
	)
	docID := c.String("doc-id")
	if path := c.String("file"); path != "" {
		data, err = os.ReadFile(path)
		if docID == "" {
			docID = path
		}
	} else {
		data, err = io.ReadAll(c.App.Reader)
	}
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	inserted, err := pipeline.Ingest(c.Context, ingestion.Document{
		Text: string(data),
		Metadata: ingestion.Metadata{
			DocumentId: docID,
			Author:     c.String("author"),
			SourceType: c.String("source-type"),
			Scope:      scopeFromFlags(c),
		},
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%d new candidates\n", inserted)
	return nil
}

func backfillCommand() *cli.Command {
	return &cli.Command{
		Name:   "backfill",
		Usage:  "Mine every .txt and .md file under a directory",
		Action: backfillAction,
		Flags: append(scopeFlags(),
			&cli.StringFlag{
				Name:     "dir",
				Usage:    "Directory to walk",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "author",
				Usage: "Author recorded on candidates",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of documents mined per batch",
				Value: backfill.DefaultBatchSize,
			},
			&cli.IntFlag{
				Name:  "report-interval",
				Usage: "Report progress every N documents",
				Value: 10,
			},
		),
	}
}

func backfillAction(c *cli.Context) error {
	if c.Int("batch-size") <= 0 {
		return errors.New("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return errors.New("report-interval must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	cfg := backfill.DefaultConfig()
	cfg.BatchSize = c.Int("batch-size")
	cfg.ReportInterval = c.Int("report-interval")
	cfg.Author = c.String("author")
	cfg.Scope = scopeFromFlags(c)

	runner, err := db.NewBackfillRunner(pipeline, cfg, c.App.ErrWriter)
	if err != nil {
		return err
	}
	summary, err := runner.Run(c.Context, c.String("dir"))
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d documents could not be mined", len(summary.Failed))
	}
	return nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Load approved concepts from a YAML file",
		ArgsUsage: "<file.yaml>",
		Action:    seedAction,
	}
}

func seedAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("seed file is required")
	}
	doc, err := seed.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := seed.Apply(c.Context, db.ConceptRepository(), doc)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "concepts: %d, aliases: %d, definitions: %d, relationships: %d, skipped: %d\n",
		stats.Concepts, stats.Aliases, stats.Definitions, stats.Relationships, stats.Skipped)
	return nil
}
