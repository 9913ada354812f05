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

// Package seed loads pre-approved concepts from YAML.
//
// Expected format:
//
//	concepts:
//	  - key: GREEN_STATUS
//	    label: Green status
//	    criticality: critical
//	    aliases:
//	      - alias: green
//	        scope: {team: qa}
//	    definitions:
//	      - definition: All release gates passed.
//	        confidence: 0.9
//	        validFrom: 2026-01-01T00:00:00Z
//	    relationships:
//	      - type: implies
//	        to: RELEASE_GATE
//
// Keys are uppercased and aliases normalized. Relationships may point at any
// concept in the same document or already in the store.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/poiesic/termgraph/core"
	"github.com/poiesic/termgraph/storage"
	"github.com/poiesic/termgraph/terms"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownConcept is returned when a relationship targets a concept
	// that is neither seeded nor stored.
	ErrUnknownConcept = errors.New("unknown concept")

	// ErrInvalidDocument is returned when a seed document is malformed.
	ErrInvalidDocument = errors.New("invalid seed document")
)

// DefaultSeedAuthor is recorded as DefinedBy when a concept names none.
const DefaultSeedAuthor = "seed"

// Document is the root of a seed file.
type Document struct {
	Concepts []Concept `yaml:"concepts"`
}

// Concept is one seeded concept with everything attached to it.
type Concept struct {
	Key           string             `yaml:"key"`
	Label         string             `yaml:"label"`
	Description   string             `yaml:"description"`
	Status        core.ConceptStatus `yaml:"status"`
	Criticality   core.Criticality   `yaml:"criticality"`
	DefinedBy     string             `yaml:"definedBy"`
	Aliases       []Alias            `yaml:"aliases"`
	Definitions   []Definition       `yaml:"definitions"`
	Relationships []Relationship     `yaml:"relationships"`
}

// Alias is a seeded surface form.
type Alias struct {
	Alias      string     `yaml:"alias"`
	Scope      core.Scope `yaml:"scope"`
	Confidence *float64   `yaml:"confidence"`
	ValidFrom  time.Time  `yaml:"validFrom"`
	ValidTo    time.Time  `yaml:"validTo"`
}

// Definition is a seeded definition version. Version defaults to the
// position in the list, starting at 1.
type Definition struct {
	Version          int                   `yaml:"version"`
	Definition       string                `yaml:"definition"`
	Status           core.DefinitionStatus `yaml:"status"`
	Confidence       *float64              `yaml:"confidence"`
	Scope            core.Scope            `yaml:"scope"`
	ValidFrom        time.Time             `yaml:"validFrom"`
	ValidTo          time.Time             `yaml:"validTo"`
	SourceDocumentId string                `yaml:"sourceDocumentId"`
}

// Relationship is a seeded edge to the concept keyed To.
type Relationship struct {
	Type      string                  `yaml:"type"`
	To        string                  `yaml:"to"`
	Status    core.RelationshipStatus `yaml:"status"`
	Scope     core.Scope              `yaml:"scope"`
	ValidFrom time.Time               `yaml:"validFrom"`
	ValidTo   time.Time               `yaml:"validTo"`
}

// Stats counts what Apply wrote. Skipped counts aliases and definitions
// that already existed.
type Stats struct {
	Concepts      int
	Aliases       int
	Definitions   int
	Relationships int
	Skipped       int
}

// Load reads a seed document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a seed document. Unknown fields are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	for i, c := range doc.Concepts {
		if strings.TrimSpace(c.Key) == "" {
			return nil, fmt.Errorf("%w: concept %d has no key", ErrInvalidDocument, i)
		}
	}
	return &doc, nil
}

// Apply writes doc into repo in one transaction. Concepts, aliases and
// definitions are written first so relationships can reference any concept
// of the document. Applying the same document twice is idempotent; existing
// aliases and definitions are counted as skipped.
func Apply(ctx context.Context, repo storage.ConceptRepository, doc *Document) (*Stats, error) {
	stats := &Stats{}
	err := repo.WithTransaction(ctx, func(ctx context.Context) error {
		*stats = Stats{}
		ids := make(map[string]core.ID, len(doc.Concepts))
		for _, c := range doc.Concepts {
			concept, err := applyConcept(ctx, repo, c, stats)
			if err != nil {
				return err
			}
			ids[concept.Key] = concept.Id
		}

		for _, c := range doc.Concepts {
			from := ids[strings.ToUpper(strings.TrimSpace(c.Key))]
			for _, r := range c.Relationships {
				to, err := resolveKey(ctx, repo, ids, r.To)
				if err != nil {
					return err
				}
				status := r.Status
				if status == "" {
					status = core.RelationshipStatusApproved
				}
				_, err = repo.AddRelationship(ctx, &core.Relationship{
					FromConceptId: from,
					ToConceptId:   to,
					RelationType:  r.Type,
					Scope:         r.Scope,
					Window:        core.Window{ValidFrom: r.ValidFrom, ValidTo: r.ValidTo},
					Status:        status,
				})
				if err != nil {
					return err
				}
				stats.Relationships++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func applyConcept(ctx context.Context, repo storage.ConceptRepository, c Concept, stats *Stats) (*core.Concept, error) {
	status := c.Status
	if status == "" {
		status = core.ConceptStatusApproved
	}
	criticality := c.Criticality
	if criticality == "" {
		criticality = core.CriticalityNormal
	}
	definedBy := c.DefinedBy
	if definedBy == "" {
		definedBy = DefaultSeedAuthor
	}
	key := strings.ToUpper(strings.TrimSpace(c.Key))
	label := c.Label
	if label == "" {
		label = key
	}

	concept, err := repo.UpsertConcept(ctx, &core.Concept{
		Key:         key,
		Label:       label,
		Description: c.Description,
		Status:      status,
		Criticality: criticality,
		DefinedBy:   definedBy,
		ApprovedBy:  definedBy,
	})
	if err != nil {
		return nil, err
	}
	stats.Concepts++

	for _, a := range c.Aliases {
		_, err := repo.AddAlias(ctx, &core.ConceptAlias{
			ConceptId:       concept.Id,
			Alias:           a.Alias,
			AliasNormalized: terms.Normalize(a.Alias),
			Scope:           a.Scope,
			Status:          core.AliasStatusActive,
			Confidence:      valueOr(a.Confidence, 1),
			Window:          core.Window{ValidFrom: a.ValidFrom, ValidTo: a.ValidTo},
		})
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			stats.Skipped++
		case err != nil:
			return nil, err
		default:
			stats.Aliases++
		}
	}

	for i, d := range c.Definitions {
		version := d.Version
		if version == 0 {
			version = i + 1
		}
		status := d.Status
		if status == "" {
			status = core.DefinitionStatusApproved
		}
		_, err := repo.AddDefinitionVersion(ctx, &core.DefinitionVersion{
			ConceptId:        concept.Id,
			Version:          version,
			Definition:       strings.TrimSpace(d.Definition),
			Status:           status,
			Confidence:       valueOr(d.Confidence, 1),
			Scope:            d.Scope,
			Window:           core.Window{ValidFrom: d.ValidFrom, ValidTo: d.ValidTo},
			SourceDocumentId: d.SourceDocumentId,
		})
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			stats.Skipped++
		case err != nil:
			return nil, err
		default:
			stats.Definitions++
		}
	}
	return concept, nil
}

func resolveKey(ctx context.Context, repo storage.ConceptRepository, ids map[string]core.ID, key string) (core.ID, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if id, ok := ids[key]; ok {
		return id, nil
	}
	concept, err := repo.FindConceptByKey(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownConcept, key)
	}
	if err != nil {
		return 0, err
	}
	return concept.Id, nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
