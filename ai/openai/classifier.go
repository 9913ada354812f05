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

package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/termgraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxQueryRunes bounds the query text sent to the model.
const maxQueryRunes = 2000

var (
	firstObject = regexp.MustCompile(`(?s)\{.*\}`)
	validate    = validator.New()
)

// TermClassifier implements ai.TermClassifier using OpenAI-compatible chat APIs.
type TermClassifier struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// classification is the payload the model is asked to return.
type classification struct {
	Terms []string `json:"terms" validate:"required,min=1,dive,required"`
}

// newTermClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTermClassifier(config *ai.Config) (*TermClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Local OpenAI-compatible services accept any token
	token := config.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token),
		openai.WithModel(config.Model),
		openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	)
	if err != nil {
		return nil, err
	}

	return newTermClassifierWithModel(client, config.Temperature), nil
}

func newTermClassifierWithModel(client llms.Model, temperature float64) *TermClassifier {
	return &TermClassifier{
		client:      client,
		temperature: temperature,
		logger:      slog.Default().With("component", "openai-classifier"),
	}
}

// NewTermClassifier creates a new fallback classifier using the provided configuration.
//
// Returns ai.TermClassifier interface to enforce abstraction.
func NewTermClassifier(config *ai.Config) (ai.TermClassifier, error) {
	return newTermClassifier(config)
}

// ClassifyTerms asks the model for internal slang candidates in query.
// A single request is made; there is no retry.
func (c *TermClassifier) ClassifyTerms(ctx context.Context, query string) ([]string, error) {
	query = truncateRunes(strings.TrimSpace(query), maxQueryRunes)
	if query == "" {
		return []string{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(query)},
		},
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(c.temperature), llms.WithJSONMode())
	if err != nil {
		return nil, err
	}
	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model", "stage", ai.StageLLMFallback)
		return []string{}, nil
	}

	terms, err := parseClassification(response.Choices[0].Content)
	if err != nil {
		c.logger.Warn("no fallback terms found",
			"stage", ai.StageLLMFallback,
			"response", response.Choices[0].Content,
			"err", err)
		return []string{}, nil
	}

	c.logger.Debug("classified fallback terms", "count", len(terms))
	return terms, nil
}

// parseClassification extracts and validates the first JSON object in text.
// Blank, duplicate and overlong terms are dropped and at most
// ai.MaxFallbackTerms are returned.
func parseClassification(text string) ([]string, error) {
	raw := firstObject.FindString(stripCodeFence(text))
	if raw == "" {
		return nil, errNoJSONObject
	}

	var result classification
	if err := json.Unmarshal([]byte(repairJSON(raw)), &result); err != nil {
		return nil, err
	}
	if err := validate.Struct(result); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(result.Terms))
	terms := make([]string, 0, ai.MaxFallbackTerms)
	for _, term := range result.Terms {
		term = strings.TrimSpace(term)
		if term == "" || utf8.RuneCountInString(term) > ai.MaxTermLength || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
		if len(terms) == ai.MaxFallbackTerms {
			break
		}
	}
	return terms, nil
}
