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

// Package config loads process-wide settings and feature flags.
//
// Settings come from an optional YAML file named by TERMGRAPH_CONFIG,
// then from environment variables, which win over the file. Every feature
// flag is off unless set.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/termgraph/ai"
	"github.com/poiesic/termgraph/resolve"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "TERMGRAPH_CONFIG"
	dbPathEnv          = "TERMGRAPH_DB_PATH"
	llmHostEnv         = "TERMGRAPH_LLM_HOST"
	llmModelEnv        = "TERMGRAPH_LLM_MODEL"
	llmAPIKeyEnv       = "TERMGRAPH_LLM_API_KEY"
	featureGraphEnv    = "TERMGRAPH_FEATURE_GRAPH"
	featureRewriteEnv  = "TERMGRAPH_FEATURE_REWRITE"
	featureStrictEnv   = "TERMGRAPH_FEATURE_STRICT"
	killSwitchEnv      = "TERMGRAPH_KILL_SWITCH"
	ambiguityPolicyEnv = "TERMGRAPH_AMBIGUITY_POLICY"
	httpAddrEnv        = "TERMGRAPH_HTTP_ADDR"
)

// Config holds every setting of a termgraph process.
type Config struct {
	Store    StoreConfig  `yaml:"store"`
	LLM      LLMConfig    `yaml:"llm"`
	Features FeatureFlags `yaml:"features"`
	HTTP     HTTPConfig   `yaml:"http"`
	Health   HealthConfig `yaml:"health"`
	Ingest   IngestConfig `yaml:"ingest"`
}

// StoreConfig locates the Badger database.
type StoreConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"inMemory"`
}

// LLMConfig describes the OpenAI-compatible service used by the fallback
// classifier. The classifier is disabled without an API key.
type LLMConfig struct {
	Host        string        `yaml:"host"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// FeatureFlags gate optional query flow behavior.
type FeatureFlags struct {
	GraphExpansion  bool   `yaml:"graphExpansion"`
	LLMRewrite      bool   `yaml:"llmRewrite"`
	StrictGrounding bool   `yaml:"strictGrounding"`
	KillSwitch      bool   `yaml:"killSwitch"`
	AmbiguityPolicy string `yaml:"ambiguityPolicy"`
}

// Policy returns the configured ambiguity policy, ask when unset.
func (f FeatureFlags) Policy() resolve.Policy {
	return resolve.ParsePolicy(f.AmbiguityPolicy)
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// HealthConfig configures the store health checker.
type HealthConfig struct {
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// IngestConfig sizes the ingestion worker pool.
type IngestConfig struct {
	Workers     int `yaml:"workers"`
	MaxAttempts int `yaml:"maxAttempts"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	llm := ai.DefaultConfig()
	return Config{
		Store: StoreConfig{Path: "termgraph.db"},
		LLM: LLMConfig{
			Host:        llm.Host,
			Model:       llm.Model,
			Temperature: llm.Temperature,
			Timeout:     llm.Timeout,
		},
		Features: FeatureFlags{AmbiguityPolicy: string(resolve.PolicyAsk)},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Health:   HealthConfig{CacheTTL: 30 * time.Second},
		Ingest:   IngestConfig{Workers: 4, MaxAttempts: 3},
	}
}

// Load reads the file named by TERMGRAPH_CONFIG, if any, and applies
// environment overrides. An unreadable or malformed file is logged and
// ignored.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			slog.Warn("config file ignored, falling back to defaults", "path", path, "err", err)
		} else {
			cfg = merge(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFile reads path strictly and applies environment overrides.
func LoadFile(path string) (Config, error) {
	fileCfg, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := merge(Default(), fileCfg)
	cfg.applyEnvOverrides()
	return cfg, nil
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return cfg, nil
}

// AIConfig converts the LLM section for ai/openai.
func (c Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.LLM.Host),
		ai.WithModel(c.LLM.Model),
		ai.WithAPIKey(c.LLM.APIKey),
		ai.WithTemperature(c.LLM.Temperature),
		ai.WithTimeout(c.LLM.Timeout),
	)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbPathEnv); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(llmHostEnv); v != "" {
		c.LLM.Host = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	envBool(featureGraphEnv, &c.Features.GraphExpansion)
	envBool(featureRewriteEnv, &c.Features.LLMRewrite)
	envBool(featureStrictEnv, &c.Features.StrictGrounding)
	envBool(killSwitchEnv, &c.Features.KillSwitch)
	if v := os.Getenv(ambiguityPolicyEnv); v != "" {
		c.Features.AmbiguityPolicy = v
	}
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
}

// envBool sets *dst from a boolean environment variable. Unparseable values
// leave *dst unchanged.
func envBool(name string, dst *bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("ignoring invalid boolean", "env", name, "value", v)
		return
	}
	*dst = b
}

// merge overlays the set fields of override onto base. Feature flags are
// taken from the file as they stand.
func merge(base, override Config) Config {
	if override.Store.Path != "" {
		base.Store.Path = override.Store.Path
	}
	if override.Store.InMemory {
		base.Store.InMemory = true
	}

	if override.LLM.Host != "" {
		base.LLM.Host = override.LLM.Host
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.Temperature != 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}

	policy := base.Features.AmbiguityPolicy
	base.Features = override.Features
	if base.Features.AmbiguityPolicy == "" {
		base.Features.AmbiguityPolicy = policy
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.Health.CacheTTL > 0 {
		base.Health.CacheTTL = override.Health.CacheTTL
	}
	if override.Ingest.Workers > 0 {
		base.Ingest.Workers = override.Ingest.Workers
	}
	if override.Ingest.MaxAttempts > 0 {
		base.Ingest.MaxAttempts = override.Ingest.MaxAttempts
	}
	return base
}
