package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/termgraph/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		configPathEnv, dbPathEnv, llmHostEnv, llmModelEnv, llmAPIKeyEnv,
		featureGraphEnv, featureRewriteEnv, featureStrictEnv, killSwitchEnv,
		ambiguityPolicyEnv, httpAddrEnv,
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "termgraph.db", cfg.Store.Path)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Health.CacheTTL)
	assert.False(t, cfg.Features.GraphExpansion)
	assert.False(t, cfg.Features.LLMRewrite)
	assert.False(t, cfg.Features.StrictGrounding)
	assert.False(t, cfg.Features.KillSwitch)
	assert.Equal(t, resolve.PolicyAsk, cfg.Features.Policy())
	assert.False(t, cfg.AIConfig().Enabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
store:
  path: /var/lib/termgraph
llm:
  model: gpt-4o-mini
  apiKey: from-file
  timeout: 5s
features:
  graphExpansion: true
  ambiguityPolicy: strict
http:
  addr: ":9000"
health:
  cacheTTL: 1m
`)
	t.Setenv(configPathEnv, path)
	t.Setenv(llmAPIKeyEnv, "from-env")
	t.Setenv(featureStrictEnv, "true")
	t.Setenv(httpAddrEnv, ":9100")

	cfg := Load()
	assert.Equal(t, "/var/lib/termgraph", cfg.Store.Path)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Features.GraphExpansion)
	assert.True(t, cfg.Features.StrictGrounding)
	assert.Equal(t, resolve.PolicyStrict, cfg.Features.Policy())
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, time.Minute, cfg.Health.CacheTTL)

	aiCfg := cfg.AIConfig()
	assert.True(t, aiCfg.Enabled())
	assert.Equal(t, "gpt-4o-mini", aiCfg.Model)
}

func TestLoad_BadFileFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, writeConfig(t, "store: [unclosed"))

	cfg := Load()
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(writeConfig(t, "features:\n  killSwitch: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Features.KillSwitch)
	assert.Equal(t, string(resolve.PolicyAsk), cfg.Features.AmbiguityPolicy)

	_, err = LoadFile(writeConfig(t, "store: [unclosed"))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvBool(t *testing.T) {
	clearEnv(t)

	flag := true
	t.Setenv(killSwitchEnv, "not-a-bool")
	envBool(killSwitchEnv, &flag)
	assert.True(t, flag)

	t.Setenv(killSwitchEnv, "0")
	envBool(killSwitchEnv, &flag)
	assert.False(t, flag)
}
