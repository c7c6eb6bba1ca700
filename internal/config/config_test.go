package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests mutate process env, so none of them run in parallel.

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Gemini.Model)
	assert.Equal(t, 30, cfg.Extraction.TimeoutSeconds)
	assert.Contains(t, cfg.Extraction.PaywalledDomains, "nytimes.com")
	assert.Equal(t, 5.0, cfg.Digest.DailyCostLimitUSD)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
server:
  port: "9090"
extraction:
  timeoutSeconds: 45
digest:
  dailyCostLimitUsd: 2.5
`), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 45, cfg.Extraction.TimeoutSeconds)
	assert.Equal(t, 2.5, cfg.Digest.DailyCostLimitUSD)
	// Untouched sections keep their defaults.
	assert.Equal(t, "gemini-3-flash-preview", cfg.Gemini.Model)
	assert.NotEmpty(t, cfg.Extraction.PaywalledDomains)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
slack:
  botToken: file-token
gemini:
  model: file-model
`), 0o600))
	t.Setenv(configPathEnv, path)
	t.Setenv(slackBotTokenEnv, "env-token")
	t.Setenv(geminiModelEnv, "env-model")
	t.Setenv(portEnv, "7070")

	cfg := Load()
	assert.Equal(t, "env-token", cfg.Slack.BotToken)
	assert.Equal(t, "env-model", cfg.Gemini.Model)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
}
