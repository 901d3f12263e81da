package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, 720, cfg.Browser.ViewportHeight)
	assert.Equal(t, float64(30000), cfg.Browser.TimeoutMs)
	assert.Equal(t, ":8690", cfg.Server.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: llama3-8b-8192
  base_url: http://localhost:8080/v1
browser:
  headless: false
  viewport_width: 1920
  viewport_height: 1080
  timeout_ms: 15000
server:
  addr: ":9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3-8b-8192", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:8080/v1", cfg.LLM.BaseURL)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
llm:
  api_key: file-key
  model: file-model
`)

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("TOURGUIDE_MODEL", "env-model")
	t.Setenv("TOURGUIDE_HEADLESS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "llm: [not a mapping")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsBadViewport(t *testing.T) {
	path := writeConfig(t, `
browser:
  viewport_width: -1
  viewport_height: 720
  timeout_ms: 30000
`)

	_, err := Load(path)
	assert.Error(t, err)
}
