// Package config loads tourguide configuration from a YAML file with
// environment variable overrides. The file lives at
// ~/.tourguide/config.yaml by default; a missing file is not an error
// and yields the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LLMConfig configures the completion provider. An empty APIKey is a
// first-class condition: the engine runs with deterministic narration
// fallbacks instead of calling the provider.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// BrowserConfig configures launched browser sessions.
type BrowserConfig struct {
	Headless       bool    `yaml:"headless"`
	ViewportWidth  int     `yaml:"viewport_width"`
	ViewportHeight int     `yaml:"viewport_height"`
	TimeoutMs      float64 `yaml:"timeout_ms"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the root configuration document.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Browser BrowserConfig `yaml:"browser"`
	Server  ServerConfig  `yaml:"server"`
}

// Default returns the built-in configuration. Viewport and timeout
// defaults match the browser runtime's expectations (1280x720, 30s).
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Model:       "gpt-4o",
			Temperature: 0.7,
		},
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
			TimeoutMs:      30000,
		},
		Server: ServerConfig{
			Addr: ":8690",
		},
	}
}

// DefaultPath returns ~/.tourguide/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tourguide", "config.yaml"), nil
}

// Load reads the config file at path, merges it over the defaults, and
// applies environment overrides. If path is empty the default path is
// used. A missing file yields the defaults with overrides applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnvOverrides layers environment variables over file values.
// OPENAI_* variables follow the convention of OpenAI-compatible
// tooling; TOURGUIDE_* variables are specific to this application.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("TOURGUIDE_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TOURGUIDE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TOURGUIDE_HEADLESS"); v != "" {
		if headless, err := strconv.ParseBool(v); err == nil {
			cfg.Browser.Headless = headless
		}
	}
}

func (c Config) validate() error {
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("browser viewport dimensions must be positive, got %dx%d",
			c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	if c.Browser.TimeoutMs <= 0 {
		return fmt.Errorf("browser timeout_ms must be positive, got %v", c.Browser.TimeoutMs)
	}
	return nil
}
