package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	UI struct {
		Theme        string        `yaml:"theme"`
		WelcomeDelay time.Duration `yaml:"welcome_delay"`
	} `yaml:"ui"`
	Log struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
	Mock struct {
		Addr string `yaml:"addr"`
		// OllamaURL enables generated answers; empty means quote excerpts
		OllamaURL string `yaml:"ollama_url"`
		Model     string `yaml:"model"`
	} `yaml:"mock"`

	path string
}

// Environment variables that override the config file.
const (
	EnvAPIURL   = "PDFCHAT_API_URL"
	EnvTheme    = "PDFCHAT_THEME"
	EnvLogLevel = "PDFCHAT_LOG_LEVEL"
)

// Dir returns the per-user configuration directory
func Dir() string {
	return filepath.Join(os.Getenv("HOME"), ".pdfchat")
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load loads configuration from path (or the default location when empty),
// then applies .env and environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	cfg.path = path

	// .env is optional
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		c.UI.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// fillDefaults restores defaults for keys a config file blanked out
func (c *Config) fillDefaults() {
	d := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.WelcomeDelay < 0 {
		c.UI.WelcomeDelay = 0
	}
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Mock.Addr == "" {
		c.Mock.Addr = d.Mock.Addr
	}
}

// Path returns the file this config was loaded from
func (c *Config) Path() string {
	if c.path == "" {
		return DefaultPath()
	}
	return c.path
}

// Save saves configuration to file
func (c *Config) Save() error {
	path := c.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.API.BaseURL = "http://localhost:5000"
	cfg.UI.Theme = "midnight"
	cfg.UI.WelcomeDelay = time.Second
	cfg.Log.File = filepath.Join(Dir(), "pdfchat.log")
	cfg.Log.Level = "info"
	cfg.Mock.Addr = ":5000"

	return cfg
}
