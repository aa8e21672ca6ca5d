// Package config loads the nexus configuration file and resolves settings
// that can be overridden from the environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sokinpui/nexus/internal/gemini"
)

//go:embed default.toml
var defaultConfigTOML string

const (
	APIGemini = "gemini"
	APIOpenAI = "openai"
)

// Config represents the user's nexus configuration.
type Config struct {
	Gemini  GeminiConfig  `toml:"gemini"`
	Editor  EditorConfig  `toml:"editor"`
	Log     LogConfig     `toml:"log"`
	Replies RepliesConfig `toml:"replies"`
}

// GeminiConfig holds settings for the remote model.
type GeminiConfig struct {
	API             string  `toml:"api"`
	APIKey          string  `toml:"api_key"`
	Endpoint        string  `toml:"endpoint"`
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	TopK            int     `toml:"top_k"`
	TopP            float64 `toml:"top_p"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
}

// EditorConfig holds settings for the Neovim connection.
type EditorConfig struct {
	Address      string `toml:"address"`
	WriteOnApply bool   `toml:"write_on_apply"`
}

// LogConfig holds settings for the log file.
type LogConfig struct {
	File       string `toml:"file"`
	Verbose    bool   `toml:"verbose"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// RepliesConfig bounds how long and how many replies stay applicable.
type RepliesConfig struct {
	TTLMinutes int `toml:"ttl_minutes"`
	MaxEntries int `toml:"max_entries"`
}

// Dir returns the config directory path.
// Resolution order: $NEXUS_CONFIG_DIR > $XDG_CONFIG_HOME/nexus > ~/.config/nexus
func Dir() string {
	if dir := os.Getenv("NEXUS_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "nexus")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nexus-config")
	}
	return filepath.Join(home, ".config", "nexus")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// StateDir returns the directory for the log file.
// Resolution order: $XDG_STATE_HOME/nexus > ~/.local/state/nexus
func StateDir() string {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, "nexus")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nexus-state")
	}
	return filepath.Join(home, ".local", "state", "nexus")
}

// Default returns the configuration from the embedded default.toml.
func Default() *Config {
	var cfg Config
	if _, err := toml.Decode(defaultConfigTOML, &cfg); err != nil {
		panic("nexus: invalid embedded default.toml: " + err.Error())
	}
	return &cfg
}

// LoadEnv loads KEY=value pairs from the env file in the config directory.
// Variables already set in the environment win. A missing file is not an error.
func LoadEnv() error {
	err := godotenv.Load(filepath.Join(Dir(), "env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults replaces zero values a user may have written explicitly.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Gemini.API == "" {
		c.Gemini.API = d.Gemini.API
	}
	if c.Gemini.Endpoint == "" {
		c.Gemini.Endpoint = d.Gemini.Endpoint
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.Gemini.MaxOutputTokens <= 0 {
		c.Gemini.MaxOutputTokens = d.Gemini.MaxOutputTokens
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = d.Gemini.TimeoutSeconds
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = d.Log.MaxBackups
	}
	if c.Replies.TTLMinutes <= 0 {
		c.Replies.TTLMinutes = d.Replies.TTLMinutes
	}
	if c.Replies.MaxEntries <= 0 {
		c.Replies.MaxEntries = d.Replies.MaxEntries
	}
}

// Validate checks values that would make every request fail.
func (c *Config) Validate() error {
	switch c.Gemini.API {
	case APIGemini, APIOpenAI:
	default:
		return fmt.Errorf("unknown gemini.api %q (want %q or %q)", c.Gemini.API, APIGemini, APIOpenAI)
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("gemini.temperature must be between 0 and 2, got %v", c.Gemini.Temperature)
	}
	if c.Gemini.TopP < 0 || c.Gemini.TopP > 1 {
		return fmt.Errorf("gemini.top_p must be between 0 and 1, got %v", c.Gemini.TopP)
	}
	if c.Gemini.TopK < 0 {
		return fmt.Errorf("gemini.top_k must not be negative, got %d", c.Gemini.TopK)
	}
	return nil
}

// APIKey returns the API key.
// Priority: $NEXUS_API_KEY env > config value.
// It is resolved on every call so a key set later takes effect immediately.
func (c *Config) APIKey() string {
	if key := os.Getenv("NEXUS_API_KEY"); key != "" {
		return key
	}
	return c.Gemini.APIKey
}

// Model returns the model name.
// Priority: $NEXUS_MODEL env > config value.
func (c *Config) Model() string {
	if model := os.Getenv("NEXUS_MODEL"); model != "" {
		return model
	}
	return c.Gemini.Model
}

// EditorAddress returns the Neovim RPC address.
// Priority: config value > $NVIM > $NVIM_LISTEN_ADDRESS.
func (c *Config) EditorAddress() string {
	if c.Editor.Address != "" {
		return c.Editor.Address
	}
	if addr := os.Getenv("NVIM"); addr != "" {
		return addr
	}
	return os.Getenv("NVIM_LISTEN_ADDRESS")
}

// LogFile returns the log file path, defaulting to the state directory.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(StateDir(), "nexus.log")
}

// Generation returns the static sampling parameters for the remote model.
func (c *Config) Generation() gemini.GenerationConfig {
	return gemini.GenerationConfig{
		Temperature:     c.Gemini.Temperature,
		TopK:            c.Gemini.TopK,
		TopP:            c.Gemini.TopP,
		MaxOutputTokens: c.Gemini.MaxOutputTokens,
	}
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

// ReplyTTL returns how long a reply stays applicable.
func (c *Config) ReplyTTL() time.Duration {
	return time.Duration(c.Replies.TTLMinutes) * time.Minute
}

// NewGenerator returns the client selected by gemini.api.
func (c *Config) NewGenerator() gemini.Generator {
	if c.Gemini.API == APIOpenAI {
		endpoint := c.Gemini.Endpoint
		if endpoint == Default().Gemini.Endpoint {
			endpoint = gemini.DefaultOpenAIBaseURL
		}
		return gemini.NewOpenAI(endpoint, c.Model(), c.Generation(), c.Timeout())
	}
	return gemini.New(c.Gemini.Endpoint, c.Model(), c.Generation(), c.Timeout())
}
