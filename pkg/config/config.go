package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kelseyhightower/envconfig"

	"markan/pkg/errors"
	"markan/pkg/logging"
	"markan/pkg/paths"
)

// EnvPrefix prefixes every environment override. Keys are derived from the
// field names: MARKAN_APP_DATA_DIR, MARKAN_LOG_LEVEL, MARKAN_SERVER_TOKEN, ...
const EnvPrefix = "MARKAN"

// Config holds application configuration
type Config struct {
	// AppDataDir is the application's private directory. Everything below it
	// is always accessible.
	AppDataDir string `json:"appDataDir" split_words:"true"`
	// WorkspacePath is the last opened workspace, restored at startup.
	WorkspacePath   string         `json:"workspacePath" split_words:"true"`
	NoteExtensions  []string       `json:"noteExtensions" split_words:"true"`
	PathCase        string         `json:"pathCase" split_words:"true"`
	AutosaveSeconds int            `json:"autosaveSeconds" split_words:"true"`
	ListConcurrency int            `json:"listConcurrency" split_words:"true"`
	Log             logging.Config `json:"log"`
	Server          ServerConfig   `json:"server"`

	mu   sync.Mutex
	path string
}

// ServerConfig configures the headless HTTP transport.
type ServerConfig struct {
	Addr  string `json:"addr"`
	Token string `json:"-"`
}

// GetDefaultAppDataDir returns the per-user application data directory. It
// sits next to the config file, never around it, since the UI can write
// anywhere below it.
func GetDefaultAppDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(dir, "markan", "data")
}

// GetConfigFilePath returns the path where the config file should be stored
func GetConfigFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "config.json")
	}
	return filepath.Join(dir, "markan", "config.json")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AppDataDir:      GetDefaultAppDataDir(),
		NoteExtensions:  []string{".md", ".txt"},
		PathCase:        paths.CaseAuto,
		AutosaveSeconds: 10,
		ListConcurrency: 8,
		Log:             logging.DefaultConfig(),
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		path: GetConfigFilePath(),
	}
}

// Load reads the config file at its default location
func Load() (*Config, error) {
	return LoadFrom(GetConfigFilePath())
}

// LoadFrom builds the configuration from defaults, then the JSON file at
// path (if present), then MARKAN_* environment variables.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeConfig, errors.ErrConfigLoadFailed.Code, "parse config "+path).
				WithUserMessage(errors.ErrConfigLoadFailed.GetUserMessage())
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrap(err, errors.ErrTypeConfig, errors.ErrConfigLoadFailed.Code, "read config "+path).
			WithUserMessage(errors.ErrConfigLoadFailed.GetUserMessage())
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if paths.Normalize(c.AppDataDir) == "" {
		return fmt.Errorf("app data directory %q cannot be resolved", c.AppDataDir)
	}
	if _, err := paths.ParseCase(c.PathCase); err != nil {
		return err
	}
	if file := paths.Normalize(c.path); file != "" && c.Matcher().IsInside(file, paths.Normalize(c.AppDataDir)) {
		return fmt.Errorf("config file %s must not be inside the app data directory %s", c.path, c.AppDataDir)
	}
	if c.AutosaveSeconds <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %d", c.AutosaveSeconds)
	}
	if c.ListConcurrency <= 0 {
		return fmt.Errorf("list concurrency must be positive, got %d", c.ListConcurrency)
	}
	return nil
}

// Matcher returns the path comparison rules selected by PathCase.
func (c *Config) Matcher() paths.Matcher {
	m, err := paths.ParseCase(c.PathCase)
	if err != nil {
		return paths.HostMatcher()
	}
	return m
}

// Path returns the file the configuration is saved to.
func (c *Config) Path() string {
	return c.path
}

// Save saves the configuration to file
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save()
}

func (c *Config) save() error {
	if c.path == "" {
		c.path = GetConfigFilePath()
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// SaveWorkspace records dir as the last opened workspace and saves.
func (c *Config) SaveWorkspace(dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WorkspacePath = dir
	return c.save()
}
