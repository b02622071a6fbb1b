// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all quickdial configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Catalog Catalog `yaml:"catalog"`
	Dial    Dial    `yaml:"dial"`
	UI      UI      `yaml:"ui"`
	Log     Log     `yaml:"log"`
}

// Storage selects the durable key-value backend.
type Storage struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "memory"
	Path    string `yaml:"path"`    // File or database path; unused by memory
}

// Catalog locates the contact roster.
type Catalog struct {
	Path string `yaml:"path"` // .yaml or .toml; empty uses ./contacts/contacts.yaml, else the built-in roster
}

// Dial configures how dial intents reach the platform.
type Dial struct {
	Command string `yaml:"command"` // Opener command; empty uses the platform default
}

// UI holds the static screen text and display settings.
type UI struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Footer      string `yaml:"footer"`
	PhoneFormat string `yaml:"phone_format"` // "raw" | "digits"
	AltScreen   bool   `yaml:"alt_screen"`
}

// Log configures the diagnostic log file.
type Log struct {
	Path  string `yaml:"path"`  // Empty discards logs
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// StateDir returns the per-user directory for durable state.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "quickdial")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quickdial"
	}
	return filepath.Join(home, ".local", "state", "quickdial")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			Backend: "file",
			Path:    filepath.Join(StateDir(), "state.json"),
		},
		UI: UI{
			Title:       "Quick Dial",
			Subtitle:    "Pick the active driver, or call anyone on the list.",
			Footer:      "Calls are placed by your phone app.",
			PhoneFormat: "raw",
			AltScreen:   true,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path cannot be empty for backend %q", c.Storage.Backend)
		}
	case "memory":
	default:
		return fmt.Errorf("config: storage.backend must be \"file\", \"sqlite\" or \"memory\", got %q", c.Storage.Backend)
	}
	switch c.UI.PhoneFormat {
	case "", "raw", "digits":
		// valid
	default:
		return fmt.Errorf("config: ui.phone_format must be \"raw\" or \"digits\", got %q", c.UI.PhoneFormat)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: log.level must be debug, info, warn or error, got %q", s)
	}
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: QUICKDIAL_STORAGE_BACKEND, QUICKDIAL_STORAGE_PATH,
// QUICKDIAL_CATALOG, QUICKDIAL_DIAL_COMMAND, QUICKDIAL_PHONE_FORMAT,
// QUICKDIAL_LOG_PATH, QUICKDIAL_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("QUICKDIAL_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("QUICKDIAL_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("QUICKDIAL_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("QUICKDIAL_DIAL_COMMAND"); v != "" {
		c.Dial.Command = v
	}
	if v := os.Getenv("QUICKDIAL_PHONE_FORMAT"); v != "" {
		c.UI.PhoneFormat = v
	}
	if v := os.Getenv("QUICKDIAL_LOG_PATH"); v != "" {
		c.Log.Path = v
	}
	if v := os.Getenv("QUICKDIAL_LOG_LEVEL"); v != "" {
		if _, err := ParseLevel(v); err != nil {
			return fmt.Errorf("config: invalid QUICKDIAL_LOG_LEVEL %q: %w", v, err)
		}
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage *rawStorage `yaml:"storage"`
	Catalog *rawCatalog `yaml:"catalog"`
	Dial    *rawDial    `yaml:"dial"`
	UI      *rawUI      `yaml:"ui"`
	Log     *rawLog     `yaml:"log"`
}

type rawStorage struct {
	Backend *string `yaml:"backend"`
	Path    *string `yaml:"path"`
}

type rawCatalog struct {
	Path *string `yaml:"path"`
}

type rawDial struct {
	Command *string `yaml:"command"`
}

type rawUI struct {
	Title       *string `yaml:"title"`
	Subtitle    *string `yaml:"subtitle"`
	Footer      *string `yaml:"footer"`
	PhoneFormat *string `yaml:"phone_format"`
	AltScreen   *bool   `yaml:"alt_screen"`
}

type rawLog struct {
	Path  *string `yaml:"path"`
	Level *string `yaml:"level"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Storage != nil {
		setString(&c.Storage.Backend, layer.Storage.Backend)
		setString(&c.Storage.Path, layer.Storage.Path)
	}
	if layer.Catalog != nil {
		setString(&c.Catalog.Path, layer.Catalog.Path)
	}
	if layer.Dial != nil {
		setString(&c.Dial.Command, layer.Dial.Command)
	}
	if layer.UI != nil {
		setString(&c.UI.Title, layer.UI.Title)
		setString(&c.UI.Subtitle, layer.UI.Subtitle)
		setString(&c.UI.Footer, layer.UI.Footer)
		setString(&c.UI.PhoneFormat, layer.UI.PhoneFormat)
		if layer.UI.AltScreen != nil {
			c.UI.AltScreen = *layer.UI.AltScreen
		}
	}
	if layer.Log != nil {
		setString(&c.Log.Path, layer.Log.Path)
		setString(&c.Log.Level, layer.Log.Level)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
