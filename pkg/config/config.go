// Package config loads the optional mvvm.yaml configuration and its
// MVVM_* environment overrides.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/mvvm/pkg/dispatch"
	"github.com/go-drift/mvvm/pkg/errors"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "mvvm.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MVVM_"

// Duplicate view registration policies.
const (
	DuplicatesReject  = "reject"
	DuplicatesReplace = "replace"
)

// Config represents the optional mvvm.yaml configuration.
type Config struct {
	App      AppConfig      `yaml:"app" envPrefix:"APP_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Views    ViewsConfig    `yaml:"views" envPrefix:"VIEWS_"`
	Dispatch DispatchConfig `yaml:"dispatch" envPrefix:"DISPATCH_"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty" env:"NAME"`
}

// LogConfig controls logging and error reporting.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level,omitempty" env:"LEVEL"`
	// Verbose adds stack traces to reported errors.
	Verbose bool `yaml:"verbose,omitempty" env:"VERBOSE"`
}

// ViewsConfig controls the view registry.
type ViewsConfig struct {
	// Duplicates is DuplicatesReject or DuplicatesReplace.
	Duplicates string `yaml:"duplicates,omitempty" env:"DUPLICATES"`
}

// DispatchConfig controls the dispatch queue.
type DispatchConfig struct {
	QueueSize int `yaml:"queue_size,omitempty" env:"QUEUE_SIZE"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		App:      AppConfig{Name: "mvvm_app"},
		Log:      LogConfig{Level: "info"},
		Views:    ViewsConfig{Duplicates: DuplicatesReject},
		Dispatch: DispatchConfig{QueueSize: dispatch.DefaultQueueSize},
	}
}

// LoadOptional reads mvvm.yaml from dir if present. A missing file yields an
// empty Config.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, configError("config.LoadOptional", fmt.Errorf("failed to read %s: %w", FileName, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError("config.LoadOptional", fmt.Errorf("failed to parse %s: %w", FileName, err))
	}

	return &cfg, nil
}

// FromEnv overlays MVVM_* environment variables onto cfg. Unset variables
// leave their fields unchanged.
func FromEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return configError("config.FromEnv", fmt.Errorf("parse env: %w", err))
	}
	return nil
}

// Load reads mvvm.yaml from dir (if present), applies environment
// overrides, fills defaults and validates the result. The default app name
// comes from the go.mod module path in dir, falling back to the directory
// name.
func Load(dir string) (*Config, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	if err := FromEnv(cfg); err != nil {
		return nil, err
	}

	def := Default()
	if strings.TrimSpace(cfg.App.Name) == "" {
		cfg.App.Name = defaultAppName(modulePath(dir), dir)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Views.Duplicates == "" {
		cfg.Views.Duplicates = def.Views.Duplicates
	}
	if cfg.Dispatch.QueueSize == 0 {
		cfg.Dispatch.QueueSize = def.Dispatch.QueueSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting. Empty values are valid and
// mean the default.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return configError("config.Validate", fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch c.Views.Duplicates {
	case "", DuplicatesReject, DuplicatesReplace:
	default:
		return configError("config.Validate", fmt.Errorf("unknown duplicates policy %q", c.Views.Duplicates))
	}
	if c.Dispatch.QueueSize < 0 {
		return configError("config.Validate", fmt.Errorf("negative queue size %d", c.Dispatch.QueueSize))
	}
	return nil
}

// SlogLevel returns Log.Level as a slog level. Unknown levels map to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w at the configured level,
// tagged with the app name.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.SlogLevel()}))
	if c.App.Name != "" {
		logger = logger.With("app", c.App.Name)
	}
	return logger
}

// ErrorHandler returns an errors.Handler that reports through logger.
func (c *Config) ErrorHandler(logger *slog.Logger) errors.Handler {
	return &errors.LogHandler{Logger: logger, Verbose: c.Log.Verbose}
}

// NewQueue creates a dispatch queue with the configured size.
func (c *Config) NewQueue() *dispatch.Queue {
	return dispatch.NewQueue(c.Dispatch.QueueSize)
}

func configError(op string, err error) error {
	return &errors.Error{Op: op, Kind: errors.KindConfig, Err: err}
}

func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return Default().App.Name
	}
	return base
}
