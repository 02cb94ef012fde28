package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a setting has an unusable value.
var ErrInvalidConfig = errors.New("invalid config")

// Backend names
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Interpreter names
const (
	InterpreterRules = "rules"
	InterpreterLLM   = "llm"
)

// DefaultHistoryLimit bounds the operation history.
const DefaultHistoryLimit = 50

// DefaultLLMModel is used when no model is configured.
const DefaultLLMModel = "gpt-4o-mini"

// Config is the resolved configuration.
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	History     HistoryConfig     `yaml:"history"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Log         LogConfig         `yaml:"log"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// HistoryConfig bounds the operation history.
type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

// InterpreterConfig selects how commands are turned into steps.
type InterpreterConfig struct {
	Kind    string `yaml:"kind"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`

	// APIKey is read from OPENAI_API_KEY only
	APIKey string `yaml:"-"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the built-in configuration for paths.
func Defaults(paths *Paths) *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    BackendFile,
			SQLitePath: filepath.Join(paths.Data, "redline.db"),
		},
		History:     HistoryConfig{Limit: DefaultHistoryLimit},
		Interpreter: InterpreterConfig{Kind: InterpreterRules, Model: DefaultLLMModel},
		Log:         LogConfig{Level: "warn", Format: "text"},
	}
}

// Load resolves configuration in order: defaults, config.yaml, .env, then
// environment variables. Missing files are ignored.
func Load(paths *Paths) (*Config, error) {
	cfg := Defaults(paths)

	data, err := os.ReadFile(paths.Config)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, paths.Config, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// godotenv never overrides variables that are already set.
	for _, p := range []string{".env", paths.Env} {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, p, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Storage.Backend, "REDLINE_BACKEND")
	setString(&c.Storage.SQLitePath, "REDLINE_SQLITE_PATH")
	setString(&c.Storage.RedisURL, "REDLINE_REDIS_URL")
	setString(&c.Interpreter.Kind, "REDLINE_INTERPRETER")
	setString(&c.Interpreter.Model, "REDLINE_LLM_MODEL")
	setString(&c.Interpreter.BaseURL, "REDLINE_LLM_BASE_URL")
	setString(&c.Interpreter.APIKey, "OPENAI_API_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if v := os.Getenv("REDLINE_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: REDLINE_HISTORY_LIMIT=%q", ErrInvalidConfig, v)
		}
		c.History.Limit = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("%w: redis backend requires a redis url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if c.History.Limit <= 0 {
		return fmt.Errorf("%w: history limit must be positive, got %d", ErrInvalidConfig, c.History.Limit)
	}

	c.Interpreter.Kind = strings.ToLower(c.Interpreter.Kind)
	switch c.Interpreter.Kind {
	case InterpreterRules, InterpreterLLM:
	default:
		return fmt.Errorf("%w: unknown interpreter %q", ErrInvalidConfig, c.Interpreter.Kind)
	}
	return nil
}
