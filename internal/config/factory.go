package config

import (
	"context"
	"fmt"

	"github.com/danieljhkim/redline/internal/fsops"
	"github.com/danieljhkim/redline/internal/interpreter"
	"github.com/danieljhkim/redline/internal/kv"
	"github.com/danieljhkim/redline/internal/planner"
)

// OpenBackend opens the configured key-value store.
func OpenBackend(ctx context.Context, cfg *Config, paths *Paths, fs fsops.FS) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case BackendSQLite:
		store, err := kv.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendRedis:
		prefix := cfg.Storage.RedisPrefix
		if prefix == "" {
			prefix = kv.DefaultRedisPrefix
		}
		store, err := kv.OpenRedis(ctx, cfg.Storage.RedisURL, prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendFile, "":
		return kv.NewFileStore(fs, paths.Data), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Storage.Backend)
	}
}

// NewInterpreter builds the configured command interpreter.
func NewInterpreter(cfg *Config) (planner.Interpreter, error) {
	switch cfg.Interpreter.Kind {
	case InterpreterLLM:
		llm, err := interpreter.NewOpenAI(interpreter.OpenAIConfig{
			APIKey:  cfg.Interpreter.APIKey,
			Model:   cfg.Interpreter.Model,
			BaseURL: cfg.Interpreter.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return llm, nil
	case InterpreterRules, "":
		return interpreter.NewRules(), nil
	default:
		return nil, fmt.Errorf("%w: unknown interpreter %q", ErrInvalidConfig, cfg.Interpreter.Kind)
	}
}
