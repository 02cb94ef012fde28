// Package logging provides structured logging on top of log/slog.
//
// Every logger carries a component name. Helpers attach the identifiers that
// matter when reading redline logs: document, plan and operation ids.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is a structured logger bound to a component.
type Logger struct {
	*slog.Logger
	component string

	// base is the handler before any attributes were attached
	base slog.Handler
}

// Config configures a logger.
type Config struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"` // json or text
	Output    string `yaml:"output"` // stdout, stderr, or file path
	Component string `yaml:"-"`
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	var output io.Writer
	switch cfg.Output {
	case "stderr", "":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			output = os.Stderr
		} else {
			output = f
		}
	}
	return NewWithWriter(cfg, output)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := &Logger{Logger: slog.New(handler), base: handler}
	if cfg.Component != "" {
		return l.Component(cfg.Component)
	}
	return l
}

// Default creates a logger configured from LOG_LEVEL and LOG_FORMAT.
func Default(component string) *Logger {
	return New(Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    "stderr",
		Component: component,
	})
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWithWriter(Config{Level: "error"}, io.Discard)
}

// Component returns a logger for another component sharing the same
// output. Attributes attached to l are not carried over.
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		Logger:    slog.New(l.base).With(slog.String("component", name)),
		component: name,
		base:      l.base,
	}
}

// Name returns the component name.
func (l *Logger) Name() string {
	return l.component
}

func (l *Logger) with(attrs ...any) *Logger {
	return &Logger{Logger: l.Logger.With(attrs...), component: l.component, base: l.base}
}

// WithDocument adds a document id.
func (l *Logger) WithDocument(id string) *Logger {
	return l.with(slog.String("document_id", id))
}

// WithPlan adds a plan id.
func (l *Logger) WithPlan(id string) *Logger {
	return l.with(slog.String("plan_id", id))
}

// WithOperation adds an operation id.
func (l *Logger) WithOperation(id string) *Logger {
	return l.with(slog.String("operation_id", id))
}

// WithError adds error information.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.with(slog.String("error", err.Error()))
}

// WithDuration adds a duration in milliseconds.
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return l.with(slog.Float64("duration_ms", float64(d)/float64(time.Millisecond)))
}
