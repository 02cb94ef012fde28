package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/config"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/engine"
	"github.com/danieljhkim/redline/internal/executor"
	"github.com/danieljhkim/redline/internal/fsops"
	"github.com/danieljhkim/redline/internal/hash"
	"github.com/danieljhkim/redline/internal/logging"
	"github.com/danieljhkim/redline/internal/planner"
	"github.com/danieljhkim/redline/internal/recipes"
	"github.com/danieljhkim/redline/internal/undo"
)

// newEngine creates a new engine from the resolved configuration.
// The caller must Close it.
func newEngine(ctx context.Context) (*engine.Engine, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}

	log := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    "stderr",
		Component: "redline",
	})

	fs := fsops.NewRealFS()
	backend, err := config.OpenBackend(ctx, cfg, paths, fs)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Storage.Backend, err)
	}

	interp, err := config.NewInterpreter(cfg)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return engine.New(
		document.NewFileRepo(fs, paths.Documents),
		backend,
		interp,
		fs,
		hash.NewSHA256Hasher(),
		&clock.RealClock{},
		engine.WithHistoryLimit(cfg.History.Limit),
		engine.WithLogger(log),
	), nil
}

// withEngine runs fn with a fresh engine and closes it afterwards.
func withEngine(fn func(ctx context.Context, eng *engine.Engine) error) error {
	ctx := context.Background()
	eng, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()
	return fn(ctx, eng)
}

// formatJSON formats a value as JSON.
func formatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// scopeFromFlags builds a scope from --section, --start and --end.
func scopeFromFlags(section string, start, end int) (document.Scope, error) {
	switch {
	case section == "" && (start != 0 || end != 0):
		return document.Scope{}, fmt.Errorf("--start and --end require --section")
	case section == "":
		return document.WholeDocument(), nil
	case start == 0 && end == 0:
		return document.Section(section), nil
	case start < 0 || end <= start:
		return document.Scope{}, fmt.Errorf("invalid selection range [%d:%d]", start, end)
	default:
		return document.Selection(section, start, end), nil
	}
}

// errorHint suggests a next step for well-known failures.
func errorHint(err error) string {
	switch {
	case errors.Is(err, document.ErrDocumentNotFound):
		return "import a document first with 'redline doc import <file.md>'"
	case errors.Is(err, document.ErrScopeNotFound):
		return "check section ids with 'redline doc show <doc-id>'"
	case errors.Is(err, planner.ErrEmptyCommand):
		return "pass the editing command as arguments"
	case errors.Is(err, engine.ErrNotFound):
		return "plans are kept for the last history-limit commands; run 'redline plan' again"
	case errors.Is(err, executor.ErrUnknownStep):
		return "list step ids with 'redline plan show <plan-id>'"
	case errors.Is(err, undo.ErrOperationNotFound):
		return "list operations with 'redline history ls'"
	case errors.Is(err, undo.ErrNotReversible):
		return "operations with redactions cannot be undone"
	case errors.Is(err, undo.ErrInversionFailed):
		return "the document changed since this operation; undo newer operations first"
	case errors.Is(err, recipes.ErrNotFound):
		return "list recipes with 'redline recipe ls'"
	case errors.Is(err, config.ErrInvalidConfig):
		return "check config.yaml and REDLINE_* environment variables"
	case errors.Is(err, engine.ErrStorage):
		return "check the storage backend; nothing was committed"
	default:
		return ""
	}
}

// ReportError prints err and a hint, if any, to stderr.
func ReportError(err error) {
	PrintError(err.Error())
	if hint := errorHint(err); hint != "" {
		_, _ = dimColor.Fprintf(os.Stderr, "  hint: %s\n", hint)
	}
}

func promptConfirm(prompt string) bool {
	fmt.Printf("%s (y/N): ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
