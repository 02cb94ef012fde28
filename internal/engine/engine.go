// Package engine provides the core business logic for redline operations.
//
// The engine package is the orchestration layer between CLI commands and the
// lower-level packages. It loads documents, plans commands, applies accepted
// steps, undoes operations and exposes history, export and recipe CRUD.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Plan/Apply: Interprets commands and commits accepted steps
//   - Undo: Reverts a recorded operation
//   - History/Export: Reads the bounded operation log
//
// Apply and Undo are serialized by a single writer lock. Plan is read-only
// and runs unlocked.
package engine

import (
	"sync"

	"github.com/danieljhkim/redline/internal/audit"
	"github.com/danieljhkim/redline/internal/clock"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/executor"
	"github.com/danieljhkim/redline/internal/fsops"
	"github.com/danieljhkim/redline/internal/hash"
	"github.com/danieljhkim/redline/internal/kv"
	"github.com/danieljhkim/redline/internal/logging"
	"github.com/danieljhkim/redline/internal/oplog"
	"github.com/danieljhkim/redline/internal/planner"
	"github.com/danieljhkim/redline/internal/recipes"
	"github.com/danieljhkim/redline/internal/undo"
)

// Engine orchestrates all redline operations.
// It is the main API surface called by the CLI.
type Engine struct {
	mu sync.Mutex

	docs     document.Repo
	backend  kv.Store
	history  *oplog.Store
	plans    *oplog.PlanStore
	recipes  *recipes.Book
	planner  *planner.Planner
	executor *executor.Executor
	undo     *undo.Manager
	audit    *audit.Exporter

	fs     fsops.FS
	hasher hash.Hasher
	clock  clock.Clock
	log    *logging.Logger
}

type options struct {
	historyLimit int
	log          *logging.Logger
	fault        executor.FaultInjector
}

// Option configures an Engine.
type Option func(*options)

// WithHistoryLimit bounds the operation history and the pending plans.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithFaultInjector installs a fault-injection seam in the executor.
func WithFaultInjector(f executor.FaultInjector) Option {
	return func(o *options) {
		o.fault = f
	}
}

// New creates a new Engine with the given dependencies.
func New(
	docs document.Repo,
	backend kv.Store,
	interp planner.Interpreter,
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	opts ...Option,
) *Engine {
	o := options{historyLimit: oplog.DefaultLimit, log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	history := oplog.NewStore(backend, o.historyLimit, o.log.Component("oplog"))

	execOpts := []executor.Option{executor.WithLogger(o.log.Component("executor"))}
	if o.fault != nil {
		execOpts = append(execOpts, executor.WithFaultInjector(o.fault))
	}

	return &Engine{
		docs:     docs,
		backend:  backend,
		history:  history,
		plans:    oplog.NewPlanStore(backend, o.historyLimit, o.log.Component("plans")),
		recipes:  recipes.NewBook(backend, clk, o.log.Component("recipes")),
		planner:  planner.New(interp, clk),
		executor: executor.New(history, clk, hasher, execOpts...),
		undo:     undo.New(history, clk, hasher, o.log.Component("undo")),
		audit:    audit.NewExporter(history, clk),
		fs:       fs,
		hasher:   hasher,
		clock:    clk,
		log:      o.log.Component("engine"),
	}
}

// Close releases the storage backend.
func (e *Engine) Close() error {
	return e.backend.Close()
}
