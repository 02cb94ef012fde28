package planner

import (
	"time"

	"github.com/danieljhkim/redline/internal/diff"
	"github.com/danieljhkim/redline/internal/document"
	"github.com/danieljhkim/redline/internal/steps"
)

// Command is a raw editing instruction.
type Command struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Scope     document.Scope `json:"scope"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Estimate is a rough duration range for executing a plan.
type Estimate struct {
	MinSeconds int `json:"minSeconds"`
	MaxSeconds int `json:"maxSeconds"`
}

// EstimateFor returns the estimate for n steps.
func EstimateFor(n int) Estimate {
	return Estimate{MinSeconds: 2 * n, MaxSeconds: 5 * n}
}

// Plan is an ordered, reviewable proposal. Plans are never mutated after
// PlanCommand returns them.
type Plan struct {
	// ID is derived from the command id
	ID string `json:"id"`

	// CommandID is the originating command
	CommandID string `json:"commandId"`

	// DocumentID is the document the plan was computed against
	DocumentID string `json:"documentId"`

	Command Command        `json:"command"`
	Scope   document.Scope `json:"scope"`

	// Steps is the ordered list of accepted-for-review steps
	Steps []steps.Step `json:"steps"`

	// Preview is the expected effect of all steps, in order
	Preview []diff.Item `json:"preview"`

	// Warnings explain dropped steps and other interpretation gaps
	Warnings []string `json:"warnings"`

	// Requirements name unmet preconditions, de-duplicated
	Requirements []string `json:"requirements"`

	Estimate  Estimate  `json:"estimate"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPlan creates an empty plan for cmd.
func NewPlan(id string, cmd Command, documentID string) *Plan {
	return &Plan{
		ID:           id,
		CommandID:    cmd.ID,
		DocumentID:   documentID,
		Command:      cmd,
		Scope:        cmd.Scope,
		Steps:        []steps.Step{},
		Preview:      []diff.Item{},
		Warnings:     []string{},
		Requirements: []string{},
	}
}

// AddStep appends a step.
func (p *Plan) AddStep(s steps.Step) {
	p.Steps = append(p.Steps, s)
}

// AddWarning appends a warning.
func (p *Plan) AddWarning(w string) {
	p.Warnings = append(p.Warnings, w)
}

// AddRequirement records a requirement token once.
func (p *Plan) AddRequirement(token string) {
	if token == "" {
		return
	}
	for _, r := range p.Requirements {
		if r == token {
			return
		}
	}
	p.Requirements = append(p.Requirements, token)
}

// Step returns the step with id.
func (p *Plan) Step(id string) (steps.Step, bool) {
	for _, s := range p.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return steps.Step{}, false
}

// StepIDs returns the step ids in plan order.
func (p *Plan) StepIDs() []string {
	ids := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		ids[i] = s.ID
	}
	return ids
}

// Reversible reports whether every step kind in the plan can be undone.
func (p *Plan) Reversible() bool {
	for _, s := range p.Steps {
		if !s.Kind.Reversible() {
			return false
		}
	}
	return true
}
