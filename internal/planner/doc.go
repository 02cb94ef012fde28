// Package planner turns a free-text command into a reviewable Plan.
//
// Interpretation is delegated to an Interpreter. Everything the planner
// adds on top of the interpreter output is deterministic: plan and step
// ids are name-based UUIDs derived from the command id, dependencies are
// inferred from overlapping targets, and the time estimate depends only on
// the step count.
//
// Key responsibilities:
//   - Resolve the command scope against the snapshot
//   - Drop steps whose preconditions are unmet or that reach outside the
//     command scope, recording warnings and requirement tokens instead
//   - Compute preview diffs on a clone without touching the snapshot
package planner
