// Package interpreter provides planner.Interpreter implementations.
//
// Rules is a deterministic keyword interpreter suitable for offline use and
// tests. LLM asks a langchaingo model for a JSON list of steps. Neither
// checks preconditions: the planner does that for every candidate step.
package interpreter
