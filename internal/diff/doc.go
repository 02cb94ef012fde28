// Package diff defines the before/after change units used for plan previews,
// execution results and undo.
//
// Every Item carries a Kind that must agree with the presence of its payload:
//   - insert: Before is empty, After is set
//   - delete: Before is set, After is empty
//   - modify: both are set
//
// Inversion is an algebra over Items: insert and delete swap, modify stays
// modify with the payload swapped. InvertAll also reverses the order so a
// sequence of dependent edits unwinds last-applied first.
package diff
