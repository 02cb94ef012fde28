// Package document models the structured document an instruction edits.
//
// A Document is an ordered list of nodes addressed by slash-separated paths.
// Top-level paths are sections ("chapter-2"), nested paths hold figures
// ("chapter-2/figures/fig-1") and the reserved "settings/" prefix holds
// document-wide settings such as the citation style.
//
// Key concepts:
//   - Snapshot: read-only accessor used by planning and interpretation
//   - Scope: the region (document, section or selection) an instruction targets
//   - Apply: the only mutation primitive, taking a diff.Item
//   - Repo: persistence for documents, keyed by document ID
package document
