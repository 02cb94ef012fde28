// Package oplog persists the audit history of applied operations.
//
// Operations are stored as a single JSON array under one kv key, ordered by
// creation time and bounded to a fixed number of entries. Inserting past the
// bound evicts the oldest operation. Unreadable or corrupt history degrades
// to an empty list: planning and applying keep working, but undo can no
// longer reach operations that were lost.
//
// The store also keeps pending plans so planning and applying can happen
// in separate processes.
package oplog
