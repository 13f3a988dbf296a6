// Package state implements core.StateStore, the pause/resume checkpoint
// store. Every backend keeps a per-user index next to the task records and
// updates both under one lock or transaction, so the index is always an exact
// projection of the user's stored tasks.
//
// Backends:
//   - InMemoryStore: process local maps
//   - FileStore: one JSON document per task plus one index document per user
//   - SQLiteStore: task_states and task_index tables
package state
