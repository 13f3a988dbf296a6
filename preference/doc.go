// Package preference implements core.PreferenceStore: per-user preferences,
// feedback history and pantry inventory.
//
// Two backends share the same operations: an in-memory map for tests and
// ephemeral runs, and a file backend writing one JSON profile per user.
package preference
