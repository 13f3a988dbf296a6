// Package core provides the foundational domain types and interfaces used by
// planmesh. It defines the core abstractions for:
//
//   - Sessions (ordered conversational records with metadata)
//   - Task states (pause/resume checkpoints plus their per-user index)
//   - Intents and route results (classification and dispatch outcomes)
//   - Domain agents (meal, shopping and travel planners) and their plans
//   - Pluggable stores for sessions, task state, preferences and
//     conversation context
//
// The package intentionally keeps implementation concerns (persistence,
// routing, transport) out of scope, exposing small interfaces to enable
// custom backends. Concrete stores live in the session, state, memory and
// preference packages.
package core
