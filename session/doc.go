// Package session houses concrete implementations of the core.SessionStore.
// The interface itself (and the Session struct) live in the core package
// to centralize domain contracts. Keeping only implementations here prevents
// higher level packages (router, orchestrator) from depending on concrete storage.
//
// Two backends are provided: InMemoryStore for tests and single-process
// deployments, and SQLiteStore for durable local storage. Only the wiring
// layer decides which implementation to instantiate.
package session
