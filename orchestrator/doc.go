// Package orchestrator implements the message entry point: it resolves the
// session, classifies the message, routes it, summarizes the outcome and
// records the exchange.
//
// Ambiguous messages short-circuit with a clarification prompt and are not
// recorded in the session history. Calls on the same session id are
// serialised by a per-session lock; independent sessions proceed in
// parallel.
package orchestrator
