// Package stub provides deterministic in-process domain agents backed by a
// small built-in catalog. They stand in for real recipe, pricing and travel
// services in local runs, demos and end-to-end tests.
package stub
