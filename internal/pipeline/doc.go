// Package pipeline drives the vocabulary-to-flashcard assembly: it fans
// terms out to bounded concurrent workers that translate and synthesize
// through the external gateways, isolates per-term failures, and writes
// the completed records as one note file in input order. Results are
// persisted so interrupted or extended runs resume instead of repeating
// service calls.
package pipeline
