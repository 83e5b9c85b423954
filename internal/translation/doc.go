// Package translation provides the gateway to the external translation
// and romanization service. Two implementations exist (OpenAI chat
// completions and Google Gemini) behind a common interface, plus an
// in-memory cache that makes repeated lookups for the same term
// idempotent within a run.
package translation
