// Package testutil provides mock gateways for pipeline tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/charliev/ankivocab/internal/script"
	"codeberg.org/charliev/ankivocab/internal/translation"
)

// MockTranslator implements translation.Gateway with canned results.
type MockTranslator struct {
	mu sync.Mutex

	// Results maps a term to its canned outcome. Terms absent from the
	// map get an "X (translated)" placeholder.
	Results map[string]translation.Result
	// Errors maps a term to the error it should fail with.
	Errors map[string]error
	// FailuresBeforeSuccess makes the first N calls per term fail with
	// translation.ErrUnavailable, for retry tests.
	FailuresBeforeSuccess int
	// Delays holds per-term artificial latency, for tests that skew
	// completion order under concurrency.
	Delays map[string]time.Duration

	calls map[string]int
}

// Translate returns the canned result or error for term.
func (m *MockTranslator) Translate(_ context.Context, term string) (translation.Result, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[term]++
	outage := m.calls[term] <= m.FailuresBeforeSuccess
	delay := m.Delays[term]
	err := m.Errors[term]
	res, canned := m.Results[term]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if outage {
		return translation.Result{}, fmt.Errorf("mock outage: %w", translation.ErrUnavailable)
	}
	if err != nil {
		return translation.Result{}, err
	}
	if canned {
		return res, nil
	}
	return translation.Result{
		Translated: term + " (translated)",
		Romanized:  term + " (romanized)",
	}, nil
}

// Name identifies the mock provider.
func (m *MockTranslator) Name() string { return "mock" }

// Calls returns how many times term was requested.
func (m *MockTranslator) Calls(term string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[term]
}

// TotalCalls returns the number of Translate invocations across terms.
func (m *MockTranslator) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// MockSpeech implements audio.Gateway, returning a tiny fixed payload.
type MockSpeech struct {
	mu sync.Mutex

	// Errors maps a script's term to the error it should fail with.
	Errors map[string]error

	scripts []script.PronunciationScript
}

// Synthesize records the script and returns a placeholder asset.
func (m *MockSpeech) Synthesize(_ context.Context, s script.PronunciationScript) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[s.Term]; ok {
		return nil, err
	}
	m.scripts = append(m.scripts, s)
	return []byte("RIFF-mock-" + s.Term), nil
}

// Name identifies the mock provider.
func (m *MockSpeech) Name() string { return "mock" }

// Scripts returns the scripts synthesized so far.
func (m *MockSpeech) Scripts() []script.PronunciationScript {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]script.PronunciationScript, len(m.scripts))
	copy(out, m.scripts)
	return out
}
