package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/charliev/ankivocab/internal/anki"
	"codeberg.org/charliev/ankivocab/internal/audio"
	"codeberg.org/charliev/ankivocab/internal/script"
	"codeberg.org/charliev/ankivocab/internal/state"
	"codeberg.org/charliev/ankivocab/internal/testutil"
	"codeberg.org/charliev/ankivocab/internal/translation"
	"codeberg.org/charliev/ankivocab/internal/vocab"
)

func testTerms(texts ...string) []vocab.Term {
	terms := make([]vocab.Term, len(texts))
	for i, text := range texts {
		terms[i] = vocab.Term{Text: text}
	}
	return terms
}

func newTestOrchestrator(t *testing.T, translator translation.Gateway, speech audio.Gateway,
	store *state.Store, opts Options) *Orchestrator {
	t.Helper()
	if opts.MediaDir == "" {
		opts.MediaDir = t.TempDir()
	}
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = 4
	}
	opts.RetryDelay = time.Millisecond
	opts.CallTimeout = time.Second
	opts.Quiet = true

	namer := audio.NewNamer("RT_VOCAB", 0, 4, "wav")
	return New(translator, speech, script.NewBuilder(script.DefaultConfig()),
		namer, store, anki.NewWriter(), opts)
}

func TestRun_WritesRecordsInInputOrder(t *testing.T) {
	translator := &testutil.MockTranslator{Results: map[string]translation.Result{
		"Каша":  {Translated: "Porridge", Romanized: "Kasha"},
		"Земля": {Translated: "Earth", Romanized: "Zemlya"},
		"Мир":   {Translated: "World", Romanized: "Mir"},
	}}
	opts := Options{AudioEnabled: true, Romanize: true, Concurrency: 3}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, nil, opts)

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), testTerms("Каша", "Земля", "Мир"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 3 || summary.Failed != 0 {
		t.Fatalf("Summary = %+v", summary)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	// Two header lines, then one row per term.
	rows := lines[2:]
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d: %q", len(rows), rows)
	}
	for i, want := range []string{"Каша;", "Земля;", "Мир;"} {
		if !strings.HasPrefix(rows[i], want) {
			t.Errorf("Row %d = %q, want prefix %q", i, rows[i], want)
		}
	}
}

func TestRun_AudioAssetsWrittenWithContiguousNames(t *testing.T) {
	mediaDir := t.TempDir()
	opts := Options{AudioEnabled: true, MediaDir: mediaDir, Concurrency: 4}
	o := newTestOrchestrator(t, &testutil.MockTranslator{}, &testutil.MockSpeech{}, nil, opts)

	var out bytes.Buffer
	if _, err := o.Run(context.Background(), testTerms("Каша", "Земля", "Мир"), &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("RT_VOCAB%04d.wav", i)
		if _, err := os.Stat(filepath.Join(mediaDir, name)); err != nil {
			t.Errorf("Expected asset %s: %v", name, err)
		}
	}
}

func TestRun_FilenamesFollowInputOrderUnderConcurrency(t *testing.T) {
	// The first term resolves last; its filename index must not depend
	// on completion order.
	translator := &testutil.MockTranslator{Delays: map[string]time.Duration{
		"Каша": 50 * time.Millisecond,
	}}
	mediaDir := t.TempDir()
	opts := Options{AudioEnabled: true, MediaDir: mediaDir, Concurrency: 2}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, nil, opts)

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), testTerms("Каша", "Мир"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 2 {
		t.Fatalf("Summary = %+v", summary)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	rows := lines[2:]
	if !strings.Contains(rows[0], "Каша") || !strings.Contains(rows[0], "[sound:RT_VOCAB0000.wav]") {
		t.Errorf("First input term must get index 0, got row %q", rows[0])
	}
	if !strings.Contains(rows[1], "Мир") || !strings.Contains(rows[1], "[sound:RT_VOCAB0001.wav]") {
		t.Errorf("Second input term must get index 1, got row %q", rows[1])
	}
}

func TestRun_RejectedRecordLeavesNoAudioArtifacts(t *testing.T) {
	// A term that synthesizes fine but produces an unwritable record must
	// not consume a filename index or leave an asset on disk.
	translator := &testutil.MockTranslator{Results: map[string]translation.Result{
		"Земля": {Translated: "Earth; or soil"},
		"Мир":   {Translated: "World"},
	}}
	mediaDir := t.TempDir()
	opts := Options{AudioEnabled: true, MediaDir: mediaDir, Concurrency: 1}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, nil, opts)

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), testTerms("Земля", "Мир"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 1 {
		t.Fatalf("Summary = %+v", summary)
	}

	if !strings.Contains(out.String(), "[sound:RT_VOCAB0000.wav]") {
		t.Errorf("Surviving record must get index 0:\n%s", out.String())
	}
	entries, err := os.ReadDir(mediaDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "RT_VOCAB0000.wav" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Media dir = %v, want exactly [RT_VOCAB0000.wav]", names)
	}
}

func TestRun_PartialFailureIsolated(t *testing.T) {
	translator := &testutil.MockTranslator{Errors: map[string]error{
		"Земля": fmt.Errorf("refused: %w", translation.ErrRejected),
	}}
	opts := Options{Concurrency: 2}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, nil, opts)

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), testTerms("Каша", "Земля", "Мир"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Processed != 2 {
		t.Errorf("Processed = %d, want 2", summary.Processed)
	}
	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
	if summary.Failures[0].Term != "Земля" {
		t.Errorf("Failure term = %q", summary.Failures[0].Term)
	}
	if !errors.Is(summary.Failures[0].Err, translation.ErrRejected) {
		t.Errorf("Failure err = %v", summary.Failures[0].Err)
	}
	if strings.Contains(out.String(), "Земля") {
		t.Error("Failed term must not appear in the note file")
	}
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	translator := &testutil.MockTranslator{FailuresBeforeSuccess: 2}
	opts := Options{Attempts: 3}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, nil, opts)

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), testTerms("Каша"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("Summary = %+v", summary)
	}
	if translator.Calls("Каша") != 3 {
		t.Errorf("Expected 3 attempts, got %d", translator.Calls("Каша"))
	}
}

func TestRun_UnsafeFieldFailsOnlyThatRecord(t *testing.T) {
	translator := &testutil.MockTranslator{Results: map[string]translation.Result{
		"Каша":  {Translated: "Porridge"},
		"Земля": {Translated: "Earth; or soil"},
	}}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, nil, Options{})

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), testTerms("Каша", "Земля"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 1 {
		t.Fatalf("Summary = %+v", summary)
	}
	if !errors.Is(summary.Failures[0].Err, anki.ErrUnsafeField) {
		t.Errorf("Failure err = %v", summary.Failures[0].Err)
	}
}

func TestRun_ResumesFromStore(t *testing.T) {
	mediaDir := t.TempDir()
	store, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	// Simulate a previous run that already resolved one term.
	if err := os.WriteFile(filepath.Join(mediaDir, "RT_VOCAB0000.wav"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	err = store.Put(state.Entry{
		Term: "Каша", Translated: "Porridge", Romanized: "Kasha", AudioFile: "RT_VOCAB0000.wav",
	})
	if err != nil {
		t.Fatal(err)
	}

	translator := &testutil.MockTranslator{}
	opts := Options{AudioEnabled: true, MediaDir: mediaDir}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, store, opts)
	// Continue numbering after the existing asset.
	o.namer = audio.NewNamer("RT_VOCAB", 1, 4, "wav")

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), testTerms("Каша", "Мир"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Processed != 2 || summary.Reused != 1 {
		t.Fatalf("Summary = %+v", summary)
	}
	if translator.Calls("Каша") != 0 {
		t.Errorf("Reused term must not hit the translator, got %d calls", translator.Calls("Каша"))
	}
	if translator.Calls("Мир") == 0 {
		t.Error("New term must be translated")
	}
	if !strings.Contains(out.String(), "[sound:RT_VOCAB0000.wav]") {
		t.Errorf("Reused audio filename missing from output:\n%s", out.String())
	}
}

func TestRun_StaleStateEntryReprocessed(t *testing.T) {
	store, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	// Entry references an audio file that no longer exists.
	err = store.Put(state.Entry{Term: "Каша", Translated: "Porridge", AudioFile: "RT_VOCAB0000.wav"})
	if err != nil {
		t.Fatal(err)
	}

	translator := &testutil.MockTranslator{}
	opts := Options{AudioEnabled: true}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, store, opts)

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), testTerms("Каша"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Reused != 0 {
		t.Error("Entry with missing audio asset must not be reused")
	}
	if translator.Calls("Каша") != 1 {
		t.Errorf("Expected re-translation, got %d calls", translator.Calls("Каша"))
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(t, &testutil.MockTranslator{}, &testutil.MockSpeech{}, nil, Options{})

	var out bytes.Buffer
	summary, err := o.Run(ctx, testTerms("Каша", "Мир"), &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 2 {
		t.Errorf("All terms should fail under a cancelled context, got %+v", summary)
	}
}

func TestRun_EndToEndFromRawInput(t *testing.T) {
	input := "Каша\nЗемля, Мир\n# comment\n\nТвёрдый знак"
	terms, err := vocab.Parse(strings.NewReader(input), vocab.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	mediaDir := t.TempDir()
	opts := Options{AudioEnabled: true, MediaDir: mediaDir, Concurrency: 1,
		Attempts: 1, RetryDelay: time.Millisecond, CallTimeout: time.Second, Quiet: true}
	o := New(&testutil.MockTranslator{}, &testutil.MockSpeech{},
		script.NewBuilder(script.DefaultConfig()),
		audio.NewNamer("RT_VOCAB", 0, 1, "wav"), nil, anki.NewWriter(), opts)

	var out bytes.Buffer
	summary, err := o.Run(context.Background(), terms, &out)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Processed != 4 || summary.Failed != 0 {
		t.Fatalf("Summary = %+v", summary)
	}

	// Sound indexes follow input order.
	for i, russian := range []string{"Каша", "Земля", "Мир", "Твёрдый знак"} {
		name := fmt.Sprintf("RT_VOCAB%d.wav", i)
		row := fmt.Sprintf("%s;%s (romanized);[sound:%s];%s (translated);",
			russian, russian, name, russian)
		if !strings.Contains(out.String(), row) {
			t.Errorf("Note file missing row %q:\n%s", row, out.String())
		}
		if _, err := os.Stat(filepath.Join(mediaDir, name)); err != nil {
			t.Errorf("Missing asset %s: %v", name, err)
		}
	}
}

func TestRunLesson_SingleAssetFromAllTerms(t *testing.T) {
	speech := &testutil.MockSpeech{}
	o := newTestOrchestrator(t, &testutil.MockTranslator{}, speech, nil, Options{})

	outPath := filepath.Join(t.TempDir(), "lesson.wav")
	summary, err := o.RunLesson(context.Background(), testTerms("Каша", "Мир"), outPath)
	if err != nil {
		t.Fatalf("RunLesson failed: %v", err)
	}
	if summary.Terms != 2 {
		t.Errorf("Terms = %d, want 2", summary.Terms)
	}

	scripts := speech.Scripts()
	if len(scripts) != 1 {
		t.Fatalf("Expected one synthesis call, got %d", len(scripts))
	}
	// Three segments per term.
	if len(scripts[0].Segments) != 6 {
		t.Errorf("Segments = %d, want 6", len(scripts[0].Segments))
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("Lesson file missing: %v", err)
	}
}

// deadlineCheckSpeech records whether each synthesis call arrived with a
// bounded context.
type deadlineCheckSpeech struct {
	hasDeadline bool
}

func (s *deadlineCheckSpeech) Synthesize(ctx context.Context, _ script.PronunciationScript) ([]byte, error) {
	_, s.hasDeadline = ctx.Deadline()
	return []byte("RIFF"), nil
}

func (s *deadlineCheckSpeech) Name() string { return "deadline-check" }

func TestRunLesson_SynthesisCallBounded(t *testing.T) {
	speech := &deadlineCheckSpeech{}
	o := newTestOrchestrator(t, &testutil.MockTranslator{}, speech, nil, Options{})

	outPath := filepath.Join(t.TempDir(), "lesson.wav")
	if _, err := o.RunLesson(context.Background(), testTerms("Каша", "Мир"), outPath); err != nil {
		t.Fatalf("RunLesson failed: %v", err)
	}
	if !speech.hasDeadline {
		t.Error("Lesson synthesis must run under a deadline, got an unbounded context")
	}
}

func TestRunLesson_AllTermsFail(t *testing.T) {
	translator := &testutil.MockTranslator{Errors: map[string]error{
		"Каша": fmt.Errorf("refused: %w", translation.ErrRejected),
	}}
	o := newTestOrchestrator(t, translator, &testutil.MockSpeech{}, nil, Options{})

	outPath := filepath.Join(t.TempDir(), "lesson.wav")
	_, err := o.RunLesson(context.Background(), testTerms("Каша"), outPath)
	if err == nil {
		t.Fatal("Expected error when no terms translate")
	}
	if _, statErr := os.Stat(outPath); statErr == nil {
		t.Error("No lesson file should be written")
	}
}
