package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"codeberg.org/charliev/ankivocab/internal/script"
	"codeberg.org/charliev/ankivocab/internal/vocab"
)

// LessonSummary is the outcome of a lesson run.
type LessonSummary struct {
	Terms    int
	Failed   int
	Failures []Failure
	File     string
}

// RunLesson translates every term and synthesizes one continuous
// listening lesson covering all of them, written to outPath. Terms that
// fail to translate are skipped and reported; the lesson is produced
// from the rest.
func (o *Orchestrator) RunLesson(ctx context.Context, terms []vocab.Term, outPath string) (*LessonSummary, error) {
	summary := &LessonSummary{File: outPath}

	var combined script.PronunciationScript
	combined.Term = "lesson"
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		o.progress("Processing: %s\n", term.Text)
		var translated string
		err := retryCall(ctx, o.opts.Attempts, o.opts.RetryDelay, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
			defer cancel()
			res, err := o.translator.Translate(callCtx, term.Text)
			translated = res.Translated
			return err
		})
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Term: term.Text, Err: err})
			fmt.Fprintf(os.Stderr, "Error processing '%s': %v\n", term.Text, err)
			continue
		}

		combined.Segments = append(combined.Segments, o.builder.Build(term.Text, translated).Segments...)
		summary.Terms++
	}

	if summary.Terms == 0 {
		return summary, fmt.Errorf("no terms could be translated")
	}

	var asset []byte
	err := retryCall(ctx, o.opts.Attempts, o.opts.RetryDelay, func(ctx context.Context) error {
		// The gateway issues one request per segment under this deadline.
		budget := o.opts.CallTimeout * time.Duration(len(combined.Segments))
		callCtx, cancel := context.WithTimeout(ctx, budget)
		defer cancel()
		var err error
		asset, err = o.speech.Synthesize(callCtx, combined)
		return err
	})
	if err != nil {
		return summary, fmt.Errorf("failed to synthesize lesson: %w", err)
	}

	if err := os.WriteFile(outPath, asset, 0644); err != nil {
		return summary, fmt.Errorf("failed to write lesson file: %w", err)
	}
	return summary, nil
}

// PrintSummary prints the end-of-lesson report.
func (s *LessonSummary) PrintSummary() {
	fmt.Printf("\n=== Lesson Summary ===\n")
	fmt.Printf("Terms included: %d\n", s.Terms)
	if s.Failed > 0 {
		fmt.Printf("Failed: %d\n", s.Failed)
		for _, f := range s.Failures {
			fmt.Printf("  %s: %v\n", f.Term, f.Err)
		}
	}
	fmt.Printf("Lesson file: %s\n", s.File)
	fmt.Printf("======================\n")
}
