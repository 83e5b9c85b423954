package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/charliev/ankivocab/internal/anki"
	"codeberg.org/charliev/ankivocab/internal/audio"
	"codeberg.org/charliev/ankivocab/internal/script"
	"codeberg.org/charliev/ankivocab/internal/state"
	"codeberg.org/charliev/ankivocab/internal/translation"
	"codeberg.org/charliev/ankivocab/internal/vocab"
)

// Options tunes a pipeline run.
type Options struct {
	Concurrency int           // bound on per-term workers
	Attempts    int           // gateway attempts per call (1 = no retry)
	RetryDelay  time.Duration // initial backoff delay
	CallTimeout time.Duration // per gateway call

	MediaDir     string // directory audio assets are written to
	AudioEnabled bool
	Romanize     bool

	Quiet bool // suppress per-term progress output
}

// DefaultOptions returns the standard run configuration.
func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
		Attempts:    3,
		RetryDelay:  time.Second,
		CallTimeout: 60 * time.Second,
		MediaDir:    ".",
		Quiet:       false,
	}
}

// Failure records one term that could not be resolved.
type Failure struct {
	Term string
	Err  error
}

// Summary is the outcome of a run.
type Summary struct {
	Processed int // records written
	Reused    int // of those, resolved from persisted state
	Failed    int
	Failures  []Failure
}

// Orchestrator drives terms through translation, synthesis and assembly.
type Orchestrator struct {
	translator *translation.Cache
	speech     audio.Gateway
	builder    *script.Builder
	namer      *audio.Namer
	store      *state.Store // nil disables persistence
	writer     *anki.Writer
	opts       Options
}

// New creates an orchestrator. store may be nil to disable resumability.
func New(gw translation.Gateway, speech audio.Gateway, builder *script.Builder,
	namer *audio.Namer, store *state.Store, writer *anki.Writer, opts Options) *Orchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Orchestrator{
		translator: translation.NewCache(gw),
		speech:     speech,
		builder:    builder,
		namer:      namer,
		store:      store,
		writer:     writer,
		opts:       opts,
	}
}

// resolution is the per-term worker outcome, indexed by input position.
// Synthesized audio stays in memory here; filenames are assigned later,
// sequentially, so the term-to-index mapping never depends on which
// worker finished first.
type resolution struct {
	term      vocab.Term
	result    translation.Result
	asset     []byte
	audioFile string // set for reused entries, otherwise assigned at finalize
	reused    bool
	err       error
}

// Run drives every term to Assembled or Failed, then writes the note
// file to out. Per-term failures are isolated and reported in the
// summary; only infrastructure errors (output writing) are returned.
func (o *Orchestrator) Run(ctx context.Context, terms []vocab.Term, out io.Writer) (*Summary, error) {
	resolutions := make([]resolution, len(terms))

	// Resolving: independent per-term sub-pipelines, bounded workers.
	sem := make(chan struct{}, o.opts.Concurrency)
	var wg sync.WaitGroup
	for i, term := range terms {
		wg.Add(1)
		go func(i int, term vocab.Term) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// A cancelled run stops issuing new gateway requests.
			if err := ctx.Err(); err != nil {
				resolutions[i] = resolution{term: term, err: err}
				return
			}
			resolutions[i] = o.resolveTerm(ctx, term)
		}(i, term)
	}
	wg.Wait()

	// Assembling + Writing: input first-occurrence order, regardless of
	// the order concurrent resolutions completed in. Filenames are
	// assigned here too, so two runs over the same input produce the
	// same term-to-index mapping.
	assembler := anki.Assembler{
		AudioEnabled:    o.opts.AudioEnabled,
		RomanizeEnabled: o.opts.Romanize,
	}
	summary := &Summary{}
	var records []anki.Record
	for i := range resolutions {
		r := &resolutions[i]
		record, err := o.finalizeRecord(r, assembler)
		if err == nil {
			records = append(records, record)
			summary.Processed++
			if r.reused {
				summary.Reused++
			}
			continue
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, Failure{Term: r.term.Text, Err: err})
		fmt.Fprintf(os.Stderr, "Error processing '%s': %v\n", r.term.Text, err)
	}

	if err := o.writer.Write(out, records); err != nil {
		return summary, fmt.Errorf("failed to write note file: %w", err)
	}
	return summary, nil
}

// finalizeRecord turns a resolution into its flashcard record. For fresh
// terms it assigns the next audio filename and writes the asset, but only
// after the record passes assembly and field screening, so a rejected
// record neither consumes an index nor leaves an orphan file behind.
func (o *Orchestrator) finalizeRecord(r *resolution, assembler anki.Assembler) (anki.Record, error) {
	if r.err != nil {
		return anki.Record{}, r.err
	}

	audioFile := r.audioFile
	fresh := o.opts.AudioEnabled && !r.reused
	if fresh {
		audioFile = o.namer.Peek()
	}

	record, err := assembler.Assemble(r.term, r.result, audioFile)
	if err == nil {
		err = o.writer.CheckRecord(record)
	}
	if err != nil {
		return anki.Record{}, err
	}

	if fresh {
		path := filepath.Join(o.opts.MediaDir, audioFile)
		if err := os.WriteFile(path, r.asset, 0644); err != nil {
			return anki.Record{}, fmt.Errorf("failed to write audio asset: %w", err)
		}
		o.namer.Next()
		r.audioFile = audioFile
	}

	o.persistState(*r)
	return record, nil
}

// resolveTerm runs one term's sub-pipeline: persisted state, translation
// and synthesis. Naming and persistence happen later, in input order.
func (o *Orchestrator) resolveTerm(ctx context.Context, term vocab.Term) resolution {
	r := resolution{term: term}

	if entry, ok := o.lookupState(term.Text); ok {
		o.progress("  ✓ Reusing '%s' from previous run\n", term.Text)
		r.result = translation.Result{Translated: entry.Translated, Romanized: entry.Romanized}
		r.audioFile = entry.AudioFile
		r.reused = true
		return r
	}

	o.progress("Processing: %s\n", term.Text)

	r.err = retryCall(ctx, o.opts.Attempts, o.opts.RetryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
		var err error
		r.result, err = o.translator.Translate(callCtx, term.Text)
		return err
	})
	if r.err != nil {
		return r
	}

	if o.opts.AudioEnabled {
		drill := o.builder.Build(term.Text, r.result.Translated)

		r.err = retryCall(ctx, o.opts.Attempts, o.opts.RetryDelay, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
			defer cancel()
			var err error
			r.asset, err = o.speech.Synthesize(callCtx, drill)
			return err
		})
	}
	return r
}

// lookupState returns a usable persisted entry for the term. An entry
// whose audio asset no longer exists on disk is ignored so the term is
// re-synthesized.
func (o *Orchestrator) lookupState(term string) (state.Entry, bool) {
	if o.store == nil {
		return state.Entry{}, false
	}
	entry, found, err := o.store.Get(term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: state lookup for '%s' failed: %v\n", term, err)
		return state.Entry{}, false
	}
	if !found || entry.Translated == "" {
		return state.Entry{}, false
	}
	if o.opts.Romanize && entry.Romanized == "" {
		return state.Entry{}, false
	}
	if o.opts.AudioEnabled {
		if entry.AudioFile == "" {
			return state.Entry{}, false
		}
		if _, err := os.Stat(filepath.Join(o.opts.MediaDir, entry.AudioFile)); err != nil {
			return state.Entry{}, false
		}
	}
	return entry, true
}

func (o *Orchestrator) persistState(r resolution) {
	if o.store == nil || r.err != nil || r.reused {
		return
	}
	err := o.store.Put(state.Entry{
		Term:       r.term.Text,
		Translated: r.result.Translated,
		Romanized:  r.result.Romanized,
		AudioFile:  r.audioFile,
	})
	if err != nil {
		// Non-fatal: the run still completes, only resumability suffers.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func (o *Orchestrator) progress(format string, args ...interface{}) {
	if !o.opts.Quiet {
		fmt.Printf(format, args...)
	}
}

// PrintSummary prints the end-of-run report.
func (s *Summary) PrintSummary() {
	fmt.Printf("\n=== Run Summary ===\n")
	fmt.Printf("Records written: %d\n", s.Processed)
	if s.Reused > 0 {
		fmt.Printf("Reused from previous runs: %d\n", s.Reused)
	}
	if s.Failed > 0 {
		fmt.Printf("Failed: %d\n", s.Failed)
		for _, f := range s.Failures {
			fmt.Printf("  %s: %v\n", f.Term, f.Err)
		}
	}
	fmt.Printf("===================\n")
}
