package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/charliev/ankivocab/internal/anki"
	"codeberg.org/charliev/ankivocab/internal/audio"
	"codeberg.org/charliev/ankivocab/internal/cli"
	"codeberg.org/charliev/ankivocab/internal/pipeline"
	"codeberg.org/charliev/ankivocab/internal/script"
	"codeberg.org/charliev/ankivocab/internal/state"
	"codeberg.org/charliev/ankivocab/internal/translation"
	"codeberg.org/charliev/ankivocab/internal/vocab"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Ctrl-C stops dispatching new work; in-flight terms finish or fail.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.ApplyConfig(cmd, flags)

	terms, err := parseInput(args[0], flags)
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		fmt.Println("No terms found in input file.")
		return nil
	}
	fmt.Printf("Read %d terms from %s\n", len(terms), args[0])

	translator, err := buildTranslator(ctx, flags)
	if err != nil {
		return err
	}

	if !flags.Lesson && flags.SoundPrefix == "" && !flags.SkipAudio {
		fmt.Println("Note: empty soundfile prefix, skipping audio synthesis")
		flags.SkipAudio = true
	}

	var speech audio.Gateway
	if flags.Lesson || !flags.SkipAudio {
		speech, err = audio.NewGateway("openai", audio.Config{
			APIKey: cli.GetOpenAIKey(),
			Model:  flags.TTSModel,
		})
		if err != nil {
			return err
		}
	}

	builder := script.NewBuilder(scriptConfig(flags))

	opts := pipeline.Options{
		Concurrency:  flags.Concurrency,
		Attempts:     flags.Retries,
		RetryDelay:   time.Second,
		CallTimeout:  time.Duration(flags.TimeoutSecs) * time.Second,
		MediaDir:     flags.MediaDir,
		AudioEnabled: !flags.SkipAudio,
		Romanize:     flags.Romanize,
		Quiet:        flags.Quiet,
	}

	if flags.Lesson {
		o := pipeline.New(translator, speech, builder, nil, nil, nil, opts)
		summary, err := o.RunLesson(ctx, terms, flags.LessonFile)
		if summary != nil {
			summary.PrintSummary()
		}
		return err
	}

	var namer *audio.Namer
	if !flags.SkipAudio {
		namer, err = buildNamer(flags)
		if err != nil {
			return err
		}
	}

	var store *state.Store
	if !flags.NoResume {
		store, err = state.Open(flags.StateFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: resume disabled: %v\n", err)
		} else {
			defer store.Close()
		}
	}

	if err := os.MkdirAll(flags.MediaDir, 0755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	writer := ankiWriter(flags)
	o := pipeline.New(translator, speech, builder, namer, store, writer, opts)

	out, err := os.Create(flags.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	summary, err := o.Run(ctx, terms, out)
	if summary != nil {
		summary.PrintSummary()
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nDone! Notes saved to: %s\n", flags.OutputFile)
	return nil
}

func parseInput(path string, flags *cli.Flags) ([]vocab.Term, error) {
	opts := vocab.DefaultOptions()
	switch flags.CommaPolicy {
	case "split":
		opts.CommaPolicy = vocab.CommaSplit
	case "keep":
		opts.CommaPolicy = vocab.CommaKeep
	default:
		return nil, fmt.Errorf("unknown comma policy %q (want split or keep)", flags.CommaPolicy)
	}
	return vocab.ParseFile(path, opts)
}

func buildTranslator(ctx context.Context, flags *cli.Flags) (translation.Gateway, error) {
	config := translation.Config{
		Model:      flags.TranslationModel,
		SourceLang: flags.SourceLang,
		TargetLang: flags.TargetLang,
		Romanize:   flags.Romanize,
	}
	switch flags.Translator {
	case "gemini":
		config.APIKey = cli.GetGeminiKey()
	default:
		config.APIKey = cli.GetOpenAIKey()
	}
	return translation.NewGateway(ctx, flags.Translator, config)
}

var soundPrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func buildNamer(flags *cli.Flags) (*audio.Namer, error) {
	// Anki's [sound:...] tag has no escaping, so the prefix must stay
	// filesystem- and tag-safe.
	if !soundPrefixPattern.MatchString(flags.SoundPrefix) {
		return nil, fmt.Errorf("invalid soundfile prefix %q (use letters, digits, _ or -)", flags.SoundPrefix)
	}
	base := flags.SoundIndex
	if base < 0 {
		scanned, err := audio.ScanNextIndex(flags.MediaDir, flags.SoundPrefix)
		if err != nil {
			return nil, err
		}
		base = scanned
	}
	return audio.NewNamer(flags.SoundPrefix, base, flags.SoundPad, "wav"), nil
}

func ankiWriter(flags *cli.Flags) *anki.Writer {
	w := anki.NewWriter()
	w.NoteType = flags.NoteType
	w.Deck = flags.DeckName
	return w
}

func scriptConfig(flags *cli.Flags) script.Config {
	config := script.DefaultConfig()
	config.VoiceA = flags.VoiceA
	config.VoiceB = flags.VoiceB
	config.VoiceTranslation = flags.VoiceTranslation
	config.SourceLanguage = flags.SourceLang
	config.TargetLanguage = flags.TargetLang
	config.Prosody = script.Prosody{
		SpeakingRate: flags.SpeakingRate,
		Pitch:        flags.Pitch,
		VolumeGainDB: flags.VolumeGainDB,
	}
	config.GapLeadIn = time.Duration(flags.GapLeadInMs) * time.Millisecond
	config.GapRepeat = time.Duration(flags.GapRepeatMs) * time.Millisecond
	config.GapTranslation = time.Duration(flags.GapTranslationMs) * time.Millisecond
	return config
}
