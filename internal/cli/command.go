package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/charliev/ankivocab/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ankivocab [vocab-file]",
		Short: "Russian Anki Flashcard Generator",
		Long: `ankivocab turns a Russian vocabulary list into Anki flashcard notes.

For each term it fetches a translation and romanization, synthesizes a
pronunciation drill (the term twice in Russian, then the English
translation), and writes a semicolon-delimited note file ready for import.

Examples:
  ankivocab words.txt                   # Build notes and audio from words.txt
  ankivocab --no-audio words.txt        # Notes only, skip synthesis
  ankivocab --lesson words.txt          # One continuous listening lesson instead`,
		Args:    cobra.ExactArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.ankivocab.yaml)")

	// Output flags
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", flags.OutputFile, "Note file to write")
	cmd.Flags().StringVar(&flags.MediaDir, "media-dir", flags.MediaDir, "Directory audio assets are written to (Anki's collection.media)")
	cmd.Flags().StringVarP(&flags.SoundPrefix, "soundfile-prefix", "p", flags.SoundPrefix, "Prefix for generated audio filenames")
	cmd.Flags().IntVarP(&flags.SoundIndex, "soundfile-index", "i", flags.SoundIndex, "First audio filename index (default: continue after existing files)")
	cmd.Flags().IntVar(&flags.SoundPad, "soundfile-pad", flags.SoundPad, "Zero-padding width of the audio filename index")
	cmd.Flags().StringVar(&flags.NoteType, "notetype", flags.NoteType, "Note type named in the file header")
	cmd.Flags().StringVar(&flags.DeckName, "deck", "", "Deck named in the file header (omitted when empty)")

	// Input flags
	cmd.Flags().StringVar(&flags.CommaPolicy, "comma-policy", flags.CommaPolicy, "Comma handling in input lines: split or keep")
	cmd.Flags().StringVar(&flags.SourceLang, "source-lang", flags.SourceLang, "Language of the vocabulary terms")
	cmd.Flags().StringVar(&flags.TargetLang, "target-lang", flags.TargetLang, "Language to translate into")

	// Feature flags
	cmd.Flags().BoolVar(&flags.SkipAudio, "no-audio", false, "Skip audio synthesis")
	cmd.Flags().BoolVar(&flags.Romanize, "romanize", flags.Romanize, "Fill the romanization field")
	cmd.Flags().BoolVar(&flags.Lesson, "lesson", false, "Produce one continuous listening lesson instead of a note file")
	cmd.Flags().StringVar(&flags.LessonFile, "lesson-file", flags.LessonFile, "Lesson audio file to write (with --lesson)")
	cmd.Flags().BoolVar(&flags.NoResume, "no-resume", false, "Ignore results persisted by previous runs")
	cmd.Flags().StringVar(&flags.StateFile, "state-file", flags.StateFile, "SQLite file persisting per-term results between runs")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress per-term progress output")

	// Pipeline flags
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", flags.Concurrency, "Maximum terms processed at once")
	cmd.Flags().IntVar(&flags.Retries, "retries", flags.Retries, "Attempts per service call (1 disables retries)")
	cmd.Flags().IntVar(&flags.TimeoutSecs, "timeout", flags.TimeoutSecs, "Per-call timeout in seconds")

	// Translation flags
	cmd.Flags().StringVar(&flags.Translator, "translator", flags.Translator, "Translation provider: openai or gemini")
	cmd.Flags().StringVar(&flags.TranslationModel, "translation-model", flags.TranslationModel, "Model used for translation")

	// Voice and timing flags
	cmd.Flags().StringVar(&flags.TTSModel, "tts-model", flags.TTSModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.VoiceA, "voice-a", flags.VoiceA, "Voice for the first native reading")
	cmd.Flags().StringVar(&flags.VoiceB, "voice-b", flags.VoiceB, "Voice for the second native reading")
	cmd.Flags().StringVar(&flags.VoiceTranslation, "voice-translation", flags.VoiceTranslation, "Voice for the translated reading")
	cmd.Flags().Float64Var(&flags.SpeakingRate, "speaking-rate", flags.SpeakingRate, "Speech speed (0.25 to 4.0)")
	cmd.Flags().Float64Var(&flags.Pitch, "pitch", flags.Pitch, "Pitch adjustment in semitones (-20 to +20)")
	cmd.Flags().Float64Var(&flags.VolumeGainDB, "volume-gain-db", flags.VolumeGainDB, "Volume gain in decibels (-96 to +16)")
	cmd.Flags().IntVar(&flags.GapLeadInMs, "gap-lead-in", flags.GapLeadInMs, "Silence before the first reading, in milliseconds")
	cmd.Flags().IntVar(&flags.GapRepeatMs, "gap-repeat", flags.GapRepeatMs, "Silence between the two native readings, in milliseconds")
	cmd.Flags().IntVar(&flags.GapTranslationMs, "gap-translation", flags.GapTranslationMs, "Silence before the translated reading, in milliseconds")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("output.file", cmd.Flags().Lookup("output"))
	viper.BindPFlag("output.media_dir", cmd.Flags().Lookup("media-dir"))
	viper.BindPFlag("output.soundfile_prefix", cmd.Flags().Lookup("soundfile-prefix"))
	viper.BindPFlag("output.notetype", cmd.Flags().Lookup("notetype"))
	viper.BindPFlag("output.deck", cmd.Flags().Lookup("deck"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("translator"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("translation-model"))
	viper.BindPFlag("audio.tts_model", cmd.Flags().Lookup("tts-model"))
	viper.BindPFlag("audio.voice_a", cmd.Flags().Lookup("voice-a"))
	viper.BindPFlag("audio.voice_b", cmd.Flags().Lookup("voice-b"))
	viper.BindPFlag("audio.voice_translation", cmd.Flags().Lookup("voice-translation"))
	viper.BindPFlag("audio.speaking_rate", cmd.Flags().Lookup("speaking-rate"))
	viper.BindPFlag("audio.pitch", cmd.Flags().Lookup("pitch"))
	viper.BindPFlag("audio.volume_gain_db", cmd.Flags().Lookup("volume-gain-db"))
	viper.BindPFlag("pipeline.concurrency", cmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("pipeline.retries", cmd.Flags().Lookup("retries"))
	viper.BindPFlag("pipeline.timeout", cmd.Flags().Lookup("timeout"))
}

// ApplyConfig overlays config-file and environment values onto flags the
// user did not set on the command line. Explicit flags always win.
func ApplyConfig(cmd *cobra.Command, flags *Flags) {
	overlays := []struct {
		flag  string
		key   string
		apply func()
	}{
		{"output", "output.file", func() { flags.OutputFile = viper.GetString("output.file") }},
		{"media-dir", "output.media_dir", func() { flags.MediaDir = viper.GetString("output.media_dir") }},
		{"soundfile-prefix", "output.soundfile_prefix", func() { flags.SoundPrefix = viper.GetString("output.soundfile_prefix") }},
		{"notetype", "output.notetype", func() { flags.NoteType = viper.GetString("output.notetype") }},
		{"deck", "output.deck", func() { flags.DeckName = viper.GetString("output.deck") }},
		{"translator", "translation.provider", func() { flags.Translator = viper.GetString("translation.provider") }},
		{"translation-model", "translation.model", func() { flags.TranslationModel = viper.GetString("translation.model") }},
		{"tts-model", "audio.tts_model", func() { flags.TTSModel = viper.GetString("audio.tts_model") }},
		{"voice-a", "audio.voice_a", func() { flags.VoiceA = viper.GetString("audio.voice_a") }},
		{"voice-b", "audio.voice_b", func() { flags.VoiceB = viper.GetString("audio.voice_b") }},
		{"voice-translation", "audio.voice_translation", func() { flags.VoiceTranslation = viper.GetString("audio.voice_translation") }},
		{"speaking-rate", "audio.speaking_rate", func() { flags.SpeakingRate = viper.GetFloat64("audio.speaking_rate") }},
		{"pitch", "audio.pitch", func() { flags.Pitch = viper.GetFloat64("audio.pitch") }},
		{"volume-gain-db", "audio.volume_gain_db", func() { flags.VolumeGainDB = viper.GetFloat64("audio.volume_gain_db") }},
		{"concurrency", "pipeline.concurrency", func() { flags.Concurrency = viper.GetInt("pipeline.concurrency") }},
		{"retries", "pipeline.retries", func() { flags.Retries = viper.GetInt("pipeline.retries") }},
		{"timeout", "pipeline.timeout", func() { flags.TimeoutSecs = viper.GetInt("pipeline.timeout") }},
	}

	for _, o := range overlays {
		// IsSet ignores bound-flag defaults, so this only fires for
		// values actually present in the config file or environment.
		if !cmd.Flags().Changed(o.flag) && viper.IsSet(o.key) {
			o.apply()
		}
	}
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".ankivocab" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ankivocab")
	}

	// Environment variables
	viper.SetEnvPrefix("ANKIVOCAB")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translation.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translation.gemini_key")
}
