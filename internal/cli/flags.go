package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile         string
	OutputFile      string
	MediaDir        string
	SoundPrefix     string
	SoundIndex      int
	SoundPad        int
	SkipAudio       bool
	Romanize        bool
	CommaPolicy     string
	NoteType        string
	DeckName        string
	Lesson          bool
	LessonFile      string
	SourceLang      string
	TargetLang      string
	NoResume        bool
	StateFile       string
	Quiet           bool

	// Pipeline flags
	Concurrency int
	Retries     int
	TimeoutSecs int

	// Translation flags
	Translator       string
	TranslationModel string

	// Voice and timing flags
	TTSModel         string
	VoiceA           string
	VoiceB           string
	VoiceTranslation string
	SpeakingRate     float64
	Pitch            float64
	VolumeGainDB     float64
	GapLeadInMs      int
	GapRepeatMs      int
	GapTranslationMs int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		OutputFile:       "vocab.txt",
		MediaDir:         ".",
		SoundPrefix:      "RT_VOCAB",
		SoundIndex:       -1,
		SoundPad:         4,
		Romanize:         true,
		CommaPolicy:      "split",
		NoteType:         "RT Vocab",
		LessonFile:       "lesson.wav",
		SourceLang:       "ru",
		TargetLang:       "en-US",
		StateFile:        ".ankivocab-state.db",
		Concurrency:      4,
		Retries:          3,
		TimeoutSecs:      60,
		Translator:       "openai",
		TranslationModel: "gpt-4o-mini",
		TTSModel:         "gpt-4o-mini-tts",
		VoiceA:           "nova",
		VoiceB:           "onyx",
		VoiceTranslation: "alloy",
		SpeakingRate:     0.9,
		GapLeadInMs:      1200,
		GapRepeatMs:      650,
		GapTranslationMs: 1200,
	}
}
