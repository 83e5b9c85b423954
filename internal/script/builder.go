// Package script builds the timed multi-voice pronunciation scripts that
// the speech gateway renders into drill audio. Building a script involves
// no I/O: the same inputs always produce a structurally identical script.
package script

import "time"

// Default inter-segment gaps, matching the classic drill cadence:
// a lead-in pause, a short pause between the two native repeats, and a
// longer pause before the translation.
const (
	DefaultGapLeadIn      = 1200 * time.Millisecond
	DefaultGapRepeat      = 650 * time.Millisecond
	DefaultGapTranslation = 1200 * time.Millisecond
)

// Prosody holds the voice tuning applied to a segment.
type Prosody struct {
	SpeakingRate float64 // 0.25 to 4.0, 0 means service default
	Pitch        float64 // semitones, -20 to +20
	VolumeGainDB float64 // decibels, -96 to +16
}

// VoiceSegment is one spoken unit of a pronunciation script.
type VoiceSegment struct {
	Voice    string
	Language string
	Text     string
	Prosody  Prosody

	// GapBefore is the silence between the previous segment's end and
	// this segment's start.
	GapBefore time.Duration
}

// PronunciationScript is an ordered, timed sequence of voice segments
// for one term: native voice A, native voice B, then the translation voice.
type PronunciationScript struct {
	Term     string
	Segments []VoiceSegment
}

// Config selects the voices, languages, prosody and gaps for built scripts.
type Config struct {
	VoiceA           string
	VoiceB           string
	VoiceTranslation string

	SourceLanguage string
	TargetLanguage string

	Prosody Prosody

	// Overrides replaces Prosody for the named voice.
	Overrides map[string]Prosody

	GapLeadIn      time.Duration
	GapRepeat      time.Duration
	GapTranslation time.Duration
}

// DefaultConfig returns the standard Russian drill configuration.
func DefaultConfig() Config {
	return Config{
		VoiceA:           "nova",
		VoiceB:           "onyx",
		VoiceTranslation: "alloy",
		SourceLanguage:   "ru",
		TargetLanguage:   "en-US",
		GapLeadIn:        DefaultGapLeadIn,
		GapRepeat:        DefaultGapRepeat,
		GapTranslation:   DefaultGapTranslation,
	}
}

// Builder builds pronunciation scripts from a fixed configuration.
type Builder struct {
	config Config
}

// NewBuilder creates a script builder. Zero-valued gaps fall back to the
// defaults; a negative gap means no pause.
func NewBuilder(config Config) *Builder {
	if config.GapLeadIn == 0 {
		config.GapLeadIn = DefaultGapLeadIn
	}
	if config.GapRepeat == 0 {
		config.GapRepeat = DefaultGapRepeat
	}
	if config.GapTranslation == 0 {
		config.GapTranslation = DefaultGapTranslation
	}
	return &Builder{config: config}
}

// Build produces the fixed three-segment script for a term: the term spoken
// twice in the source language by two distinct voices, then its translation
// once by a third voice.
func (b *Builder) Build(term, translated string) PronunciationScript {
	c := b.config
	return PronunciationScript{
		Term: term,
		Segments: []VoiceSegment{
			{
				Voice:     c.VoiceA,
				Language:  c.SourceLanguage,
				Text:      term,
				Prosody:   b.prosodyFor(c.VoiceA),
				GapBefore: clampGap(c.GapLeadIn),
			},
			{
				Voice:     c.VoiceB,
				Language:  c.SourceLanguage,
				Text:      term,
				Prosody:   b.prosodyFor(c.VoiceB),
				GapBefore: clampGap(c.GapRepeat),
			},
			{
				Voice:     c.VoiceTranslation,
				Language:  c.TargetLanguage,
				Text:      translated,
				Prosody:   b.prosodyFor(c.VoiceTranslation),
				GapBefore: clampGap(c.GapTranslation),
			},
		},
	}
}

func (b *Builder) prosodyFor(voice string) Prosody {
	if p, ok := b.config.Overrides[voice]; ok {
		return p
	}
	return b.config.Prosody
}

func clampGap(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
