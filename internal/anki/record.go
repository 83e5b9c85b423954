package anki

import (
	"errors"
	"fmt"

	"codeberg.org/charliev/ankivocab/internal/translation"
	"codeberg.org/charliev/ankivocab/internal/vocab"
)

// ErrIncomplete indicates a record was missing its translation or audio
// because of an upstream failure. The record is excluded from output
// rather than written with blank fields.
var ErrIncomplete = errors.New("incomplete record")

// Record is one fully assembled flashcard note. Field order matches the
// import format: {Russian, Romanized, Audio, English, Notes}.
type Record struct {
	Russian   string
	Romanized string
	AudioFile string // filename only, e.g. "RT_VOCAB0001.wav"
	English   string
	Notes     string
}

// Assembler combines resolved term data into flashcard records.
type Assembler struct {
	// AudioEnabled requires every record to reference an audio asset.
	AudioEnabled bool
	// RomanizeEnabled requires every record to carry a romanization.
	RomanizeEnabled bool
}

// Assemble builds the record for one term.
func (a Assembler) Assemble(term vocab.Term, res translation.Result, audioFile string) (Record, error) {
	if res.Translated == "" {
		return Record{}, fmt.Errorf("%w: %q has no translation", ErrIncomplete, term.Text)
	}
	if a.RomanizeEnabled && res.Romanized == "" {
		return Record{}, fmt.Errorf("%w: %q has no romanization", ErrIncomplete, term.Text)
	}
	if a.AudioEnabled && audioFile == "" {
		return Record{}, fmt.Errorf("%w: %q has no audio asset", ErrIncomplete, term.Text)
	}

	return Record{
		Russian:   term.Text,
		Romanized: res.Romanized,
		AudioFile: audioFile,
		English:   res.Translated,
		Notes:     term.Notes,
	}, nil
}
