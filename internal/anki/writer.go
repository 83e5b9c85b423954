package anki

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsafeField indicates a field value contains the delimiter or a line
// break. The format has no native escaping, so such a record would corrupt
// the import; it is rejected rather than escaped.
var ErrUnsafeField = errors.New("unsafe field value")

// Writer serializes flashcard records into the delimited note file the
// flashcard application imports.
type Writer struct {
	Delimiter rune

	// IncludeHeader emits the import-instruction header lines Anki reads
	// from the top of the file.
	IncludeHeader bool
	NoteType      string
	Deck          string
}

// NewWriter returns a writer for the classic semicolon-delimited format.
func NewWriter() *Writer {
	return &Writer{
		Delimiter:     ';',
		IncludeHeader: true,
		NoteType:      "RT Vocab",
	}
}

// CheckRecord reports whether every field of r is safe to serialize.
func (w *Writer) CheckRecord(r Record) error {
	for _, field := range w.fields(r) {
		if strings.ContainsRune(field, w.Delimiter) || strings.ContainsAny(field, "\n\r") {
			return fmt.Errorf("%w: %q", ErrUnsafeField, field)
		}
	}
	return nil
}

// Write emits one row per record, in the order given. All records must
// pass CheckRecord; callers screen records first so an unsafe value fails
// only that record, not the batch.
func (w *Writer) Write(out io.Writer, records []Record) error {
	if w.IncludeHeader {
		if err := w.writeHeader(out); err != nil {
			return err
		}
	}

	for _, r := range records {
		if err := w.CheckRecord(r); err != nil {
			return err
		}
		row := strings.Join(w.fields(r), string(w.Delimiter))
		if _, err := fmt.Fprintln(out, row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}

func (w *Writer) writeHeader(out io.Writer) error {
	lines := []string{fmt.Sprintf("#separator:%s", delimiterName(w.Delimiter))}
	if w.NoteType != "" {
		lines = append(lines, fmt.Sprintf("#notetype:%s", w.NoteType))
	}
	if w.Deck != "" {
		lines = append(lines, fmt.Sprintf("#deck:%s", w.Deck))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	return nil
}

func (w *Writer) fields(r Record) []string {
	return []string{
		r.Russian,
		r.Romanized,
		formatAudioField(r.AudioFile),
		r.English,
		r.Notes,
	}
}

// formatAudioField wraps the audio filename in Anki's sound tag.
func formatAudioField(audioFile string) string {
	if audioFile == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", audioFile)
}

func delimiterName(d rune) string {
	switch d {
	case ';':
		return "Semicolon"
	case ',':
		return "Comma"
	case '\t':
		return "Tab"
	case '|':
		return "Pipe"
	default:
		return string(d)
	}
}
