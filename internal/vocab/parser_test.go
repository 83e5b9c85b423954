package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func termTexts(terms []Term) []string {
	var texts []string
	for _, t := range terms {
		texts = append(texts, t.Text)
	}
	return texts
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  []string
	}{
		{
			name:  "empty input",
			input: "",
			opts:  DefaultOptions(),
			want:  nil,
		},
		{
			name:  "blank lines and comments ignored",
			input: "# vocabulary list\n\n   \nКаша\n  # indented comment\nЗемля\n",
			opts:  DefaultOptions(),
			want:  []string{"Каша", "Земля"},
		},
		{
			name:  "comma split into independent terms",
			input: "Земля, Мир\n",
			opts:  DefaultOptions(),
			want:  []string{"Земля", "Мир"},
		},
		{
			name:  "comma kept as single term",
			input: "Земля, Мир\n",
			opts:  Options{CommaPolicy: CommaKeep},
			want:  []string{"Земля, Мир"},
		},
		{
			name:  "duplicates dropped keeping first position",
			input: "Каша\nЗемля\nКаша\nКаша\nМир\nЗемля\n",
			opts:  DefaultOptions(),
			want:  []string{"Каша", "Земля", "Мир"},
		},
		{
			name:  "duplicate inside comma group",
			input: "Мир, Мир, Земля\n",
			opts:  DefaultOptions(),
			want:  []string{"Мир", "Земля"},
		},
		{
			name:  "whitespace trimmed, case sensitive identity",
			input: "  мир  \nМир\n",
			opts:  DefaultOptions(),
			want:  []string{"мир", "Мир"},
		},
		{
			name:  "windows line endings",
			input: "Каша\r\nМир\r\n",
			opts:  DefaultOptions(),
			want:  []string{"Каша", "Мир"},
		},
		{
			name:  "readme example",
			input: "Каша\nЗемля, Мир\n# comment\n\nТвёрдый знак",
			opts:  DefaultOptions(),
			want:  []string{"Каша", "Земля", "Мир", "Твёрдый знак"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := Parse(strings.NewReader(tt.input), tt.opts)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := termTexts(terms); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := Parse(strings.NewReader("Каша\n\xff\xfe\n"), DefaultOptions())
	if !errors.Is(err, ErrInputFormat) {
		t.Errorf("Expected ErrInputFormat, got %v", err)
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "words.rus")
	if err := os.WriteFile(path, []byte("Каша\nМир\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	terms, err := ParseFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if got := termTexts(terms); !reflect.DeepEqual(got, []string{"Каша", "Мир"}) {
		t.Errorf("ParseFile() = %v", got)
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("/nonexistent/words.rus", DefaultOptions())
	if !errors.Is(err, ErrInputFormat) {
		t.Errorf("Expected ErrInputFormat, got %v", err)
	}
}
