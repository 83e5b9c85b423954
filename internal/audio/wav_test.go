package audio

import (
	"encoding/binary"
	"testing"
	"time"
)

// makeTestWAV builds a PCM16 WAV with the given number of frames, every
// sample set to value.
func makeTestWAV(sampleRate, channels, frames int, value int16) []byte {
	data := make([]byte, frames*channels*2)
	for i := 0; i+1 < len(data); i += 2 {
		binary.LittleEndian.PutUint16(data[i:i+2], uint16(value))
	}
	return encodeWAV(clip{sampleRate: sampleRate, channels: channels, data: data})
}

func TestDecodeWAV_RoundTrip(t *testing.T) {
	raw := makeTestWAV(24000, 1, 2400, 1000)

	c, err := decodeWAV(raw)
	if err != nil {
		t.Fatalf("decodeWAV failed: %v", err)
	}
	if c.sampleRate != 24000 || c.channels != 1 {
		t.Errorf("Got %dHz/%dch, want 24000Hz/1ch", c.sampleRate, c.channels)
	}
	if len(c.data) != 2400*2 {
		t.Errorf("Got %d data bytes, want %d", len(c.data), 2400*2)
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("ID3\x03mp3 data here and more")},
		{"truncated header", []byte("RIFF\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeWAV(tt.data); err == nil {
				t.Error("Expected decode error")
			}
		})
	}
}

func TestSplice_GapTiming(t *testing.T) {
	// Two 100ms segments at 24kHz mono with a 650ms gap before the second.
	a, err := decodeWAV(makeTestWAV(24000, 1, 2400, 1000))
	if err != nil {
		t.Fatal(err)
	}
	b, err := decodeWAV(makeTestWAV(24000, 1, 2400, 2000))
	if err != nil {
		t.Fatal(err)
	}

	out, err := splice([]clip{a, b}, []time.Duration{0, 650 * time.Millisecond})
	if err != nil {
		t.Fatalf("splice failed: %v", err)
	}

	gapFrames := 24000 * 650 / 1000
	wantBytes := (2400 + gapFrames + 2400) * 2
	if len(out.data) != wantBytes {
		t.Errorf("Spliced length = %d bytes, want %d", len(out.data), wantBytes)
	}

	// The gap region must be pure silence, located exactly after segment A.
	gapStart := 2400 * 2
	gapEnd := gapStart + gapFrames*2
	for i := gapStart; i < gapEnd; i += 2 {
		if s := int16(binary.LittleEndian.Uint16(out.data[i : i+2])); s != 0 {
			t.Fatalf("Non-silent sample %d in gap at offset %d", s, i)
		}
	}

	// Segment B starts right at the gap's end, never overlapping.
	if s := int16(binary.LittleEndian.Uint16(out.data[gapEnd : gapEnd+2])); s != 2000 {
		t.Errorf("Segment B first sample = %d, want 2000", s)
	}
}

func TestSplice_FormatMismatch(t *testing.T) {
	a := clip{sampleRate: 24000, channels: 1, data: make([]byte, 4)}
	b := clip{sampleRate: 22050, channels: 1, data: make([]byte, 4)}

	if _, err := splice([]clip{a, b}, []time.Duration{0, 0}); err == nil {
		t.Error("Expected error for mismatched sample rates")
	}
}

func TestApplyGainDB(t *testing.T) {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, uint16(int16(1000)))

	applyGainDB(data, 6) // +6 dB is roughly a factor of 2
	got := int16(binary.LittleEndian.Uint16(data))
	if got < 1900 || got > 2100 {
		t.Errorf("+6dB on 1000 = %d, want ~2000", got)
	}
}

func TestApplyGainDB_Clips(t *testing.T) {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, uint16(int16(30000)))

	applyGainDB(data, 20)
	if got := int16(binary.LittleEndian.Uint16(data)); got != 32767 {
		t.Errorf("Expected clipping at 32767, got %d", got)
	}
}

func TestSilenceBytes(t *testing.T) {
	if got := silenceBytes(24000, 1, 1200*time.Millisecond); len(got) != 28800*2 {
		t.Errorf("1200ms at 24kHz mono = %d bytes, want %d", len(got), 28800*2)
	}
	if got := silenceBytes(24000, 2, 0); got != nil {
		t.Errorf("Zero duration should produce no bytes, got %d", len(got))
	}
}
