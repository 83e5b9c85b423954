package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// clip is a decoded PCM16 little-endian audio payload.
type clip struct {
	sampleRate int
	channels   int
	data       []byte // interleaved 16-bit samples
}

// decodeWAV parses a RIFF/WAVE byte stream into a clip. Only uncompressed
// 16-bit PCM is supported, which is what the TTS service returns for the
// wav response format.
func decodeWAV(b []byte) (clip, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return clip{}, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var c clip
	haveFmt := false
	pos := 12
	for pos+8 <= len(b) {
		chunkID := string(b[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(b) {
			chunkSize = len(b) - body // tolerate truncated size fields
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return clip{}, fmt.Errorf("malformed fmt chunk")
			}
			format := binary.LittleEndian.Uint16(b[body : body+2])
			bits := binary.LittleEndian.Uint16(b[body+14 : body+16])
			if format != 1 || bits != 16 {
				return clip{}, fmt.Errorf("unsupported WAV encoding: format=%d bits=%d", format, bits)
			}
			c.channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			c.sampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			haveFmt = true
		case "data":
			c.data = b[body : body+chunkSize]
		}

		// Chunks are word-aligned
		pos = body + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if !haveFmt || c.data == nil {
		return clip{}, fmt.Errorf("missing fmt or data chunk")
	}
	if c.channels < 1 || c.sampleRate < 1 {
		return clip{}, fmt.Errorf("malformed WAV header")
	}
	return c, nil
}

// encodeWAV serializes a clip back into a canonical 44-byte-header WAV file.
func encodeWAV(c clip) []byte {
	blockAlign := c.channels * 2
	byteRate := c.sampleRate * blockAlign

	out := make([]byte, 44+len(c.data))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(c.data)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(c.channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(c.sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], 16)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(c.data)))
	copy(out[44:], c.data)
	return out
}

// silenceBytes returns zeroed PCM covering duration d in the clip format.
func silenceBytes(sampleRate, channels int, d time.Duration) []byte {
	if d <= 0 {
		return nil
	}
	frames := int(math.Round(float64(sampleRate) * d.Seconds()))
	return make([]byte, frames*channels*2)
}

// applyGainDB scales 16-bit samples by a decibel gain, clipping at the
// sample range.
func applyGainDB(data []byte, db float64) {
	if db == 0 {
		return
	}
	factor := math.Pow(10, db/20)
	for i := 0; i+1 < len(data); i += 2 {
		sample := float64(int16(binary.LittleEndian.Uint16(data[i : i+2])))
		scaled := sample * factor
		if scaled > math.MaxInt16 {
			scaled = math.MaxInt16
		} else if scaled < math.MinInt16 {
			scaled = math.MinInt16
		}
		binary.LittleEndian.PutUint16(data[i:i+2], uint16(int16(scaled)))
	}
}

// splice joins clips into one continuous clip, inserting gaps[i] of
// silence before clips[i]. All clips must share one sample format.
func splice(clips []clip, gaps []time.Duration) (clip, error) {
	if len(clips) == 0 {
		return clip{}, fmt.Errorf("no segments to splice")
	}
	if len(gaps) != len(clips) {
		return clip{}, fmt.Errorf("gap count %d does not match segment count %d", len(gaps), len(clips))
	}

	out := clip{sampleRate: clips[0].sampleRate, channels: clips[0].channels}
	for i, c := range clips {
		if c.sampleRate != out.sampleRate || c.channels != out.channels {
			return clip{}, fmt.Errorf("segment %d format %dHz/%dch differs from %dHz/%dch",
				i, c.sampleRate, c.channels, out.sampleRate, out.channels)
		}
		out.data = append(out.data, silenceBytes(out.sampleRate, out.channels, gaps[i])...)
		out.data = append(out.data, c.data...)
	}
	return out, nil
}
