package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"codeberg.org/charliev/ankivocab/internal/script"
)

// OpenAIGateway renders pronunciation scripts via the OpenAI TTS API,
// one request per voice segment, and splices the responses into one
// continuous WAV asset.
type OpenAIGateway struct {
	client  *openai.Client
	config  Config
	breaker *gobreaker.CircuitBreaker
}

// NewOpenAIGateway creates a new OpenAI speech gateway.
func NewOpenAIGateway(config Config) (*OpenAIGateway, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini-tts"
	}

	return &OpenAIGateway{
		client: openai.NewClient(config.APIKey),
		config: config,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openai-speech",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}, nil
}

// Name returns the provider name.
func (g *OpenAIGateway) Name() string {
	return "openai"
}

// Synthesize renders the script into a single PCM16 WAV asset. The gaps
// between segments are inserted as exact spans of silence, so the asset's
// internal timing matches the script.
func (g *OpenAIGateway) Synthesize(ctx context.Context, s script.PronunciationScript) ([]byte, error) {
	if len(s.Segments) == 0 {
		return nil, fmt.Errorf("%w: script has no segments", ErrRejected)
	}

	clips := make([]clip, 0, len(s.Segments))
	gaps := make([]time.Duration, 0, len(s.Segments))
	for i, seg := range s.Segments {
		c, err := g.synthesizeSegment(ctx, seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", i, seg.Voice, err)
		}
		clips = append(clips, c)
		gaps = append(gaps, seg.GapBefore)
	}

	out, err := splice(clips, gaps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return encodeWAV(out), nil
}

func (g *OpenAIGateway) synthesizeSegment(ctx context.Context, seg script.VoiceSegment) (clip, error) {
	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(g.config.Model),
		Input:          seg.Text,
		Voice:          openai.SpeechVoice(seg.Voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	}
	if seg.Prosody.SpeakingRate > 0 {
		req.Speed = seg.Prosody.SpeakingRate
	}
	if instruction := g.voiceInstruction(seg); instruction != "" {
		req.Instructions = instruction
	}

	value, err := g.breaker.Execute(func() (interface{}, error) {
		response, err := g.client.CreateSpeech(ctx, req)
		if err != nil {
			return nil, err
		}
		defer response.Close()
		return io.ReadAll(response)
	})
	if err != nil {
		return clip{}, classifySpeechError(err)
	}

	raw := value.([]byte)
	if len(raw) == 0 {
		return clip{}, fmt.Errorf("%w: no audio data received", ErrRejected)
	}

	c, err := decodeWAV(raw)
	if err != nil {
		return clip{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	applyGainDB(c.data, seg.Prosody.VolumeGainDB)
	return c, nil
}

// voiceInstruction folds the segment's language and pitch into a voice
// instruction. Only the gpt-4o-mini-tts model honors instructions.
func (g *OpenAIGateway) voiceInstruction(seg script.VoiceSegment) string {
	if g.config.Model != "gpt-4o-mini-tts" {
		return ""
	}
	instruction := fmt.Sprintf("Speak in language %q, slowly and clearly for a language learner.", seg.Language)
	if seg.Prosody.Pitch > 0 {
		instruction += " Use a slightly higher pitch than normal."
	} else if seg.Prosody.Pitch < 0 {
		instruction += " Use a slightly lower pitch than normal."
	}
	return instruction
}

func classifySpeechError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	if strings.Contains(err.Error(), "does not have access to model") {
		return fmt.Errorf("%w: %v (try --tts-model tts-1-hd)", ErrRejected, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
