package audio

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/charliev/ankivocab/internal/script"
)

// ErrUnavailable indicates a transient synthesis failure (network, rate
// limit, service outage). Callers may retry.
var ErrUnavailable = errors.New("speech service unavailable")

// ErrRejected indicates the service cannot synthesize this script.
// Permanent for the term; retrying will not help.
var ErrRejected = errors.New("synthesis rejected")

// Gateway is the interface to the external speech-synthesis service.
type Gateway interface {
	// Synthesize renders the script into a single continuous audio asset.
	// Segment N+1 begins at segment N's end plus the script's gap.
	Synthesize(ctx context.Context, s script.PronunciationScript) ([]byte, error)

	// Name returns the provider name.
	Name() string
}

// Config holds common configuration for speech gateways.
type Config struct {
	APIKey string
	Model  string // OpenAI TTS model: "tts-1", "tts-1-hd" or "gpt-4o-mini-tts"
}

// NewGateway creates the named speech gateway.
func NewGateway(provider string, config Config) (Gateway, error) {
	switch provider {
	case "openai":
		return NewOpenAIGateway(config)
	default:
		return nil, fmt.Errorf("unknown speech provider: %s", provider)
	}
}
