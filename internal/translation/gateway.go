package translation

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable indicates a transient failure (network, rate limit,
// service outage). Callers may retry.
var ErrUnavailable = errors.New("translation service unavailable")

// ErrRejected indicates the service cannot process this term. Permanent
// for the term; retrying will not help.
var ErrRejected = errors.New("translation rejected")

// Result is the immutable outcome of translating one term.
type Result struct {
	Translated string
	Romanized  string
}

// Gateway is the interface to the external translation/romanization
// service.
type Gateway interface {
	// Translate returns the target-language text for term, and its
	// romanization when the gateway was configured to produce one.
	Translate(ctx context.Context, term string) (Result, error)

	// Name returns the provider name.
	Name() string
}

// Config holds common configuration for translation gateways. Credentials
// are passed in explicitly; gateways never read the environment themselves.
type Config struct {
	APIKey     string
	Model      string
	SourceLang string
	TargetLang string
	Romanize   bool
}

// NewGateway creates the named translation gateway.
func NewGateway(ctx context.Context, provider string, config Config) (Gateway, error) {
	switch provider {
	case "openai":
		return NewOpenAIGateway(config)
	case "gemini":
		return NewGeminiGateway(ctx, config)
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", provider)
	}
}
