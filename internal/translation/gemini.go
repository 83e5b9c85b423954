package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

// GeminiGateway translates and romanizes terms via the Google Gemini API.
type GeminiGateway struct {
	client  *genai.Client
	config  Config
	breaker *gobreaker.CircuitBreaker
}

// NewGeminiGateway creates a new Gemini translation gateway.
func NewGeminiGateway(ctx context.Context, config Config) (*GeminiGateway, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGateway{
		client:  client,
		config:  config,
		breaker: newBreaker("gemini-translation"),
	}, nil
}

// Name returns the provider name.
func (g *GeminiGateway) Name() string {
	return "gemini"
}

// Translate translates the term, and romanizes it when configured.
func (g *GeminiGateway) Translate(ctx context.Context, term string) (Result, error) {
	prompt := fmt.Sprintf(
		"Translate the %s word or phrase '%s' to %s. Respond with only the translation, nothing else.",
		languageName(g.config.SourceLang), term, languageName(g.config.TargetLang))
	translated, err := g.generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}

	result := Result{Translated: translated}
	if g.config.Romanize {
		result.Romanized, err = g.Romanize(ctx, term)
		if err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

// Romanize returns a Latin-alphabet transliteration of the term.
func (g *GeminiGateway) Romanize(ctx context.Context, term string) (string, error) {
	prompt := fmt.Sprintf(
		"Romanize the %s text '%s' using standard Latin transliteration. Respond with only the romanized text, nothing else.",
		languageName(g.config.SourceLang), term)
	return g.generate(ctx, prompt)
}

func (g *GeminiGateway) generate(ctx context.Context, prompt string) (string, error) {
	value, err := g.breaker.Execute(func() (interface{}, error) {
		return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.3),
		})
	})
	if err != nil {
		return "", classifyGeminiError(err)
	}

	resp := value.(*genai.GenerateContentResponse)
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response from service", ErrRejected)
	}
	return text, nil
}

func classifyGeminiError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
