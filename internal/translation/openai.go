package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// OpenAIGateway translates and romanizes terms via OpenAI chat completions.
type OpenAIGateway struct {
	client  *openai.Client
	config  Config
	breaker *gobreaker.CircuitBreaker
}

// NewOpenAIGateway creates a new OpenAI translation gateway.
func NewOpenAIGateway(config Config) (*OpenAIGateway, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}

	return &OpenAIGateway{
		client:  openai.NewClient(config.APIKey),
		config:  config,
		breaker: newBreaker("openai-translation"),
	}, nil
}

// Name returns the provider name.
func (g *OpenAIGateway) Name() string {
	return "openai"
}

// Translate translates the term, and romanizes it when configured.
func (g *OpenAIGateway) Translate(ctx context.Context, term string) (Result, error) {
	prompt := fmt.Sprintf(
		"Translate the %s word or phrase '%s' to %s. Respond with only the translation, nothing else.",
		languageName(g.config.SourceLang), term, languageName(g.config.TargetLang))
	translated, err := g.complete(ctx, prompt)
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
func (g *OpenAIGateway) Romanize(ctx context.Context, term string) (string, error) {
	prompt := fmt.Sprintf(
		"Romanize the %s text '%s' using standard Latin transliteration. Respond with only the romanized text, nothing else.",
		languageName(g.config.SourceLang), term)
	return g.complete(ctx, prompt)
}

func (g *OpenAIGateway) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   100,
		Temperature: 0.3,
	}

	value, err := g.breaker.Execute(func() (interface{}, error) {
		return g.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	resp := value.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty response from service", ErrRejected)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyOpenAIError maps API errors onto the gateway error taxonomy:
// rate limits, server errors and network failures are transient, anything
// the service refused outright is permanent for the term.
func classifyOpenAIError(err error) error {
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

	// Network-level failure
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// languageName expands a language code to a name the chat models respond
// to more reliably than bare codes.
func languageName(code string) string {
	switch strings.ToLower(strings.SplitN(code, "-", 2)[0]) {
	case "ru":
		return "Russian"
	case "en":
		return "English"
	case "bg":
		return "Bulgarian"
	case "":
		return "source-language"
	default:
		return code
	}
}
