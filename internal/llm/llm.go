// Package llm talks to the text-completion providers used for scoring.
//
// Exactly one provider is active per run. Both return the raw reply text on
// success; failures are reported as ErrRateLimited or a *StatusError.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kevinmichaelchen/repo-fit/internal/config"
	"github.com/kevinmichaelchen/repo-fit/internal/prompt"
)

// Completer sends a single prompt and returns the model's reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Provider string

const (
	ProviderNone   Provider = ""
	ProviderGroq   Provider = "groq"
	ProviderGemini Provider = "gemini"
)

func (p Provider) String() string {
	switch p {
	case ProviderGroq:
		return "Groq"
	case ProviderGemini:
		return "Gemini"
	default:
		return "none"
	}
}

var (
	// ErrNoCredential means no provider API key is configured.
	ErrNoCredential = errors.New("no LLM API key configured: set GROQ_API_KEY or GEMINI_API_KEY")
	// ErrRateLimited is returned once the rate-limit retries are used up.
	ErrRateLimited = errors.New("API rate limit exceeded after retries")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// StatusError is a non-success HTTP status from a provider.
type StatusError struct {
	Provider Provider
	Code     int
	Err      error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// SelectProvider picks the provider for this run. LLM_PROVIDER wins when set;
// otherwise Groq is preferred and Gemini is the fallback.
func SelectProvider(cfg *config.Config) (Provider, error) {
	switch Provider(cfg.LLMProvider) {
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return ProviderNone, fmt.Errorf("LLM_PROVIDER=groq: %w", ErrNoCredential)
		}
		return ProviderGroq, nil
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return ProviderNone, fmt.Errorf("LLM_PROVIDER=gemini: %w", ErrNoCredential)
		}
		return ProviderGemini, nil
	case ProviderNone:
	default:
		return ProviderNone, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}

	if cfg.GroqAPIKey != "" {
		return ProviderGroq, nil
	}
	if cfg.GeminiAPIKey != "" {
		return ProviderGemini, nil
	}
	return ProviderNone, ErrNoCredential
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Options struct {
	Temperature float32
	MaxTokens   int
	HTTPClient  *http.Client
	Sleep       Sleeper
}

// OptionsFor returns the generation settings used with each prompt variant.
func OptionsFor(v prompt.Variant) Options {
	if v == prompt.Detailed {
		return Options{Temperature: 0.2, MaxTokens: 1000}
	}
	return Options{Temperature: 0.3, MaxTokens: 500}
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.Sleep == nil {
		o.Sleep = Sleep
	}
	return o
}

// New builds the Completer for p.
func New(p Provider, cfg *config.Config, opts Options) (Completer, error) {
	switch p {
	case ProviderGroq:
		return NewGroqClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, opts), nil
	case ProviderGemini:
		return NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, opts), nil
	default:
		return nil, ErrNoCredential
	}
}
