package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/myenglish/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewSampleProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → logging → base
	var p Provider = base
	if eventRepo != nil {
		p = WithLogging(p, cfg.Provider, eventRepo)
	}
	p = WithRetry(p, cfg.Retry)
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}

	return p, nil
}

// NewSpeechSynthesizer creates the text-to-speech backend selected by
// cfg.SpeechProvider. It returns (nil, nil) when speech is disabled.
func NewSpeechSynthesizer(ctx context.Context, cfg Config, eventRepo store.EventRepo) (SpeechSynthesizer, error) {
	var base SpeechSynthesizer
	var err error

	provider := cfg.SpeechProvider()
	switch provider {
	case "gemini":
		base, err = NewGeminiSpeech(ctx, cfg.Gemini.APIKey, cfg.Speech)
	case "openai":
		base, err = NewOpenAISpeech(cfg.OpenAI, cfg.Speech)
	case "mock":
		return NewMockSpeech(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown speech provider: %q", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s speech: %w", provider, err)
	}

	if eventRepo != nil {
		base = WithSpeechLogging(base, provider, eventRepo)
	}
	return base, nil
}

// TimeoutProvider bounds every Generate call with a deadline.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider so each call is cancelled after d.
func WithTimeout(p Provider, d time.Duration) Provider {
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
