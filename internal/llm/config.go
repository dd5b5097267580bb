package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig
	Speech     SpeechConfig

	// Timeout bounds a single LLM request including retries.
	// Zero means no timeout.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-flash"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// SpeechConfig selects the text-to-speech backend. Provider defaults to
// the text provider when it can synthesize speech (gemini, openai).
type SpeechConfig struct {
	Provider string // "gemini", "openai", "mock", "none"
	Model    string
	Voice    string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
//
// Requests are attempted once with no timeout; every tutor call has a
// static fallback, so a failed call degrades content rather than blocking.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv is DefaultConfig with MYENGLISH_* overrides applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// keyed lists the providers that need an API key, in discovery order,
// with the standard variable each vendor documents.
var keyed = []struct {
	name   string
	stdEnv string
	key    func(*Config) *string
	model  func(*Config) *string
}{
	{"gemini", "GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }, func(c *Config) *string { return &c.Gemini.Model }},
	{"openai", "OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }, func(c *Config) *string { return &c.OpenAI.Model }},
	{"anthropic", "ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }, func(c *Config) *string { return &c.Anthropic.Model }},
	{"openrouter", "OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }, func(c *Config) *string { return &c.OpenRouter.Model }},
}

// envName is the MYENGLISH_* variable for a provider setting, e.g.
// MYENGLISH_GEMINI_API_KEY.
func envName(provider, setting string) string {
	return "MYENGLISH_" + strings.ToUpper(provider) + "_" + setting
}

// ApplyEnv overrides fields of c with any MYENGLISH_* variables that are set.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Provider, "MYENGLISH_LLM_PROVIDER")
	for _, p := range keyed {
		set(p.key(c), envName(p.name, "API_KEY"))
		set(p.model(c), envName(p.name, "MODEL"))
	}
	set(&c.OpenAI.BaseURL, "MYENGLISH_OPENAI_BASE_URL")
	set(&c.Speech.Provider, "MYENGLISH_SPEECH_PROVIDER")
	set(&c.Speech.Model, "MYENGLISH_SPEECH_MODEL")
	set(&c.Speech.Voice, "MYENGLISH_SPEECH_VOICE")

	if n, err := strconv.Atoi(os.Getenv("MYENGLISH_LLM_RETRIES")); err == nil && n > 0 {
		c.Retry.MaxAttempts = n
	}
	if d, err := time.ParseDuration(os.Getenv("MYENGLISH_LLM_TIMEOUT")); err == nil {
		c.Timeout = d
	}
}

// DiscoverConfig returns defaults for the first provider whose standard
// key variable (GEMINI_API_KEY, OPENAI_API_KEY, ...) is set.
func DiscoverConfig() (Config, bool) {
	for _, p := range keyed {
		if k := os.Getenv(p.stdEnv); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = p.name
			*p.key(&cfg) = k
			return cfg, true
		}
	}
	return Config{}, false
}

// SpeechProvider resolves which backend synthesizes speech.
func (c Config) SpeechProvider() string {
	if c.Speech.Provider != "" {
		return c.Speech.Provider
	}
	switch {
	case c.Provider == "gemini", c.Provider == "openai", c.Provider == "mock":
		return c.Provider
	case c.Gemini.APIKey != "":
		return "gemini"
	case c.OpenAI.APIKey != "":
		return "openai"
	}
	return "none"
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Provider == "mock" {
		return nil
	}
	for _, p := range keyed {
		if p.name != c.Provider {
			continue
		}
		if *p.key(&c) == "" {
			return fmt.Errorf("%s provider needs an API key: set %s or %s",
				p.name, envName(p.name, "API_KEY"), p.stdEnv)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider %q", c.Provider)
}
