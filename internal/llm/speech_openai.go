package llm

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAISpeechModel = "gpt-4o-mini-tts"
	defaultOpenAIVoice       = "alloy"
)

// OpenAISpeech implements SpeechSynthesizer with the OpenAI speech API.
// The "pcm" response format is 24 kHz mono s16le, matching Gemini.
type OpenAISpeech struct {
	client *openai.Client
	model  string
	voice  string
}

// NewOpenAISpeech creates an OpenAI text-to-speech synthesizer.
func NewOpenAISpeech(cfg OpenAIConfig, speech SpeechConfig) (*OpenAISpeech, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	s := &OpenAISpeech{
		client: openai.NewClientWithConfig(config),
		model:  speech.Model,
		voice:  speech.Voice,
	}
	if s.model == "" {
		s.model = defaultOpenAISpeechModel
	}
	if s.voice == "" {
		s.voice = defaultOpenAIVoice
	}
	return s, nil
}

func (s *OpenAISpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, openaiError(err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(resp)
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("read speech body: %w", err)}
	}
	if len(pcm) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty audio in OpenAI response")}
	}
	return pcm, nil
}

func (s *OpenAISpeech) ModelID() string {
	return s.model
}
