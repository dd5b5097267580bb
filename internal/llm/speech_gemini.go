package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultGeminiSpeechModel = "gemini-2.5-flash-preview-tts"
	defaultGeminiVoice       = "Kore"
)

// GeminiSpeech implements SpeechSynthesizer with Gemini's native audio
// output, which returns 24 kHz mono s16le PCM.
type GeminiSpeech struct {
	client *genai.Client
	model  string
	voice  string
}

// NewGeminiSpeech creates a Gemini text-to-speech synthesizer.
func NewGeminiSpeech(ctx context.Context, apiKey string, cfg SpeechConfig) (*GeminiSpeech, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	s := &GeminiSpeech{client: client, model: cfg.Model, voice: cfg.Voice}
	if s.model == "" {
		s.model = defaultGeminiSpeechModel
	}
	if s.voice == "" {
		s.voice = defaultGeminiVoice
	}
	return s, nil
}

func (s *GeminiSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(text), config)
	if err != nil {
		return nil, geminiError(err)
	}

	for _, c := range result.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, &ErrInvalidResponse{Err: fmt.Errorf("no audio data in Gemini response")}
}

func (s *GeminiSpeech) ModelID() string {
	return s.model
}
