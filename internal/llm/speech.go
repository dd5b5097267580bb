package llm

import (
	"context"
	"sync"
)

// Speech output format shared by every synthesizer: raw mono signed
// 16-bit little-endian PCM.
const (
	SpeechSampleRate = 24000
	SpeechChannels   = 1
)

// SpeechSynthesizer turns text into raw PCM audio.
type SpeechSynthesizer interface {
	// Synthesize returns mono s16le PCM at SpeechSampleRate.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// ModelID returns the speech model identifier.
	ModelID() string
}

// MockSpeech is a deterministic SpeechSynthesizer for testing. Each call
// returns a short buffer derived from the text length unless Err is set.
type MockSpeech struct {
	mu    sync.Mutex
	Err   error
	Texts []string
}

// NewMockSpeech creates a MockSpeech.
func NewMockSpeech() *MockSpeech {
	return &MockSpeech{}
}

func (m *MockSpeech) Synthesize(_ context.Context, text string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Texts = append(m.Texts, text)
	if m.Err != nil {
		return nil, m.Err
	}
	// Two bytes per sample; one sample per character keeps tests cheap.
	return make([]byte, 2*len(text)), nil
}

func (m *MockSpeech) ModelID() string {
	return "mock-tts"
}

// CallCount returns the number of Synthesize calls made.
func (m *MockSpeech) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Texts)
}
