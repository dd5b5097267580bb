package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/myenglish/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging. The provider name is
// stored alongside each event.
func WithLogging(p Provider, provider string, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := event(l.provider, l.inner.ModelID(), PurposeFrom(ctx), start, err)
	ev.RequestBody = serializeRequest(req)
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	appendEvent(ctx, l.eventRepo, ev)
	return resp, err
}

// event fills the fields every logged call shares.
func event(provider, model, purpose string, start time.Time, err error) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:  provider,
		Model:     model,
		Purpose:   purpose,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		ev.ErrorMessage = Reason(err) + ": " + err.Error()
	}
	return ev
}

// appendEvent writes ev even when ctx is already cancelled. Write errors
// are dropped; the log never fails a tutor call.
func appendEvent(ctx context.Context, repo store.EventRepo, ev store.LLMRequestEventData) {
	_ = repo.AppendLLMRequest(context.WithoutCancel(ctx), ev)
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// LoggingSpeech records every synthesis call as an LLM event with the
// "speech" purpose. Audio bytes are not stored, only their size.
type LoggingSpeech struct {
	inner     SpeechSynthesizer
	provider  string
	eventRepo store.EventRepo
}

// WithSpeechLogging wraps a SpeechSynthesizer with event logging.
func WithSpeechLogging(s SpeechSynthesizer, provider string, repo store.EventRepo) SpeechSynthesizer {
	return &LoggingSpeech{inner: s, provider: provider, eventRepo: repo}
}

func (l *LoggingSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	start := time.Now()
	pcm, err := l.inner.Synthesize(ctx, text)

	ev := event(l.provider, l.inner.ModelID(), "speech", start, err)
	ev.RequestBody = text
	ev.ResponseBody = fmt.Sprintf("%d bytes PCM", len(pcm))
	appendEvent(ctx, l.eventRepo, ev)
	return pcm, err
}

func (l *LoggingSpeech) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest renders a request the way `myenglish llm view` shows it.
func serializeRequest(req Request) string {
	var b strings.Builder
	section := func(label, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", label, body)
	}
	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
