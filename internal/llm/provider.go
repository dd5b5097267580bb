package llm

import (
	"context"
	"encoding/json"
)

// Provider generates tutor content. Every lesson call asks for one JSON
// document shaped by a Schema; the tutor package owns the schemas and
// the decoding.
type Provider interface {
	// Generate sends req and returns the validated reply. With a Schema
	// the Content is a JSON object conforming to it; without one it is the
	// trimmed text the model produced.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request is one tutor call.
type Request struct {
	System string

	// Messages is the conversation so far. Content calls send a single
	// user message; roleplay replies replay the recent transcript with
	// the tutor's lines as RoleAssistant.
	Messages []Message

	// Schema, when set, switches the provider to its native structured
	// output mode and enables response validation.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the sender of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema describes the JSON document a call must return.
type Schema struct {
	// Name is kebab-case ("lesson-content", "word-definition") and keys
	// the compiled-schema cache, so it must be unique per Definition.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a validated reply.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // StopEnd or StopMaxTokens
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// reply is what a backend extracted from its SDK response before the
// shared cleanup in finish.
type reply struct {
	text  string
	model string
	stop  string
	usage Usage
}

// finish unwraps code fences, validates against req.Schema and builds the
// Response. A schema failure on a reply cut off by the token limit is
// reported as ErrMaxTokensExceeded so it is not retried.
func finish(req Request, r reply) (*Response, error) {
	content := cleanContent(r.text)
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			if r.stop == StopMaxTokens {
				return nil, &ErrMaxTokensExceeded{Content: content}
			}
			return nil, err
		}
	}
	if r.usage.TotalTokens == 0 {
		r.usage.TotalTokens = r.usage.InputTokens + r.usage.OutputTokens
	}
	return &Response{
		Content:    content,
		Usage:      r.usage,
		Model:      r.model,
		StopReason: r.stop,
	}, nil
}
