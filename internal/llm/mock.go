package llm

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MockResponse is one scripted reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and records every
// request. Replies are not checked against the request schema. When the
// script runs out it answers from Fallback, or fails with
// ErrProviderUnavailable when Fallback is nil.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	Fallback func(Request) MockResponse
}

// NewMockProvider scripts the given replies.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewSampleProvider answers every call with a placeholder document built
// from the request schema. It backs the "mock" provider setting so the
// full lesson flow runs offline against the structured-output path.
func NewSampleProvider() *MockProvider {
	return &MockProvider{Fallback: SampleResponse}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var next MockResponse
	switch {
	case len(m.responses) > 0:
		next = m.responses[0]
		m.responses = m.responses[1:]
	case m.Fallback != nil:
		next = m.Fallback(req)
	default:
		next.Err = &ErrProviderUnavailable{}
	}
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{
		Content:    cleanContent(string(next.Content)),
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends a scripted reply.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns how many calls were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or false before any call.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

// SampleResponse builds a reply that satisfies req.Schema. Requests
// without a schema get a plain sentence.
func SampleResponse(req Request) MockResponse {
	var v any = "This is a sample reply."
	if req.Schema != nil {
		v = sampleValue("", req.Schema.Definition)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return MockResponse{Err: err}
	}
	return MockResponse{Content: raw}
}

func sampleValue(name string, def map[string]any) any {
	if enum, ok := def["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}
	switch def["type"] {
	case "object":
		props, _ := def["properties"].(map[string]any)
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(props))
		for _, k := range keys {
			if sub, ok := props[k].(map[string]any); ok {
				out[k] = sampleValue(k, sub)
			}
		}
		return out
	case "array":
		items, _ := def["items"].(map[string]any)
		n := 1
		if mi, ok := def["minItems"].(int); ok && mi > n {
			n = mi
		}
		out := make([]any, n)
		for i := range out {
			out[i] = sampleValue(name, items)
		}
		return out
	case "integer":
		return 80
	case "number":
		return 80.0
	case "boolean":
		return true
	default:
		if name == "" {
			return "sample"
		}
		return "Sample " + name + "."
	}
}
