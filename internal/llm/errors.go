package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimit is a 429 from the provider.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is a reply that is not JSON, does not match the
// schema, or decodes into content the tutor cannot use.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("unusable tutor reply: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers network failures, 5xx and auth errors.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "tutor provider unavailable"
	}
	return fmt.Sprintf("tutor provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a structured reply cut off by the token limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("tutor reply truncated after %d bytes: raise max tokens", len(e.Content))
}

// Failure reasons recorded with events and fallback logs.
const (
	ReasonCanceled    = "canceled"
	ReasonTimeout     = "timeout"
	ReasonRateLimited = "rate_limited"
	ReasonTruncated   = "truncated"
	ReasonInvalid     = "invalid"
	ReasonUnavailable = "unavailable"
)

// Reason classifies err into one of the Reason constants, or "" for nil.
func Reason(err error) string {
	var (
		rl  *ErrRateLimit
		mt  *ErrMaxTokensExceeded
		inv *ErrInvalidResponse
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &rl):
		return ReasonRateLimited
	case errors.As(err, &mt):
		return ReasonTruncated
	case errors.As(err, &inv):
		return ReasonInvalid
	default:
		return ReasonUnavailable
	}
}

// classifyStatus maps an SDK error with an HTTP status to the package
// error types. Client errors other than 429 are not worth retrying but
// still surface as unavailable so the tutor falls back.
func classifyStatus(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
