package llm

import "context"

type purposeKey struct{}

// WithPurpose tags ctx with the tutor operation making the call
// ("lesson-context", "text-evaluation", ...). The tag is stored with
// each request event.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
