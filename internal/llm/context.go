package llm

import "context"

type purposeKey struct{}

// UnknownPurpose labels requests made without WithPurpose.
const UnknownPurpose = "unknown"

// WithPurpose tags ctx with what the request is for, e.g. "roadmap". The
// label is recorded with every logged request. An empty purpose leaves ctx
// unchanged.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	if purpose == "" {
		return ctx
	}
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or UnknownPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return UnknownPurpose
}
