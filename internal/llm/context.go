package llm

import "context"

// Purposes label recorded requests so llm stats can split them.
const (
	PurposeQuizEnrich   = "quiz-enrich"
	PurposeLessonEnrich = "lesson-enrich"
)

type purposeKey struct{}

func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}
