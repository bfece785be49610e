package ai

import "context"

// Completion is the raw model output for a single prompt.
type Completion struct {
	Text       string
	TokensUsed int
}

// TextGenerator produces model text for a prompt. Implementations are expected
// to honor the context deadline and fail rather than retry.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
	Model() string
}
