package interfaces

import (
	"context"
)

// TextGenerator is the external text-generation collaborator used for
// ratio explanations. Implementations wrap a cloud LLM provider.
type TextGenerator interface {
	// Generate sends a single prompt and returns the generated text.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control. Callers set a
	//     per-call deadline; implementations must return promptly once it expires.
	//   - prompt: Complete instruction text, including any data to explain
	//
	// Returns:
	//   - string: Generated prose. Implementations never return an empty
	//     string together with a nil error.
	//   - error: Missing API key, provider failure, rate limit after retries,
	//     context cancellation, or an empty response
	Generate(ctx context.Context, prompt string) (string, error)
}
