// Package assistant orchestrates retrieval and text generation into a
// final answer with a confidence score. Generation is an optional
// collaborator: when it fails, times out or is not configured at all,
// the synthesizer falls back to a deterministic template so the system
// always answers.
package assistant

import (
	"context"
	"fmt"
)

// Generation is the result of one external generation call.
type Generation struct {
	Answer string
	// Certainty is an optional self-reported quality signal in (0,1].
	// Zero means the generator provided none.
	Certainty float64
}

// Generator is the external text-generation capability. Implementations
// must honor the context deadline; any error is treated by the caller
// as "generation unavailable".
type Generator interface {
	Generate(ctx context.Context, query string, groundingContext string) (Generation, error)
}

// GenerationUnavailableError reports a failed or timed-out generation
// call. It is recovered internally via fallback synthesis and never
// surfaces to the API caller.
type GenerationUnavailableError struct {
	Err error
}

func (e *GenerationUnavailableError) Error() string {
	if e.Err == nil {
		return "generation unavailable"
	}
	return fmt.Sprintf("generation unavailable: %v", e.Err)
}

func (e *GenerationUnavailableError) Unwrap() error { return e.Err }
