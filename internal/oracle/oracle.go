// Package oracle defines the narrow interfaces to the external LLM service.
// The engine consumes text generation and structured relevance judgment as
// opaque request/response calls; model choice and prompt quality are the
// provider's concern.
package oracle

import "context"

// TextRequest is a single generation call.
type TextRequest struct {
	// Prompt is the fully assembled prompt, context included.
	Prompt string

	// ReferenceFiles are optional URIs the oracle may consult, capped by
	// the caller.
	ReferenceFiles []string
}

// TextResult is what the oracle returned, metadata verbatim.
type TextResult struct {
	Content string

	// ReferenceSources are citation pointers the oracle reports having
	// drawn on. Persisted as-is.
	ReferenceSources []string

	// ContextSummary is the oracle's own one-line account of the context it
	// used. Persisted as-is.
	ContextSummary string
}

// TextGenerator generates section content.
type TextGenerator interface {
	GenerateText(ctx context.Context, req *TextRequest) (*TextResult, error)
	Name() string
}

// JudgeRequest is a structured-judgment call. Schema describes the JSON
// shape the oracle must return; providers embed it in the prompt.
type JudgeRequest struct {
	Prompt string
	Schema string
}

// Judge returns raw JSON conforming (hopefully) to the requested schema.
// Callers parse and validate; malformed output is their ErrOracleFailure to
// raise.
type Judge interface {
	Judge(ctx context.Context, req *JudgeRequest) ([]byte, error)
}
