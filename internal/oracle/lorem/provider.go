// Package lorem is a fake oracle for development and tests: lorem ipsum
// prose for generation, deterministic-shape JSON for judgments. It runs
// without API keys and without network access.
package lorem

import (
	"context"
	"fmt"
	"strings"

	loremgen "github.com/bozaro/golorem"
	"github.com/tidwall/sjson"

	"proposalforge/internal/oracle"
)

// Provider implements both oracle interfaces with generated filler.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem provider.
func NewProvider() *Provider {
	return &Provider{generator: loremgen.New()}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// GenerateText produces a few paragraphs of lorem ipsum.
func (p *Provider) GenerateText(ctx context.Context, req *oracle.TextRequest) (*oracle.TextResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	for i := 0; i < 3; i++ {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.generator.Paragraph(3, 6))
	}

	return &oracle.TextResult{
		Content:          b.String(),
		ReferenceSources: req.ReferenceFiles,
		ContextSummary:   "lorem ipsum placeholder generation",
	}, nil
}

// Judge returns a JSON array with one entry per "Candidate N:" line found in
// the prompt, scored on a descending ramp so ranking order is predictable in
// tests.
func (p *Provider) Judge(ctx context.Context, req *oracle.JudgeRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	count := strings.Count(req.Prompt, "Candidate ")
	if count == 0 {
		return []byte("[]"), nil
	}

	out := []byte("[]")
	for i := 0; i < count; i++ {
		score := 90 - i*7
		if score < 5 {
			score = 5
		}
		entry := map[string]interface{}{
			"index":                   i,
			"relevance_score":         score,
			"similarity_type":         "topic_match",
			"match_reasons":           []string{fmt.Sprintf("placeholder topical overlap (%s)", p.generator.Word(3, 8))},
			"suggested_modifications": "adjust names and dates to this proposal",
			"confidence_level":        "medium",
		}
		var err error
		out, err = sjson.SetBytes(out, fmt.Sprintf("%d", i), entry)
		if err != nil {
			return nil, fmt.Errorf("build judgment: %w", err)
		}
	}

	return out, nil
}
