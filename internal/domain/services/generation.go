package services

import (
	"context"

	"proposalforge/internal/domain/models"
)

// GenerateSectionRequest asks the orchestrator to draft or improve a section.
type GenerateSectionRequest struct {
	ProposalID     string   `json:"-"`
	SectionKey     string   `json:"-"`
	IsRegenerate   bool     `json:"is_regenerate"`
	ReferenceFiles []string `json:"reference_files,omitempty"`
	RequestedBy    string   `json:"-"`
}

// GeneratedResult is the persisted outcome of a successful generation.
type GeneratedResult struct {
	Section *models.Section `json:"section"`
	Version *models.Version `json:"version"`
}

// GenerationService sequences oracle calls and persists their results.
// Only one generation may be in flight per section key at a time.
type GenerationService interface {
	Generate(ctx context.Context, req *GenerateSectionRequest) (*GeneratedResult, error)
}

// PriorSection is a truncated excerpt of an earlier section in the same
// proposal, included for continuity.
type PriorSection struct {
	SectionKey string
	Excerpt    string
}

// ContextBundle is the bounded prompt context for one generation request.
// Every field degrades to empty when its upstream collection is missing;
// the caps keep prompt size roughly constant regardless of proposal size.
type ContextBundle struct {
	ProposalTitle       string
	Agency              string
	PriorSections       []PriorSection
	ComplianceItems     []string
	WinThemes           []string
	PastPerformance     []string
	PartnerCapabilities []string
}

// ContextAssembler builds a ContextBundle for a (proposal, section key) pair.
type ContextAssembler interface {
	BuildContext(ctx context.Context, proposalID, sectionKey string) (*ContextBundle, error)
}
