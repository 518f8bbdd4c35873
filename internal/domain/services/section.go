package services

import (
	"context"

	"proposalforge/internal/domain/models"
)

// SaveSectionRequest is a manual or auto-save of section content.
type SaveSectionRequest struct {
	ProposalID string `json:"proposal_id"`
	SectionKey string `json:"section_key"`
	Content    string `json:"content"`
	Author     string `json:"-"`
	Summary    string `json:"change_summary"`

	// AutoSave marks timer-originated saves. The ledger records both as
	// user_edit; the distinction survives only in the change summary.
	AutoSave bool `json:"-"`
}

// MarkForReviewRequest flags a section for reviewer attention.
type MarkForReviewRequest struct {
	ProposalID string
	SectionKey string
	MarkedBy   string
}

// SectionService owns the Section Store contract: current-snapshot reads and
// writes, manual save (which also appends to the ledger), and the review
// marking flow.
type SectionService interface {
	GetSection(ctx context.Context, proposalID, sectionKey string) (*models.Section, error)
	ListSections(ctx context.Context, proposalID string) ([]models.Section, error)

	// UpsertSection creates or patches a section. Recomputes word_count from
	// content whenever content is part of the patch. Never writes a version;
	// callers own that decision.
	UpsertSection(ctx context.Context, proposalID, sectionKey string, patch models.SectionPatch) (*models.Section, error)

	// SaveSection persists human-originated content and appends a ledger
	// entry: initial_creation for a section's first version, user_edit after.
	SaveSection(ctx context.Context, req *SaveSectionRequest) (*models.Section, error)

	// MarkForReview rejects empty content, stamps the reviewer request on
	// the section and emits notification payloads plus a stage transition
	// request through the ReviewNotifier.
	MarkForReview(ctx context.Context, req *MarkForReviewRequest) (*models.Section, error)
}

// ReviewNotifier is the external collaborator that delivers review
// notifications and moves the proposal on the workflow board. The engine
// only emits correct payloads; delivery failures are logged, not fatal.
type ReviewNotifier interface {
	NotifyReviewRequested(ctx context.Context, n models.ReviewNotification) error
	RequestStageTransition(ctx context.Context, r models.StageTransitionRequest) error
}
