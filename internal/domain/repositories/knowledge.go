package repositories

import (
	"context"

	"proposalforge/internal/domain/models"
)

// ProposalRepository reads proposal metadata (outcome, agency, reviewers).
type ProposalRepository interface {
	GetByID(ctx context.Context, id string) (*models.Proposal, error)
	Create(ctx context.Context, proposal *models.Proposal) error
}

// KnowledgeRepository fans out over the supporting collections the context
// assembler reads. Each method returns an empty slice rather than an error
// when the collection has no rows.
type KnowledgeRepository interface {
	ListComplianceItems(ctx context.Context, proposalID string) ([]models.ComplianceItem, error)
	ListWinThemes(ctx context.Context, proposalID string) ([]models.WinTheme, error)
	ListPastPerformance(ctx context.Context, proposalID string, limit int) ([]models.PastPerformance, error)
	ListPartnerCapabilities(ctx context.Context, proposalID string) ([]models.PartnerCapability, error)
}

// DraftBufferStore holds in-progress editor buffers per proposal, keyed by
// section key. The auto-save reconciler drains it; the editing surface
// writes it.
type DraftBufferStore interface {
	// Put stores buffered content for a section key.
	Put(ctx context.Context, proposalID, sectionKey, content string) error

	// Snapshot returns the current buffer map for a proposal.
	Snapshot(ctx context.Context, proposalID string) (map[string]string, error)

	// Proposals lists proposal IDs that currently have buffered content.
	Proposals(ctx context.Context) ([]string, error)
}
