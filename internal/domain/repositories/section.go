package repositories

import (
	"context"

	"proposalforge/internal/domain/models"
)

// SectionRepository is the Section Store. One row per
// (proposal_id, section_key); callers own the decision to append a version.
type SectionRepository interface {
	// Get retrieves a section by proposal and key. Returns
	// domain.ErrNotFound on a miss (callers treat that as create-on-first-write).
	Get(ctx context.Context, proposalID, sectionKey string) (*models.Section, error)

	// GetByID retrieves a section by its row ID.
	GetByID(ctx context.Context, id string) (*models.Section, error)

	// Upsert creates or patches the section for (proposalID, sectionKey).
	// Word count recomputation happens in the service layer before the call;
	// the repository persists what it is given. Last writer wins.
	Upsert(ctx context.Context, section *models.Section) error

	// ListByProposal returns all sections of a proposal ordered by display
	// order ascending.
	ListByProposal(ctx context.Context, proposalID string) ([]models.Section, error)

	// ListReusable returns non-empty sections with the given section key
	// from proposals other than excludeProposalID whose outcome is in
	// outcomes. Feeds the reuse ranker's candidate pool.
	ListReusable(ctx context.Context, sectionKey, excludeProposalID string, outcomes []models.ProposalOutcome) ([]models.Section, error)
}

// VersionRepository is the append-only Version Ledger.
type VersionRepository interface {
	// Append writes a new version row. Returns
	// domain.ErrConcurrencyConflict if the (section_id, version_number) pair
	// is already claimed.
	Append(ctx context.Context, version *models.Version) error

	// MaxVersionNumber returns the highest version number for a section, or
	// 0 if the ledger is empty.
	MaxVersionNumber(ctx context.Context, sectionID string) (int, error)

	// List returns all versions for a section, newest first.
	List(ctx context.Context, sectionID string) ([]models.Version, error)

	// GetByNumber retrieves one version by its number.
	GetByNumber(ctx context.Context, sectionID string, versionNumber int) (*models.Version, error)
}

// SuggestionRepository stores reuse suggestions.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *models.ReuseSuggestion) error
	GetByID(ctx context.Context, id string) (*models.ReuseSuggestion, error)

	// ListByTarget returns suggestions for a target section, newest run
	// first then by relevance score descending.
	ListByTarget(ctx context.Context, targetSectionID string) ([]models.ReuseSuggestion, error)

	// Resolve sets the terminal status of a pending suggestion. Returns
	// domain.ErrTerminalSuggestion if the row already left pending.
	Resolve(ctx context.Context, id string, status models.SuggestionStatus, wasUsed bool, feedback string) error
}
