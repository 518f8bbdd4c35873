package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"proposalforge/internal/domain"
	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/repositories"
)

// PostgresSectionRepository implements the SectionRepository interface
type PostgresSectionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(config *RepositoryConfig) repositories.SectionRepository {
	return &PostgresSectionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const sectionColumns = `id, proposal_id, section_key, content, word_count, status,
		display_order, ai_reference_sources, ai_context_summary,
		marked_for_review_by, marked_for_review_at, created_at, updated_at`

// Get retrieves a section by (proposal_id, section_key)
func (r *PostgresSectionRepository) Get(ctx context.Context, proposalID, sectionKey string) (*models.Section, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE proposal_id = $1 AND section_key = $2
	`, sectionColumns, r.tables.Sections)

	executor := GetExecutor(ctx, r.pool)
	section, err := scanSection(executor.QueryRow(ctx, query, proposalID, sectionKey))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("section %s/%s: %w", proposalID, sectionKey, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get section: %w", err)
	}

	return section, nil
}

// GetByID retrieves a section by its row ID
func (r *PostgresSectionRepository) GetByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, sectionColumns, r.tables.Sections)

	executor := GetExecutor(ctx, r.pool)
	section, err := scanSection(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("section %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get section by id: %w", err)
	}

	return section, nil
}

// Upsert creates or replaces the section row for (proposal_id, section_key).
// Concurrent writers are last-writer-wins; the ledger preserves anything
// clobbered here.
func (r *PostgresSectionRepository) Upsert(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, proposal_id, section_key, content, word_count, status,
			display_order, ai_reference_sources, ai_context_summary,
			marked_for_review_by, marked_for_review_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (proposal_id, section_key) DO UPDATE SET
			content = EXCLUDED.content,
			word_count = EXCLUDED.word_count,
			status = EXCLUDED.status,
			display_order = EXCLUDED.display_order,
			ai_reference_sources = EXCLUDED.ai_reference_sources,
			ai_context_summary = EXCLUDED.ai_context_summary,
			marked_for_review_by = EXCLUDED.marked_for_review_by,
			marked_for_review_at = EXCLUDED.marked_for_review_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, r.tables.Sections)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		section.ID,
		section.ProposalID,
		section.SectionKey,
		section.Content,
		section.WordCount,
		section.Status,
		section.Order,
		section.AIReferenceSources,
		section.AIContextSummary,
		section.MarkedForReviewBy,
		section.MarkedForReviewAt,
		section.CreatedAt,
		section.UpdatedAt,
	).Scan(&section.ID, &section.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("proposal %s: %w", section.ProposalID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert section: %w", err)
	}

	return nil
}

// ListByProposal returns all sections of a proposal in display order
func (r *PostgresSectionRepository) ListByProposal(ctx context.Context, proposalID string) ([]models.Section, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE proposal_id = $1
		ORDER BY display_order ASC, section_key ASC
	`, sectionColumns, r.tables.Sections)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, *section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}

	if sections == nil {
		sections = []models.Section{}
	}

	return sections, nil
}

// ListReusable returns non-empty sections with the given key from other
// proposals whose outcome is in outcomes, most recent outcome first.
func (r *PostgresSectionRepository) ListReusable(ctx context.Context, sectionKey, excludeProposalID string, outcomes []models.ProposalOutcome) ([]models.Section, error) {
	outcomeStrings := make([]string, len(outcomes))
	for i, o := range outcomes {
		outcomeStrings[i] = string(o)
	}

	query := fmt.Sprintf(`
		SELECT s.id, s.proposal_id, s.section_key, s.content, s.word_count, s.status,
			s.display_order, s.ai_reference_sources, s.ai_context_summary,
			s.marked_for_review_by, s.marked_for_review_at, s.created_at, s.updated_at
		FROM %s s
		JOIN %s p ON p.id = s.proposal_id
		WHERE s.section_key = $1
		  AND s.proposal_id <> $2
		  AND btrim(s.content) <> ''
		  AND p.outcome = ANY($3)
		ORDER BY p.outcome_date DESC NULLS LAST
	`, r.tables.Sections, r.tables.Proposals)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, sectionKey, excludeProposalID, outcomeStrings)
	if err != nil {
		return nil, fmt.Errorf("list reusable sections: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reusable section: %w", err)
		}
		sections = append(sections, *section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reusable sections: %w", err)
	}

	if sections == nil {
		sections = []models.Section{}
	}

	return sections, nil
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSection(row rowScanner) (*models.Section, error) {
	var section models.Section
	err := row.Scan(
		&section.ID,
		&section.ProposalID,
		&section.SectionKey,
		&section.Content,
		&section.WordCount,
		&section.Status,
		&section.Order,
		&section.AIReferenceSources,
		&section.AIContextSummary,
		&section.MarkedForReviewBy,
		&section.MarkedForReviewAt,
		&section.CreatedAt,
		&section.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &section, nil
}
