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

// PostgresProposalRepository implements the ProposalRepository interface
type PostgresProposalRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(config *RepositoryConfig) repositories.ProposalRepository {
	return &PostgresProposalRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID retrieves a proposal by ID
func (r *PostgresProposalRepository) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	query := fmt.Sprintf(`
		SELECT id, title, agency, outcome, outcome_date, reviewers, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Proposals)

	var p models.Proposal
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Agency,
		&p.Outcome,
		&p.OutcomeDate,
		&p.Reviewers,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("proposal %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	return &p, nil
}

// Create inserts a new proposal
func (r *PostgresProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	if proposal.ID == "" {
		proposal.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, agency, outcome, outcome_date, reviewers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Proposals)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		proposal.ID,
		proposal.Title,
		proposal.Agency,
		proposal.Outcome,
		proposal.OutcomeDate,
		proposal.Reviewers,
		proposal.CreatedAt,
		proposal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}

	return nil
}

// PostgresKnowledgeRepository implements the KnowledgeRepository interface.
// These are read-mostly collections feeding the context assembler.
type PostgresKnowledgeRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewKnowledgeRepository creates a new knowledge repository
func NewKnowledgeRepository(config *RepositoryConfig) repositories.KnowledgeRepository {
	return &PostgresKnowledgeRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ListComplianceItems returns all compliance items for a proposal
func (r *PostgresKnowledgeRepository) ListComplianceItems(ctx context.Context, proposalID string) ([]models.ComplianceItem, error) {
	query := fmt.Sprintf(`
		SELECT id, proposal_id, requirement, section_keys, mandatory, created_at
		FROM %s
		WHERE proposal_id = $1
		ORDER BY created_at ASC
	`, r.tables.ComplianceItems)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("list compliance items: %w", err)
	}
	defer rows.Close()

	items := []models.ComplianceItem{}
	for rows.Next() {
		var item models.ComplianceItem
		if err := rows.Scan(&item.ID, &item.ProposalID, &item.Requirement, &item.SectionKeys, &item.Mandatory, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan compliance item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListWinThemes returns all win themes for a proposal
func (r *PostgresKnowledgeRepository) ListWinThemes(ctx context.Context, proposalID string) ([]models.WinTheme, error) {
	query := fmt.Sprintf(`
		SELECT id, proposal_id, statement, approved, is_primary, created_at
		FROM %s
		WHERE proposal_id = $1
		ORDER BY is_primary DESC, created_at ASC
	`, r.tables.WinThemes)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("list win themes: %w", err)
	}
	defer rows.Close()

	themes := []models.WinTheme{}
	for rows.Next() {
		var t models.WinTheme
		if err := rows.Scan(&t.ID, &t.ProposalID, &t.Statement, &t.Approved, &t.Primary, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan win theme: %w", err)
		}
		themes = append(themes, t)
	}

	return themes, rows.Err()
}

// ListPastPerformance returns up to limit past-performance records
func (r *PostgresKnowledgeRepository) ListPastPerformance(ctx context.Context, proposalID string, limit int) ([]models.PastPerformance, error) {
	query := fmt.Sprintf(`
		SELECT id, proposal_id, client, description, outcome, created_at
		FROM %s
		WHERE proposal_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, r.tables.PastPerformance)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, proposalID, limit)
	if err != nil {
		return nil, fmt.Errorf("list past performance: %w", err)
	}
	defer rows.Close()

	records := []models.PastPerformance{}
	for rows.Next() {
		var p models.PastPerformance
		if err := rows.Scan(&p.ID, &p.ProposalID, &p.Client, &p.Description, &p.Outcome, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan past performance: %w", err)
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

// ListPartnerCapabilities returns all partner capabilities for a proposal
func (r *PostgresKnowledgeRepository) ListPartnerCapabilities(ctx context.Context, proposalID string) ([]models.PartnerCapability, error) {
	query := fmt.Sprintf(`
		SELECT id, proposal_id, partner, capability, created_at
		FROM %s
		WHERE proposal_id = $1
		ORDER BY partner ASC
	`, r.tables.PartnerCapabilities)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("list partner capabilities: %w", err)
	}
	defer rows.Close()

	caps := []models.PartnerCapability{}
	for rows.Next() {
		var c models.PartnerCapability
		if err := rows.Scan(&c.ID, &c.ProposalID, &c.Partner, &c.Capability, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan partner capability: %w", err)
		}
		caps = append(caps, c)
	}

	return caps, rows.Err()
}
