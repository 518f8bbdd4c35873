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

// PostgresVersionRepository implements the VersionRepository interface.
// Rows are insert-only: there is no Update or Delete on this table.
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append writes a new version row. The unique (section_id, version_number)
// constraint turns a numbering race into ErrConcurrencyConflict for the
// caller to retry.
func (r *PostgresVersionRepository) Append(ctx context.Context, version *models.Version) error {
	if version.ID == "" {
		version.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, section_id, version_number, content, word_count,
			change_type, changed_by, change_summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		version.ID,
		version.SectionID,
		version.VersionNumber,
		version.Content,
		version.WordCount,
		version.ChangeType,
		version.ChangedBy,
		version.ChangeSummary,
		version.CreatedAt,
	).Scan(&version.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConcurrencyConflictError{
				SectionID:     version.SectionID,
				VersionNumber: version.VersionNumber,
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("section %s: %w", version.SectionID, domain.ErrNotFound)
		}
		return fmt.Errorf("append version: %w", err)
	}

	return nil
}

// MaxVersionNumber returns the highest version number for a section, 0 when
// the ledger is empty.
func (r *PostgresVersionRepository) MaxVersionNumber(ctx context.Context, sectionID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(version_number), 0)
		FROM %s
		WHERE section_id = $1
	`, r.tables.Versions)

	var max int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, sectionID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max version number: %w", err)
	}

	return max, nil
}

// List returns all versions for a section, newest first. Not cached: the
// ledger is the audit source of truth.
func (r *PostgresVersionRepository) List(ctx context.Context, sectionID string) ([]models.Version, error) {
	query := fmt.Sprintf(`
		SELECT id, section_id, version_number, content, word_count,
			change_type, changed_by, change_summary, created_at
		FROM %s
		WHERE section_id = $1
		ORDER BY version_number DESC
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.Version
	for rows.Next() {
		var v models.Version
		err := rows.Scan(
			&v.ID,
			&v.SectionID,
			&v.VersionNumber,
			&v.Content,
			&v.WordCount,
			&v.ChangeType,
			&v.ChangedBy,
			&v.ChangeSummary,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	if versions == nil {
		versions = []models.Version{}
	}

	return versions, nil
}

// GetByNumber retrieves one version by its number
func (r *PostgresVersionRepository) GetByNumber(ctx context.Context, sectionID string, versionNumber int) (*models.Version, error) {
	query := fmt.Sprintf(`
		SELECT id, section_id, version_number, content, word_count,
			change_type, changed_by, change_summary, created_at
		FROM %s
		WHERE section_id = $1 AND version_number = $2
	`, r.tables.Versions)

	var v models.Version
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, sectionID, versionNumber).Scan(
		&v.ID,
		&v.SectionID,
		&v.VersionNumber,
		&v.Content,
		&v.WordCount,
		&v.ChangeType,
		&v.ChangedBy,
		&v.ChangeSummary,
		&v.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %d of section %s: %w", versionNumber, sectionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return &v, nil
}
