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

// PostgresSuggestionRepository implements the SuggestionRepository interface
type PostgresSuggestionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSuggestionRepository creates a new suggestion repository
func NewSuggestionRepository(config *RepositoryConfig) repositories.SuggestionRepository {
	return &PostgresSuggestionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const suggestionColumns = `id, target_section_id, source_section_id, relevance_score,
		similarity_type, match_reasons, suggested_modifications, confidence_level,
		status, was_used, rejection_feedback, ranking_run_id, created_at, updated_at`

// Create inserts a new suggestion row. Ranking runs only ever insert;
// earlier rows for the same pair stay as history.
func (r *PostgresSuggestionRepository) Create(ctx context.Context, suggestion *models.ReuseSuggestion) error {
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, target_section_id, source_section_id, relevance_score,
			similarity_type, match_reasons, suggested_modifications, confidence_level,
			status, was_used, rejection_feedback, ranking_run_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, r.tables.Suggestions)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		suggestion.ID,
		suggestion.TargetSectionID,
		suggestion.SourceSectionID,
		suggestion.RelevanceScore,
		suggestion.SimilarityType,
		suggestion.MatchReasons,
		suggestion.SuggestedModifications,
		suggestion.ConfidenceLevel,
		suggestion.Status,
		suggestion.WasUsed,
		suggestion.RejectionFeedback,
		suggestion.RankingRunID,
		suggestion.CreatedAt,
		suggestion.UpdatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("suggestion sections: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create suggestion: %w", err)
	}

	return nil
}

// GetByID retrieves a suggestion by ID
func (r *PostgresSuggestionRepository) GetByID(ctx context.Context, id string) (*models.ReuseSuggestion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, suggestionColumns, r.tables.Suggestions)

	executor := GetExecutor(ctx, r.pool)
	suggestion, err := scanSuggestion(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get suggestion: %w", err)
	}

	return suggestion, nil
}

// ListByTarget returns suggestions for a target section, newest run first
// then by relevance score descending.
func (r *PostgresSuggestionRepository) ListByTarget(ctx context.Context, targetSectionID string) ([]models.ReuseSuggestion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE target_section_id = $1
		ORDER BY created_at DESC, relevance_score DESC
	`, suggestionColumns, r.tables.Suggestions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, targetSectionID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []models.ReuseSuggestion
	for rows.Next() {
		suggestion, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, *suggestion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	if suggestions == nil {
		suggestions = []models.ReuseSuggestion{}
	}

	return suggestions, nil
}

// Resolve moves a pending suggestion to a terminal status. The WHERE guard
// on status = 'pending' enforces that accepted and rejected are terminal.
func (r *PostgresSuggestionRepository) Resolve(ctx context.Context, id string, status models.SuggestionStatus, wasUsed bool, feedback string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, was_used = $2, rejection_feedback = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'pending'
	`, r.tables.Suggestions)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, status, wasUsed, feedback, id)
	if err != nil {
		return fmt.Errorf("resolve suggestion: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either missing or already resolved; distinguish for the caller
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("suggestion %s: %w", id, domain.ErrTerminalSuggestion)
	}

	return nil
}

func scanSuggestion(row rowScanner) (*models.ReuseSuggestion, error) {
	var s models.ReuseSuggestion
	err := row.Scan(
		&s.ID,
		&s.TargetSectionID,
		&s.SourceSectionID,
		&s.RelevanceScore,
		&s.SimilarityType,
		&s.MatchReasons,
		&s.SuggestedModifications,
		&s.ConfidenceLevel,
		&s.Status,
		&s.WasUsed,
		&s.RejectionFeedback,
		&s.RankingRunID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
