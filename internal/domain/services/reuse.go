package services

import (
	"context"

	"proposalforge/internal/domain/models"
)

// ReuseService ranks sections from other proposals against a target section
// and tracks adoption of the resulting suggestions.
type ReuseService interface {
	// RankSuggestions filters the candidate pool, asks the judgment oracle
	// to score it, and persists up to five suggestions ordered by relevance
	// score descending. Re-running appends a fresh batch; prior rows stay.
	RankSuggestions(ctx context.Context, proposalID, sectionKey string) ([]models.ReuseSuggestion, error)

	// ListSuggestions returns the latest ranking run's rows for a target
	// section plus any previously accepted or rejected ones.
	ListSuggestions(ctx context.Context, proposalID, sectionKey string) ([]models.ReuseSuggestion, error)

	// AcceptSuggestion inserts the source content into the target section
	// through the normal save path and marks the suggestion used. Terminal.
	AcceptSuggestion(ctx context.Context, suggestionID, actor string) (*models.Section, error)

	// RejectSuggestion records a terminal rejection with optional feedback.
	RejectSuggestion(ctx context.Context, suggestionID, feedback string) error
}
