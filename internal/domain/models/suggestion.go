package models

import "time"

// SimilarityType tags why a reuse candidate matched.
type SimilarityType string

const (
	SimilarityExactMatch    SimilarityType = "exact_match"
	SimilarityAgencyMatch   SimilarityType = "agency_match"
	SimilarityTopicMatch    SimilarityType = "topic_match"
	SimilarityKeywordMatch  SimilarityType = "keyword_match"
	SimilaritySemanticMatch SimilarityType = "semantic_match"
)

// ValidSimilarityType reports whether t is one of the known similarity tags.
func ValidSimilarityType(t SimilarityType) bool {
	switch t {
	case SimilarityExactMatch, SimilarityAgencyMatch, SimilarityTopicMatch,
		SimilarityKeywordMatch, SimilaritySemanticMatch:
		return true
	}
	return false
}

// ConfidenceLevel is the ranker's own confidence in a suggestion.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// SuggestionStatus tracks user resolution of a suggestion. Transitions are
// pending -> accepted or pending -> rejected only; both are terminal.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionRejected SuggestionStatus = "rejected"
)

// ReuseSuggestion is a ranked pointer from a target section to a candidate
// section in another proposal. The source section must belong to a different
// proposal than the target.
type ReuseSuggestion struct {
	ID                     string           `json:"id" db:"id"`
	TargetSectionID        string           `json:"target_section_id" db:"target_section_id"`
	SourceSectionID        string           `json:"source_section_id" db:"source_section_id"`
	RelevanceScore         int              `json:"relevance_score" db:"relevance_score"`
	SimilarityType         SimilarityType   `json:"similarity_type" db:"similarity_type"`
	MatchReasons           []string         `json:"match_reasons" db:"match_reasons"`
	SuggestedModifications string           `json:"suggested_modifications" db:"suggested_modifications"`
	ConfidenceLevel        ConfidenceLevel  `json:"confidence_level" db:"confidence_level"`
	Status                 SuggestionStatus `json:"status" db:"status"`
	WasUsed                bool             `json:"was_used" db:"was_used"`
	RejectionFeedback      string           `json:"rejection_feedback,omitempty" db:"rejection_feedback"`
	RankingRunID           string           `json:"ranking_run_id" db:"ranking_run_id"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at" db:"updated_at"`
}
