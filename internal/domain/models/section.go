package models

import (
	"time"
)

// SectionStatus tracks how a section's current content came to be.
type SectionStatus string

const (
	StatusDraft         SectionStatus = "draft"
	StatusAIGenerated   SectionStatus = "ai_generated"
	StatusAIRegenerated SectionStatus = "ai_regenerated"
	StatusReviewed      SectionStatus = "reviewed"
	StatusPendingReview SectionStatus = "pending_review"
	StatusApproved      SectionStatus = "approved"
)

// ValidSectionStatus reports whether s is one of the known statuses.
func ValidSectionStatus(s SectionStatus) bool {
	switch s {
	case StatusDraft, StatusAIGenerated, StatusAIRegenerated,
		StatusReviewed, StatusPendingReview, StatusApproved:
		return true
	}
	return false
}

// Section is one addressable unit of proposal content. At most one row
// exists per (proposal_id, section_key); subsections use composite
// "{parent}_{child}" keys. WordCount is always derived from Content at the
// store boundary, never set independently.
type Section struct {
	ID                 string        `json:"id" db:"id"`
	ProposalID         string        `json:"proposal_id" db:"proposal_id"`
	SectionKey         string        `json:"section_key" db:"section_key"`
	Content            string        `json:"content" db:"content"`
	WordCount          int           `json:"word_count" db:"word_count"`
	Status             SectionStatus `json:"status" db:"status"`
	Order              int           `json:"order" db:"display_order"`
	AIReferenceSources []string      `json:"ai_reference_sources" db:"ai_reference_sources"`
	AIContextSummary   string        `json:"ai_context_summary" db:"ai_context_summary"`
	MarkedForReviewBy  *string       `json:"marked_for_review_by,omitempty" db:"marked_for_review_by"`
	MarkedForReviewAt  *time.Time    `json:"marked_for_review_date,omitempty" db:"marked_for_review_at"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// SectionPatch is a partial update applied by UpsertSection. Nil fields are
// left untouched. Content updates trigger a word count recompute.
type SectionPatch struct {
	Content            *string
	Status             *SectionStatus
	Order              *int
	AIReferenceSources []string
	AIContextSummary   *string
	MarkedForReviewBy  *string
	MarkedForReviewAt  *time.Time
}
