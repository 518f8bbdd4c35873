package models

import "time"

// ProposalOutcome is the final disposition of a proposal. Only proposals
// whose outcome indicates quality (won or submitted) feed the reuse pool.
type ProposalOutcome string

const (
	OutcomeDraft     ProposalOutcome = "draft"
	OutcomeInReview  ProposalOutcome = "in_review"
	OutcomeSubmitted ProposalOutcome = "submitted"
	OutcomeWon       ProposalOutcome = "won"
	OutcomeLost      ProposalOutcome = "lost"
)

// ReusableOutcome reports whether sections of a proposal with this outcome
// may be offered as reuse candidates.
func ReusableOutcome(o ProposalOutcome) bool {
	return o == OutcomeWon || o == OutcomeSubmitted
}

// Proposal is the parent container for sections. Only the fields the
// lifecycle engine needs are modeled here; workflow boards and billing live
// elsewhere.
type Proposal struct {
	ID          string          `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Agency      string          `json:"agency" db:"agency"`
	Outcome     ProposalOutcome `json:"outcome" db:"outcome"`
	OutcomeDate *time.Time      `json:"outcome_date,omitempty" db:"outcome_date"`
	Reviewers   []string        `json:"reviewers" db:"reviewers"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
