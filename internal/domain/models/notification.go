package models

import "time"

// ReviewNotification is the payload emitted per eligible reviewer when a
// section is marked for review. Delivery is an external collaborator's job;
// the engine only guarantees the payload is correct.
type ReviewNotification struct {
	ProposalID string    `json:"proposal_id"`
	SectionID  string    `json:"section_id"`
	SectionKey string    `json:"section_key"`
	Reviewer   string    `json:"reviewer"`
	MarkedBy   string    `json:"marked_by"`
	MarkedAt   time.Time `json:"marked_at"`
}

// StageTransitionRequest asks the workflow board to move a proposal to the
// review stage. The board may refuse; the engine does not care.
type StageTransitionRequest struct {
	ProposalID  string `json:"proposal_id"`
	TargetStage string `json:"target_stage"`
	RequestedBy string `json:"requested_by"`
}
