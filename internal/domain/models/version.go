package models

import "time"

// ChangeType classifies what produced a version snapshot.
type ChangeType string

const (
	ChangeInitialCreation ChangeType = "initial_creation"
	ChangeUserEdit        ChangeType = "user_edit"
	ChangeAIGenerated     ChangeType = "ai_generated"
	ChangeAIRegenerated   ChangeType = "ai_regenerated"
	ChangeRestored        ChangeType = "restored_from_history"
)

// ValidChangeType reports whether t is one of the known change types.
func ValidChangeType(t ChangeType) bool {
	switch t {
	case ChangeInitialCreation, ChangeUserEdit, ChangeAIGenerated,
		ChangeAIRegenerated, ChangeRestored:
		return true
	}
	return false
}

// Version is an immutable full-content snapshot of a section. Version
// numbers are strictly increasing per section, starting at 1, and are never
// reused - restoring an old version appends a new one.
type Version struct {
	ID            string     `json:"id" db:"id"`
	SectionID     string     `json:"section_id" db:"section_id"`
	VersionNumber int        `json:"version_number" db:"version_number"`
	Content       string     `json:"content" db:"content"`
	WordCount     int        `json:"word_count" db:"word_count"`
	ChangeType    ChangeType `json:"change_type" db:"change_type"`
	ChangedBy     string     `json:"changed_by" db:"changed_by"`
	ChangeSummary string     `json:"change_summary" db:"change_summary"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
