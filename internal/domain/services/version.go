package services

import (
	"context"

	"proposalforge/internal/domain/models"
)

// AppendVersionRequest records a new snapshot in the ledger.
type AppendVersionRequest struct {
	SectionID     string
	Content       string
	WordCount     int
	ChangeType    models.ChangeType
	ChangedBy     string
	ChangeSummary string
}

// VersionService owns the append-only Version Ledger.
type VersionService interface {
	// Append assigns max(existing)+1 as the version number (1 for an empty
	// ledger) and writes the snapshot. A losing race returns
	// domain.ErrConcurrencyConflict after one internal re-read retry.
	Append(ctx context.Context, req *AppendVersionRequest) (*models.Version, error)

	// ListVersions returns the full ledger for a section, newest first.
	ListVersions(ctx context.Context, sectionID string) ([]models.Version, error)

	// MaxVersionNumber returns the highest version number for a section, 0
	// for an empty ledger. Callers use it to classify first saves.
	MaxVersionNumber(ctx context.Context, sectionID string) (int, error)

	// RestoreVersion writes the target version's content back into the
	// Section Store, then appends a restored_from_history version so the
	// restoration is itself auditable. Intervening history is untouched.
	RestoreVersion(ctx context.Context, sectionID string, versionNumber int, restoredBy string) (*models.Section, error)
}
