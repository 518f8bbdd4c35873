package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"proposalforge/internal/domain"
	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/repositories"
	"proposalforge/internal/domain/services"
	"proposalforge/internal/metrics"
	"proposalforge/internal/utils"
)

// versionService implements the VersionService interface
type versionService struct {
	versionRepo repositories.VersionRepository
	sectionRepo repositories.SectionRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewVersionService creates a new version service
func NewVersionService(
	versionRepo repositories.VersionRepository,
	sectionRepo repositories.SectionRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) services.VersionService {
	return &versionService{
		versionRepo: versionRepo,
		sectionRepo: sectionRepo,
		metrics:     m,
		logger:      logger,
	}
}

// Append writes a new snapshot numbered max(existing)+1. A numbering race
// gets one re-read retry; losing twice surfaces ErrConcurrencyConflict.
func (s *versionService) Append(ctx context.Context, req *services.AppendVersionRequest) (*models.Version, error) {
	if !models.ValidChangeType(req.ChangeType) {
		return nil, fmt.Errorf("%w: unknown change type %q", domain.ErrValidation, req.ChangeType)
	}

	var version *models.Version
	for attempt := 0; attempt < 2; attempt++ {
		max, err := s.versionRepo.MaxVersionNumber(ctx, req.SectionID)
		if err != nil {
			return nil, err
		}

		version = &models.Version{
			SectionID:     req.SectionID,
			VersionNumber: max + 1,
			Content:       req.Content,
			WordCount:     req.WordCount,
			ChangeType:    req.ChangeType,
			ChangedBy:     req.ChangedBy,
			ChangeSummary: req.ChangeSummary,
			CreatedAt:     time.Now(),
		}

		err = s.versionRepo.Append(ctx, version)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConcurrencyConflict) && attempt == 0 {
			s.logger.Debug("version number contested, retrying",
				"section_id", req.SectionID,
				"version_number", version.VersionNumber,
			)
			version.ID = ""
			continue
		}
		return nil, err
	}

	s.metrics.VersionsAppended.WithLabelValues(string(req.ChangeType)).Inc()

	return version, nil
}

// ListVersions returns the full ledger for a section, newest first
func (s *versionService) ListVersions(ctx context.Context, sectionID string) ([]models.Version, error) {
	return s.versionRepo.List(ctx, sectionID)
}

// MaxVersionNumber returns the highest version number, 0 for an empty ledger
func (s *versionService) MaxVersionNumber(ctx context.Context, sectionID string) (int, error) {
	return s.versionRepo.MaxVersionNumber(ctx, sectionID)
}

// RestoreVersion writes the target version's content back as current, then
// appends a restored_from_history entry. Intervening versions stay intact,
// so a restore is itself reversible.
func (s *versionService) RestoreVersion(ctx context.Context, sectionID string, versionNumber int, restoredBy string) (*models.Section, error) {
	target, err := s.versionRepo.GetByNumber(ctx, sectionID, versionNumber)
	if err != nil {
		return nil, err
	}

	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	section.Content = target.Content
	section.WordCount = utils.CountWords(target.Content)
	section.Status = models.StatusDraft
	section.UpdatedAt = time.Now()

	if err := s.sectionRepo.Upsert(ctx, section); err != nil {
		return nil, err
	}

	if _, err := s.Append(ctx, &services.AppendVersionRequest{
		SectionID:     sectionID,
		Content:       section.Content,
		WordCount:     section.WordCount,
		ChangeType:    models.ChangeRestored,
		ChangedBy:     restoredBy,
		ChangeSummary: fmt.Sprintf("Restored from version %d", versionNumber),
	}); err != nil {
		return nil, err
	}

	s.logger.Info("version restored",
		"section_id", sectionID,
		"restored_version", versionNumber,
	)

	return section, nil
}
