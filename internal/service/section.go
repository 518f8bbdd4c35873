package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"proposalforge/internal/config"
	"proposalforge/internal/domain"
	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/repositories"
	"proposalforge/internal/domain/services"
	"proposalforge/internal/metrics"
	"proposalforge/internal/utils"
)

// sectionService implements the SectionService interface
type sectionService struct {
	sectionRepo  repositories.SectionRepository
	proposalRepo repositories.ProposalRepository
	versions     services.VersionService
	notifier     services.ReviewNotifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewSectionService creates a new section service
func NewSectionService(
	sectionRepo repositories.SectionRepository,
	proposalRepo repositories.ProposalRepository,
	versions services.VersionService,
	notifier services.ReviewNotifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) services.SectionService {
	return &sectionService{
		sectionRepo:  sectionRepo,
		proposalRepo: proposalRepo,
		versions:     versions,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
	}
}

// GetSection retrieves the current snapshot of a section
func (s *sectionService) GetSection(ctx context.Context, proposalID, sectionKey string) (*models.Section, error) {
	return s.sectionRepo.Get(ctx, proposalID, sectionKey)
}

// ListSections returns a proposal's sections in display order
func (s *sectionService) ListSections(ctx context.Context, proposalID string) ([]models.Section, error) {
	return s.sectionRepo.ListByProposal(ctx, proposalID)
}

// UpsertSection creates or patches a section. Word count is recomputed from
// content whenever content is part of the patch; a version is never written
// here - callers own that decision.
func (s *sectionService) UpsertSection(ctx context.Context, proposalID, sectionKey string, patch models.SectionPatch) (*models.Section, error) {
	if err := validateSectionKey(sectionKey); err != nil {
		return nil, err
	}
	if patch.Status != nil && !models.ValidSectionStatus(*patch.Status) {
		return nil, fmt.Errorf("%w: unknown section status %q", domain.ErrValidation, *patch.Status)
	}

	now := time.Now()

	section, err := s.sectionRepo.Get(ctx, proposalID, sectionKey)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		// First write for this key creates the row
		section = &models.Section{
			ProposalID:         proposalID,
			SectionKey:         sectionKey,
			Status:             models.StatusDraft,
			AIReferenceSources: []string{},
			CreatedAt:          now,
		}
	}

	if patch.Content != nil {
		section.Content = *patch.Content
		section.WordCount = utils.CountWords(section.Content)
	}
	if patch.Status != nil {
		section.Status = *patch.Status
	}
	if patch.Order != nil {
		section.Order = *patch.Order
	}
	if patch.AIReferenceSources != nil {
		section.AIReferenceSources = patch.AIReferenceSources
	}
	if patch.AIContextSummary != nil {
		section.AIContextSummary = *patch.AIContextSummary
	}
	if patch.MarkedForReviewBy != nil {
		section.MarkedForReviewBy = patch.MarkedForReviewBy
	}
	if patch.MarkedForReviewAt != nil {
		section.MarkedForReviewAt = patch.MarkedForReviewAt
	}
	section.UpdatedAt = now

	if err := s.sectionRepo.Upsert(ctx, section); err != nil {
		return nil, err
	}

	return section, nil
}

// SaveSection persists human-originated content and appends a ledger entry.
// Manual save and auto-save share this path; the ledger records both as
// user_edit (initial_creation for a section's first version).
func (s *sectionService) SaveSection(ctx context.Context, req *services.SaveSectionRequest) (*models.Section, error) {
	if err := s.validateSaveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	status := models.StatusDraft
	section, err := s.UpsertSection(ctx, req.ProposalID, req.SectionKey, models.SectionPatch{
		Content: &req.Content,
		Status:  &status,
	})
	if err != nil {
		return nil, err
	}

	changeType := models.ChangeUserEdit
	maxVersion, err := s.versions.MaxVersionNumber(ctx, section.ID)
	if err != nil {
		return nil, err
	}
	if maxVersion == 0 {
		changeType = models.ChangeInitialCreation
	}

	summary := req.Summary
	if summary == "" {
		if req.AutoSave {
			summary = "Auto-saved"
		} else {
			summary = "Manual save"
		}
	}

	if _, err := s.versions.Append(ctx, &services.AppendVersionRequest{
		SectionID:     section.ID,
		Content:       section.Content,
		WordCount:     section.WordCount,
		ChangeType:    changeType,
		ChangedBy:     req.Author,
		ChangeSummary: summary,
	}); err != nil {
		return nil, err
	}

	origin := "manual"
	if req.AutoSave {
		origin = "autosave"
	}
	s.metrics.SavesTotal.WithLabelValues(origin).Inc()

	s.logger.Info("section saved",
		"proposal_id", req.ProposalID,
		"section_key", req.SectionKey,
		"word_count", section.WordCount,
		"change_type", changeType,
		"origin", origin,
	)

	return section, nil
}

// MarkForReview flags a section for reviewer attention and emits
// notification payloads. Empty sections cannot be sent for review.
func (s *sectionService) MarkForReview(ctx context.Context, req *services.MarkForReviewRequest) (*models.Section, error) {
	section, err := s.sectionRepo.Get(ctx, req.ProposalID, req.SectionKey)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(section.Content) == "" {
		return nil, fmt.Errorf("%w: cannot mark an empty section for review", domain.ErrValidation)
	}

	now := time.Now()
	status := models.StatusPendingReview
	section, err = s.UpsertSection(ctx, req.ProposalID, req.SectionKey, models.SectionPatch{
		Status:            &status,
		MarkedForReviewBy: &req.MarkedBy,
		MarkedForReviewAt: &now,
	})
	if err != nil {
		return nil, err
	}

	// Notification delivery is an external collaborator; failures are
	// logged, not propagated. The section state change above stands.
	proposal, err := s.proposalRepo.GetByID(ctx, req.ProposalID)
	if err != nil {
		s.logger.Warn("could not load proposal for review notifications", "proposal_id", req.ProposalID, "error", err)
		return section, nil
	}

	for _, reviewer := range proposal.Reviewers {
		n := models.ReviewNotification{
			ProposalID: req.ProposalID,
			SectionID:  section.ID,
			SectionKey: req.SectionKey,
			Reviewer:   reviewer,
			MarkedBy:   req.MarkedBy,
			MarkedAt:   now,
		}
		if err := s.notifier.NotifyReviewRequested(ctx, n); err != nil {
			s.logger.Warn("review notification failed", "reviewer", reviewer, "error", err)
		}
	}

	if err := s.notifier.RequestStageTransition(ctx, models.StageTransitionRequest{
		ProposalID:  req.ProposalID,
		TargetStage: "review",
		RequestedBy: req.MarkedBy,
	}); err != nil {
		s.logger.Warn("stage transition request failed", "proposal_id", req.ProposalID, "error", err)
	}

	return section, nil
}

func (s *sectionService) validateSaveRequest(req *services.SaveSectionRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("content must not be empty")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.ProposalID, validation.Required),
		validation.Field(&req.SectionKey,
			validation.Required,
			validation.Length(1, config.MaxSectionKeyLength),
		),
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.Summary, validation.Length(0, config.MaxSummaryLength)),
	)
}

func validateSectionKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: section key is required", domain.ErrValidation)
	}
	if len(key) > config.MaxSectionKeyLength {
		return fmt.Errorf("%w: section key too long", domain.ErrValidation)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
