package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"proposalforge/internal/domain"
	"proposalforge/internal/domain/repositories"
	"proposalforge/internal/domain/services"
	"proposalforge/internal/metrics"
)

// Reconciler periodically persists draft buffers into the Section Store and
// Version Ledger. Ticks never overlap: the next tick is scheduled only after
// the previous one finishes, so a slow database can stretch the interval but
// never cause two concurrent reconciliations of the same buffer.
type Reconciler struct {
	buffers     repositories.DraftBufferStore
	sections    services.SectionService
	sectionRepo repositories.SectionRepository
	interval    time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewReconciler creates an auto-save reconciler
func NewReconciler(
	buffers repositories.DraftBufferStore,
	sections services.SectionService,
	sectionRepo repositories.SectionRepository,
	interval time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		buffers:     buffers,
		sections:    sections,
		sectionRepo: sectionRepo,
		interval:    interval,
		metrics:     m,
		logger:      logger,
	}
}

// Run loops until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if errs := r.Tick(ctx); len(errs) > 0 {
				r.logger.Warn("auto-save tick completed with errors", "errors", len(errs))
			}
			timer.Reset(r.interval)
		}
	}
}

// Tick reconciles every buffered entry once. A failed persist for one key
// never blocks the others; errors are collected and returned together.
// Re-running with unchanged buffers is a no-op: identical content is skipped
// before any write happens.
func (r *Reconciler) Tick(ctx context.Context) []error {
	var errs []error

	proposals, err := r.buffers.Proposals(ctx)
	if err != nil {
		return []error{fmt.Errorf("list buffered proposals: %w", err)}
	}

	for _, proposalID := range proposals {
		snapshot, err := r.buffers.Snapshot(ctx, proposalID)
		if err != nil {
			errs = append(errs, fmt.Errorf("snapshot %s: %w", proposalID, err))
			continue
		}

		for sectionKey, buffered := range snapshot {
			if strings.TrimSpace(buffered) == "" {
				continue
			}

			if err := r.reconcileKey(ctx, proposalID, sectionKey, buffered); err != nil {
				r.metrics.AutosaveErrorsTotal.Inc()
				r.logger.Warn("auto-save failed for section",
					"proposal_id", proposalID,
					"section_key", sectionKey,
					"error", err,
				)
				errs = append(errs, fmt.Errorf("%s/%s: %w", proposalID, sectionKey, err))
			}
		}
	}

	r.metrics.AutosaveTicksTotal.Inc()

	return errs
}

func (r *Reconciler) reconcileKey(ctx context.Context, proposalID, sectionKey, buffered string) error {
	current, err := r.sectionRepo.Get(ctx, proposalID, sectionKey)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	// Byte-identical content means nothing to persist; this is what makes
	// repeated ticks idempotent.
	if current != nil && current.Content == buffered {
		r.metrics.AutosaveSkippedTotal.Inc()
		return nil
	}

	_, err = r.sections.SaveSection(ctx, &services.SaveSectionRequest{
		ProposalID: proposalID,
		SectionKey: sectionKey,
		Content:    buffered,
		Author:     "auto-save",
		AutoSave:   true,
	})
	return err
}
