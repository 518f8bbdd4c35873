package service

import (
	"context"
	"log/slog"

	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/services"
)

// logNotifier is the in-repo ReviewNotifier: it logs the payloads the engine
// is obliged to emit. Real delivery (email, workflow board) is wired in by
// the deployment, not by this engine.
type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs emitted payloads.
func NewLogNotifier(logger *slog.Logger) services.ReviewNotifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) NotifyReviewRequested(ctx context.Context, payload models.ReviewNotification) error {
	n.logger.Info("review notification emitted",
		"proposal_id", payload.ProposalID,
		"section_key", payload.SectionKey,
		"reviewer", payload.Reviewer,
		"marked_by", payload.MarkedBy,
	)
	return nil
}

func (n *logNotifier) RequestStageTransition(ctx context.Context, payload models.StageTransitionRequest) error {
	n.logger.Info("stage transition requested",
		"proposal_id", payload.ProposalID,
		"target_stage", payload.TargetStage,
		"requested_by", payload.RequestedBy,
	)
	return nil
}
