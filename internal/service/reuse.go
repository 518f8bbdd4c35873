package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"proposalforge/internal/config"
	"proposalforge/internal/domain"
	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/repositories"
	"proposalforge/internal/domain/services"
	"proposalforge/internal/metrics"
	"proposalforge/internal/oracle"
	"proposalforge/internal/utils"
)

// judgeSchema is the JSON shape the judgment oracle must return: one entry
// per candidate, explainable score included.
const judgeSchema = `[{"index": 0, "relevance_score": 0, "similarity_type": "exact_match|agency_match|topic_match|keyword_match|semantic_match", "match_reasons": ["..."], "suggested_modifications": "...", "confidence_level": "high|medium|low"}]`

const candidateExcerptChars = 500

// reuseService implements the ReuseService interface
type reuseService struct {
	sectionRepo    repositories.SectionRepository
	proposalRepo   repositories.ProposalRepository
	suggestionRepo repositories.SuggestionRepository
	sections       services.SectionService
	judge          oracle.Judge
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewReuseService creates a new reuse ranking service
func NewReuseService(
	sectionRepo repositories.SectionRepository,
	proposalRepo repositories.ProposalRepository,
	suggestionRepo repositories.SuggestionRepository,
	sections services.SectionService,
	judge oracle.Judge,
	m *metrics.Metrics,
	logger *slog.Logger,
) services.ReuseService {
	return &reuseService{
		sectionRepo:    sectionRepo,
		proposalRepo:   proposalRepo,
		suggestionRepo: suggestionRepo,
		sections:       sections,
		judge:          judge,
		metrics:        m,
		logger:         logger,
	}
}

// candidate pairs a pool section with its parent proposal metadata.
type candidate struct {
	section  models.Section
	proposal *models.Proposal
}

// RankSuggestions scores the candidate pool against the target section and
// persists up to five suggestions. The pool is pre-filtered hard: only
// sections with the exact same key, from other proposals with a won or
// submitted outcome, and with non-empty content ever reach the oracle.
// Cross-key candidates are excluded from the pool entirely, not down-ranked.
func (s *reuseService) RankSuggestions(ctx context.Context, proposalID, sectionKey string) ([]models.ReuseSuggestion, error) {
	target, err := s.sectionRepo.Get(ctx, proposalID, sectionKey)
	if err != nil {
		return nil, err
	}

	pool, err := s.sectionRepo.ListReusable(ctx, sectionKey, proposalID,
		[]models.ProposalOutcome{models.OutcomeWon, models.OutcomeSubmitted})
	if err != nil {
		return nil, err
	}

	s.metrics.RankingRunsTotal.Inc()

	if len(pool) == 0 {
		return []models.ReuseSuggestion{}, nil
	}

	candidates := make([]candidate, 0, len(pool))
	for _, sec := range pool {
		proposal, err := s.proposalRepo.GetByID(ctx, sec.ProposalID)
		if err != nil {
			s.logger.Warn("skipping candidate with unreadable proposal", "section_id", sec.ID, "error", err)
			continue
		}
		candidates = append(candidates, candidate{section: sec, proposal: proposal})
	}
	if len(candidates) == 0 {
		return []models.ReuseSuggestion{}, nil
	}

	raw, err := s.judge.Judge(ctx, &oracle.JudgeRequest{
		Prompt: buildJudgePrompt(target, candidates),
		Schema: judgeSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleFailure, err)
	}

	suggestions, err := s.parseJudgment(raw, target, candidates)
	if err != nil {
		return nil, err
	}

	// Highest relevance first; ties go to the source with the more recent
	// outcome.
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].score != suggestions[j].score {
			return suggestions[i].score > suggestions[j].score
		}
		return outcomeAfter(suggestions[i].source.proposal, suggestions[j].source.proposal)
	})

	if len(suggestions) > config.MaxSuggestions {
		suggestions = suggestions[:config.MaxSuggestions]
	}

	runID := uuid.NewString()
	now := time.Now()
	persisted := make([]models.ReuseSuggestion, 0, len(suggestions))
	for _, scored := range suggestions {
		row := models.ReuseSuggestion{
			TargetSectionID:        target.ID,
			SourceSectionID:        scored.source.section.ID,
			RelevanceScore:         scored.score,
			SimilarityType:         scored.similarityType,
			MatchReasons:           scored.reasons,
			SuggestedModifications: scored.modifications,
			ConfidenceLevel:        scored.confidence,
			Status:                 models.SuggestionPending,
			RankingRunID:           runID,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := s.suggestionRepo.Create(ctx, &row); err != nil {
			return nil, err
		}
		s.metrics.SuggestionsCreated.Inc()
		persisted = append(persisted, row)
	}

	s.logger.Info("reuse ranking completed",
		"proposal_id", proposalID,
		"section_key", sectionKey,
		"pool_size", len(candidates),
		"suggestions", len(persisted),
		"ranking_run_id", runID,
	)

	return persisted, nil
}

// scoredCandidate is a parsed, validated judgment entry.
type scoredCandidate struct {
	source         candidate
	score          int
	similarityType models.SimilarityType
	reasons        []string
	modifications  string
	confidence     models.ConfidenceLevel
}

// parseJudgment validates the oracle's raw JSON. A response that isn't a
// JSON array is an OracleFailure; individual malformed entries (bad index,
// no match reasons, unknown similarity type) are dropped with a warning,
// because a score the ranker cannot explain must not surface.
func (s *reuseService) parseJudgment(raw []byte, target *models.Section, candidates []candidate) ([]scoredCandidate, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: judge returned invalid JSON", domain.ErrOracleFailure)
	}

	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: judge returned non-array output", domain.ErrOracleFailure)
	}

	var out []scoredCandidate
	for _, entry := range parsed.Array() {
		idx := int(entry.Get("index").Int())
		if idx < 0 || idx >= len(candidates) {
			s.logger.Warn("judge entry references unknown candidate", "index", idx)
			continue
		}

		reasons := []string{}
		for _, r := range entry.Get("match_reasons").Array() {
			if reason := strings.TrimSpace(r.String()); reason != "" {
				reasons = append(reasons, reason)
			}
		}
		if len(reasons) == 0 {
			s.logger.Warn("judge entry has no match reasons, dropping", "index", idx)
			continue
		}

		similarity := models.SimilarityType(entry.Get("similarity_type").String())
		if !models.ValidSimilarityType(similarity) {
			s.logger.Warn("judge entry has unknown similarity type, dropping", "index", idx, "similarity_type", similarity)
			continue
		}

		score := int(entry.Get("relevance_score").Int())
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}

		confidence := models.ConfidenceLevel(entry.Get("confidence_level").String())
		switch confidence {
		case models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow:
		default:
			confidence = models.ConfidenceMedium
		}

		out = append(out, scoredCandidate{
			source:         candidates[idx],
			score:          score,
			similarityType: similarity,
			reasons:        reasons,
			modifications:  entry.Get("suggested_modifications").String(),
			confidence:     confidence,
		})
	}

	if out == nil && len(parsed.Array()) > 0 {
		// The judge answered but nothing survived validation
		return nil, fmt.Errorf("%w: no judge entry carried an explainable score", domain.ErrOracleFailure)
	}

	return out, nil
}

// ListSuggestions returns the latest ranking run's rows plus anything the
// user already resolved. Older pending rows from superseded runs stay in
// storage as history but are not resurfaced.
func (s *reuseService) ListSuggestions(ctx context.Context, proposalID, sectionKey string) ([]models.ReuseSuggestion, error) {
	target, err := s.sectionRepo.Get(ctx, proposalID, sectionKey)
	if err != nil {
		return nil, err
	}

	rows, err := s.suggestionRepo.ListByTarget(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.ReuseSuggestion{}, nil
	}

	latestRun := rows[0].RankingRunID
	visible := []models.ReuseSuggestion{}
	for _, row := range rows {
		if row.RankingRunID == latestRun || row.Status != models.SuggestionPending {
			visible = append(visible, row)
		}
	}

	return visible, nil
}

// AcceptSuggestion adopts the source content into the target section and
// marks the suggestion used. The content write goes through the normal save
// path, so the ledger records it like any other human-originated edit.
func (s *reuseService) AcceptSuggestion(ctx context.Context, suggestionID, actor string) (*models.Section, error) {
	suggestion, err := s.suggestionRepo.GetByID(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	if suggestion.Status != models.SuggestionPending {
		return nil, fmt.Errorf("suggestion %s: %w", suggestionID, domain.ErrTerminalSuggestion)
	}

	target, err := s.sectionRepo.GetByID(ctx, suggestion.TargetSectionID)
	if err != nil {
		return nil, err
	}
	source, err := s.sectionRepo.GetByID(ctx, suggestion.SourceSectionID)
	if err != nil {
		return nil, err
	}

	section, err := s.sections.SaveSection(ctx, &services.SaveSectionRequest{
		ProposalID: target.ProposalID,
		SectionKey: target.SectionKey,
		Content:    source.Content,
		Author:     actor,
		Summary:    "Adopted content from a reuse suggestion",
	})
	if err != nil {
		return nil, err
	}

	if err := s.suggestionRepo.Resolve(ctx, suggestionID, models.SuggestionAccepted, true, ""); err != nil {
		return nil, err
	}

	return section, nil
}

// RejectSuggestion records a terminal rejection with optional feedback.
func (s *reuseService) RejectSuggestion(ctx context.Context, suggestionID, feedback string) error {
	return s.suggestionRepo.Resolve(ctx, suggestionID, models.SuggestionRejected, false, feedback)
}

// buildJudgePrompt renders the target and candidates for the judgment call.
func buildJudgePrompt(target *models.Section, candidates []candidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Score how well each candidate section could be reused for the %q section below. ", target.SectionKey)
	b.WriteString("Consider agency match, topic overlap, keyword overlap and outcome quality. Score 0-100.\n\n")

	b.WriteString("Target section:\n")
	b.WriteString(utils.Truncate(utils.StripMarkup(target.Content), candidateExcerptChars))
	b.WriteString("\n")

	for i, c := range candidates {
		fmt.Fprintf(&b, "\nCandidate %d (proposal %q, agency %s, outcome %s):\n",
			i, c.proposal.Title, c.proposal.Agency, c.proposal.Outcome)
		b.WriteString(utils.Truncate(utils.StripMarkup(c.section.Content), candidateExcerptChars))
		b.WriteString("\n")
	}

	return b.String()
}

// outcomeAfter reports whether a's outcome date is more recent than b's.
// Missing dates sort last.
func outcomeAfter(a, b *models.Proposal) bool {
	switch {
	case a.OutcomeDate == nil:
		return false
	case b.OutcomeDate == nil:
		return true
	default:
		return a.OutcomeDate.After(*b.OutcomeDate)
	}
}
