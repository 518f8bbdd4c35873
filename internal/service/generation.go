package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"proposalforge/internal/config"
	"proposalforge/internal/domain"
	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/services"
	"proposalforge/internal/metrics"
	"proposalforge/internal/oracle"
)

// generationService implements the GenerationService interface. It sequences
// context assembly, the oracle call, and persistence; the oracle call is
// long-latency and never retried automatically.
type generationService struct {
	assembler services.ContextAssembler
	sections  services.SectionService
	versions  services.VersionService
	generator oracle.TextGenerator
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewGenerationService creates a new generation orchestrator
func NewGenerationService(
	assembler services.ContextAssembler,
	sections services.SectionService,
	versions services.VersionService,
	generator oracle.TextGenerator,
	m *metrics.Metrics,
	logger *slog.Logger,
) services.GenerationService {
	return &generationService{
		assembler: assembler,
		sections:  sections,
		versions:  versions,
		generator: generator,
		metrics:   m,
		logger:    logger,
		inflight:  make(map[string]struct{}),
	}
}

// Generate drafts (or improves) one section. Generations for different
// section keys may run concurrently; a second request for the same key while
// one is in flight is refused. On any failure the previously persisted
// section and ledger state are left exactly as they were.
func (s *generationService) Generate(ctx context.Context, req *services.GenerateSectionRequest) (*services.GeneratedResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	key := req.ProposalID + "/" + req.SectionKey
	if err := s.acquire(key); err != nil {
		return nil, err
	}
	defer s.release(key)

	mode := "create"
	if req.IsRegenerate {
		mode = "regenerate"
	}

	referenceFiles := req.ReferenceFiles
	if len(referenceFiles) > config.MaxReferenceFiles {
		referenceFiles = referenceFiles[:config.MaxReferenceFiles]
	}

	bundle, err := s.assembler.BuildContext(ctx, req.ProposalID, req.SectionKey)
	if err != nil {
		return nil, err
	}

	// Regeneration carries the current content so the oracle improves in
	// place instead of discarding what's already there.
	var existingContent string
	if req.IsRegenerate {
		existing, err := s.sections.GetSection(ctx, req.ProposalID, req.SectionKey)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			existingContent = existing.Content
		}
	}

	prompt := buildGenerationPrompt(req.SectionKey, bundle, existingContent)

	start := time.Now()
	result, err := s.generator.GenerateText(ctx, &oracle.TextRequest{
		Prompt:         prompt,
		ReferenceFiles: referenceFiles,
	})
	s.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.GenerationsTotal.WithLabelValues(mode, "failure").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleFailure, err)
	}
	if strings.TrimSpace(result.Content) == "" {
		s.metrics.GenerationsTotal.WithLabelValues(mode, "failure").Inc()
		return nil, fmt.Errorf("%w: oracle returned empty content", domain.ErrOracleFailure)
	}

	contextSummary := result.ContextSummary
	if contextSummary == "" {
		contextSummary = summarizeBundle(bundle)
	}

	// Upsert first, append second: the ledger must never record a version
	// number for content that was never persisted as current.
	status := models.StatusAIGenerated
	section, err := s.sections.UpsertSection(ctx, req.ProposalID, req.SectionKey, models.SectionPatch{
		Content:            &result.Content,
		Status:             &status,
		AIReferenceSources: result.ReferenceSources,
		AIContextSummary:   &contextSummary,
	})
	if err != nil {
		s.metrics.GenerationsTotal.WithLabelValues(mode, "failure").Inc()
		return nil, err
	}

	changeType := models.ChangeAIGenerated
	summary := "AI generated draft"
	if req.IsRegenerate {
		changeType = models.ChangeAIRegenerated
		summary = "AI regenerated, improving existing content"
	}

	version, err := s.versions.Append(ctx, &services.AppendVersionRequest{
		SectionID:     section.ID,
		Content:       section.Content,
		WordCount:     section.WordCount,
		ChangeType:    changeType,
		ChangedBy:     req.RequestedBy,
		ChangeSummary: summary,
	})
	if err != nil {
		s.metrics.GenerationsTotal.WithLabelValues(mode, "failure").Inc()
		return nil, err
	}

	s.metrics.GenerationsTotal.WithLabelValues(mode, "success").Inc()

	s.logger.Info("section generated",
		"proposal_id", req.ProposalID,
		"section_key", req.SectionKey,
		"mode", mode,
		"word_count", section.WordCount,
		"version_number", version.VersionNumber,
		"provider", s.generator.Name(),
	)

	return &services.GeneratedResult{Section: section, Version: version}, nil
}

func (s *generationService) acquire(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return fmt.Errorf("%s: %w", key, domain.ErrGenerationInFlight)
	}
	s.inflight[key] = struct{}{}
	return nil
}

func (s *generationService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

func (s *generationService) validateRequest(req *services.GenerateSectionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProposalID, validation.Required),
		validation.Field(&req.SectionKey,
			validation.Required,
			validation.Length(1, config.MaxSectionKeyLength),
		),
	)
}

// buildGenerationPrompt renders the bundle into the oracle prompt.
func buildGenerationPrompt(sectionKey string, bundle *services.ContextBundle, existingContent string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write the %q section of a proposal", humanizeKey(sectionKey))
	if bundle.ProposalTitle != "" {
		fmt.Fprintf(&b, " titled %q", bundle.ProposalTitle)
	}
	if bundle.Agency != "" {
		fmt.Fprintf(&b, " for %s", bundle.Agency)
	}
	b.WriteString(".\n")

	writeList := func(heading string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString("\n" + heading + ":\n")
		for _, item := range items {
			b.WriteString("- " + item + "\n")
		}
	}

	if len(bundle.PriorSections) > 0 {
		b.WriteString("\nEarlier sections of this proposal, for continuity:\n")
		for _, prior := range bundle.PriorSections {
			fmt.Fprintf(&b, "- [%s] %s\n", prior.SectionKey, prior.Excerpt)
		}
	}

	writeList("Compliance requirements to address", bundle.ComplianceItems)
	writeList("Win themes to reinforce", bundle.WinThemes)
	writeList("Past performance to cite", bundle.PastPerformance)
	writeList("Partner capabilities", bundle.PartnerCapabilities)

	if existingContent != "" {
		b.WriteString("\nExisting content to improve. Preserve the strong portions, strengthen the weak ones, and keep the overall structure unless it is clearly flawed:\n\n")
		b.WriteString(existingContent)
		b.WriteString("\n")
	}

	return b.String()
}

// summarizeBundle produces the stored ai_context_summary when the oracle
// doesn't report one.
func summarizeBundle(bundle *services.ContextBundle) string {
	return fmt.Sprintf("Context: %d prior sections, %d compliance items, %d win themes, %d past performance records, %d partner capabilities",
		len(bundle.PriorSections),
		len(bundle.ComplianceItems),
		len(bundle.WinThemes),
		len(bundle.PastPerformance),
		len(bundle.PartnerCapabilities),
	)
}

func humanizeKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
