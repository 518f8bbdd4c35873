package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"proposalforge/internal/config"
	"proposalforge/internal/domain/repositories"
	"proposalforge/internal/domain/services"
	"proposalforge/internal/utils"
)

// contextAssembler implements the ContextAssembler interface. Every upstream
// collection is capped and truncated so prompt size stays roughly constant
// no matter how large the proposal grows, and every upstream failure
// degrades to an empty placeholder instead of aborting assembly.
type contextAssembler struct {
	sectionRepo   repositories.SectionRepository
	proposalRepo  repositories.ProposalRepository
	knowledgeRepo repositories.KnowledgeRepository
	logger        *slog.Logger
}

// NewContextAssembler creates a new context assembler
func NewContextAssembler(
	sectionRepo repositories.SectionRepository,
	proposalRepo repositories.ProposalRepository,
	knowledgeRepo repositories.KnowledgeRepository,
	logger *slog.Logger,
) services.ContextAssembler {
	return &contextAssembler{
		sectionRepo:   sectionRepo,
		proposalRepo:  proposalRepo,
		knowledgeRepo: knowledgeRepo,
		logger:        logger,
	}
}

// BuildContext assembles a bounded context bundle for one generation request.
func (a *contextAssembler) BuildContext(ctx context.Context, proposalID, sectionKey string) (*services.ContextBundle, error) {
	bundle := &services.ContextBundle{
		PriorSections:       []services.PriorSection{},
		ComplianceItems:     []string{},
		WinThemes:           []string{},
		PastPerformance:     []string{},
		PartnerCapabilities: []string{},
	}

	if proposal, err := a.proposalRepo.GetByID(ctx, proposalID); err != nil {
		a.logger.Warn("context assembly: proposal metadata unavailable", "proposal_id", proposalID, "error", err)
	} else {
		bundle.ProposalTitle = proposal.Title
		bundle.Agency = proposal.Agency
	}

	bundle.PriorSections = a.priorSections(ctx, proposalID, sectionKey)

	if items, err := a.knowledgeRepo.ListComplianceItems(ctx, proposalID); err != nil {
		a.logger.Warn("context assembly: compliance items unavailable", "proposal_id", proposalID, "error", err)
	} else {
		for _, item := range items {
			if !item.AppliesTo(sectionKey) {
				continue
			}
			bundle.ComplianceItems = append(bundle.ComplianceItems, item.Requirement)
			if len(bundle.ComplianceItems) >= config.MaxComplianceItems {
				break
			}
		}
	}

	if themes, err := a.knowledgeRepo.ListWinThemes(ctx, proposalID); err != nil {
		a.logger.Warn("context assembly: win themes unavailable", "proposal_id", proposalID, "error", err)
	} else {
		for _, theme := range themes {
			if theme.Approved || theme.Primary {
				bundle.WinThemes = append(bundle.WinThemes, theme.Statement)
			}
		}
	}

	if records, err := a.knowledgeRepo.ListPastPerformance(ctx, proposalID, config.MaxPastPerformance); err != nil {
		a.logger.Warn("context assembly: past performance unavailable", "proposal_id", proposalID, "error", err)
	} else {
		for _, rec := range records {
			bundle.PastPerformance = append(bundle.PastPerformance,
				fmt.Sprintf("%s: %s (%s)", rec.Client, rec.Description, rec.Outcome))
		}
	}

	if caps, err := a.knowledgeRepo.ListPartnerCapabilities(ctx, proposalID); err != nil {
		a.logger.Warn("context assembly: partner capabilities unavailable", "proposal_id", proposalID, "error", err)
	} else {
		for _, c := range caps {
			bundle.PartnerCapabilities = append(bundle.PartnerCapabilities,
				fmt.Sprintf("%s: %s", c.Partner, c.Capability))
		}
	}

	return bundle, nil
}

// priorSections picks the most recently updated non-empty sections of the
// same proposal, excluding the one being generated, and truncates each to
// the excerpt budget.
func (a *contextAssembler) priorSections(ctx context.Context, proposalID, sectionKey string) []services.PriorSection {
	sections, err := a.sectionRepo.ListByProposal(ctx, proposalID)
	if err != nil {
		a.logger.Warn("context assembly: sections unavailable", "proposal_id", proposalID, "error", err)
		return []services.PriorSection{}
	}

	candidates := sections[:0]
	for _, s := range sections {
		if s.SectionKey == sectionKey || strings.TrimSpace(s.Content) == "" {
			continue
		}
		candidates = append(candidates, s)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt.After(candidates[j].UpdatedAt)
	})

	if len(candidates) > config.MaxPriorContextSections {
		candidates = candidates[:config.MaxPriorContextSections]
	}

	prior := make([]services.PriorSection, 0, len(candidates))
	for _, s := range candidates {
		prior = append(prior, services.PriorSection{
			SectionKey: s.SectionKey,
			Excerpt:    utils.Truncate(utils.StripMarkup(s.Content), config.PriorSectionExcerptChars),
		})
	}

	return prior
}
