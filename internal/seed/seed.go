// Package seed loads development fixtures from a YAML file into the
// engine's tables. It is destructive only when the caller asks for it and is
// never run in prod.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"proposalforge/internal/domain/repositories"
	"proposalforge/internal/repository/postgres"
	"proposalforge/internal/utils"
)

// Fixtures is the root of the seed YAML file.
type Fixtures struct {
	Proposals []ProposalFixture `yaml:"proposals"`
}

// ProposalFixture is one proposal with its sections and knowledge rows.
type ProposalFixture struct {
	Title       string              `yaml:"title"`
	Agency      string              `yaml:"agency"`
	Outcome     string              `yaml:"outcome"`
	OutcomeDate string              `yaml:"outcome_date"`
	Reviewers   []string            `yaml:"reviewers"`
	Sections    []SectionFixture    `yaml:"sections"`
	Compliance  []ComplianceFixture `yaml:"compliance_items"`
	WinThemes   []WinThemeFixture   `yaml:"win_themes"`
	PastPerf    []PastPerfFixture   `yaml:"past_performance"`
	Partners    []PartnerFixture    `yaml:"partner_capabilities"`
}

type SectionFixture struct {
	Key     string `yaml:"key"`
	Content string `yaml:"content"`
	Status  string `yaml:"status"`
	Order   int    `yaml:"order"`
}

type ComplianceFixture struct {
	Requirement string   `yaml:"requirement"`
	SectionKeys []string `yaml:"section_keys"`
	Mandatory   bool     `yaml:"mandatory"`
}

type WinThemeFixture struct {
	Statement string `yaml:"statement"`
	Approved  bool   `yaml:"approved"`
	Primary   bool   `yaml:"primary"`
}

type PastPerfFixture struct {
	Client      string `yaml:"client"`
	Description string `yaml:"description"`
	Outcome     string `yaml:"outcome"`
}

type PartnerFixture struct {
	Partner    string `yaml:"partner"`
	Capability string `yaml:"capability"`
}

// LoadFixtures parses the YAML fixture file at path.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	return &fixtures, nil
}

// executor returns the transaction from ctx when one is active, the pool
// otherwise, same as the repository layer.
func executor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// Apply inserts every fixture row. Sections get an initial_creation version
// so seeded data obeys the same ledger rules as real data.
func Apply(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, fixtures *Fixtures) error {
	db := executor(ctx, pool)

	for _, p := range fixtures.Proposals {
		proposalID := uuid.NewString()

		var outcomeDate *time.Time
		if p.OutcomeDate != "" {
			parsed, err := time.Parse("2006-01-02", p.OutcomeDate)
			if err != nil {
				return fmt.Errorf("proposal %q: bad outcome_date: %w", p.Title, err)
			}
			outcomeDate = &parsed
		}

		outcome := p.Outcome
		if outcome == "" {
			outcome = "draft"
		}

		_, err := db.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (id, title, agency, outcome, outcome_date, reviewers) VALUES ($1, $2, $3, $4, $5, $6)`,
			tables.Proposals),
			proposalID, p.Title, p.Agency, outcome, outcomeDate, p.Reviewers)
		if err != nil {
			return fmt.Errorf("insert proposal %q: %w", p.Title, err)
		}

		for _, s := range p.Sections {
			if err := applySection(ctx, db, tables, proposalID, s); err != nil {
				return fmt.Errorf("proposal %q: %w", p.Title, err)
			}
		}
		for _, c := range p.Compliance {
			_, err := db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (id, proposal_id, requirement, section_keys, mandatory) VALUES ($1, $2, $3, $4, $5)`,
				tables.ComplianceItems),
				uuid.NewString(), proposalID, c.Requirement, c.SectionKeys, c.Mandatory)
			if err != nil {
				return fmt.Errorf("insert compliance item: %w", err)
			}
		}
		for _, t := range p.WinThemes {
			_, err := db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (id, proposal_id, statement, approved, is_primary) VALUES ($1, $2, $3, $4, $5)`,
				tables.WinThemes),
				uuid.NewString(), proposalID, t.Statement, t.Approved, t.Primary)
			if err != nil {
				return fmt.Errorf("insert win theme: %w", err)
			}
		}
		for _, pp := range p.PastPerf {
			_, err := db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (id, proposal_id, client, description, outcome) VALUES ($1, $2, $3, $4, $5)`,
				tables.PastPerformance),
				uuid.NewString(), proposalID, pp.Client, pp.Description, pp.Outcome)
			if err != nil {
				return fmt.Errorf("insert past performance: %w", err)
			}
		}
		for _, pc := range p.Partners {
			_, err := db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (id, proposal_id, partner, capability) VALUES ($1, $2, $3, $4)`,
				tables.PartnerCapabilities),
				uuid.NewString(), proposalID, pc.Partner, pc.Capability)
			if err != nil {
				return fmt.Errorf("insert partner capability: %w", err)
			}
		}
	}

	return nil
}

func applySection(ctx context.Context, db repositories.DBTX, tables *postgres.TableNames, proposalID string, s SectionFixture) error {
	status := s.Status
	if status == "" {
		status = "draft"
	}

	sectionID := uuid.NewString()
	wordCount := utils.CountWords(s.Content)

	_, err := db.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, proposal_id, section_key, content, word_count, status, display_order) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tables.Sections),
		sectionID, proposalID, s.Key, s.Content, wordCount, status, s.Order)
	if err != nil {
		return fmt.Errorf("insert section %q: %w", s.Key, err)
	}

	if s.Content != "" {
		_, err = db.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (id, section_id, version_number, content, word_count, change_type, changed_by, change_summary) VALUES ($1, $2, 1, $3, $4, 'initial_creation', 'seed', 'Seeded fixture')`,
			tables.Versions),
			uuid.NewString(), sectionID, s.Content, wordCount)
		if err != nil {
			return fmt.Errorf("insert seed version for %q: %w", s.Key, err)
		}
	}

	return nil
}

// Truncate removes all engine rows, child tables first. Schema stays.
func Truncate(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	db := executor(ctx, pool)

	ordered := []string{
		tables.Suggestions,
		tables.Versions,
		tables.ComplianceItems,
		tables.WinThemes,
		tables.PastPerformance,
		tables.PartnerCapabilities,
		tables.Sections,
		tables.Proposals,
	}

	for _, table := range ordered {
		if _, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	return nil
}
