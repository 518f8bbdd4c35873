package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the engine's tables if they don't exist. Statements are
// idempotent; the seed command and tests call this on startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				title TEXT NOT NULL,
				agency TEXT NOT NULL DEFAULT '',
				outcome TEXT NOT NULL DEFAULT 'draft',
				outcome_date TIMESTAMPTZ,
				reviewers TEXT[] NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Proposals),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				proposal_id UUID NOT NULL REFERENCES %s(id),
				section_key TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				word_count INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'draft',
				display_order INTEGER NOT NULL DEFAULT 0,
				ai_reference_sources TEXT[] NOT NULL DEFAULT '{}',
				ai_context_summary TEXT NOT NULL DEFAULT '',
				marked_for_review_by TEXT,
				marked_for_review_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (proposal_id, section_key)
			)`, tables.Sections, tables.Proposals),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				section_id UUID NOT NULL REFERENCES %s(id),
				version_number INTEGER NOT NULL CHECK (version_number >= 1),
				content TEXT NOT NULL,
				word_count INTEGER NOT NULL,
				change_type TEXT NOT NULL,
				changed_by TEXT NOT NULL DEFAULT '',
				change_summary TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (section_id, version_number)
			)`, tables.Versions, tables.Sections),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				target_section_id UUID NOT NULL REFERENCES %s(id),
				source_section_id UUID NOT NULL REFERENCES %s(id),
				relevance_score INTEGER NOT NULL CHECK (relevance_score BETWEEN 0 AND 100),
				similarity_type TEXT NOT NULL,
				match_reasons TEXT[] NOT NULL DEFAULT '{}',
				suggested_modifications TEXT NOT NULL DEFAULT '',
				confidence_level TEXT NOT NULL DEFAULT 'medium',
				status TEXT NOT NULL DEFAULT 'pending',
				was_used BOOLEAN NOT NULL DEFAULT FALSE,
				rejection_feedback TEXT NOT NULL DEFAULT '',
				ranking_run_id UUID NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CHECK (target_section_id <> source_section_id)
			)`, tables.Suggestions, tables.Sections, tables.Sections),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				proposal_id UUID NOT NULL REFERENCES %s(id),
				requirement TEXT NOT NULL,
				section_keys TEXT[] NOT NULL DEFAULT '{}',
				mandatory BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.ComplianceItems, tables.Proposals),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				proposal_id UUID NOT NULL REFERENCES %s(id),
				statement TEXT NOT NULL,
				approved BOOLEAN NOT NULL DEFAULT FALSE,
				is_primary BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.WinThemes, tables.Proposals),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				proposal_id UUID NOT NULL REFERENCES %s(id),
				client TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				outcome TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.PastPerformance, tables.Proposals),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				proposal_id UUID NOT NULL REFERENCES %s(id),
				partner TEXT NOT NULL,
				capability TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.PartnerCapabilities, tables.Proposals),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_section ON %s (section_id, version_number DESC)`,
			tables.Versions, tables.Versions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_target ON %s (target_section_id, created_at DESC)`,
			tables.Suggestions, tables.Suggestions),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
