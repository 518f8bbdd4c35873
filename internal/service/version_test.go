package service

import (
	"context"
	"errors"
	"testing"

	"proposalforge/internal/domain"
	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/services"
)

func TestAppendAssignsContiguousNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	content := "Seed content"
	section, err := env.sections.UpsertSection(ctx, proposalID, "intro", models.SectionPatch{Content: &content})
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}

	for want := 1; want <= 4; want++ {
		version, err := env.versions.Append(ctx, &services.AppendVersionRequest{
			SectionID:  section.ID,
			Content:    content,
			WordCount:  2,
			ChangeType: models.ChangeUserEdit,
			ChangedBy:  "user-1",
		})
		if err != nil {
			t.Fatalf("Append #%d: %v", want, err)
		}
		if version.VersionNumber != want {
			t.Errorf("version number = %d, want %d", version.VersionNumber, want)
		}
	}
}

func TestAppendRejectsUnknownChangeType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.versions.Append(ctx, &services.AppendVersionRequest{
		SectionID:  "some-section",
		Content:    "x",
		ChangeType: models.ChangeType("merge_conflict"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestAppendRetriesOnceOnConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	content := "Seed content"
	section, _ := env.sections.UpsertSection(ctx, proposalID, "intro", models.SectionPatch{Content: &content})

	env.versionRepo.failNextAppends = 1
	version, err := env.versions.Append(ctx, &services.AppendVersionRequest{
		SectionID:  section.ID,
		Content:    content,
		ChangeType: models.ChangeUserEdit,
	})
	if err != nil {
		t.Fatalf("Append with one contested attempt: %v", err)
	}
	if version.VersionNumber != 1 {
		t.Errorf("version number = %d, want 1", version.VersionNumber)
	}

	// two consecutive conflicts exhaust the retry
	env.versionRepo.failNextAppends = 2
	_, err = env.versions.Append(ctx, &services.AppendVersionRequest{
		SectionID:  section.ID,
		Content:    content,
		ChangeType: models.ChangeUserEdit,
	})
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Errorf("err = %v, want concurrency conflict", err)
	}
}

func TestRestoreVersionRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	var sectionID string
	for _, content := range []string{"Version one content", "Version two content", "Version three content"} {
		section, err := env.sections.SaveSection(ctx, &services.SaveSectionRequest{
			ProposalID: proposalID,
			SectionKey: "intro",
			Content:    content,
			Author:     "user-1",
		})
		if err != nil {
			t.Fatalf("SaveSection(%q): %v", content, err)
		}
		sectionID = section.ID
	}

	restored, err := env.versions.RestoreVersion(ctx, sectionID, 1, "user-2")
	if err != nil {
		t.Fatalf("RestoreVersion: %v", err)
	}

	if restored.Content != "Version one content" {
		t.Errorf("content = %q, want version 1 content", restored.Content)
	}
	if restored.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft after restore", restored.Status)
	}

	versions, _ := env.versions.ListVersions(ctx, sectionID)
	if len(versions) != 4 {
		t.Fatalf("got %d versions, want 4 (history untouched plus restore entry)", len(versions))
	}
	newest := versions[0]
	if newest.VersionNumber != 4 {
		t.Errorf("newest version number = %d, want 4", newest.VersionNumber)
	}
	if newest.ChangeType != models.ChangeRestored {
		t.Errorf("newest change type = %q, want restored_from_history", newest.ChangeType)
	}
	if newest.ChangedBy != "user-2" {
		t.Errorf("newest changed by = %q, want user-2", newest.ChangedBy)
	}
	if newest.Content != "Version one content" {
		t.Errorf("newest content = %q, want restored content", newest.Content)
	}

	// versions 2 and 3 survived the restore
	if versions[1].VersionNumber != 3 || versions[2].VersionNumber != 2 {
		t.Errorf("intervening versions disturbed: %d, %d", versions[1].VersionNumber, versions[2].VersionNumber)
	}
}

func TestRestoreVersionUnknownNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	section, err := env.sections.SaveSection(ctx, &services.SaveSectionRequest{
		ProposalID: proposalID,
		SectionKey: "intro",
		Content:    "Only version",
		Author:     "user-1",
	})
	if err != nil {
		t.Fatalf("SaveSection: %v", err)
	}

	_, err = env.versions.RestoreVersion(ctx, section.ID, 9, "user-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}

	// failed restore appends nothing
	if n := env.versionRepo.count(section.ID); n != 1 {
		t.Errorf("version count = %d, want 1", n)
	}
}
