package service

import (
	"context"
	"errors"
	"testing"

	"proposalforge/internal/domain"
	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/services"
)

func TestSaveSectionFirstSave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	section, err := env.sections.SaveSection(ctx, &services.SaveSectionRequest{
		ProposalID: proposalID,
		SectionKey: "executive_summary",
		Content:    "Executive summary draft",
		Author:     "user-1",
	})
	if err != nil {
		t.Fatalf("SaveSection: %v", err)
	}

	if section.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", section.Status)
	}
	if section.WordCount != 3 {
		t.Errorf("word count = %d, want 3", section.WordCount)
	}

	versions, err := env.versions.ListVersions(ctx, section.ID)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("got %d versions, want 1", len(versions))
	}
	if versions[0].VersionNumber != 1 {
		t.Errorf("version number = %d, want 1", versions[0].VersionNumber)
	}
	if versions[0].ChangeType != models.ChangeInitialCreation {
		t.Errorf("change type = %q, want initial_creation", versions[0].ChangeType)
	}
	if versions[0].ChangedBy != "user-1" {
		t.Errorf("changed by = %q, want user-1", versions[0].ChangedBy)
	}
}

func TestSaveSectionSubsequentSavesAreUserEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	for _, content := range []string{"First draft", "Second draft", "Third draft"} {
		if _, err := env.sections.SaveSection(ctx, &services.SaveSectionRequest{
			ProposalID: proposalID,
			SectionKey: "technical_approach",
			Content:    content,
			Author:     "user-1",
		}); err != nil {
			t.Fatalf("SaveSection(%q): %v", content, err)
		}
	}

	section, err := env.sections.GetSection(ctx, proposalID, "technical_approach")
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if section.Content != "Third draft" {
		t.Errorf("content = %q, want latest save", section.Content)
	}

	versions, _ := env.versions.ListVersions(ctx, section.ID)
	if len(versions) != 3 {
		t.Fatalf("got %d versions, want 3", len(versions))
	}
	// newest first
	wantNumbers := []int{3, 2, 1}
	wantTypes := []models.ChangeType{models.ChangeUserEdit, models.ChangeUserEdit, models.ChangeInitialCreation}
	for i, v := range versions {
		if v.VersionNumber != wantNumbers[i] {
			t.Errorf("versions[%d].VersionNumber = %d, want %d", i, v.VersionNumber, wantNumbers[i])
		}
		if v.ChangeType != wantTypes[i] {
			t.Errorf("versions[%d].ChangeType = %q, want %q", i, v.ChangeType, wantTypes[i])
		}
	}
}

func TestSaveSectionRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.sections.SaveSection(ctx, &services.SaveSectionRequest{
				ProposalID: proposalID,
				SectionKey: "executive_summary",
				Content:    tt.content,
				Author:     "user-1",
			})
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}

	// nothing was persisted
	if _, err := env.sections.GetSection(ctx, proposalID, "executive_summary"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetSection after rejected saves: err = %v, want not found", err)
	}
}

func TestUpsertSectionRecomputesWordCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	content := "<p>Hello <b>wide</b> world</p>"
	section, err := env.sections.UpsertSection(ctx, proposalID, "intro", models.SectionPatch{Content: &content})
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}
	if section.WordCount != 3 {
		t.Errorf("word count = %d, want 3 (markup stripped)", section.WordCount)
	}

	// patching without content leaves the count alone
	order := 7
	section, err = env.sections.UpsertSection(ctx, proposalID, "intro", models.SectionPatch{Order: &order})
	if err != nil {
		t.Fatalf("UpsertSection patch: %v", err)
	}
	if section.WordCount != 3 {
		t.Errorf("word count after order patch = %d, want 3", section.WordCount)
	}
	if section.Order != 7 {
		t.Errorf("order = %d, want 7", section.Order)
	}
}

func TestUpsertSectionNeverWritesVersions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	content := "Draft via upsert"
	section, err := env.sections.UpsertSection(ctx, proposalID, "intro", models.SectionPatch{Content: &content})
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}

	if n := env.versionRepo.count(section.ID); n != 0 {
		t.Errorf("version count = %d, want 0", n)
	}
}

func TestMarkForReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{
		Title:     "Transit Upgrade",
		Reviewers: []string{"reviewer-1", "reviewer-2"},
	})

	if _, err := env.sections.SaveSection(ctx, &services.SaveSectionRequest{
		ProposalID: proposalID,
		SectionKey: "executive_summary",
		Content:    "Ready for a look",
		Author:     "author-1",
	}); err != nil {
		t.Fatalf("SaveSection: %v", err)
	}

	section, err := env.sections.MarkForReview(ctx, &services.MarkForReviewRequest{
		ProposalID: proposalID,
		SectionKey: "executive_summary",
		MarkedBy:   "author-1",
	})
	if err != nil {
		t.Fatalf("MarkForReview: %v", err)
	}

	if section.Status != models.StatusPendingReview {
		t.Errorf("status = %q, want pending_review", section.Status)
	}
	if section.MarkedForReviewBy == nil || *section.MarkedForReviewBy != "author-1" {
		t.Errorf("marked_for_review_by = %v, want author-1", section.MarkedForReviewBy)
	}
	if section.MarkedForReviewAt == nil {
		t.Error("marked_for_review_at not set")
	}

	if len(env.notifier.notifications) != 2 {
		t.Fatalf("got %d notifications, want one per reviewer", len(env.notifier.notifications))
	}
	for i, want := range []string{"reviewer-1", "reviewer-2"} {
		if env.notifier.notifications[i].Reviewer != want {
			t.Errorf("notifications[%d].Reviewer = %q, want %q", i, env.notifier.notifications[i].Reviewer, want)
		}
	}
	if len(env.notifier.transitions) != 1 || env.notifier.transitions[0].TargetStage != "review" {
		t.Errorf("transitions = %+v, want one request to stage review", env.notifier.transitions)
	}
}

func TestMarkForReviewRejectsEmptySection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	content := "   "
	if _, err := env.sections.UpsertSection(ctx, proposalID, "empty_one", models.SectionPatch{Content: &content}); err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}

	_, err := env.sections.MarkForReview(ctx, &services.MarkForReviewRequest{
		ProposalID: proposalID,
		SectionKey: "empty_one",
		MarkedBy:   "author-1",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
	if len(env.notifier.notifications) != 0 {
		t.Errorf("notifications emitted for rejected review: %d", len(env.notifier.notifications))
	}
}
