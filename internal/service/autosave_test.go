package service

import (
	"context"
	"testing"
	"time"

	"proposalforge/internal/domain/models"
)

func newTestReconciler(t *testing.T, env *testEnv, buffers *fakeBufferStore) *Reconciler {
	t.Helper()
	return NewReconciler(buffers, env.sections, env.sectionRepo, time.Minute, sharedMetrics(), testLogger())
}

func TestTickPersistsBufferedContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	buffers := newFakeBufferStore()
	buffers.Put(ctx, proposalID, "executive_summary", "Buffered draft text")
	buffers.Put(ctx, proposalID, "technical_approach", "Approach notes")

	reconciler := newTestReconciler(t, env, buffers)
	if errs := reconciler.Tick(ctx); len(errs) != 0 {
		t.Fatalf("Tick errors: %v", errs)
	}

	section, err := env.sections.GetSection(ctx, proposalID, "executive_summary")
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if section.Content != "Buffered draft text" {
		t.Errorf("content = %q, want buffered content", section.Content)
	}

	versions, _ := env.versions.ListVersions(ctx, section.ID)
	if len(versions) != 1 {
		t.Fatalf("got %d versions, want 1", len(versions))
	}
	if versions[0].ChangeType != models.ChangeInitialCreation {
		t.Errorf("change type = %q, want initial_creation for first persist", versions[0].ChangeType)
	}
	if versions[0].ChangeSummary != "Auto-saved" {
		t.Errorf("change summary = %q, want Auto-saved", versions[0].ChangeSummary)
	}
	if versions[0].ChangedBy != "auto-save" {
		t.Errorf("changed by = %q, want auto-save", versions[0].ChangedBy)
	}
}

func TestTickIsIdempotentForUnchangedBuffers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	buffers := newFakeBufferStore()
	buffers.Put(ctx, proposalID, "executive_summary", "Stable content")

	reconciler := newTestReconciler(t, env, buffers)
	if errs := reconciler.Tick(ctx); len(errs) != 0 {
		t.Fatalf("first Tick errors: %v", errs)
	}
	if errs := reconciler.Tick(ctx); len(errs) != 0 {
		t.Fatalf("second Tick errors: %v", errs)
	}

	section, _ := env.sections.GetSection(ctx, proposalID, "executive_summary")
	if n := env.versionRepo.count(section.ID); n != 1 {
		t.Errorf("version count after two ticks = %d, want 1", n)
	}
}

func TestTickPersistsChangedBuffers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	buffers := newFakeBufferStore()
	buffers.Put(ctx, proposalID, "executive_summary", "First buffered state")

	reconciler := newTestReconciler(t, env, buffers)
	reconciler.Tick(ctx)

	buffers.Put(ctx, proposalID, "executive_summary", "Second buffered state")
	reconciler.Tick(ctx)

	section, _ := env.sections.GetSection(ctx, proposalID, "executive_summary")
	if section.Content != "Second buffered state" {
		t.Errorf("content = %q, want second buffered state", section.Content)
	}
	if n := env.versionRepo.count(section.ID); n != 2 {
		t.Errorf("version count = %d, want 2", n)
	}
}

func TestTickSkipsEmptyBuffers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	buffers := newFakeBufferStore()
	buffers.Put(ctx, proposalID, "executive_summary", "   \n ")

	reconciler := newTestReconciler(t, env, buffers)
	if errs := reconciler.Tick(ctx); len(errs) != 0 {
		t.Fatalf("Tick errors: %v", errs)
	}

	if _, err := env.sections.GetSection(ctx, proposalID, "executive_summary"); err == nil {
		t.Error("empty buffer was persisted")
	}
}

func TestTickIsolatesPerKeyFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	proposalID := env.addProposal(t, models.Proposal{Title: "Transit Upgrade"})

	buffers := newFakeBufferStore()
	// section key over the length limit fails validation in the save path
	longKey := make([]byte, 200)
	for i := range longKey {
		longKey[i] = 'k'
	}
	buffers.Put(ctx, proposalID, string(longKey), "Doomed content")
	buffers.Put(ctx, proposalID, "good_key", "Good content")

	reconciler := newTestReconciler(t, env, buffers)
	errs := reconciler.Tick(ctx)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want exactly the bad key's", len(errs))
	}

	section, err := env.sections.GetSection(ctx, proposalID, "good_key")
	if err != nil {
		t.Fatalf("good key was not persisted: %v", err)
	}
	if section.Content != "Good content" {
		t.Errorf("content = %q, want good content", section.Content)
	}
}
