package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"proposalforge/internal/domain"
	"proposalforge/internal/domain/models"
	"proposalforge/internal/domain/services"
	"proposalforge/internal/metrics"
	"proposalforge/internal/oracle"
)

var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.Metrics
)

// sharedMetrics returns a process-wide Metrics instance; promauto panics on
// double registration.
func sharedMetrics() *metrics.Metrics {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.New()
	})
	return testMetrics
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeSectionRepo is an in-memory SectionRepository. Listings iterate in
// insertion order so tests are deterministic.
type fakeSectionRepo struct {
	mu       sync.Mutex
	sections map[string]*models.Section // keyed by proposalID + "/" + sectionKey
	order    []string

	// proposalOutcomes lets ListReusable honor the outcome filter the real
	// repository applies via its JOIN. Proposals without an entry pass.
	proposalOutcomes map[string]models.ProposalOutcome
}

func newFakeSectionRepo() *fakeSectionRepo {
	return &fakeSectionRepo{sections: make(map[string]*models.Section)}
}

func (f *fakeSectionRepo) key(proposalID, sectionKey string) string {
	return proposalID + "/" + sectionKey
}

func (f *fakeSectionRepo) Get(ctx context.Context, proposalID, sectionKey string) (*models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sections[f.key(proposalID, sectionKey)]
	if !ok {
		return nil, fmt.Errorf("section %s/%s: %w", proposalID, sectionKey, domain.ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSectionRepo) GetByID(ctx context.Context, id string) (*models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sections {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("section %s: %w", id, domain.ErrNotFound)
}

func (f *fakeSectionRepo) Upsert(ctx context.Context, section *models.Section) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if section.ID == "" {
		section.ID = uuid.NewString()
		section.CreatedAt = time.Now()
	}
	key := f.key(section.ProposalID, section.SectionKey)
	if _, exists := f.sections[key]; !exists {
		f.order = append(f.order, key)
	}
	copied := *section
	f.sections[key] = &copied
	return nil
}

func (f *fakeSectionRepo) ListByProposal(ctx context.Context, proposalID string) ([]models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Section
	for _, key := range f.order {
		if s := f.sections[key]; s.ProposalID == proposalID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSectionRepo) ListReusable(ctx context.Context, sectionKey, excludeProposalID string, outcomes []models.ProposalOutcome) ([]models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Section
	for _, key := range f.order {
		s := f.sections[key]
		if s.SectionKey != sectionKey || s.ProposalID == excludeProposalID || s.Content == "" {
			continue
		}
		if outcome, known := f.proposalOutcomes[s.ProposalID]; known {
			allowed := false
			for _, o := range outcomes {
				if o == outcome {
					allowed = true
				}
			}
			if !allowed {
				continue
			}
		}
		out = append(out, *s)
	}
	return out, nil
}

// fakeVersionRepo is an in-memory append-only VersionRepository. It enforces
// the (section, version number) uniqueness the real table enforces.
type fakeVersionRepo struct {
	mu       sync.Mutex
	versions map[string][]models.Version // keyed by section ID

	// failNextAppends makes the next N Append calls fail with a conflict,
	// to exercise the retry path.
	failNextAppends int
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string][]models.Version)}
}

func (f *fakeVersionRepo) Append(ctx context.Context, version *models.Version) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextAppends > 0 {
		f.failNextAppends--
		return &domain.ConcurrencyConflictError{SectionID: version.SectionID, VersionNumber: version.VersionNumber}
	}
	for _, v := range f.versions[version.SectionID] {
		if v.VersionNumber == version.VersionNumber {
			return &domain.ConcurrencyConflictError{SectionID: version.SectionID, VersionNumber: version.VersionNumber}
		}
	}
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	version.CreatedAt = time.Now()
	f.versions[version.SectionID] = append(f.versions[version.SectionID], *version)
	return nil
}

func (f *fakeVersionRepo) MaxVersionNumber(ctx context.Context, sectionID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, v := range f.versions[sectionID] {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (f *fakeVersionRepo) List(ctx context.Context, sectionID string) ([]models.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Version, len(f.versions[sectionID]))
	copy(out, f.versions[sectionID])
	// newest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (f *fakeVersionRepo) GetByNumber(ctx context.Context, sectionID string, versionNumber int) (*models.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.versions[sectionID] {
		if v.VersionNumber == versionNumber {
			copied := v
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("version %d of section %s: %w", versionNumber, sectionID, domain.ErrNotFound)
}

func (f *fakeVersionRepo) count(sectionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.versions[sectionID])
}

// fakeSuggestionRepo is an in-memory SuggestionRepository.
type fakeSuggestionRepo struct {
	mu   sync.Mutex
	rows []models.ReuseSuggestion
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{}
}

func (f *fakeSuggestionRepo) Create(ctx context.Context, suggestion *models.ReuseSuggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}
	f.rows = append(f.rows, *suggestion)
	return nil
}

func (f *fakeSuggestionRepo) GetByID(ctx context.Context, id string) (*models.ReuseSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			copied := row
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
}

func (f *fakeSuggestionRepo) ListByTarget(ctx context.Context, targetSectionID string) ([]models.ReuseSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ReuseSuggestion
	// newest rows were appended last
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].TargetSectionID == targetSectionID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeSuggestionRepo) Resolve(ctx context.Context, id string, status models.SuggestionStatus, wasUsed bool, feedback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID != id {
			continue
		}
		if f.rows[i].Status != models.SuggestionPending {
			return fmt.Errorf("suggestion %s: %w", id, domain.ErrTerminalSuggestion)
		}
		f.rows[i].Status = status
		f.rows[i].WasUsed = wasUsed
		f.rows[i].RejectionFeedback = feedback
		return nil
	}
	return fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
}

// fakeProposalRepo is an in-memory ProposalRepository.
type fakeProposalRepo struct {
	mu        sync.Mutex
	proposals map[string]*models.Proposal
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{proposals: make(map[string]*models.Proposal)}
}

func (f *fakeProposalRepo) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.proposals[id]
	if !ok {
		return nil, fmt.Errorf("proposal %s: %w", id, domain.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProposalRepo) Create(ctx context.Context, proposal *models.Proposal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if proposal.ID == "" {
		proposal.ID = uuid.NewString()
	}
	copied := *proposal
	f.proposals[proposal.ID] = &copied
	return nil
}

// fakeKnowledgeRepo serves canned knowledge rows.
type fakeKnowledgeRepo struct {
	compliance []models.ComplianceItem
	themes     []models.WinTheme
	pastPerf   []models.PastPerformance
	partners   []models.PartnerCapability

	complianceErr error
}

func (f *fakeKnowledgeRepo) ListComplianceItems(ctx context.Context, proposalID string) ([]models.ComplianceItem, error) {
	if f.complianceErr != nil {
		return nil, f.complianceErr
	}
	return f.compliance, nil
}

func (f *fakeKnowledgeRepo) ListWinThemes(ctx context.Context, proposalID string) ([]models.WinTheme, error) {
	return f.themes, nil
}

func (f *fakeKnowledgeRepo) ListPastPerformance(ctx context.Context, proposalID string, limit int) ([]models.PastPerformance, error) {
	if len(f.pastPerf) > limit {
		return f.pastPerf[:limit], nil
	}
	return f.pastPerf, nil
}

func (f *fakeKnowledgeRepo) ListPartnerCapabilities(ctx context.Context, proposalID string) ([]models.PartnerCapability, error) {
	return f.partners, nil
}

// fakeBufferStore is an in-memory DraftBufferStore.
type fakeBufferStore struct {
	mu      sync.Mutex
	buffers map[string]map[string]string
}

func newFakeBufferStore() *fakeBufferStore {
	return &fakeBufferStore{buffers: make(map[string]map[string]string)}
}

func (f *fakeBufferStore) Put(ctx context.Context, proposalID, sectionKey, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buffers[proposalID] == nil {
		f.buffers[proposalID] = make(map[string]string)
	}
	f.buffers[proposalID][sectionKey] = content
	return nil
}

func (f *fakeBufferStore) Snapshot(ctx context.Context, proposalID string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.buffers[proposalID]))
	for k, v := range f.buffers[proposalID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBufferStore) Proposals(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id := range f.buffers {
		out = append(out, id)
	}
	return out, nil
}

// fakeGenerator is a scriptable TextGenerator.
type fakeGenerator struct {
	mu      sync.Mutex
	result  *oracle.TextResult
	err     error
	calls   int
	prompts []string
	block   chan struct{} // when non-nil, GenerateText blocks until closed
}

func (f *fakeGenerator) GenerateText(ctx context.Context, req *oracle.TextRequest) (*oracle.TextResult, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeGenerator) Name() string { return "fake" }

// fakeJudge returns canned JSON.
type fakeJudge struct {
	raw []byte
	err error
}

func (f *fakeJudge) Judge(ctx context.Context, req *oracle.JudgeRequest) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

// recordingNotifier captures emitted payloads.
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []models.ReviewNotification
	transitions   []models.StageTransitionRequest
}

func (n *recordingNotifier) NotifyReviewRequested(ctx context.Context, payload models.ReviewNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, payload)
	return nil
}

func (n *recordingNotifier) RequestStageTransition(ctx context.Context, payload models.StageTransitionRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transitions = append(n.transitions, payload)
	return nil
}

// testEnv bundles the fakes plus the real services wired on top of them.
type testEnv struct {
	sectionRepo    *fakeSectionRepo
	versionRepo    *fakeVersionRepo
	suggestionRepo *fakeSuggestionRepo
	proposalRepo   *fakeProposalRepo
	knowledgeRepo  *fakeKnowledgeRepo
	notifier       *recordingNotifier

	sections services.SectionService
	versions services.VersionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		sectionRepo:    newFakeSectionRepo(),
		versionRepo:    newFakeVersionRepo(),
		suggestionRepo: newFakeSuggestionRepo(),
		proposalRepo:   newFakeProposalRepo(),
		knowledgeRepo:  &fakeKnowledgeRepo{},
		notifier:       &recordingNotifier{},
	}

	m := sharedMetrics()
	logger := testLogger()
	env.versions = NewVersionService(env.versionRepo, env.sectionRepo, m, logger)
	env.sections = NewSectionService(env.sectionRepo, env.proposalRepo, env.versions, env.notifier, m, logger)

	return env
}

// addProposal registers a proposal and returns its ID.
func (env *testEnv) addProposal(t *testing.T, p models.Proposal) string {
	t.Helper()
	if err := env.proposalRepo.Create(context.Background(), &p); err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return p.ID
}
