package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
	"github.com/calriss/corsair/internal/models"
)

// --- Mocks ---

type mockHitStore struct {
	reports    map[string]*models.HitReport
	crew       []*models.CrewMember
	piracyHits []*models.PiracyHit
	holders    map[string]*models.CargoStorage

	createReportErr error
	addCrewErr      error
	addHitErr       error
	setHolderErr    error
	failHitTargets  map[string]bool
}

func newMockHitStore() *mockHitStore {
	return &mockHitStore{
		reports: make(map[string]*models.HitReport),
		holders: make(map[string]*models.CargoStorage),
	}
}

func (m *mockHitStore) CreateReport(_ context.Context, r *models.HitReport) error {
	if m.createReportErr != nil {
		return m.createReportErr
	}
	m.reports[r.ID] = r
	return nil
}

func (m *mockHitStore) GetReport(_ context.Context, id string) (*models.HitReport, error) {
	return m.reports[id], nil
}

func (m *mockHitStore) UpdateReportStatus(_ context.Context, id string, status models.ReportStatus) error {
	if r, ok := m.reports[id]; ok {
		r.Status = status
	}
	return nil
}

func (m *mockHitStore) ListReports(_ context.Context, _ string, _, _ int) ([]*models.HitReport, error) {
	var out []*models.HitReport
	for _, r := range m.reports {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockHitStore) CountReports(_ context.Context, _ string) (int, error) {
	return len(m.reports), nil
}

func (m *mockHitStore) AddCrewMember(_ context.Context, c *models.CrewMember) error {
	if m.addCrewErr != nil {
		return m.addCrewErr
	}
	m.crew = append(m.crew, c)
	return nil
}

func (m *mockHitStore) ListCrew(_ context.Context, hitID string) ([]*models.CrewMember, error) {
	var out []*models.CrewMember
	for _, c := range m.crew {
		if c.HitID == hitID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockHitStore) ListCrewByUser(_ context.Context, userID string) ([]*models.CrewMember, error) {
	var out []*models.CrewMember
	for _, c := range m.crew {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockHitStore) AddPiracyHit(_ context.Context, h *models.PiracyHit) error {
	if m.addHitErr != nil {
		return m.addHitErr
	}
	if m.failHitTargets[h.TargetID] {
		return errors.New("write refused")
	}
	m.piracyHits = append(m.piracyHits, h)
	return nil
}

func (m *mockHitStore) ListPiracyHitsByReport(_ context.Context, reportID string) ([]*models.PiracyHit, error) {
	var out []*models.PiracyHit
	for _, h := range m.piracyHits {
		if h.ReportID == reportID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockHitStore) SetStorageHolder(_ context.Context, s *models.CargoStorage) error {
	if m.setHolderErr != nil {
		return m.setHolderErr
	}
	m.holders[s.HitID] = s
	return nil
}

func (m *mockHitStore) GetStorageHolder(_ context.Context, hitID string) (*models.CargoStorage, error) {
	return m.holders[hitID], nil
}

type mockPaymentStore struct {
	payments []*models.Payment
	addErr   error
}

func (m *mockPaymentStore) AddPayment(_ context.Context, p *models.Payment) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.payments = append(m.payments, p)
	return nil
}

func (m *mockPaymentStore) ListPaymentsByHit(_ context.Context, hitID string) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range m.payments {
		if p.HitID == hitID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentStore) ListPaymentsByReceiver(_ context.Context, receiverID string) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range m.payments {
		if p.ReceiverID == receiverID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockStorage struct {
	hits     *mockHitStore
	payments *mockPaymentStore
}

func newMockStorage() *mockStorage {
	return &mockStorage{hits: newMockHitStore(), payments: &mockPaymentStore{}}
}

func (m *mockStorage) HitStore() interfaces.HitStore         { return m.hits }
func (m *mockStorage) PaymentStore() interfaces.PaymentStore { return m.payments }

func (m *mockStorage) GetBalance(_ context.Context, userID, guildID string) (*models.Balance, error) {
	return &models.Balance{UserID: userID, GuildID: guildID}, nil
}

func (m *mockStorage) Close() error { return nil }

type mockProfileClient struct {
	profiles map[string]*models.ProfileRecord
	err      error
	calls    int
}

func (m *mockProfileClient) GetProfile(_ context.Context, handle string) (*models.ProfileRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.profiles[handle]; ok {
		return p, nil
	}
	return &models.ProfileRecord{Handle: handle}, nil
}

// --- Helpers ---

func newTestService(storage *mockStorage, profiles *mockProfileClient) *Service {
	if profiles == nil {
		profiles = &mockProfileClient{}
	}
	return NewService(storage, profiles, time.Minute, 5, common.NewSilentLogger())
}

func runFlowToSeller(t *testing.T, svc *Service, userID string) {
	t.Helper()
	if err := svc.StartFlow(userID, "guild-1"); err != nil {
		t.Fatalf("StartFlow: %v", err)
	}
	cargo := models.Commodity{Code: "GOLD", Name: "Gold", Slug: "gold"}
	if err := svc.SetCargo(userID, cargo, 4, 6455, "Orison", 100); err != nil {
		t.Fatalf("SetCargo: %v", err)
	}
	crew := map[string]models.CrewRole{
		userID: models.RolePilot,
		"bob":  models.RoleBoarder,
	}
	if err := svc.SetCrew(userID, crew); err != nil {
		t.Fatalf("SetCrew: %v", err)
	}
	if err := svc.SetSeller(userID, "bob"); err != nil {
		t.Fatalf("SetSeller: %v", err)
	}
}

func profileWithOrgs() *models.ProfileRecord {
	redacted := models.RedactedOrgRef()
	return &models.ProfileRecord{
		Handle:  "VictimPrime",
		MainOrg: &models.OrgRef{Name: "Free Traders", SID: "TRADERS"},
		AffiliatedOrgs: []models.OrgRef{
			redacted,
			{Name: "Mining Guild", SID: "MINERS"},
		},
	}
}

// --- Flow tests ---

func TestFlowHappyPath(t *testing.T) {
	storage := newMockStorage()
	profiles := &mockProfileClient{profiles: map[string]*models.ProfileRecord{
		"VictimPrime": profileWithOrgs(),
	}}
	svc := newTestService(storage, profiles)

	runFlowToSeller(t, svc, "alice")

	report, err := svc.Commit(context.Background(), "alice", "VictimPrime", "night raid")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if report.Status != models.ReportStatusUnsold {
		t.Errorf("status = %s, want unsold", report.Status)
	}
	if report.SellerID != "bob" || report.GuildID != "guild-1" {
		t.Errorf("report = %+v", report)
	}
	if got := report.TotalValue(); got != 4*100*6455 {
		t.Errorf("total value = %v, want %v", got, 4*100*6455)
	}

	// Crew rows with shares summing to 1.
	if len(storage.hits.crew) != 2 {
		t.Fatalf("got %d crew rows, want 2", len(storage.hits.crew))
	}
	var sum float64
	for _, c := range storage.hits.crew {
		sum += c.Share
	}
	if sum < 0.999999999 || sum > 1.000000001 {
		t.Errorf("shares sum to %v", sum)
	}

	// Fan-out: individual + main org + one visible affiliate. The redacted
	// affiliate gets nothing.
	if len(storage.hits.piracyHits) != 3 {
		t.Fatalf("got %d piracy hits, want 3", len(storage.hits.piracyHits))
	}
	targets := make(map[string]bool)
	for _, h := range storage.hits.piracyHits {
		targets[h.TargetID] = true
		if h.ReportID != report.ID {
			t.Errorf("piracy hit not keyed to report: %+v", h)
		}
	}
	for _, want := range []string{"VictimPrime", "TRADERS", "MINERS"} {
		if !targets[want] {
			t.Errorf("missing fan-out target %s (have %v)", want, targets)
		}
	}
	if targets[models.Redacted] {
		t.Error("redacted org leaked into fan-out")
	}

	// Seller holds the cargo.
	holder := storage.hits.holders[report.ID]
	if holder == nil || holder.HolderID != "bob" || holder.Status != "holding" {
		t.Errorf("holder = %+v", holder)
	}

	// Session consumed: a new flow can start.
	if err := svc.StartFlow("alice", "guild-1"); err != nil {
		t.Errorf("StartFlow after commit: %v", err)
	}
}

func TestFlowRejectsConcurrentSecondFlow(t *testing.T) {
	svc := newTestService(newMockStorage(), nil)
	if err := svc.StartFlow("alice", "guild-1"); err != nil {
		t.Fatalf("StartFlow: %v", err)
	}
	if err := svc.StartFlow("alice", "guild-2"); !errors.Is(err, ErrFlowInProgress) {
		t.Errorf("err = %v, want ErrFlowInProgress", err)
	}
}

func TestFlowValidation(t *testing.T) {
	svc := newTestService(newMockStorage(), nil)
	cargo := models.Commodity{Name: "Gold", Slug: "gold"}

	if err := svc.SetCargo("nobody", cargo, 4, 6455, "Orison", 100); !errors.Is(err, ErrNoFlow) {
		t.Errorf("SetCargo without flow err = %v, want ErrNoFlow", err)
	}

	if err := svc.StartFlow("alice", "guild-1"); err != nil {
		t.Fatalf("StartFlow: %v", err)
	}

	if err := svc.SetCargo("alice", cargo, 0, 6455, "Orison", 100); !IsValidation(err) {
		t.Errorf("zero boxes err = %v, want ValidationError", err)
	}
	if err := svc.SetCargo("alice", cargo, 4, 0, "Orison", 100); !IsValidation(err) {
		t.Errorf("zero price err = %v, want ValidationError", err)
	}

	// Crew before cargo is an ordering violation.
	err := svc.SetCrew("alice", map[string]models.CrewRole{"alice": models.RolePilot})
	var fse *FlowStateError
	if !errors.As(err, &fse) {
		t.Errorf("out-of-order SetCrew err = %v, want FlowStateError", err)
	}

	if err := svc.SetCargo("alice", cargo, 4, 6455, "Orison", 100); err != nil {
		t.Fatalf("SetCargo: %v", err)
	}

	if err := svc.SetCrew("alice", map[string]models.CrewRole{}); !IsValidation(err) {
		t.Errorf("empty crew err = %v, want ValidationError", err)
	}
	tooMany := map[string]models.CrewRole{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		tooMany[id] = models.RolePilot
	}
	if err := svc.SetCrew("alice", tooMany); !IsValidation(err) {
		t.Errorf("oversized crew err = %v, want ValidationError", err)
	}
	if err := svc.SetCrew("alice", map[string]models.CrewRole{"alice": "navigator"}); !IsValidation(err) {
		t.Errorf("unknown role err = %v, want ValidationError", err)
	}

	if err := svc.SetCrew("alice", map[string]models.CrewRole{"alice": models.RolePilot}); err != nil {
		t.Fatalf("SetCrew: %v", err)
	}

	// Seller must be on the crew.
	if err := svc.SetSeller("alice", "stranger"); !IsValidation(err) {
		t.Errorf("outsider seller err = %v, want ValidationError", err)
	}
}

func TestCommitRequiresTarget(t *testing.T) {
	svc := newTestService(newMockStorage(), nil)
	runFlowToSeller(t, svc, "alice")

	if _, err := svc.Commit(context.Background(), "alice", "", ""); !IsValidation(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestCommitOutOfOrder(t *testing.T) {
	svc := newTestService(newMockStorage(), nil)
	if err := svc.StartFlow("alice", "guild-1"); err != nil {
		t.Fatalf("StartFlow: %v", err)
	}

	_, err := svc.Commit(context.Background(), "alice", "VictimPrime", "")
	var fse *FlowStateError
	if !errors.As(err, &fse) {
		t.Errorf("err = %v, want FlowStateError", err)
	}
}

// --- Commit failure paths ---

func TestCommitReportWriteFails(t *testing.T) {
	storage := newMockStorage()
	storage.hits.createReportErr = errors.New("db down")
	svc := newTestService(storage, nil)
	runFlowToSeller(t, svc, "alice")

	_, err := svc.Commit(context.Background(), "alice", "VictimPrime", "")
	if err == nil {
		t.Fatal("expected error")
	}
	// Nothing persisted, so this is a plain failure, not a SubmissionError.
	if IsSubmission(err) {
		t.Errorf("err = %v, should not be SubmissionError before the report row exists", err)
	}
}

func TestCommitProfileLookupFails(t *testing.T) {
	storage := newMockStorage()
	profiles := &mockProfileClient{err: errors.New("upstream down")}
	svc := newTestService(storage, profiles)
	runFlowToSeller(t, svc, "alice")

	_, err := svc.Commit(context.Background(), "alice", "VictimPrime", "")
	if !IsSubmission(err) {
		t.Fatalf("err = %v, want SubmissionError", err)
	}
	var se *SubmissionError
	errors.As(err, &se)
	if se.Step != "profile" || se.ReportID == "" {
		t.Errorf("submission error = %+v", se)
	}

	// The report row stays in place for replay.
	if len(storage.hits.reports) != 1 {
		t.Errorf("got %d reports, want the committed row kept", len(storage.hits.reports))
	}
}

func TestCommitPartialFanOut(t *testing.T) {
	storage := newMockStorage()
	storage.hits.failHitTargets = map[string]bool{"TRADERS": true}
	profiles := &mockProfileClient{profiles: map[string]*models.ProfileRecord{
		"VictimPrime": profileWithOrgs(),
	}}
	svc := newTestService(storage, profiles)
	runFlowToSeller(t, svc, "alice")

	_, err := svc.Commit(context.Background(), "alice", "VictimPrime", "")
	if !IsSubmission(err) {
		t.Fatalf("err = %v, want SubmissionError", err)
	}
	var se *SubmissionError
	errors.As(err, &se)
	if se.Step != "fanout" {
		t.Errorf("step = %q, want fanout", se.Step)
	}

	// The individual and MINERS rows landed; only TRADERS is missing.
	if len(storage.hits.piracyHits) != 2 {
		t.Fatalf("got %d piracy hits, want 2", len(storage.hits.piracyHits))
	}

	// Crew shares and the storage holder come from the session, which is
	// gone after Commit. They must survive a failed fan-out or the shares
	// are unrecoverable.
	crew, _ := storage.hits.ListCrew(context.Background(), se.ReportID)
	if len(crew) != 2 {
		t.Fatalf("got %d crew rows after partial fan-out, want 2", len(crew))
	}
	var shareSum float64
	for _, c := range crew {
		shareSum += c.Share
	}
	if shareSum < 0.999 || shareSum > 1.001 {
		t.Errorf("crew shares sum to %f, want 1", shareSum)
	}
	if holder := storage.hits.holders[se.ReportID]; holder == nil || holder.HolderID != "bob" {
		t.Errorf("storage holder = %+v, want bob holding", holder)
	}

	// The missing org row is replayable once the store recovers.
	storage.hits.failHitTargets = nil
	replayed, err := svc.ReplayFanOut(context.Background(), se.ReportID)
	if err != nil {
		t.Fatalf("ReplayFanOut: %v", err)
	}
	if replayed != 1 {
		t.Errorf("replayed = %d, want 1", replayed)
	}
}

func TestReplayFanOutFillsGaps(t *testing.T) {
	storage := newMockStorage()
	storage.hits.failHitTargets = map[string]bool{"TRADERS": true}
	profiles := &mockProfileClient{profiles: map[string]*models.ProfileRecord{
		"VictimPrime": profileWithOrgs(),
	}}
	svc := newTestService(storage, profiles)
	runFlowToSeller(t, svc, "alice")

	_, err := svc.Commit(context.Background(), "alice", "VictimPrime", "")
	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want SubmissionError", err)
	}

	// Clear the fault and replay.
	storage.hits.failHitTargets = nil
	replayed, err := svc.ReplayFanOut(context.Background(), se.ReportID)
	if err != nil {
		t.Fatalf("ReplayFanOut: %v", err)
	}
	if replayed != 1 {
		t.Errorf("replayed = %d, want 1", replayed)
	}
	if len(storage.hits.piracyHits) != 3 {
		t.Errorf("got %d piracy hits after replay, want 3", len(storage.hits.piracyHits))
	}

	// A second replay is a no-op.
	replayed, err = svc.ReplayFanOut(context.Background(), se.ReportID)
	if err != nil {
		t.Fatalf("second ReplayFanOut: %v", err)
	}
	if replayed != 0 {
		t.Errorf("second replay wrote %d rows, want 0", replayed)
	}
}

func TestReplayFanOutUnknownReport(t *testing.T) {
	svc := newTestService(newMockStorage(), nil)
	if _, err := svc.ReplayFanOut(context.Background(), "hit_missing"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("err = %v, want ErrReportNotFound", err)
	}
}

// --- Ledger operations ---

func TestRecordPaymentValidation(t *testing.T) {
	storage := newMockStorage()
	svc := newTestService(storage, nil)

	if _, err := svc.RecordPayment(context.Background(), "hit_1", "bob", "alice", 0); !IsValidation(err) {
		t.Errorf("zero amount err = %v, want ValidationError", err)
	}
	if _, err := svc.RecordPayment(context.Background(), "hit_1", "bob", "alice", -500); !IsValidation(err) {
		t.Errorf("negative amount err = %v, want ValidationError", err)
	}

	id, err := svc.RecordPayment(context.Background(), "hit_1", "bob", "alice", 250000)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if id == "" {
		t.Error("payment ID is empty")
	}
	if len(storage.payments.payments) != 1 {
		t.Errorf("got %d payments, want 1", len(storage.payments.payments))
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	storage := newMockStorage()
	storage.hits.reports["hit_1"] = &models.HitReport{ID: "hit_1", Status: models.ReportStatusUnsold}
	svc := newTestService(storage, nil)
	ctx := context.Background()

	if err := svc.UpdateStatus(ctx, "hit_1", models.ReportStatusCompleted); err != nil {
		t.Fatalf("unsold -> completed: %v", err)
	}
	// Forward-only: completed cannot move again.
	if err := svc.UpdateStatus(ctx, "hit_1", models.ReportStatusDisputed); !IsValidation(err) {
		t.Errorf("completed -> disputed err = %v, want ValidationError", err)
	}

	if err := svc.UpdateStatus(ctx, "hit_missing", models.ReportStatusCompleted); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("missing report err = %v, want ErrReportNotFound", err)
	}
}

func TestListReportsNormalizesPaging(t *testing.T) {
	storage := newMockStorage()
	for _, id := range []string{"hit_1", "hit_2", "hit_3"} {
		storage.hits.reports[id] = &models.HitReport{ID: id, GuildID: "guild-1"}
	}
	svc := newTestService(storage, nil)

	page, err := svc.ListReports(context.Background(), "guild-1", 0, 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if page.Page != 1 || page.PageSize != 10 {
		t.Errorf("page = %d size = %d, want 1/10", page.Page, page.PageSize)
	}
	if page.Total != 3 || page.TotalPages != 1 {
		t.Errorf("total = %d pages = %d", page.Total, page.TotalPages)
	}
}
