package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/calriss/corsair/internal/models"
)

func sampleReport(id, guildID string, ts time.Time) *models.HitReport {
	return &models.HitReport{
		ID:           id,
		TargetHandle: "VictimPrime",
		ReporterID:   "alice",
		CargoType:    "Gold",
		Boxes:        4,
		UnitsPerBox:  100,
		SellLocation: "Orison",
		CurrentPrice: 6455,
		Notes:        "night raid",
		Timestamp:    ts,
		GuildID:      guildID,
		Status:       models.ReportStatusUnsold,
		SellerID:     "bob",
	}
}

func TestReportRoundTrip(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	store := m.HitStore()

	ts := time.Now().UTC().Truncate(time.Second)
	if err := store.CreateReport(ctx, sampleReport("hit_1", "guild-1", ts)); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	got, err := store.GetReport(ctx, "hit_1")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got == nil {
		t.Fatal("report not found after create")
	}
	if got.ID != "hit_1" || got.TargetHandle != "VictimPrime" || got.Boxes != 4 {
		t.Errorf("report = %+v", got)
	}
	if got.Status != models.ReportStatusUnsold {
		t.Errorf("status = %s", got.Status)
	}
	if got.TotalValue() != 4*100*6455 {
		t.Errorf("total value = %v", got.TotalValue())
	}
}

func TestGetReportMissing(t *testing.T) {
	m := testManager(t)

	got, err := m.HitStore().GetReport(context.Background(), "hit_nope")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing report", got)
	}
}

func TestUpdateReportStatus(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	store := m.HitStore()

	if err := store.CreateReport(ctx, sampleReport("hit_1", "guild-1", time.Now())); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if err := store.UpdateReportStatus(ctx, "hit_1", models.ReportStatusCompleted); err != nil {
		t.Fatalf("UpdateReportStatus: %v", err)
	}

	got, err := store.GetReport(ctx, "hit_1")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Status != models.ReportStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestListReportsPagination(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	store := m.HitStore()

	base := time.Now().UTC().Truncate(time.Second)
	ids := []string{"hit_a", "hit_b", "hit_c", "hit_d", "hit_e"}
	for i, id := range ids {
		r := sampleReport(id, "guild-1", base.Add(time.Duration(i)*time.Minute))
		if err := store.CreateReport(ctx, r); err != nil {
			t.Fatalf("CreateReport %s: %v", id, err)
		}
	}
	// One report in another guild must never surface.
	if err := store.CreateReport(ctx, sampleReport("hit_other", "guild-2", base)); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	total, err := store.CountReports(ctx, "guild-1")
	if err != nil {
		t.Fatalf("CountReports: %v", err)
	}
	if total != 5 {
		t.Errorf("count = %d, want 5", total)
	}

	// Newest first.
	page1, err := store.ListReports(ctx, "guild-1", 1, 2)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(page1) != 2 || page1[0].ID != "hit_e" || page1[1].ID != "hit_d" {
		t.Errorf("page 1 = %v", reportIDs(page1))
	}

	page3, err := store.ListReports(ctx, "guild-1", 3, 2)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(page3) != 1 || page3[0].ID != "hit_a" {
		t.Errorf("page 3 = %v", reportIDs(page3))
	}

	// Past the end: empty, no error.
	page9, err := store.ListReports(ctx, "guild-1", 9, 2)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(page9) != 0 {
		t.Errorf("page 9 = %v, want empty", reportIDs(page9))
	}
}

func reportIDs(reports []*models.HitReport) []string {
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}

func TestCrewMemberRoundTrip(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	store := m.HitStore()

	members := []*models.CrewMember{
		{HitID: "hit_1", UserID: "alice", Role: models.RolePilot, RoleRatio: 0.8, Share: 0.4},
		{HitID: "hit_1", UserID: "bob", Role: models.RoleBoarder, RoleRatio: 1.2, Share: 0.6},
		{HitID: "hit_2", UserID: "alice", Role: models.RoleGunner, RoleRatio: 0.8, Share: 1},
	}
	for _, member := range members {
		if err := store.AddCrewMember(ctx, member); err != nil {
			t.Fatalf("AddCrewMember: %v", err)
		}
	}

	crew, err := store.ListCrew(ctx, "hit_1")
	if err != nil {
		t.Fatalf("ListCrew: %v", err)
	}
	if len(crew) != 2 {
		t.Fatalf("got %d crew rows, want 2", len(crew))
	}
	if crew[0].UserID != "alice" || crew[1].UserID != "bob" {
		t.Errorf("crew order = %s, %s", crew[0].UserID, crew[1].UserID)
	}
	if crew[1].Share != 0.6 || crew[1].Role != models.RoleBoarder {
		t.Errorf("bob = %+v", crew[1])
	}

	byUser, err := store.ListCrewByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListCrewByUser: %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("alice appears on %d hits, want 2", len(byUser))
	}

	// Re-adding the same member is an upsert, not a duplicate.
	if err := store.AddCrewMember(ctx, members[0]); err != nil {
		t.Fatalf("AddCrewMember again: %v", err)
	}
	crew, err = store.ListCrew(ctx, "hit_1")
	if err != nil {
		t.Fatalf("ListCrew: %v", err)
	}
	if len(crew) != 2 {
		t.Errorf("got %d crew rows after re-add, want 2", len(crew))
	}
}

func TestPiracyHitsByReport(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	store := m.HitStore()

	now := time.Now().UTC().Truncate(time.Second)
	hits := []*models.PiracyHit{
		{ID: "ph_1", ReportID: "hit_1", TargetID: "VictimPrime", IsOrg: false, HitDate: now, MemberHandle: "VictimPrime"},
		{ID: "ph_2", ReportID: "hit_1", TargetID: "TRADERS", IsOrg: true, HitDate: now, OrgID: "TRADERS"},
		{ID: "ph_3", ReportID: "hit_2", TargetID: "VictimPrime", IsOrg: false, HitDate: now},
	}
	for _, hit := range hits {
		if err := store.AddPiracyHit(ctx, hit); err != nil {
			t.Fatalf("AddPiracyHit: %v", err)
		}
	}

	got, err := store.ListPiracyHitsByReport(ctx, "hit_1")
	if err != nil {
		t.Fatalf("ListPiracyHitsByReport: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d hits, want 2", len(got))
	}
	// Ordered by target ID.
	if got[0].TargetID != "TRADERS" || got[1].TargetID != "VictimPrime" {
		t.Errorf("order = %s, %s", got[0].TargetID, got[1].TargetID)
	}
	if !got[0].IsOrg || got[0].OrgID != "TRADERS" {
		t.Errorf("org hit = %+v", got[0])
	}
}

func TestStorageHolderSingleRow(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	store := m.HitStore()

	ts := time.Now().UTC().Truncate(time.Second)
	if err := store.SetStorageHolder(ctx, &models.CargoStorage{
		HitID: "hit_1", HolderID: "bob", Status: "holding", Timestamp: ts,
	}); err != nil {
		t.Fatalf("SetStorageHolder: %v", err)
	}

	// A transfer overwrites the single row.
	if err := store.SetStorageHolder(ctx, &models.CargoStorage{
		HitID: "hit_1", HolderID: "carol", Status: "holding", Timestamp: ts.Add(time.Minute),
	}); err != nil {
		t.Fatalf("SetStorageHolder transfer: %v", err)
	}

	holder, err := store.GetStorageHolder(ctx, "hit_1")
	if err != nil {
		t.Fatalf("GetStorageHolder: %v", err)
	}
	if holder == nil || holder.HolderID != "carol" {
		t.Errorf("holder = %+v, want carol", holder)
	}

	missing, err := store.GetStorageHolder(ctx, "hit_unknown")
	if err != nil {
		t.Fatalf("GetStorageHolder: %v", err)
	}
	if missing != nil {
		t.Errorf("got %+v, want nil for unknown report", missing)
	}
}
