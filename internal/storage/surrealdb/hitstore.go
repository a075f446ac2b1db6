package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
	"github.com/calriss/corsair/internal/models"
)

// reportSelectFields lists the fields to select from hit_report, aliasing
// report_id to id for struct mapping.
const reportSelectFields = `report_id as id, target_handle, reporter_id, cargo_type, boxes,
	units_per_box, sell_location, current_price, notes, timestamp, guild_id, status, seller_id`

// piracySelectFields lists the fields to select from piracy_hit.
const piracySelectFields = `piracy_id as id, report_id, target_id, is_org, hit_date, details,
	org_id, member_handle`

// HitStore implements interfaces.HitStore using SurrealDB.
type HitStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewHitStore creates a new HitStore.
func NewHitStore(db *surrealdb.DB, logger *common.Logger) *HitStore {
	return &HitStore{db: db, logger: logger}
}

func (s *HitStore) CreateReport(ctx context.Context, report *models.HitReport) error {
	sql := `UPSERT $rid SET
		report_id = $report_id, target_handle = $target_handle, reporter_id = $reporter_id,
		cargo_type = $cargo_type, boxes = $boxes, units_per_box = $units_per_box,
		sell_location = $sell_location, current_price = $current_price, notes = $notes,
		timestamp = $timestamp, guild_id = $guild_id, status = $status, seller_id = $seller_id`
	vars := map[string]any{
		"rid":           surrealmodels.NewRecordID("hit_report", report.ID),
		"report_id":     report.ID,
		"target_handle": report.TargetHandle,
		"reporter_id":   report.ReporterID,
		"cargo_type":    report.CargoType,
		"boxes":         report.Boxes,
		"units_per_box": report.UnitsPerBox,
		"sell_location": report.SellLocation,
		"current_price": report.CurrentPrice,
		"notes":         report.Notes,
		"timestamp":     report.Timestamp,
		"guild_id":      report.GuildID,
		"status":        report.Status,
		"seller_id":     report.SellerID,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (s *HitStore) GetReport(ctx context.Context, id string) (*models.HitReport, error) {
	sql := "SELECT " + reportSelectFields + " FROM $rid"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("hit_report", id),
	}

	results, err := surrealdb.Query[[]models.HitReport](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

func (s *HitStore) UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) error {
	sql := "UPDATE $rid SET status = $status"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID("hit_report", id),
		"status": status,
	}

	if _, err := surrealdb.Query[[]models.HitReport](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	return nil
}

func (s *HitStore) ListReports(ctx context.Context, guildID string, page, pageSize int) ([]*models.HitReport, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	where := ""
	vars := map[string]any{
		"limit": pageSize,
		"start": (page - 1) * pageSize,
	}
	if guildID != "" {
		where = " WHERE guild_id = $guild"
		vars["guild"] = guildID
	}

	// report_id as tiebreaker for deterministic ordering when timestamps are equal
	sql := "SELECT " + reportSelectFields + " FROM hit_report" + where +
		" ORDER BY timestamp DESC, report_id DESC LIMIT $limit START $start"

	results, err := surrealdb.Query[[]models.HitReport](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]*models.HitReport, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			reports = append(reports, &(*results)[0].Result[i])
		}
	}
	return reports, nil
}

func (s *HitStore) CountReports(ctx context.Context, guildID string) (int, error) {
	where := ""
	vars := map[string]any{}
	if guildID != "" {
		where = " WHERE guild_id = $guild"
		vars["guild"] = guildID
	}

	sql := "SELECT count() AS cnt FROM hit_report" + where + " GROUP ALL"
	type countResult struct {
		Cnt int `json:"cnt"`
	}

	results, err := surrealdb.Query[[]countResult](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Cnt, nil
}

func (s *HitStore) AddCrewMember(ctx context.Context, member *models.CrewMember) error {
	sql := `UPSERT $rid SET
		hit_id = $hit_id, user_id = $user_id, role = $role,
		role_ratio = $role_ratio, share = $share`
	vars := map[string]any{
		"rid":        surrealmodels.NewRecordID("crew_member", member.HitID+"_"+member.UserID),
		"hit_id":     member.HitID,
		"user_id":    member.UserID,
		"role":       member.Role,
		"role_ratio": member.RoleRatio,
		"share":      member.Share,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to add crew member: %w", err)
	}
	return nil
}

func (s *HitStore) ListCrew(ctx context.Context, hitID string) ([]*models.CrewMember, error) {
	sql := "SELECT hit_id, user_id, role, role_ratio, share FROM crew_member WHERE hit_id = $hit ORDER BY user_id ASC"
	vars := map[string]any{"hit": hitID}

	results, err := surrealdb.Query[[]models.CrewMember](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew: %w", err)
	}

	crew := make([]*models.CrewMember, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			crew = append(crew, &(*results)[0].Result[i])
		}
	}
	return crew, nil
}

func (s *HitStore) ListCrewByUser(ctx context.Context, userID string) ([]*models.CrewMember, error) {
	sql := "SELECT hit_id, user_id, role, role_ratio, share FROM crew_member WHERE user_id = $user ORDER BY hit_id ASC"
	vars := map[string]any{"user": userID}

	results, err := surrealdb.Query[[]models.CrewMember](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew rows for user: %w", err)
	}

	crew := make([]*models.CrewMember, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			crew = append(crew, &(*results)[0].Result[i])
		}
	}
	return crew, nil
}

func (s *HitStore) AddPiracyHit(ctx context.Context, hit *models.PiracyHit) error {
	sql := `UPSERT $rid SET
		piracy_id = $piracy_id, report_id = $report_id, target_id = $target_id,
		is_org = $is_org, hit_date = $hit_date, details = $details,
		org_id = $org_id, member_handle = $member_handle`
	vars := map[string]any{
		"rid":           surrealmodels.NewRecordID("piracy_hit", hit.ID),
		"piracy_id":     hit.ID,
		"report_id":     hit.ReportID,
		"target_id":     hit.TargetID,
		"is_org":        hit.IsOrg,
		"hit_date":      hit.HitDate,
		"details":       hit.Details,
		"org_id":        hit.OrgID,
		"member_handle": hit.MemberHandle,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to add piracy hit: %w", err)
	}
	return nil
}

func (s *HitStore) ListPiracyHitsByReport(ctx context.Context, reportID string) ([]*models.PiracyHit, error) {
	sql := "SELECT " + piracySelectFields + " FROM piracy_hit WHERE report_id = $report ORDER BY target_id ASC"
	vars := map[string]any{"report": reportID}

	results, err := surrealdb.Query[[]models.PiracyHit](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list piracy hits: %w", err)
	}

	hits := make([]*models.PiracyHit, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			hits = append(hits, &(*results)[0].Result[i])
		}
	}
	return hits, nil
}

// SetStorageHolder upserts the single active holder row for a report.
// Keyed by hit ID: no history of transfers is kept.
func (s *HitStore) SetStorageHolder(ctx context.Context, storage *models.CargoStorage) error {
	sql := `UPSERT $rid SET
		hit_id = $hit_id, holder_id = $holder_id, status = $status, timestamp = $timestamp`
	vars := map[string]any{
		"rid":       surrealmodels.NewRecordID("cargo_storage", storage.HitID),
		"hit_id":    storage.HitID,
		"holder_id": storage.HolderID,
		"status":    storage.Status,
		"timestamp": storage.Timestamp,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to set storage holder: %w", err)
	}
	return nil
}

func (s *HitStore) GetStorageHolder(ctx context.Context, hitID string) (*models.CargoStorage, error) {
	sql := "SELECT hit_id, holder_id, status, timestamp FROM $rid"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("cargo_storage", hitID),
	}

	results, err := surrealdb.Query[[]models.CargoStorage](ctx, s.db, sql, vars)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get storage holder: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// Compile-time check
var _ interfaces.HitStore = (*HitStore)(nil)
