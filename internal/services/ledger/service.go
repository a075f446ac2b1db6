// Package ledger provides the earnings-attribution and balance ledger:
// the staged hit-report flow, the commit fan-out, and payment/balance
// queries.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
	"github.com/calriss/corsair/internal/models"
)

// DefaultMaxCrewSize bounds the crew list when no limit is configured.
const DefaultMaxCrewSize = 5

// Service implements LedgerService
type Service struct {
	storage  interfaces.StorageManager
	profiles interfaces.ProfileClient
	sessions *SessionStore
	maxCrew  int
	logger   *common.Logger
}

// NewService creates a new ledger service
func NewService(
	storage interfaces.StorageManager,
	profiles interfaces.ProfileClient,
	sessionTTL time.Duration,
	maxCrewSize int,
	logger *common.Logger,
) *Service {
	if sessionTTL <= 0 {
		sessionTTL = common.FreshnessSession
	}
	if maxCrewSize <= 0 {
		maxCrewSize = DefaultMaxCrewSize
	}
	return &Service{
		storage:  storage,
		profiles: profiles,
		sessions: NewSessionStore(sessionTTL),
		maxCrew:  maxCrewSize,
		logger:   logger,
	}
}

func newID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.New().String()[:8])
}

// StartFlow opens a fresh report flow for the user.
func (s *Service) StartFlow(userID, guildID string) error {
	if err := s.sessions.Start(userID, guildID); err != nil {
		return err
	}
	s.logger.Debug().Str("user", userID).Str("guild", guildID).Msg("Report flow started")
	return nil
}

// SetCargo records the cargo selection: Idle -> CargoChosen.
// Boxes must be a positive integer and price must be positive.
func (s *Service) SetCargo(userID string, cargo models.Commodity, boxes int, price float64, sellLocation string, unitsPerBox int) error {
	if boxes <= 0 {
		return &ValidationError{Field: "boxes", Msg: "must be a positive integer"}
	}
	if price <= 0 {
		return &ValidationError{Field: "price", Msg: "must be positive"}
	}
	if unitsPerBox <= 0 {
		unitsPerBox = models.DefaultUnitsPerBox
	}

	return s.sessions.Update(userID, func(sess *Session) error {
		if sess.State != StateIdle {
			return &FlowStateError{Expected: StateIdle, Actual: sess.State}
		}
		sess.Cargo = cargo
		sess.Boxes = boxes
		sess.Price = price
		sess.SellLocation = sellLocation
		sess.UnitsPerBox = unitsPerBox
		sess.State = StateCargoChosen
		return nil
	})
}

// SetCrew records the crew selection: CargoChosen -> CrewChosen.
// At least one member, at most the configured crew cap, each with a known
// role.
func (s *Service) SetCrew(userID string, crew map[string]models.CrewRole) error {
	if len(crew) == 0 {
		return &ValidationError{Field: "crew", Msg: "select at least one crew member"}
	}
	if len(crew) > s.maxCrew {
		return &ValidationError{Field: "crew", Msg: fmt.Sprintf("at most %d crew members", s.maxCrew)}
	}
	for memberID, role := range crew {
		if !role.Valid() {
			return &ValidationError{Field: "crew", Msg: fmt.Sprintf("unknown role %q for %s", role, memberID)}
		}
	}

	return s.sessions.Update(userID, func(sess *Session) error {
		if sess.State != StateCargoChosen {
			return &FlowStateError{Expected: StateCargoChosen, Actual: sess.State}
		}
		sess.Crew = crew
		sess.State = StateCrewChosen
		return nil
	})
}

// SetSeller records the seller selection: CrewChosen -> SellerChosen.
// The seller must be one of the selected crew.
func (s *Service) SetSeller(userID, sellerID string) error {
	return s.sessions.Update(userID, func(sess *Session) error {
		if sess.State != StateCrewChosen {
			return &FlowStateError{Expected: StateCrewChosen, Actual: sess.State}
		}
		if _, ok := sess.Crew[sellerID]; !ok {
			return &ValidationError{Field: "seller", Msg: "seller must be one of the selected crew"}
		}
		sess.SellerID = sellerID
		sess.State = StateSellerChosen
		return nil
	})
}

// Abandon discards the user's in-flight report without committing.
func (s *Service) Abandon(userID string) {
	s.sessions.Abandon(userID)
}

// Commit finalizes the flow: persist the report, crew shares, and storage
// holder, then resolve the target's org chain and fan out piracy-hit rows.
// The report row is written first and is never rolled back — any later
// failure surfaces a SubmissionError carrying the report ID. Crew and
// storage rows come only from the (already consumed) session, so they are
// written before the fan-out; a partial fan-out never costs the crew their
// shares and is recoverable via ReplayFanOut.
func (s *Service) Commit(ctx context.Context, userID, targetHandle, notes string) (*models.HitReport, error) {
	if targetHandle == "" {
		return nil, &ValidationError{Field: "target", Msg: "target handle is required"}
	}

	sess, err := s.sessions.Take(userID, StateSellerChosen)
	if err != nil {
		return nil, err
	}

	report := &models.HitReport{
		ID:           newID("hit"),
		TargetHandle: targetHandle,
		ReporterID:   userID,
		CargoType:    sess.Cargo.Name,
		Boxes:        sess.Boxes,
		UnitsPerBox:  sess.UnitsPerBox,
		SellLocation: sess.SellLocation,
		CurrentPrice: sess.Price,
		Notes:        notes,
		Timestamp:    time.Now(),
		GuildID:      sess.GuildID,
		Status:       models.ReportStatusUnsold,
		SellerID:     sess.SellerID,
	}

	if err := s.storage.HitStore().CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Info().
		Str("report", report.ID).
		Str("target", targetHandle).
		Str("guild", report.GuildID).
		Float64("total_value", report.TotalValue()).
		Msg("Report committed")

	members := ComputeShares(report.ID, sess.Crew)
	for _, member := range members {
		m := member
		if err := s.storage.HitStore().AddCrewMember(ctx, &m); err != nil {
			return nil, &SubmissionError{ReportID: report.ID, Step: "crew", Err: err}
		}
	}

	holder := &models.CargoStorage{
		HitID:     report.ID,
		HolderID:  sess.SellerID,
		Status:    "holding",
		Timestamp: time.Now(),
	}
	if err := s.storage.HitStore().SetStorageHolder(ctx, holder); err != nil {
		return nil, &SubmissionError{ReportID: report.ID, Step: "storage", Err: err}
	}

	if err := s.fanOut(ctx, report, nil); err != nil {
		return nil, err
	}

	return report, nil
}

// fanOut writes the piracy-hit attribution rows for a report: one for the
// individual target, one for the visible main org, one per visible
// affiliated org. Redacted orgs are skipped. existing, when non-nil, lists
// rows already written so replay is idempotent.
func (s *Service) fanOut(ctx context.Context, report *models.HitReport, existing []*models.PiracyHit) error {
	profile, err := s.profiles.GetProfile(ctx, report.TargetHandle)
	if err != nil {
		return &SubmissionError{ReportID: report.ID, Step: "profile", Err: err}
	}

	written := make(map[string]bool, len(existing))
	for _, hit := range existing {
		written[hit.TargetID] = true
	}

	details := fmt.Sprintf("%d boxes of %s (report %s)", report.Boxes, report.CargoType, report.ID)
	now := time.Now()

	var failures int
	var lastErr error

	addHit := func(hit *models.PiracyHit) {
		if written[hit.TargetID] {
			return
		}
		if err := s.storage.HitStore().AddPiracyHit(ctx, hit); err != nil {
			failures++
			lastErr = err
			s.logger.Error().
				Err(err).
				Str("report", report.ID).
				Str("target", hit.TargetID).
				Bool("is_org", hit.IsOrg).
				Msg("Piracy hit write failed")
			return
		}
		written[hit.TargetID] = true
	}

	addHit(&models.PiracyHit{
		ID:           newID("ph"),
		ReportID:     report.ID,
		TargetID:     profile.Handle,
		IsOrg:        false,
		HitDate:      now,
		Details:      details,
		MemberHandle: profile.Handle,
	})

	for _, org := range profile.VisibleOrgs() {
		addHit(&models.PiracyHit{
			ID:       newID("ph"),
			ReportID: report.ID,
			TargetID: org.SID,
			IsOrg:    true,
			HitDate:  now,
			Details:  details,
			OrgID:    org.SID,
		})
	}

	if failures > 0 {
		return &SubmissionError{
			ReportID: report.ID,
			Step:     "fanout",
			Err:      fmt.Errorf("%d piracy hit writes failed: %w", failures, lastErr),
		}
	}
	return nil
}

// ReplayFanOut re-runs the piracy-hit fan-out for a committed report.
// Rows already present for the report are skipped, so the operation is
// safe to run repeatedly after a partial commit.
func (s *Service) ReplayFanOut(ctx context.Context, reportID string) (int, error) {
	report, err := s.storage.HitStore().GetReport(ctx, reportID)
	if err != nil {
		return 0, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return 0, ErrReportNotFound
	}

	existing, err := s.storage.HitStore().ListPiracyHitsByReport(ctx, reportID)
	if err != nil {
		return 0, fmt.Errorf("failed to list piracy hits: %w", err)
	}

	before := len(existing)
	if err := s.fanOut(ctx, report, existing); err != nil {
		return 0, err
	}

	after, err := s.storage.HitStore().ListPiracyHitsByReport(ctx, reportID)
	if err != nil {
		return 0, fmt.Errorf("failed to list piracy hits: %w", err)
	}

	replayed := len(after) - before
	s.logger.Info().Str("report", reportID).Int("replayed", replayed).Msg("Fan-out replayed")
	return replayed, nil
}

// GetReport loads a committed report by ID. Returns ErrReportNotFound when
// no report exists under that ID.
func (s *Service) GetReport(ctx context.Context, hitID string) (*models.HitReport, error) {
	report, err := s.storage.HitStore().GetReport(ctx, hitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", hitID, err)
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// GetBalance returns what the user has earned versus received in a guild.
// Users with no crew history get zeros, not an error.
func (s *Service) GetBalance(ctx context.Context, userID, guildID string) (*models.Balance, error) {
	return s.storage.GetBalance(ctx, userID, guildID)
}

// RecordPayment appends a payout record against a hit. The amount must be
// a positive integer; there is no crew-membership or overpayment check —
// overpayment simply yields a negative outstanding figure.
func (s *Service) RecordPayment(ctx context.Context, hitID, payerID, receiverID string, amount int64) (string, error) {
	if amount <= 0 {
		return "", &ValidationError{Field: "amount", Msg: "must be a positive integer"}
	}

	payment := &models.Payment{
		ID:         newID("pay"),
		HitID:      hitID,
		PayerID:    payerID,
		ReceiverID: receiverID,
		Amount:     amount,
		Timestamp:  time.Now(),
	}

	if err := s.storage.PaymentStore().AddPayment(ctx, payment); err != nil {
		return "", fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info().
		Str("payment", payment.ID).
		Str("hit", hitID).
		Str("receiver", receiverID).
		Int64("amount", amount).
		Msg("Payment recorded")

	return payment.ID, nil
}

// SetStorageHolder records which crew member currently holds unsold cargo.
func (s *Service) SetStorageHolder(ctx context.Context, hitID, holderID string) error {
	if holderID == "" {
		return &ValidationError{Field: "holder", Msg: "holder is required"}
	}
	return s.storage.HitStore().SetStorageHolder(ctx, &models.CargoStorage{
		HitID:     hitID,
		HolderID:  holderID,
		Status:    "holding",
		Timestamp: time.Now(),
	})
}

// UpdateStatus moves a report forward through its lifecycle. Transitions
// back to unsold are rejected.
func (s *Service) UpdateStatus(ctx context.Context, hitID string, status models.ReportStatus) error {
	report, err := s.storage.HitStore().GetReport(ctx, hitID)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return ErrReportNotFound
	}
	if !models.ValidStatusTransition(report.Status, status) {
		return &ValidationError{
			Field: "status",
			Msg:   fmt.Sprintf("cannot transition from %s to %s", report.Status, status),
		}
	}
	return s.storage.HitStore().UpdateReportStatus(ctx, hitID, status)
}

// ListReports returns one page of a guild's reports with totals.
// An out-of-range page returns an empty list without error.
func (s *Service) ListReports(ctx context.Context, guildID string, page, pageSize int) (*models.ReportPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	total, err := s.storage.HitStore().CountReports(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	reports, err := s.storage.HitStore().ListReports(ctx, guildID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return &models.ReportPage{
		Reports:    reports,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Ensure Service implements LedgerService
var _ interfaces.LedgerService = (*Service)(nil)
