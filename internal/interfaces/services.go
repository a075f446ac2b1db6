package interfaces

import (
	"context"

	"github.com/calriss/corsair/internal/models"
)

// LedgerService owns the staged hit-report flow, the final commit, and
// balance/payment queries.
type LedgerService interface {
	// Flow steps. State is keyed by the reporting user and is ephemeral —
	// a process restart discards in-flight reports.
	StartFlow(userID, guildID string) error
	SetCargo(userID string, cargo models.Commodity, boxes int, price float64, sellLocation string, unitsPerBox int) error
	SetCrew(userID string, crew map[string]models.CrewRole) error
	SetSeller(userID, sellerID string) error
	Abandon(userID string)

	// Commit persists the report and its fan-out. On failure after the
	// report row exists, it surfaces *ledger.SubmissionError and keeps the
	// report in place.
	Commit(ctx context.Context, userID, targetHandle, notes string) (*models.HitReport, error)

	// ReplayFanOut idempotently re-runs the piracy-hit fan-out for a
	// committed report. Existing rows for the report are skipped.
	ReplayFanOut(ctx context.Context, reportID string) (int, error)

	GetReport(ctx context.Context, hitID string) (*models.HitReport, error)
	GetBalance(ctx context.Context, userID, guildID string) (*models.Balance, error)
	RecordPayment(ctx context.Context, hitID, payerID, receiverID string, amount int64) (string, error)
	SetStorageHolder(ctx context.Context, hitID, holderID string) error
	UpdateStatus(ctx context.Context, hitID string, status models.ReportStatus) error
	ListReports(ctx context.Context, guildID string, page, pageSize int) (*models.ReportPage, error)
}

// MarketService fronts the market client with a freshness-guarded catalog
// cache so autocomplete does not re-scrape per keystroke.
type MarketService interface {
	Catalog(ctx context.Context) ([]models.Commodity, error)
	Search(ctx context.Context, query string, limit int) ([]models.Commodity, error)
	PriceCheck(ctx context.Context, slug string) (*models.PriceQuote, error)
}
