package interfaces

import (
	"context"

	"github.com/calriss/corsair/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	HitStore() HitStore
	PaymentStore() PaymentStore

	// GetBalance answers "how much is owed" for one user in one guild.
	// Shares and payments are both scoped to the guild through the report
	// each row hangs off; the join is assembled application-side.
	GetBalance(ctx context.Context, userID, guildID string) (*models.Balance, error)

	// Lifecycle
	Close() error
}

// HitStore persists hit reports and their denormalized fan-out rows.
// Foreign-key integrity (crew.hit_id -> report.id) is enforced at the
// application level, not by the store.
type HitStore interface {
	CreateReport(ctx context.Context, report *models.HitReport) error
	GetReport(ctx context.Context, id string) (*models.HitReport, error)
	UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus) error
	ListReports(ctx context.Context, guildID string, page, pageSize int) ([]*models.HitReport, error)
	CountReports(ctx context.Context, guildID string) (int, error)

	AddCrewMember(ctx context.Context, member *models.CrewMember) error
	ListCrew(ctx context.Context, hitID string) ([]*models.CrewMember, error)
	ListCrewByUser(ctx context.Context, userID string) ([]*models.CrewMember, error)

	AddPiracyHit(ctx context.Context, hit *models.PiracyHit) error
	ListPiracyHitsByReport(ctx context.Context, reportID string) ([]*models.PiracyHit, error)

	SetStorageHolder(ctx context.Context, storage *models.CargoStorage) error
	GetStorageHolder(ctx context.Context, hitID string) (*models.CargoStorage, error)
}

// PaymentStore persists append-only payout records.
type PaymentStore interface {
	AddPayment(ctx context.Context, payment *models.Payment) error
	ListPaymentsByHit(ctx context.Context, hitID string) ([]*models.Payment, error)
	ListPaymentsByReceiver(ctx context.Context, receiverID string) ([]*models.Payment, error)
}
