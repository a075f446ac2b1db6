// Package surrealdb implements the persistence gateway on SurrealDB.
// Collections are denormalized and joined application-side at read time;
// cross-collection writes are independently committed, so callers must
// tolerate partial visibility between commit steps.
package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/calriss/corsair/internal/common"
	"github.com/calriss/corsair/internal/interfaces"
	"github.com/calriss/corsair/internal/models"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	hitStore     *HitStore
	paymentStore *PaymentStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	m, err := newManagerWithDB(ctx, db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// newManagerWithDB builds a Manager on an already-connected DB. Split out
// so tests can reuse a shared container connection.
func newManagerWithDB(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Manager, error) {
	// Define tables to ensure they exist (SurrealDB v3 errors on querying non-existent tables)
	tables := []string{"hit_report", "crew_member", "piracy_hit", "payment", "cargo_storage"}
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	m := &Manager{
		db:     db,
		logger: logger,
	}
	m.hitStore = NewHitStore(db, logger)
	m.paymentStore = NewPaymentStore(db, logger)

	return m, nil
}

func (m *Manager) HitStore() interfaces.HitStore {
	return m.hitStore
}

func (m *Manager) PaymentStore() interfaces.PaymentStore {
	return m.paymentStore
}

// GetBalance joins crew shares and payments through each row's report,
// scoping both sides to the guild. Assembled application-side: the store
// has no cross-collection joins worth trusting for this.
func (m *Manager) GetBalance(ctx context.Context, userID, guildID string) (*models.Balance, error) {
	balance := &models.Balance{UserID: userID, GuildID: guildID}

	crew, err := m.hitStore.ListCrewByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew rows: %w", err)
	}

	guildReports := make(map[string]*models.HitReport, len(crew))
	for _, member := range crew {
		report, err := m.hitStore.GetReport(ctx, member.HitID)
		if err != nil {
			return nil, fmt.Errorf("failed to load report %s: %w", member.HitID, err)
		}
		if report == nil || report.GuildID != guildID {
			continue
		}
		guildReports[report.ID] = report
		balance.TotalShare += member.Share * report.TotalValue()
	}

	payments, err := m.paymentStore.ListPaymentsByReceiver(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	for _, payment := range payments {
		report, ok := guildReports[payment.HitID]
		if !ok {
			report, err = m.hitStore.GetReport(ctx, payment.HitID)
			if err != nil {
				return nil, fmt.Errorf("failed to load report %s: %w", payment.HitID, err)
			}
		}
		if report == nil || report.GuildID != guildID {
			continue
		}
		balance.TotalReceived += float64(payment.Amount)
	}

	return balance, nil
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// isNotFoundError reports whether a SurrealDB error means "no such record".
func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
