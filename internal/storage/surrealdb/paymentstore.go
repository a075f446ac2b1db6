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

const paymentSelectFields = `payment_id as id, hit_id, payer_id, receiver_id, amount, timestamp`

// PaymentStore implements interfaces.PaymentStore using SurrealDB.
// Payments are append-only; there is no update or delete path.
type PaymentStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewPaymentStore creates a new PaymentStore.
func NewPaymentStore(db *surrealdb.DB, logger *common.Logger) *PaymentStore {
	return &PaymentStore{db: db, logger: logger}
}

func (s *PaymentStore) AddPayment(ctx context.Context, payment *models.Payment) error {
	sql := `UPSERT $rid SET
		payment_id = $payment_id, hit_id = $hit_id, payer_id = $payer_id,
		receiver_id = $receiver_id, amount = $amount, timestamp = $timestamp`
	vars := map[string]any{
		"rid":         surrealmodels.NewRecordID("payment", payment.ID),
		"payment_id":  payment.ID,
		"hit_id":      payment.HitID,
		"payer_id":    payment.PayerID,
		"receiver_id": payment.ReceiverID,
		"amount":      payment.Amount,
		"timestamp":   payment.Timestamp,
	}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to add payment: %w", err)
	}
	return nil
}

func (s *PaymentStore) ListPaymentsByHit(ctx context.Context, hitID string) ([]*models.Payment, error) {
	sql := "SELECT " + paymentSelectFields + " FROM payment WHERE hit_id = $hit ORDER BY timestamp ASC, payment_id ASC"
	vars := map[string]any{"hit": hitID}
	return s.query(ctx, sql, vars)
}

func (s *PaymentStore) ListPaymentsByReceiver(ctx context.Context, receiverID string) ([]*models.Payment, error) {
	sql := "SELECT " + paymentSelectFields + " FROM payment WHERE receiver_id = $receiver ORDER BY timestamp ASC, payment_id ASC"
	vars := map[string]any{"receiver": receiverID}
	return s.query(ctx, sql, vars)
}

func (s *PaymentStore) query(ctx context.Context, sql string, vars map[string]any) ([]*models.Payment, error) {
	results, err := surrealdb.Query[[]models.Payment](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*models.Payment, 0)
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			payments = append(payments, &(*results)[0].Result[i])
		}
	}
	return payments, nil
}

// Compile-time check
var _ interfaces.PaymentStore = (*PaymentStore)(nil)
