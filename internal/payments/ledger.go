// Package payments records payment attempts and status per order. It
// never talks to a payment processor; it is bookkeeping reconciled
// against order totals.
package payments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
)

var (
	ErrPaymentNotFound = errors.New("payment record not found")

	// ErrCODPendingDelivery: COD completes when the order is delivered,
	// not before.
	ErrCODPendingDelivery = errors.New("cod payment completes on delivery")
)

type Record struct {
	OrderNumber   string               `json:"order_number"`
	Method        orders.PaymentMethod `json:"method"`
	Status        orders.PaymentStatus `json:"status"`
	Amount        int64                `json:"amount"`
	TransactionID string               `json:"transaction_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type Ledger struct {
	DB  *pgxpool.Pool
	Log *zap.Logger
}

// RecordAttemptTx creates the PENDING payment record inside the
// checkout transaction. The amount is re-checked against the order row
// in the same transaction; a mismatch aborts the whole checkout.
func (l *Ledger) RecordAttemptTx(ctx context.Context, tx pgx.Tx, orderNumber string, method orders.PaymentMethod, amount int64) error {
	var finalAmount int64
	err := tx.QueryRow(ctx, `SELECT final_amount FROM orders WHERE order_number=$1`, orderNumber).Scan(&finalAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.ErrNotFound
	}
	if err != nil {
		return err
	}
	if amount != finalAmount {
		l.Log.Error("payment amount mismatch",
			zap.String("order_number", orderNumber),
			zap.Int64("attempted", amount),
			zap.Int64("final_amount", finalAmount))
		return orders.ErrPaymentAmountMismatch
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO payments(order_number, method, status, amount)
		VALUES ($1,$2,$3,$4)`, orderNumber, method, orders.PaymentPending, amount)
	return err
}

func (l *Ledger) Get(ctx context.Context, orderNumber string) (*Record, error) {
	var rec Record
	err := l.DB.QueryRow(ctx, `
		SELECT order_number, method, status, amount, COALESCE(transaction_id,''), created_at, updated_at
		FROM payments WHERE order_number=$1`, orderNumber).
		Scan(&rec.OrderNumber, &rec.Method, &rec.Status, &rec.Amount,
			&rec.TransactionID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkCompleted is the gateway-facing completion hook for prepaid
// methods. COD is rejected here until the order reaches DELIVERED;
// repeating a completion is a no-op.
func (l *Ledger) MarkCompleted(ctx context.Context, orderNumber, transactionID string) (*Record, error) {
	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		method      orders.PaymentMethod
		status      orders.PaymentStatus
		orderStatus orders.Status
	)
	err = tx.QueryRow(ctx, `
		SELECT p.method, p.status, o.order_status
		FROM payments p JOIN orders o USING (order_number)
		WHERE p.order_number=$1 FOR UPDATE OF p`, orderNumber).
		Scan(&method, &status, &orderStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	switch {
	case status == orders.PaymentCompleted:
		// already done; keep the first transaction id
	case status != orders.PaymentPending:
		return nil, orders.ErrPaymentNotCompleted
	case method == orders.PaymentMethodCOD && orderStatus != orders.StatusDelivered:
		return nil, ErrCODPendingDelivery
	default:
		if _, err := tx.Exec(ctx, `
			UPDATE payments SET status=$2, transaction_id=$3, updated_at=now()
			WHERE order_number=$1`, orderNumber, orders.PaymentCompleted, transactionID); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE orders SET payment_status=$2, version=version+1, updated_at=now()
			WHERE order_number=$1`, orderNumber, orders.PaymentCompleted); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	l.Log.Info("payment completed",
		zap.String("order_number", orderNumber),
		zap.String("method", string(method)))
	return l.Get(ctx, orderNumber)
}

// RefundTx flips a COMPLETED payment to REFUNDED inside the state
// machine's transaction. A still-PENDING payment is marked FAILED (the
// order ended before money moved). Returns whether a refund happened.
func (l *Ledger) RefundTx(ctx context.Context, tx pgx.Tx, orderNumber string) (bool, error) {
	var status orders.PaymentStatus
	err := tx.QueryRow(ctx, `SELECT status FROM payments WHERE order_number=$1 FOR UPDATE`, orderNumber).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrPaymentNotFound
	}
	if err != nil {
		return false, err
	}
	switch status {
	case orders.PaymentCompleted:
		_, err := tx.Exec(ctx, `
			UPDATE payments SET status=$2, updated_at=now() WHERE order_number=$1`,
			orderNumber, orders.PaymentRefunded)
		return true, err
	case orders.PaymentPending:
		_, err := tx.Exec(ctx, `
			UPDATE payments SET status=$2, updated_at=now() WHERE order_number=$1`,
			orderNumber, orders.PaymentFailed)
		return false, err
	default:
		// already refunded or failed
		return status == orders.PaymentRefunded, nil
	}
}

// CompleteCODTx collects cash on delivery: a PENDING COD payment
// becomes COMPLETED within the delivery transition transaction.
func (l *Ledger) CompleteCODTx(ctx context.Context, tx pgx.Tx, orderNumber string) (bool, error) {
	var (
		method orders.PaymentMethod
		status orders.PaymentStatus
	)
	err := tx.QueryRow(ctx, `
		SELECT method, status FROM payments WHERE order_number=$1 FOR UPDATE`, orderNumber).
		Scan(&method, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrPaymentNotFound
	}
	if err != nil {
		return false, err
	}
	if method != orders.PaymentMethodCOD || status != orders.PaymentPending {
		return false, nil
	}
	_, err = tx.Exec(ctx, `
		UPDATE payments SET status=$2, updated_at=now() WHERE order_number=$1`,
		orderNumber, orders.PaymentCompleted)
	return err == nil, err
}
