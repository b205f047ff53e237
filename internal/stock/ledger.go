package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLedgerInvariant marks double-commit / double-release style
// violations. These are reported and aborted, never auto-corrected.
var ErrLedgerInvariant = errors.New("stock ledger invariant violated")

var ErrProductUnknown = errors.New("product not in stock ledger")

type Stock struct {
	ProductID string `json:"product_id"`
	Available int64  `json:"available"`
	Reserved  int64  `json:"reserved"`
	Committed int64  `json:"committed"`
}

// Shortage is the expected reserve outcome when stock runs out; it is
// data, not an error.
type Shortage struct {
	ProductID string
	Requested int64
	Available int64
}

type MovementKind string

const (
	MovementReserve MovementKind = "RESERVE"
	MovementRelease MovementKind = "RELEASE"
	MovementCommit  MovementKind = "COMMIT"
	MovementReturn  MovementKind = "RETURN"
	MovementIntake  MovementKind = "INTAKE"
)

// Ledger owns the per-product counters. Every unit is exactly one of
// available, reserved or committed. All mutations lock the stock row
// (FOR UPDATE) so concurrent callers serialize per product.
type Ledger struct{ DB *pgxpool.Pool }

// ReserveTx moves qty from available to reserved inside the caller's
// transaction. A nil Shortage means success.
func (l *Ledger) ReserveTx(ctx context.Context, tx pgx.Tx, orderNumber, productID string, qty int64) (*Shortage, error) {
	if qty < 1 {
		return nil, fmt.Errorf("reserve %s: invalid qty %d", productID, qty)
	}
	var available int64
	err := tx.QueryRow(ctx, `SELECT available FROM stock_ledger WHERE product_id=$1 FOR UPDATE`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Shortage{ProductID: productID, Requested: qty, Available: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	if available < qty {
		return &Shortage{ProductID: productID, Requested: qty, Available: available}, nil
	}
	if _, err := tx.Exec(ctx, `
		UPDATE stock_ledger SET available = available - $2, reserved = reserved + $2
		WHERE product_id=$1`, productID, qty); err != nil {
		return nil, err
	}
	return nil, l.recordTx(ctx, tx, orderNumber, productID, qty, MovementReserve)
}

// ReleaseTx moves qty from reserved back to available (cancellation).
func (l *Ledger) ReleaseTx(ctx context.Context, tx pgx.Tx, orderNumber, productID string, qty int64) error {
	reserved, err := l.lock(ctx, tx, productID, `reserved`)
	if err != nil {
		return err
	}
	if reserved < qty {
		return fmt.Errorf("release %s for %s: reserved=%d < qty=%d: %w",
			productID, orderNumber, reserved, qty, ErrLedgerInvariant)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE stock_ledger SET reserved = reserved - $2, available = available + $2
		WHERE product_id=$1`, productID, qty); err != nil {
		return err
	}
	return l.recordTx(ctx, tx, orderNumber, productID, qty, MovementRelease)
}

// CommitTx finalizes a sale: reserved becomes committed for good.
func (l *Ledger) CommitTx(ctx context.Context, tx pgx.Tx, orderNumber, productID string, qty int64) error {
	reserved, err := l.lock(ctx, tx, productID, `reserved`)
	if err != nil {
		return err
	}
	if reserved < qty {
		return fmt.Errorf("commit %s for %s: reserved=%d < qty=%d: %w",
			productID, orderNumber, reserved, qty, ErrLedgerInvariant)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE stock_ledger SET reserved = reserved - $2, committed = committed + $2
		WHERE product_id=$1`, productID, qty); err != nil {
		return err
	}
	return l.recordTx(ctx, tx, orderNumber, productID, qty, MovementCommit)
}

// ReturnTx reverses a commit with a compensating RETURN entry, keeping
// the audit trail instead of rewriting history.
func (l *Ledger) ReturnTx(ctx context.Context, tx pgx.Tx, orderNumber, productID string, qty int64) error {
	committed, err := l.lock(ctx, tx, productID, `committed`)
	if err != nil {
		return err
	}
	if committed < qty {
		return fmt.Errorf("return %s for %s: committed=%d < qty=%d: %w",
			productID, orderNumber, committed, qty, ErrLedgerInvariant)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE stock_ledger SET committed = committed - $2, available = available + $2
		WHERE product_id=$1`, productID, qty); err != nil {
		return err
	}
	return l.recordTx(ctx, tx, orderNumber, productID, qty, MovementReturn)
}

func (l *Ledger) lock(ctx context.Context, tx pgx.Tx, productID, column string) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `SELECT `+column+` FROM stock_ledger WHERE product_id=$1 FOR UPDATE`, productID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", productID, ErrProductUnknown)
	}
	return n, err
}

func (l *Ledger) recordTx(ctx context.Context, tx pgx.Tx, orderNumber, productID string, qty int64, kind MovementKind) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_movements(product_id, order_number, qty, kind)
		VALUES ($1,$2,$3,$4)`, productID, orderNumber, qty, kind)
	return err
}

func (l *Ledger) Get(ctx context.Context, productID string) (*Stock, error) {
	var s Stock
	err := l.DB.QueryRow(ctx, `
		SELECT product_id, available, reserved, committed
		FROM stock_ledger WHERE product_id=$1`, productID).
		Scan(&s.ProductID, &s.Available, &s.Reserved, &s.Committed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", productID, ErrProductUnknown)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AddStock records intake: new units become available. Upserts the
// ledger row so newly listed products get one lazily.
func (l *Ledger) AddStock(ctx context.Context, productID string, qty int64) (*Stock, error) {
	if qty < 1 {
		return nil, fmt.Errorf("add stock %s: invalid qty %d", productID, qty)
	}
	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_ledger(product_id, available, reserved, committed)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (product_id) DO UPDATE SET available = stock_ledger.available + $2`,
		productID, qty); err != nil {
		return nil, err
	}
	if err := l.recordTx(ctx, tx, "", productID, qty, MovementIntake); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return l.Get(ctx, productID)
}
