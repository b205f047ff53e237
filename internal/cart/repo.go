package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrAddressNotFound = errors.New("address not found")
	ErrCouponInvalid   = errors.New("coupon invalid or expired")
)

// Line is a mutable cart row owned by one user. Price and MRP are
// denormalized at add time and revalidated at checkout.
type Line struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Qty       int64     `json:"qty"`
	UnitPrice int64     `json:"unit_price"`
	UnitMrp   int64     `json:"unit_mrp"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Upsert(ctx context.Context, ln Line) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(user_id, product_id, qty, unit_price, unit_mrp)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET qty=EXCLUDED.qty, unit_price=EXCLUDED.unit_price,
		    unit_mrp=EXCLUDED.unit_mrp, updated_at=now()`,
		ln.UserID, ln.ProductID, ln.Qty, ln.UnitPrice, ln.UnitMrp)
	return err
}

func (r *Repo) UpdateQty(ctx context.Context, userID, productID string, qty int64) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE cart_items SET qty=$3, updated_at=now()
		WHERE user_id=$1 AND product_id=$2`, userID, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, userID, productID string) error {
	ct, err := r.DB.Exec(ctx, `
		DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

func (r *Repo) ClearTx(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

func (r *Repo) List(ctx context.Context, userID string) ([]Line, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT user_id, product_id, qty, unit_price, unit_mrp, added_at, updated_at
		FROM cart_items WHERE user_id=$1 ORDER BY added_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var ln Line
		if err := rows.Scan(&ln.UserID, &ln.ProductID, &ln.Qty, &ln.UnitPrice,
			&ln.UnitMrp, &ln.AddedAt, &ln.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}

// GetAddress loads and freezes a delivery address for checkout.
func (r *Repo) GetAddress(ctx context.Context, userID, addressID string) (orders.AddressSnapshot, error) {
	var a orders.AddressSnapshot
	err := r.DB.QueryRow(ctx, `
		SELECT name, line1, COALESCE(line2,''), city, state, postal_code, phone
		FROM addresses WHERE id=$1 AND user_id=$2`, addressID, userID).
		Scan(&a.Name, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, fmt.Errorf("%s: %w", addressID, ErrAddressNotFound)
	}
	return a, err
}

// CouponDiscount validates a coupon and returns its flat discount in
// cents. The discount is frozen into the order snapshot; later coupon
// changes never alter a placed order.
func (r *Repo) CouponDiscount(ctx context.Context, code string, now time.Time) (int64, error) {
	var (
		amount    int64
		active    bool
		expiresAt *time.Time
	)
	err := r.DB.QueryRow(ctx, `
		SELECT discount_cents, active, expires_at FROM coupons WHERE code=$1`, code).
		Scan(&amount, &active, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", code, ErrCouponInvalid)
	}
	if err != nil {
		return 0, err
	}
	if !active || (expiresAt != nil && now.After(*expiresAt)) {
		return 0, fmt.Errorf("%s: %w", code, ErrCouponInvalid)
	}
	return amount, nil
}
