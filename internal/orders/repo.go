package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `order_number, user_id, seller_id,
	COALESCE(delivery_partner_id, ''), COALESCE(tracking_number, ''),
	address, subtotal, shipping_fee, discount, final_amount,
	COALESCE(coupon_code, ''), order_status, payment_status, payment_method,
	stock_committed, stock_released, version, created_at, updated_at, delivered_at`

// InsertTx writes the immutable order snapshot and its frozen items
// inside the caller's transaction. The amount invariant is asserted
// before anything is written.
func (r *Repo) InsertTx(ctx context.Context, tx pgx.Tx, o *Order) error {
	if err := o.CheckAmounts(); err != nil {
		return err
	}
	addr, err := json.Marshal(o.Address)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(order_number, user_id, seller_id, address,
			subtotal, shipping_fee, discount, final_amount, coupon_code,
			order_status, payment_status, payment_method, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),$10,$11,$12,1)`,
		o.OrderNumber, o.UserID, o.SellerID, addr,
		o.Subtotal, o.ShippingFee, o.Discount, o.FinalAmount, o.CouponCode,
		o.Status, o.PaymentStatus, o.PaymentMethod,
	)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_number, product_id, qty, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5)`,
			o.OrderNumber, it.ProductID, it.Qty, it.UnitPrice, it.LineTotal,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, orderNumber string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number=$1`, orderNumber)
	return r.scanOrder(ctx, r.DB, row, orderNumber)
}

// GetTx loads the order inside a transaction. The version read here is
// what the later conditional update is checked against.
func (r *Repo) GetTx(ctx context.Context, tx pgx.Tx, orderNumber string) (*Order, error) {
	row := tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number=$1`, orderNumber)
	return r.scanOrder(ctx, tx, row, orderNumber)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repo) scanOrder(ctx context.Context, q querier, row pgx.Row, orderNumber string) (*Order, error) {
	var (
		o    Order
		addr []byte
	)
	err := row.Scan(&o.OrderNumber, &o.UserID, &o.SellerID,
		&o.DeliveryPartnerID, &o.TrackingNumber,
		&addr, &o.Subtotal, &o.ShippingFee, &o.Discount, &o.FinalAmount,
		&o.CouponCode, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.StockCommitted, &o.StockReleased, &o.Version,
		&o.CreatedAt, &o.UpdatedAt, &o.DeliveredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(addr, &o.Address); err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT product_id, qty, unit_price, line_total
		FROM order_items WHERE order_number=$1 ORDER BY product_id`, orderNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Qty, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// re-read assertion: totals must still add up
	if err := o.CheckAmounts(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_number FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(numbers))
	for _, n := range numbers {
		o, err := r.Get(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

// UpdateStatusTx applies the mutable fulfillment fields guarded by the
// optimistic version counter. Zero rows affected means another writer
// got there first; the caller receives ErrConflict and must re-read.
func (r *Repo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, o *Order, prevVersion int64) error {
	ct, err := tx.Exec(ctx, `
		UPDATE orders SET
			order_status=$2, payment_status=$3,
			delivery_partner_id=NULLIF($4,''), tracking_number=NULLIF($5,''),
			stock_committed=$6, stock_released=$7, delivered_at=$8,
			version=version+1, updated_at=now()
		WHERE order_number=$1 AND version=$9`,
		o.OrderNumber, o.Status, o.PaymentStatus,
		o.DeliveryPartnerID, o.TrackingNumber,
		o.StockCommitted, o.StockReleased, o.DeliveredAt,
		prevVersion,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrConflict
	}
	o.Version = prevVersion + 1
	return nil
}
