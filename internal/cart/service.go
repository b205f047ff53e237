package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/catalog"
	kafkax "github.com/Nirmit210/pulsepixeltech-sub001/internal/kafka"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/payments"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/redisx"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/stock"
)

// Service owns cart mutations and checkout. Carts are advisory: adding
// an item never reserves stock, checkout does.
type Service struct {
	DB       *pgxpool.Pool
	Cart     *Repo
	Catalog  *catalog.Catalog
	Stock    *stock.Ledger
	Orders   *orders.Repo
	Payments *payments.Ledger
	Redis    *redis.Client
	Producer *kafkax.Producer
	Log      *zap.Logger

	ServiceName          string
	ShippingFeeCents     int64
	FreeShippingMinCents int64
	Retries              int
}

// AddItem upserts a cart line at the product's current price, clamping
// qty to what the ledger could actually supply right now.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int64) (*Line, error) {
	if qty < 1 {
		return nil, fmt.Errorf("invalid qty %d", qty)
	}
	p, err := s.Catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	st, err := s.Stock.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if st.Available == 0 {
		return nil, fmt.Errorf("%s: %w", productID, orders.ErrInsufficientStock)
	}
	if qty > st.Available {
		qty = st.Available
	}
	ln := Line{
		UserID:    userID,
		ProductID: productID,
		Qty:       qty,
		UnitPrice: p.UnitPrice,
		UnitMrp:   p.UnitMrp,
	}
	if err := s.Cart.Upsert(ctx, ln); err != nil {
		return nil, err
	}
	return &ln, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("invalid qty %d", qty)
	}
	return s.Cart.UpdateQty(ctx, userID, productID, qty)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	return s.Cart.Remove(ctx, userID, productID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.Cart.Clear(ctx, userID)
}

func (s *Service) List(ctx context.Context, userID string) ([]Line, error) {
	return s.Cart.List(ctx, userID)
}

type CheckoutInput struct {
	UserID         string
	AddressID      string
	PaymentMethod  orders.PaymentMethod
	CouponCode     string
	IdempotencyKey string
	TraceID        string
}

// Checkout converts the cart into a durable order. Reservation, order
// snapshot, payment attempt and cart clearing share one transaction:
// any per-item issue rolls everything back, so no checkout ever leaves
// stock half-reserved. Serialization failures get a bounded retry.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*orders.Order, error) {
	if !orders.ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("unknown payment method %q", in.PaymentMethod)
	}

	// fast path: the same idempotency key returns the existing order
	var idemKey string
	if in.IdempotencyKey != "" {
		idemKey = fmt.Sprintf(redisx.KeyIdemCheckout, in.UserID, in.IdempotencyKey)
		if orderNumber, err := s.Redis.Get(ctx, idemKey).Result(); err == nil && orderNumber != "" {
			return s.Orders.Get(ctx, orderNumber)
		}
	}

	lines, err := s.Cart.List(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, orders.ErrEmptyCart
	}
	addr, err := s.Cart.GetAddress(ctx, in.UserID, in.AddressID)
	if err != nil {
		return nil, err
	}
	var discount int64
	if in.CouponCode != "" {
		discount, err = s.Cart.CouponDiscount(ctx, in.CouponCode, time.Now().UTC())
		if err != nil {
			return nil, err
		}
	}

	var ord *orders.Order
	retries := s.Retries
	if retries < 1 {
		retries = 1
	}
	for attempt := 1; ; attempt++ {
		ord, err = s.checkoutOnce(ctx, lines, addr, in, discount)
		if err == nil || !retryable(err) || attempt >= retries {
			break
		}
		s.Log.Warn("checkout retry",
			zap.String("user_id", in.UserID),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	if err != nil {
		return nil, err
	}

	if idemKey != "" {
		_ = s.Redis.Set(ctx, idemKey, ord.OrderNumber, redisx.TTLIdempotency).Err()
	}
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, ord.OrderNumber)
	_ = s.Redis.Set(ctx, statusKey, `{"status":"PENDING"}`, redisx.TTLStatusCache).Err()

	s.publishPlaced(ord, in.TraceID)
	s.Log.Info("order placed",
		zap.String("order_number", ord.OrderNumber),
		zap.String("user_id", ord.UserID),
		zap.Int64("final_amount", ord.FinalAmount))
	return ord, nil
}

func (s *Service) checkoutOnce(ctx context.Context, lines []Line, addr orders.AddressSnapshot, in CheckoutInput, discount int64) (*orders.Order, error) {
	now := time.Now().UTC()
	orderNumber := orders.NewOrderNumber(now)

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, len(lines))
	for _, ln := range lines {
		ids = append(ids, ln.ProductID)
	}
	pricing, err := s.Catalog.PricingTx(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	var (
		issues   []orders.ItemIssue
		items    []orders.Item
		sellerID string
	)
	for _, ln := range lines {
		p, ok := pricing[ln.ProductID]
		if !ok {
			issues = append(issues, orders.ItemIssue{
				ProductID: ln.ProductID, Reason: orders.IssueProductMissing,
			})
			continue
		}
		if p.UnitPrice != ln.UnitPrice {
			issues = append(issues, orders.ItemIssue{
				ProductID: ln.ProductID, Reason: orders.IssuePriceChanged,
				OldPrice: ln.UnitPrice, NewPrice: p.UnitPrice,
			})
			continue
		}
		shortage, err := s.Stock.ReserveTx(ctx, tx, orderNumber, ln.ProductID, ln.Qty)
		if err != nil {
			return nil, err
		}
		if shortage != nil {
			issues = append(issues, orders.ItemIssue{
				ProductID: ln.ProductID, Reason: orders.IssueOutOfStock,
				Requested: shortage.Requested, Available: shortage.Available,
			})
			continue
		}
		if sellerID == "" {
			sellerID = p.SellerID
		} else if sellerID != p.SellerID {
			return nil, orders.ErrMultipleSellers
		}
		items = append(items, orders.Item{
			ProductID: ln.ProductID,
			Qty:       ln.Qty,
			UnitPrice: p.UnitPrice,
			LineTotal: ln.Qty * p.UnitPrice,
		})
	}
	if len(issues) > 0 {
		// rollback via defer releases every reservation made above
		return nil, &orders.CheckoutRejectedError{Issues: issues}
	}

	t := ComputeTotals(items, s.ShippingFeeCents, s.FreeShippingMinCents, discount)
	ord := &orders.Order{
		OrderNumber:   orderNumber,
		UserID:        in.UserID,
		SellerID:      sellerID,
		Address:       addr,
		Items:         items,
		Subtotal:      t.Subtotal,
		ShippingFee:   t.ShippingFee,
		Discount:      t.Discount,
		FinalAmount:   t.FinalAmount,
		CouponCode:    in.CouponCode,
		Status:        orders.StatusPending,
		PaymentStatus: orders.PaymentPending,
		PaymentMethod: in.PaymentMethod,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Orders.InsertTx(ctx, tx, ord); err != nil {
		return nil, err
	}
	if err := s.Payments.RecordAttemptTx(ctx, tx, orderNumber, in.PaymentMethod, ord.FinalAmount); err != nil {
		return nil, err
	}
	if err := s.Cart.ClearTx(ctx, tx, in.UserID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ord, nil
}

func (s *Service) publishPlaced(o *orders.Order, traceID string) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: o.OrderNumber,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderNumber:   o.OrderNumber,
			UserID:        o.UserID,
			SellerID:      o.SellerID,
			Items:         o.Items,
			FinalAmount:   o.FinalAmount,
			PaymentMethod: o.PaymentMethod,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(o.OrderNumber), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// retryable: serialization failure or deadlock; safe to retry the whole
// checkout transaction.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
