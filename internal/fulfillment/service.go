// Package fulfillment drives orders through the status graph. Side
// effects (stock release/commit/return, refunds, COD collection) run in
// the same transaction as the status change, never as follow-up calls.
package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/Nirmit210/pulsepixeltech-sub001/internal/kafka"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/payments"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/stock"
)

type Service struct {
	DB       *pgxpool.Pool
	Orders   *orders.Repo
	Stock    *stock.Ledger
	Payments *payments.Ledger

	// one producer per topic, matching the topic-bound writer setup
	ProducerStatus    *kafkax.Producer // order.status.changed
	ProducerCancelled *kafkax.Producer // order.cancelled
	Log               *zap.Logger

	ServiceName  string
	ReturnWindow time.Duration
}

// Transition validates and applies one status change atomically. The
// order row's version is the optimistic guard: of two racing writers
// exactly one wins, the other gets ErrConflict and must re-read.
func (s *Service) Transition(ctx context.Context, req Request) (*orders.Order, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o, err := s.Orders.GetTx(ctx, tx, req.OrderNumber)
	if err != nil {
		return nil, err
	}
	from := o.Status
	prevVersion := o.Version

	now := time.Now().UTC()
	if err := Guard(o, req, now, s.ReturnWindow); err != nil {
		return nil, err
	}

	refunded := false
	switch req.Target {
	case orders.StatusCancelled:
		if err := s.releaseStock(ctx, tx, o); err != nil {
			return nil, err
		}
		refunded, err = s.refund(ctx, tx, o)
		if err != nil {
			return nil, err
		}

	case orders.StatusShipped:
		o.DeliveryPartnerID = req.DeliveryPartnerID
		o.TrackingNumber = req.TrackingNumber

	case orders.StatusDelivered:
		if err := s.commitStock(ctx, tx, o); err != nil {
			return nil, err
		}
		o.DeliveredAt = &now
		collected, err := s.Payments.CompleteCODTx(ctx, tx, o.OrderNumber)
		if err != nil {
			return nil, err
		}
		if collected {
			o.PaymentStatus = orders.PaymentCompleted
		}

	case orders.StatusReturned:
		for _, it := range o.Items {
			if err := s.Stock.ReturnTx(ctx, tx, o.OrderNumber, it.ProductID, it.Qty); err != nil {
				s.Log.Error("return reversal failed",
					zap.String("order_number", o.OrderNumber),
					zap.String("product_id", it.ProductID),
					zap.Error(err))
				return nil, err
			}
		}
		refunded, err = s.refund(ctx, tx, o)
		if err != nil {
			return nil, err
		}
	}

	o.Status = req.Target
	if err := s.Orders.UpdateStatusTx(ctx, tx, o, prevVersion); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publishStatusChanged(o, from, req)
	if req.Target == orders.StatusCancelled {
		s.publishCancelled(o, req.Actor, refunded)
	}
	s.Log.Info("order transitioned",
		zap.String("order_number", o.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
		zap.String("actor", string(req.Actor)))
	return o, nil
}

// Cancel is the customer/seller-facing cancellation entry point.
func (s *Service) Cancel(ctx context.Context, orderNumber string, actor orders.Actor, actorID string) (*orders.Order, error) {
	return s.Transition(ctx, Request{
		OrderNumber: orderNumber,
		Actor:       actor,
		ActorID:     actorID,
		Target:      orders.StatusCancelled,
	})
}

// Return handles DELIVERED -> RETURNED within the return window.
func (s *Service) Return(ctx context.Context, orderNumber, userID string) (*orders.Order, error) {
	return s.Transition(ctx, Request{
		OrderNumber: orderNumber,
		Actor:       orders.ActorCustomer,
		ActorID:     userID,
		Target:      orders.StatusReturned,
	})
}

// releaseStock returns every reserved unit of the order, once. The
// order-level flag keeps repeated cancellations from double-crediting
// the ledger.
func (s *Service) releaseStock(ctx context.Context, tx pgx.Tx, o *orders.Order) error {
	if o.StockReleased {
		return nil
	}
	for _, it := range o.Items {
		if err := s.Stock.ReleaseTx(ctx, tx, o.OrderNumber, it.ProductID, it.Qty); err != nil {
			s.Log.Error("stock release failed",
				zap.String("order_number", o.OrderNumber),
				zap.String("product_id", it.ProductID),
				zap.Error(err))
			return err
		}
	}
	o.StockReleased = true
	return nil
}

// commitStock finalizes the sale at delivery, guarded by the same
// order-level idempotence flag.
func (s *Service) commitStock(ctx context.Context, tx pgx.Tx, o *orders.Order) error {
	if o.StockCommitted {
		return nil
	}
	for _, it := range o.Items {
		if err := s.Stock.CommitTx(ctx, tx, o.OrderNumber, it.ProductID, it.Qty); err != nil {
			s.Log.Error("stock commit failed",
				zap.String("order_number", o.OrderNumber),
				zap.String("product_id", it.ProductID),
				zap.Error(err))
			return err
		}
	}
	o.StockCommitted = true
	return nil
}

func (s *Service) refund(ctx context.Context, tx pgx.Tx, o *orders.Order) (bool, error) {
	refunded, err := s.Payments.RefundTx(ctx, tx, o.OrderNumber)
	if err != nil {
		return false, err
	}
	if refunded {
		o.PaymentStatus = orders.PaymentRefunded
	} else if o.PaymentStatus == orders.PaymentPending {
		o.PaymentStatus = orders.PaymentFailed
	}
	return refunded, nil
}

func (s *Service) publishStatusChanged(o *orders.Order, from orders.Status, req Request) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: o.OrderNumber,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderNumber: o.OrderNumber,
			From:        from,
			To:          o.Status,
			Actor:       req.Actor,
		}),
	}
	s.ProducerStatus.Publish(orders.PartitionKey(o.OrderNumber), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishCancelled(o *orders.Order, by orders.Actor, refunded bool) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCancelled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: o.OrderNumber,
		Payload: kafkax.MustMarshal(orders.OrderCancelledPayload{
			OrderNumber: o.OrderNumber,
			By:          by,
			Refunded:    refunded,
		}),
	}
	s.ProducerCancelled.Publish(orders.PartitionKey(o.OrderNumber), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCancelled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
