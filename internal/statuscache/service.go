// Package statuscache keeps the Redis order-status cache in step with
// committed transitions by consuming the engine's own events.
package statuscache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/Nirmit210/pulsepixeltech-sub001/internal/kafka"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/redisx"
)

type Service struct {
	Redis *redis.Client
	Log   *zap.Logger
}

// HandleOrderEvent is wired as the consumer handler for both the
// order.placed and order.status.changed topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event id; redelivery is expected, reprocessing is not
	dkey := fmt.Sprintf(redisx.KeyDedup, "statuscache", env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderNumber, orders.StatusPending)

	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderNumber, p.To)

	default:
		return nil // not ours
	}
}

func (s *Service) setStatus(ctx context.Context, orderNumber string, status orders.Status) error {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderNumber)
	body, _ := json.Marshal(map[string]any{"status": status})
	if err := s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		s.Log.Warn("status cache update failed",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return err
	}
	return nil
}
