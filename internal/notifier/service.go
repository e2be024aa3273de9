// Package notifier reacts to placed orders. It is where SMS/email dispatch
// would hook in; for now the confirmation is a structured log record.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/events"
	kafkax "github.com/humsafar/dealer-api/internal/kafka"
	"github.com/humsafar/dealer-api/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderPlaced is the consumer handler. Duplicate deliveries are
// dropped by event id before any side effect.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventOrderPlaced {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	seen, err := redisx.Exists(ctx, s.Redis, dkey)
	if err != nil {
		slog.Warn("dedup check failed, processing anyway", "event_id", env.EventID, "err", err)
	}
	if seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	slog.Info("order confirmation notification",
		"order_number", p.OrderNumber,
		"dealer_id", p.DealerID,
		"phone", p.DealerPhone,
		"total", domain.Rupees(p.TotalAmount),
		"payment_method", p.PaymentMethod,
		"items", p.ItemCount,
	)
	return nil
}
