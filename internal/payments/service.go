// Package payments reacts to payment-confirmed events by driving the
// qualifying order transition through the fulfillment engine.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/mitienda/fulfillment/internal/catalog"
	"github.com/mitienda/fulfillment/internal/fulfillment"
	kafkax "github.com/mitienda/fulfillment/internal/kafka"
	"github.com/mitienda/fulfillment/internal/redisx"
)

type Service struct {
	Engine           *fulfillment.Engine
	Redis            *redis.Client
	ProducerPaid     *kafkax.Producer
	ProducerRejected *kafkax.Producer
	ServiceName      string
}

// HandlePaymentConfirmed is the consumer handler for payment.confirmed.
//
// Transient failures (serialization conflicts, lock timeouts) return an
// error so the message is redelivered and retried from the top. Stock
// violations are final: the payment collaborator gets order.rejected
// and must compensate (refund / manual review), because the engine will
// not oversell.
func (s *Service) HandlePaymentConfirmed(ctx context.Context, m kafkago.Message) error {
	var env fulfillment.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != fulfillment.EventPaymentConfirmed {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "payments", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[fulfillment.PaymentConfirmedPayload](env.Payload)
	if err != nil {
		return err
	}

	o, err := s.Engine.SetStatus(ctx, p.OrderID, fulfillment.StatusPagado)
	switch {
	case err == nil:
		s.markSeen(ctx, dkey)
		s.publishPaid(o, env.TraceID)
		s.cacheStatus(ctx, o)
		return nil

	case errors.Is(err, fulfillment.ErrSerializationConflict):
		return err // redeliver and retry

	case errors.Is(err, catalog.ErrStockViolation):
		s.markSeen(ctx, dkey)
		s.publishRejected(p.OrderID, err, env.TraceID)
		return nil

	case errors.Is(err, fulfillment.ErrOrderNotFound),
		errors.Is(err, fulfillment.ErrInvalidTransition):
		// Nothing to retry; drop the message so it cannot poison the
		// partition.
		log.Printf("payment event for order %s dropped: %v", p.OrderID, err)
		s.markSeen(ctx, dkey)
		return nil

	default:
		return err
	}
}

func (s *Service) markSeen(ctx context.Context, key string) {
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
}

func (s *Service) cacheStatus(ctx context.Context, o fulfillment.Order) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	b, _ := json.Marshal(map[string]any{"status": o.Status})
	_ = s.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (s *Service) publishPaid(o fulfillment.Order, trace string) {
	ev := fulfillment.Envelope{
		EventID:       uuid.NewString(),
		EventType:     fulfillment.EventOrderPaid,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(fulfillment.OrderPaidPayload{
			OrderID: o.ID, Status: o.Status,
		}),
	}
	s.ProducerPaid.Publish(fulfillment.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(fulfillment.EventOrderPaid)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishRejected(orderID string, cause error, trace string) {
	payload := fulfillment.OrderRejectedPayload{OrderID: orderID, Reason: "OUT_OF_STOCK"}
	var sv *catalog.StockViolationError
	if errors.As(cause, &sv) {
		payload.Details = []fulfillment.RejectedDetail{{
			VariantID: sv.VariantID,
			Required:  sv.Requested,
			Available: sv.Available,
		}}
	}
	ev := fulfillment.Envelope{
		EventID:       uuid.NewString(),
		EventType:     fulfillment.EventOrderRejected,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.ProducerRejected.Publish(fulfillment.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(fulfillment.EventOrderRejected)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
