// Package projector keeps the order status cache in Redis in step with the
// payment events published by the checkout API.
package projector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	kafkax "github.com/alterd/checkout/internal/kafka"
	"github.com/alterd/checkout/internal/payments"
	"github.com/alterd/checkout/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// ErrContention is returned when the status key keeps changing under apply.
// Handle releases the dedup key so the event is redelivered.
var ErrContention = errors.New("order status modified concurrently")

type Service struct {
	Redis *redis.Client
	Name  string // dedup namespace

	beforeWrite func() // test hook, runs between WATCH and EXEC
}

// Handle is installed as the consumer handler. Unknown event types and
// already-seen event ids are acknowledged without side effects.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env payments.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message: log and commit so the partition keeps moving
		log.Printf("projector: bad envelope at %s/%d@%d: %v", m.Topic, m.Partition, m.Offset, err)
		return nil
	}
	if env.EventType == "" {
		env.EventType = kafkax.Header(m, "x-event-type")
	}
	if env.EventType == payments.EventPaymentRejected {
		p, err := kafkax.UnwrapPayload[payments.PaymentRejectedPayload](env.Payload)
		if err == nil {
			log.Printf("projector: rejected payment assertion order=%s payment=%s reason=%s", p.OrderID, p.PaymentID, p.Reason)
		}
		return nil
	}
	status, ok := payments.StatusFor(env.EventType)
	if !ok {
		return nil
	}

	dkey := redisx.DedupKey(s.Name, env.EventID)
	first, err := s.Redis.SetNX(ctx, dkey, "1", redisx.TTLDedup).Result()
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !first {
		return nil
	}

	view := payments.StatusView{OrderID: env.CorrelationID, Status: status, UpdatedAt: env.OccurredAt}
	switch env.EventType {
	case payments.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[payments.OrderCreatedPayload](env.Payload)
		if err != nil {
			_ = s.Redis.Del(ctx, dkey).Err()
			return err
		}
		view.OrderID = p.OrderID
		view.SetAmount(p.AmountMinor, p.Currency)
	case payments.EventPaymentVerified:
		p, err := kafkax.UnwrapPayload[payments.PaymentVerifiedPayload](env.Payload)
		if err != nil {
			_ = s.Redis.Del(ctx, dkey).Err()
			return err
		}
		view.OrderID = p.OrderID
		view.PaymentID = p.PaymentID
		view.SetAmount(p.AmountMinor, p.Currency)
	}
	if view.OrderID == "" {
		return nil
	}

	if err := s.apply(ctx, view); err != nil {
		// let the redelivery try again
		_ = s.Redis.Del(ctx, dkey).Err()
		return err
	}
	return nil
}

// maxTxRetries bounds optimistic retries when another writer touches the
// status key between WATCH and EXEC.
const maxTxRetries = 5

// apply writes view unless the cached status is already terminal and the
// incoming one would move it backwards, which happens when partitions are
// replayed out of order.
func (s *Service) apply(ctx context.Context, view payments.StatusView) error {
	key := redisx.OrderStatusKey(view.OrderID)
	txf := func(tx *redis.Tx) error {
		next := view
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var cur payments.StatusView
			if json.Unmarshal(raw, &cur) == nil {
				if cur.Status.IsTerminal() && !next.Status.IsTerminal() {
					return nil
				}
				if next.Amount == nil {
					next.Amount, next.Currency = cur.Amount, cur.Currency
				}
			}
		}
		b, err := json.Marshal(next)
		if err != nil {
			return err
		}
		if s.beforeWrite != nil {
			s.beforeWrite()
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, redisx.TTLStatusCache)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.Redis.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("cache status %s: %w", view.OrderID, err)
	}
	return fmt.Errorf("cache status %s: %w", view.OrderID, ErrContention)
}
