// Package redis implements the view-event queue and counters on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/letsettle/letsettle/internal/domain"
)

// EventQueue ships view events to the worker over a Redis list.
type EventQueue struct {
	client *redis.Client
	key    string
}

func NewEventQueue(client *redis.Client, key string) *EventQueue {
	return &EventQueue{
		client: client,
		key:    key,
	}
}

func (q *EventQueue) PublishView(ctx context.Context, event domain.ViewEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis queue: marshal view event: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis queue: enqueue view event: %w", err)
	}
	return nil
}

func (q *EventQueue) ConsumeViews(ctx context.Context, handler func(context.Context, domain.ViewEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// BRPOP blocks with a short timeout so the context stays responsive.
		res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("redis queue: consume view event: %w", err)
		}

		if len(res) != 2 {
			continue
		}

		var event domain.ViewEvent
		if err := json.Unmarshal([]byte(res[1]), &event); err != nil {
			return fmt.Errorf("redis queue: invalid payload: %w", err)
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

var _ domain.EventQueue = (*EventQueue)(nil)
