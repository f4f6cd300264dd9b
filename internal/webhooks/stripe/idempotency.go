package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowmazonhq/flowmazon-backend/pkg/redis"
)

// IdempotencyGuard fences webhook event IDs in Redis so retried deliveries
// are acknowledged without re-running the handler.
type IdempotencyGuard struct {
	store    redis.IdempotencyStore
	ttl      time.Duration
	provider string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, provider string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if provider == "" {
		return nil, errors.New("provider is required")
	}
	return &IdempotencyGuard{
		store:    store,
		ttl:      ttl,
		provider: provider,
	}, nil
}

// CheckAndMark claims the event ID. It returns true when the event was
// already seen and should be skipped.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.WebhookEventKey(g.provider, eventID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release frees the event ID after a failed handler run so the provider's
// retry gets another attempt.
func (g *IdempotencyGuard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.WebhookEventKey(g.provider, eventID)
	return g.store.Del(ctx, key)
}
