package idempotency

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/acme/vapi-caller/internal/config"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

const pendingMarker = "pending"

var reserveScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', tonumber(ARGV[2]))
  return ''
end
return current
`)

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// Reservation is the outcome of claiming an idempotency key.
type Reservation struct {
	// Claimed is true when the caller now owns the key and should create the call.
	Claimed bool
	// CallID is set when an earlier request with the same key already created a call.
	CallID string
}

// Guard makes call creation safe to repeat using Redis keys.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewGuard constructs an idempotency guard.
func NewGuard(client *redis.Client, cfg config.IdempotencyConfig) *Guard {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "vapi:idempotency"
	}
	return &Guard{client: client, ttl: ttl, prefix: prefix}
}

// Reserve claims key. A key held by an in-flight request yields ErrConflict.
func (g *Guard) Reserve(ctx context.Context, key string) (Reservation, error) {
	if strings.TrimSpace(key) == "" {
		return Reservation{}, fmt.Errorf("%w: idempotency key is empty", apperrors.ErrValidation)
	}
	value, err := reserveScript.Run(ctx, g.client, []string{g.key(key)}, pendingMarker, g.ttl.Milliseconds()).Text()
	if err != nil {
		return Reservation{}, fmt.Errorf("idempotency reserve: %w", err)
	}
	return interpret(value)
}

// Complete records the call created under key.
func (g *Guard) Complete(ctx context.Context, key, callID string) error {
	if strings.TrimSpace(callID) == "" || callID == pendingMarker {
		return fmt.Errorf("%w: idempotency complete: call id is required", apperrors.ErrValidation)
	}
	if err := g.client.Set(ctx, g.key(key), callID, g.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release frees a key whose request failed so it can be retried.
func (g *Guard) Release(ctx context.Context, key string) error {
	if _, err := releaseScript.Run(ctx, g.client, []string{g.key(key)}, pendingMarker).Int(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (g *Guard) key(key string) string {
	return fmt.Sprintf("%s:%s", g.prefix, key)
}

func interpret(value string) (Reservation, error) {
	switch value {
	case "":
		return Reservation{Claimed: true}, nil
	case pendingMarker:
		return Reservation{}, fmt.Errorf("%w: request with this idempotency key is in progress", apperrors.ErrConflict)
	default:
		return Reservation{CallID: value}, nil
	}
}
