package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zidoyvelg-be/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	pendingMarker = "pending"
	maxKeyLen     = 128

	// DefaultPendingTTL bounds how long an unfinished reservation blocks
	// retries when neither Complete nor Release reached Redis.
	DefaultPendingTTL = 2 * time.Minute
)

var (
	ErrInProgress = errors.New("request with this idempotency key is still in progress")
	ErrInvalidKey = errors.New("invalid idempotency key")
)

// Client is the subset of *redis.Client the store needs.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Outcome of Begin. A zero OrderID means the caller owns the key and must
// Complete or Release it.
type Outcome struct {
	OrderID uuid.UUID
}

func (o Outcome) Replay() bool {
	return o.OrderID != uuid.Nil
}

type RedisStore struct {
	rdb        Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewRedisStore keeps completed keys for ttl. Pending reservations expire
// after DefaultPendingTTL, or ttl when that is shorter.
func NewRedisStore(rdb Client, ttl time.Duration) *RedisStore {
	pending := DefaultPendingTTL
	if ttl > 0 && ttl < pending {
		pending = ttl
	}
	return &RedisStore{rdb: rdb, ttl: ttl, pendingTTL: pending}
}

// Key scopes a client-supplied key to one user so callers cannot collide.
func Key(userID uint, clientKey string) (string, error) {
	k := strings.TrimSpace(clientKey)
	if k == "" || len(k) > maxKeyLen {
		return "", ErrInvalidKey
	}
	return fmt.Sprintf("idem:checkout:%d:%s", userID, k), nil
}

// Begin reserves key. If it was already completed the stored order id is
// returned; if another request still holds it, ErrInProgress.
func (s *RedisStore) Begin(ctx context.Context, key string) (Outcome, error) {
	ok, err := s.rdb.SetNX(ctx, key, pendingMarker, s.pendingTTL).Result()
	if err != nil {
		return Outcome{}, err
	}
	if ok {
		return Outcome{}, nil
	}

	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired or released between the two calls; try once more.
		ok, err = s.rdb.SetNX(ctx, key, pendingMarker, s.pendingTTL).Result()
		if err != nil {
			return Outcome{}, err
		}
		if ok {
			return Outcome{}, nil
		}
		return Outcome{}, ErrInProgress
	}
	if err != nil {
		return Outcome{}, err
	}
	if val == pendingMarker {
		return Outcome{}, ErrInProgress
	}

	id, err := uuid.Parse(val)
	if err != nil {
		logger.ForLayer(ctx, "idempotency", "Begin").Warn("corrupt idempotency value",
			zap.String("key", key), zap.String("value", val))
		return Outcome{}, ErrInProgress
	}
	return Outcome{OrderID: id}, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, orderID uuid.UUID) error {
	return s.rdb.Set(ctx, key, orderID.String(), s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
