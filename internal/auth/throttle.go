package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// CounterStore is the subset of the redis client used for attempt counters.
type CounterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginThrottle locks an identifier after too many login attempts in one window.
// Store errors fail open.
type LoginThrottle struct {
	store       CounterStore
	maxAttempts int
	lockout     time.Duration
	logger      *zap.Logger
}

// NewLoginThrottle builds a throttle. A nil store or non-positive limit disables it.
func NewLoginThrottle(store CounterStore, maxAttempts int, lockout time.Duration, logger *zap.Logger) *LoginThrottle {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &LoginThrottle{store: store, maxAttempts: maxAttempts, lockout: lockout, logger: logger}
}

func (t *LoginThrottle) enabled() bool {
	return t != nil && t.store != nil && t.maxAttempts > 0
}

// Acquire counts a login attempt and reports whether it may proceed.
// The counter is incremented before the check so concurrent attempts cannot
// overshoot maxAttempts. The first attempt starts the lockout window.
func (t *LoginThrottle) Acquire(ctx context.Context, role domain.Role, identifier string) bool {
	if !t.enabled() {
		return true
	}
	key := throttleKey(role, identifier)
	count, err := t.store.Incr(ctx, key).Result()
	if err != nil {
		t.logger.Warn("login throttle increment failed", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := t.store.Expire(ctx, key, t.lockout).Err(); err != nil {
			t.logger.Warn("login throttle expire failed", zap.Error(err))
		}
	}
	return count <= int64(t.maxAttempts)
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, role domain.Role, identifier string) {
	if !t.enabled() {
		return
	}
	if err := t.store.Del(ctx, throttleKey(role, identifier)).Err(); err != nil {
		t.logger.Warn("login throttle reset failed", zap.Error(err))
	}
}

func throttleKey(role domain.Role, identifier string) string {
	return "login:attempts:" + string(role) + ":" + strings.ToLower(strings.TrimSpace(identifier))
}
