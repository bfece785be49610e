package limits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrLimitExceeded = errors.New("request limit exceeded")

// RequestLimiter enforces per-caller request ceilings with Redis fixed windows.
type RequestLimiter struct {
	client *redis.Client
}

func NewRequestLimiter(client *redis.Client) *RequestLimiter {
	return &RequestLimiter{client: client}
}

// Allow admits one request for key if the per-minute ceiling has not been reached.
// A nil limiter or non-positive limit admits everything.
func (l *RequestLimiter) Allow(ctx context.Context, key string, perMinute int) error {
	if l == nil || l.client == nil || perMinute <= 0 {
		return nil
	}
	return l.countCheck(ctx, fmt.Sprintf("rpm:%s", key), time.Minute, perMinute)
}

func (l *RequestLimiter) countCheck(ctx context.Context, key string, ttl time.Duration, limit int) error {
	window := time.Now().UTC().Unix() / int64(ttl.Seconds())
	redisKey := fmt.Sprintf("%s:%d", key, window)

	cnt, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return err
	}
	if cnt == 1 {
		l.client.Expire(ctx, redisKey, ttl)
	}
	if int(cnt) > limit {
		return ErrLimitExceeded
	}
	return nil
}
