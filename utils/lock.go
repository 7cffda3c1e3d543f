// File: utils/lock.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockNotAcquired is returned when another caller holds the booking mutex.
var ErrLockNotAcquired = errors.New("booking lock not acquired")

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// BookingLocker serializes lifecycle event dispatch per booking id.
// The engine itself has no internal locking; at most one send may be in
// flight per booking, and this mutex is how the calling layer enforces it.
type BookingLocker struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewBookingLocker(client *redis.Client) *BookingLocker {
	return &BookingLocker{
		Client: client,
		TTL:    15 * time.Second,
	}
}

// Acquire takes the mutex for the given booking id, retrying briefly before
// giving up with ErrLockNotAcquired. It returns an unlock function.
func (l *BookingLocker) Acquire(ctx context.Context, bookingID string) (func(), error) {
	key := "booking-lock:" + bookingID
	token := uuid.New().String()

	deadline := time.Now().Add(5 * time.Second)
	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			GetLogger().Warn("failed to release booking lock",
				zap.String("bookingId", bookingID), zap.Error(err))
		}
	}
	return release, nil
}
