package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SeatLocker takes short-lived locks on seats for one travel date while a
// submission is in flight. The database transaction stays the authority;
// a lock only lets a losing submission fail before it opens a transaction.
type SeatLocker interface {
	Acquire(ctx context.Context, travelDate string, seatIDs []string) (release func(), err error)
}

// NoopSeatLocker is used when Redis is not configured
type NoopSeatLocker struct{}

// Acquire always succeeds
func (NoopSeatLocker) Acquire(ctx context.Context, travelDate string, seatIDs []string) (func(), error) {
	return func() {}, nil
}

// releaseScript deletes a lock only if it still holds our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisSeatLocker implements SeatLocker with SET NX
type RedisSeatLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
	token  func() string
}

// NewRedisSeatLocker creates a RedisSeatLocker
func NewRedisSeatLocker(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisSeatLocker {
	return &RedisSeatLocker{
		client: client,
		ttl:    ttl,
		logger: logger,
		token:  uuid.NewString,
	}
}

// SeatLockKey is the Redis key guarding one seat on one travel date
func SeatLockKey(travelDate, seatID string) string {
	return fmt.Sprintf("seatlock:%s:%s", travelDate, seatID)
}

// Acquire locks every seat or none. A seat locked by another submission
// returns ErrSeatConflict. If Redis itself fails the locker steps aside and
// lets the transaction decide.
func (l *RedisSeatLocker) Acquire(ctx context.Context, travelDate string, seatIDs []string) (func(), error) {
	ids := append([]string(nil), seatIDs...)
	sort.Strings(ids)

	token := l.token()
	held := make([]string, 0, len(ids))
	release := func() {
		for _, key := range held {
			if err := l.client.Eval(context.Background(), releaseScript, []string{key}, token).Err(); err != nil {
				l.logger.WithError(err).WithField("key", key).Warn("failed to release seat lock")
			}
		}
	}

	for _, id := range ids {
		key := SeatLockKey(travelDate, id)
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.logger.WithError(err).Warn("seat lock unavailable, relying on database check")
			release()
			return func() {}, nil
		}
		if !ok {
			release()
			return func() {}, fmt.Errorf("%w: seat %s", ErrSeatBusy, id)
		}
		held = append(held, key)
	}

	return release, nil
}
