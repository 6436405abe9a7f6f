// Package secrets provides the TTL-backed key-value store used for
// one-time login codes and rate-limit counters. Entries self-expire,
// so nothing here ever reaches durable storage.
package secrets

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is missing or has expired.
// The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("secrets: key not found")

type Store interface {
	// Set stores value under key, replacing any previous value and
	// resetting the expiry to now+ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// ConsumeIfEqual deletes key and returns true only if its current
	// value equals value. The check and delete are atomic: of two
	// concurrent calls with the correct value, at most one returns true.
	ConsumeIfEqual(ctx context.Context, key, value string) (bool, error)
	// Incr increments the counter at key and returns the new count.
	// The first increment starts a window of the given duration, after
	// which the counter expires.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}
