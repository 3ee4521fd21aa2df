// Package cache provides the keyed short-lived state the gateway needs for
// OTP challenges and resend cooldowns.
//
// Backends:
//   - memory (in-process, development and tests)
//   - redis (shared state across replicas)
package cache

import (
	"context"
	"errors"
	"time"
)

// Store is a TTL'd key/value store. Add must be atomic: when two writers race
// on the same absent key, exactly one wins. That property is what serializes
// concurrent OTP resends for the same user.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Add stores the value only if the key is absent. Returns false when the
	// key already exists.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrUnknownDriver = errors.New("cache: unknown driver")
