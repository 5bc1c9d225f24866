// Package refreshtokens declares the refresh-token validity store and its
// Redis implementation.
package refreshtokens

import (
	"context"
	"time"
)

// Store keeps one validity record per issued refresh token. The key is the
// token string itself; the value is a validity flag.
type Store interface {
	// Put writes value under key without expiry. Callers follow it with SetExpire.
	Put(ctx context.Context, key, value string) error

	// Get returns the value stored under key, or common.ErrorNotFound when the
	// record is absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// SetExpire sets the time to live of an existing record.
	// It returns common.ErrorNotFound when the record is absent.
	SetExpire(ctx context.Context, key string, ttl time.Duration) error

	// TimeToLive reports the remaining lifetime of a record. A record without
	// expiry reports a negative duration.
	TimeToLive(ctx context.Context, key string) (time.Duration, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, key string) error
}
