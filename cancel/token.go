// Package cancel implements the cancellation-token / idempotency-key
// registry behind request_cancel(key) (§5): every long-running operation
// (adapter invocation, retrieval over remote sources) is tied to a
// cancellation token keyed by an idempotency key, and request_cancel(key)
// signals that token.
package cancel

import (
	"context"
	"time"
)

// Registry leases idempotency keys and signals cancellation against them.
// A lease's TTL bounds how long a key may be outstanding before it is
// considered abandoned, mirroring the teacher's use of Redis key
// expiration for result-stream TTLs (registry.Service.setResultStreamTTL).
type Registry interface {
	// Lease registers key as in-flight for ttl. Re-leasing an
	// already-cancelled key returns CodeAlreadyCancelled.
	Lease(ctx context.Context, key string, ttl time.Duration) error

	// RequestCancel signals the token for key. Idempotent: cancelling an
	// already-cancelled or never-leased key is not an error.
	RequestCancel(ctx context.Context, key string) error

	// IsCancelled reports whether key has been signalled.
	IsCancelled(ctx context.Context, key string) (bool, error)

	// Release removes key's lease once the operation it guards has
	// finished, successfully or not.
	Release(ctx context.Context, key string) error
}
