package cancel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseThenRequestCancelIsObservedByIsCancelled(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.Lease(ctx, "job-1", time.Minute))

	cancelled, err := r.IsCancelled(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, cancelled)

	require.NoError(t, r.RequestCancel(ctx, "job-1"))

	cancelled, err = r.IsCancelled(ctx, "job-1")
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestLeaseAfterCancelIsRejected(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.RequestCancel(ctx, "job-2"))

	err := r.Lease(ctx, "job-2", time.Minute)
	require.Error(t, err)

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CodeAlreadyCancelled, ce.Code)
}

func TestRequestCancelIsIdempotent(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.RequestCancel(ctx, "job-3"))
	require.NoError(t, r.RequestCancel(ctx, "job-3"))

	cancelled, err := r.IsCancelled(ctx, "job-3")
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestReleaseClearsBothLeaseAndCancellationState(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.Lease(ctx, "job-4", time.Minute))
	require.NoError(t, r.RequestCancel(ctx, "job-4"))
	require.NoError(t, r.Release(ctx, "job-4"))

	cancelled, err := r.IsCancelled(ctx, "job-4")
	require.NoError(t, err)
	assert.False(t, cancelled)

	// A released key is no longer cancelled, so it can be leased again
	// under the same idempotency key for a retried attempt.
	require.NoError(t, r.Lease(ctx, "job-4", time.Minute))
}

func TestIsCancelledOnUnknownKeyIsFalseNotError(t *testing.T) {
	r := NewMemoryRegistry()
	cancelled, err := r.IsCancelled(context.Background(), "never-leased")
	require.NoError(t, err)
	assert.False(t, cancelled)
}
