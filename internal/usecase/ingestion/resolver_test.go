package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

func TestResolve_Found(t *testing.T) {
	store := newFlakyStore()
	account := seedAccount(t, store, "key-1")

	r := NewResolver(store, time.Second, 0, nil, nil)
	got, err := r.Resolve(context.Background(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, account.AccountID, got.AccountID)
}

func TestResolve_UnknownKey(t *testing.T) {
	store := newFlakyStore()
	seedAccount(t, store, "key-1")

	r := NewResolver(store, time.Second, 0, nil, nil)
	_, err := r.Resolve(context.Background(), "key-2")
	assert.ErrorIs(t, err, entities.ErrAccountNotFound)

	_, err = r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, entities.ErrAccountNotFound)
}

func TestResolve_BackendFailure(t *testing.T) {
	store := newFlakyStore()
	store.lookupErr = errors.New("connection refused")

	r := NewResolver(store, time.Second, 0, nil, nil)
	_, err := r.Resolve(context.Background(), "key-1")
	assert.ErrorIs(t, err, entities.ErrLookupFailed)
	assert.NotErrorIs(t, err, entities.ErrAccountNotFound)
}

func TestResolve_Timeout(t *testing.T) {
	store := newFlakyStore()
	store.lookupBlock = true

	r := NewResolver(store, 20*time.Millisecond, 0, nil, nil)
	start := time.Now()
	_, err := r.Resolve(context.Background(), "key-1")
	assert.ErrorIs(t, err, entities.ErrLookupFailed)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolve_DuplicateKeyUsesFirstMatch(t *testing.T) {
	store := newFlakyStore()
	first := seedAccount(t, store, "shared")
	seedAccount(t, store, "shared")
	rec := &countingRecorder{}

	r := NewResolver(store, time.Second, 0, rec, nil)
	for i := 0; i < 3; i++ {
		got, err := r.Resolve(context.Background(), "shared")
		require.NoError(t, err)
		assert.Equal(t, first.AccountID, got.AccountID)
	}
	assert.Equal(t, 3, rec.duplicates)
}

func TestResolve_CachesPositiveResults(t *testing.T) {
	store := newFlakyStore()
	seedAccount(t, store, "key-1")

	r := NewResolver(store, time.Second, time.Minute, nil, nil)
	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), "key-1")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, store.lookups.Load())

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), "missing")
		assert.ErrorIs(t, err, entities.ErrAccountNotFound)
	}
	assert.EqualValues(t, 3, store.lookups.Load())

	r.Forget("key-1")
	_, err := r.Resolve(context.Background(), "key-1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, store.lookups.Load())
}
