package ingestion

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-sync/internal/adapter/repository"
	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

var errInjected = errors.New("injected store failure")

// flakyStore wraps the memory store and fails selected operations
type flakyStore struct {
	*repository.MemoryStore

	lookupErr   error
	lookupBlock bool
	failIDs     map[string]bool
	failAll     bool
	lookups     atomic.Int32
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: repository.NewMemoryStore(), failIDs: map[string]bool{}}
}

func (f *flakyStore) FindByAPIKey(ctx context.Context, apiKey string) (*entities.Account, int, error) {
	f.lookups.Add(1)
	if f.lookupBlock {
		<-ctx.Done()
		return nil, 0, ctx.Err()
	}
	if f.lookupErr != nil {
		return nil, 0, f.lookupErr
	}
	return f.MemoryStore.FindByAPIKey(ctx, apiKey)
}

func (f *flakyStore) Upsert(ctx context.Context, m *entities.Meeting) (bool, error) {
	if f.failAll || f.failIDs[m.MeetingID] {
		return false, errInjected
	}
	return f.MemoryStore.Upsert(ctx, m)
}

type countingRecorder struct {
	mu         sync.Mutex
	outcomes   []string
	succeeded  int
	failed     int
	duplicates int
}

func (r *countingRecorder) Outcome(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *countingRecorder) MeetingsWritten(s, f int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded += s
	r.failed += f
}

func (r *countingRecorder) DuplicateAPIKey() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duplicates++
}

type capturingNotifier struct {
	mu     sync.Mutex
	events []entities.MeetingsSynced
	err    error
}

func (n *capturingNotifier) Publish(_ context.Context, e entities.MeetingsSynced) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

type capturingArchiver struct {
	mu    sync.Mutex
	calls []string
}

func (a *capturingArchiver) Archive(_ context.Context, accountID, requestID string, raw []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, accountID+"/"+requestID)
	return nil
}

func seedAccount(t *testing.T, store *flakyStore, apiKey string) *entities.Account {
	t.Helper()
	account := entities.NewAccount(apiKey, "owner@example.com", "Owner")
	require.NoError(t, store.Create(context.Background(), account))
	return account
}
