package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

const snapshotCleanupInterval = 5 * time.Minute

// MemorySnapshotStore keeps per-account meeting snapshots in process with expiration.
// Replace overwrites the whole snapshot; concurrent writers race last-write-wins.
type MemorySnapshotStore struct {
	items *gocache.Cache
}

// NewMemorySnapshotStore creates a new in-memory snapshot store. A ttl of
// zero keeps snapshots until replaced.
func NewMemorySnapshotStore(ttl time.Duration) *MemorySnapshotStore {
	if ttl <= 0 {
		return &MemorySnapshotStore{items: gocache.New(gocache.NoExpiration, 0)}
	}
	return &MemorySnapshotStore{items: gocache.New(ttl, snapshotCleanupInterval)}
}

// Replace stores a copy of meetings as the account snapshot
func (ms *MemorySnapshotStore) Replace(ctx context.Context, accountID string, meetings []*entities.Meeting) error {
	snapshot := make([]entities.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m != nil {
			snapshot = append(snapshot, *m)
		}
	}
	ms.items.SetDefault(accountID, snapshot)
	return nil
}

// Load returns a copy of the account snapshot (empty if not found or expired)
func (ms *MemorySnapshotStore) Load(ctx context.Context, accountID string) ([]*entities.Meeting, error) {
	v, found := ms.items.Get(accountID)
	if !found {
		return nil, nil
	}
	snapshot := v.([]entities.Meeting)

	out := make([]*entities.Meeting, 0, len(snapshot))
	for i := range snapshot {
		m := snapshot[i]
		out = append(out, &m)
	}
	return out, nil
}
