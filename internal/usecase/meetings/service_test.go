package meetings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-sync/internal/adapter/repository"
	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/cache"
)

type fallbackCounter struct {
	mu      sync.Mutex
	reasons []string
}

func (c *fallbackCounter) Fallback(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reasons = append(c.reasons, reason)
}

func ids(ms []*entities.Meeting) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.MeetingID)
	}
	return out
}

func seed(t *testing.T, store *repository.MemoryStore, accountID string, dates map[string]string) {
	t.Helper()
	for id, date := range dates {
		_, err := store.Upsert(context.Background(), &entities.Meeting{
			AccountID: accountID,
			MeetingID: id,
			Title:     "Meeting " + id,
			Date:      date,
			Duration:  entities.DurationUnknown,
			Source:    entities.MeetingSourceWebhook,
		})
		require.NoError(t, err)
	}
}

func TestList_OrdersByDateDescending(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "A1", map[string]string{
		"m11": "2025-01-11",
		"m15": "2025-01-15",
		"m13": "2025-01-13",
	})

	svc := NewService(StoreSource(store), nil, time.Second, nil, nil)
	listing := svc.List(context.Background(), "A1")

	assert.Equal(t, SourceLive, listing.Source)
	var dates []string
	for _, m := range listing.Meetings {
		dates = append(dates, m.Date)
	}
	assert.Equal(t, []string{"2025-01-15", "2025-01-13", "2025-01-11"}, dates)
}

func TestList_TiesBrokenByMeetingID(t *testing.T) {
	src := SourceFunc(func(context.Context, string) ([]*entities.Meeting, error) {
		return []*entities.Meeting{
			{MeetingID: "b", Date: "2025-01-10"},
			{MeetingID: "c", Date: "2025-01-12"},
			{MeetingID: "a", Date: "2025-01-10"},
		}, nil
	})

	listing := NewService(src, nil, time.Second, nil, nil).List(context.Background(), "A1")
	assert.Equal(t, []string{"c", "a", "b"}, ids(listing.Meetings))
}

func TestList_EmptyFallsBackToPlaceholder(t *testing.T) {
	rec := &fallbackCounter{}
	svc := NewService(StoreSource(repository.NewMemoryStore()), nil, time.Second, rec, nil)

	listing := svc.List(context.Background(), "nobody")
	assert.Equal(t, SourcePlaceholder, listing.Source)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(listing.Meetings))
	assert.Equal(t, "Product Strategy Review", listing.Meetings[0].Title)
	assert.Equal(t, []string{FallbackEmpty}, rec.reasons)
}

func TestList_ErrorFallsBackToPlaceholder(t *testing.T) {
	rec := &fallbackCounter{}
	src := SourceFunc(func(context.Context, string) ([]*entities.Meeting, error) {
		return nil, errors.New("store offline")
	})

	listing := NewService(src, nil, time.Second, rec, nil).List(context.Background(), "A1")
	assert.Equal(t, SourcePlaceholder, listing.Source)
	assert.Len(t, listing.Meetings, 5)
	assert.Equal(t, []string{FallbackError}, rec.reasons)
}

func TestList_TimeoutFallsBackToPlaceholder(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, _ string) ([]*entities.Meeting, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	start := time.Now()
	listing := NewService(src, nil, 20*time.Millisecond, nil, nil).List(context.Background(), "A1")
	assert.Equal(t, SourcePlaceholder, listing.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPlaceholder_IsFresh(t *testing.T) {
	first := Placeholder()
	first[0].Title = "changed"
	assert.Equal(t, "Product Strategy Review", Placeholder()[0].Title)
}

func TestReplace_OverwritesSnapshot(t *testing.T) {
	snapshots := cache.NewMemorySnapshotStore(0)
	svc := NewService(SnapshotSource(snapshots), snapshots, time.Second, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Replace(ctx, "A1", []*entities.Meeting{{MeetingID: "x", Date: "2025-02-01"}, {MeetingID: "y", Date: "2025-02-02"}}))
	require.NoError(t, svc.Replace(ctx, "A1", []*entities.Meeting{{MeetingID: "z", Date: "2025-02-03"}}))

	listing := svc.List(ctx, "A1")
	assert.Equal(t, SourceLive, listing.Source)
	assert.Equal(t, []string{"z"}, ids(listing.Meetings))
}

func TestReplace_WithoutSnapshotStore(t *testing.T) {
	svc := NewService(StoreSource(repository.NewMemoryStore()), nil, time.Second, nil, nil)
	err := svc.Replace(context.Background(), "A1", nil)
	assert.ErrorIs(t, err, entities.ErrSnapshotUnavailable)
}

func TestSnapshot_ReturnsHeldMeetings(t *testing.T) {
	snapshots := cache.NewMemorySnapshotStore(0)
	svc := NewService(SnapshotSource(snapshots), snapshots, time.Second, nil, nil)
	ctx := context.Background()

	got, err := svc.Snapshot(ctx, "A1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, svc.Replace(ctx, "A1", []*entities.Meeting{{MeetingID: "x"}, {MeetingID: "y"}}))
	got, err = svc.Snapshot(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, ids(got))

	none := NewService(StoreSource(repository.NewMemoryStore()), nil, time.Second, nil, nil)
	got, err = none.Snapshot(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSnapshotRefresher(t *testing.T) {
	store := repository.NewMemoryStore()
	snapshots := cache.NewMemorySnapshotStore(0)
	seed(t, store, "A1", map[string]string{"t1": "2025-07-19", "t2": "2025-07-18"})

	refresher := NewSnapshotRefresher(store, snapshots, time.Second, nil)
	events := make(chan entities.MeetingsSynced, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refresher.Run(ctx, events)
		close(done)
	}()

	events <- entities.MeetingsSynced{EventID: "e1", AccountID: "A1", MeetingIDs: []string{"t1", "t2"}}

	assert.Eventually(t, func() bool {
		got, err := snapshots.Load(context.Background(), "A1")
		return err == nil && len(got) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
