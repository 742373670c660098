package meetings

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/domain/repositories"
)

// SnapshotRefresher rebuilds an account's snapshot from the durable store
// whenever a sync event for that account arrives.
type SnapshotRefresher struct {
	meetings  repositories.MeetingRepository
	snapshots repositories.SnapshotStore
	timeout   time.Duration
	logger    *zap.Logger
}

// NewSnapshotRefresher creates a refresher
func NewSnapshotRefresher(meetings repositories.MeetingRepository, snapshots repositories.SnapshotStore, timeout time.Duration, logger *zap.Logger) *SnapshotRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRefresher{
		meetings:  meetings,
		snapshots: snapshots,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run consumes events until ctx is done or the channel is closed
func (r *SnapshotRefresher) Run(ctx context.Context, events <-chan entities.MeetingsSynced) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := r.Refresh(ctx, event.AccountID); err != nil {
				r.logger.Warn("snapshot refresh failed",
					zap.String("account_id", event.AccountID),
					zap.String("event_id", event.EventID),
					zap.Error(err),
				)
			}
		}
	}
}

// Refresh replaces the account snapshot with the current stored meetings
func (r *SnapshotRefresher) Refresh(ctx context.Context, accountID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	list, err := r.meetings.ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	Sort(list)
	if err := r.snapshots.Replace(ctx, accountID, list); err != nil {
		return err
	}
	r.logger.Debug("snapshot refreshed",
		zap.String("account_id", accountID),
		zap.Int("count", len(list)),
	)
	return nil
}
