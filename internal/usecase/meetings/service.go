package meetings

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/domain/repositories"
)

// Where a listing came from
const (
	SourceLive        = "live"
	SourcePlaceholder = "placeholder"
)

// Fallback reasons
const (
	FallbackEmpty = "empty"
	FallbackError = "error"
)

// Source is the primary source of an account's meetings
type Source interface {
	List(ctx context.Context, accountID string) ([]*entities.Meeting, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context, accountID string) ([]*entities.Meeting, error)

// List calls f
func (f SourceFunc) List(ctx context.Context, accountID string) ([]*entities.Meeting, error) {
	return f(ctx, accountID)
}

// StoreSource reads from the durable meeting store
func StoreSource(repo repositories.MeetingRepository) Source {
	return SourceFunc(repo.ListByAccount)
}

// SnapshotSource reads from the per-account snapshot
func SnapshotSource(store repositories.SnapshotStore) Source {
	return SourceFunc(store.Load)
}

// Recorder counts read-path fallbacks
type Recorder interface {
	Fallback(reason string)
}

// Listing is the result of a read
type Listing struct {
	Meetings []*entities.Meeting
	Source   string
}

// Service is the meeting read path
type Service struct {
	primary   Source
	snapshots repositories.SnapshotStore
	timeout   time.Duration
	recorder  Recorder
	logger    *zap.Logger
}

// NewService creates the read path. snapshots may be nil when the replace
// path is not offered.
func NewService(primary Source, snapshots repositories.SnapshotStore, timeout time.Duration, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		primary:   primary,
		snapshots: snapshots,
		timeout:   timeout,
		recorder:  recorder,
		logger:    logger,
	}
}

// List returns the account's meetings, newest first. It never fails: when the
// primary source errors, times out or has nothing for the account, the
// placeholder set is returned instead.
func (s *Service) List(ctx context.Context, accountID string) *Listing {
	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	live, err := s.primary.List(listCtx, accountID)
	switch {
	case err != nil:
		s.fallback(FallbackError)
		s.logger.Warn("live meeting query failed, serving placeholder",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	case len(live) == 0:
		s.fallback(FallbackEmpty)
		s.logger.Debug("no live meetings, serving placeholder", zap.String("account_id", accountID))
	default:
		Sort(live)
		return &Listing{Meetings: live, Source: SourceLive}
	}

	placeholder := Placeholder()
	Sort(placeholder)
	return &Listing{Meetings: placeholder, Source: SourcePlaceholder}
}

// Replace overwrites the account's snapshot with meetings
func (s *Service) Replace(ctx context.Context, accountID string, meetings []*entities.Meeting) error {
	if s.snapshots == nil {
		return fmt.Errorf("%w: no snapshot store configured", entities.ErrSnapshotUnavailable)
	}
	for _, m := range meetings {
		m.AccountID = accountID
	}
	if err := s.snapshots.Replace(ctx, accountID, meetings); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrSnapshotUnavailable, err)
	}
	return nil
}

// Snapshot returns the account's current snapshot, empty when none is held
func (s *Service) Snapshot(ctx context.Context, accountID string) ([]*entities.Meeting, error) {
	if s.snapshots == nil {
		return []*entities.Meeting{}, nil
	}
	meetings, err := s.snapshots.Load(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrSnapshotUnavailable, err)
	}
	if meetings == nil {
		meetings = []*entities.Meeting{}
	}
	return meetings, nil
}

func (s *Service) fallback(reason string) {
	if s.recorder != nil {
		s.recorder.Fallback(reason)
	}
}

// Sort orders meetings by date descending, then meeting id ascending
func Sort(meetings []*entities.Meeting) {
	sort.SliceStable(meetings, func(i, j int) bool {
		if meetings[i].Date != meetings[j].Date {
			return meetings[i].Date > meetings[j].Date
		}
		return meetings[i].MeetingID < meetings[j].MeetingID
	})
}
