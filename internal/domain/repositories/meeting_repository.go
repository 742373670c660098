package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Upsert inserts or replaces a single meeting keyed by (AccountID, MeetingID).
	// CreatedAt is preserved when the row already exists and is copied back
	// onto meeting. The returned bool is true when the row did not exist before.
	Upsert(ctx context.Context, meeting *entities.Meeting) (bool, error)

	// ListByAccount returns every meeting owned by the account, in no particular order
	ListByAccount(ctx context.Context, accountID string) ([]*entities.Meeting, error)
}

// SnapshotStore holds a whole-list snapshot per account. Replace overwrites
// the previous snapshot entirely; there is no merge.
type SnapshotStore interface {
	Load(ctx context.Context, accountID string) ([]*entities.Meeting, error)
	Replace(ctx context.Context, accountID string, meetings []*entities.Meeting) error
}
