package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// MeetingRepository implements the meeting repository interface using GORM
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// xmax is zero only for rows inserted by the current transaction, which tells
// an insert apart from an update in a single round trip.
const upsertMeetingSQL = `
INSERT INTO meetings (account_id, meeting_id, title, date, duration, source, original_date, raw_entry, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (account_id, meeting_id) DO UPDATE SET
	title = EXCLUDED.title,
	date = EXCLUDED.date,
	duration = EXCLUDED.duration,
	source = EXCLUDED.source,
	original_date = EXCLUDED.original_date,
	raw_entry = EXCLUDED.raw_entry,
	updated_at = EXCLUDED.updated_at
RETURNING created_at, (xmax = 0) AS inserted`

// Upsert inserts or replaces a meeting keyed by (account_id, meeting_id)
func (r *MeetingRepository) Upsert(ctx context.Context, meeting *entities.Meeting) (bool, error) {
	var row struct {
		CreatedAt time.Time
		Inserted  bool
	}
	err := r.db.WithContext(ctx).Raw(upsertMeetingSQL,
		meeting.AccountID,
		meeting.MeetingID,
		meeting.Title,
		meeting.Date,
		meeting.Duration,
		meeting.Source,
		meeting.OriginalDate,
		meeting.RawEntry,
		meeting.CreatedAt,
		meeting.UpdatedAt,
	).Scan(&row).Error
	if err != nil {
		return false, fmt.Errorf("failed to upsert meeting %s: %w", meeting.MeetingID, err)
	}
	meeting.CreatedAt = row.CreatedAt
	return row.Inserted, nil
}

// ListByAccount lists all meetings of an account
func (r *MeetingRepository) ListByAccount(ctx context.Context, accountID string) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("date DESC, meeting_id ASC").
		Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// Count returns the number of stored meetings for an account
func (r *MeetingRepository) Count(ctx context.Context, accountID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("account_id = ?", accountID).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count meetings: %w", err)
	}
	return n, nil
}
