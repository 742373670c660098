package entities

import (
	"time"

	"gorm.io/datatypes"
)

// MeetingSource tells where a meeting record came from
type MeetingSource string

const (
	MeetingSourceWebhook MeetingSource = "webhook"
	MeetingSourceManual  MeetingSource = "manual"
)

// DurationUnknown is stored when the provider does not report a duration
const DurationUnknown = "N/A"

// DateLayout is the calendar date format of Meeting.Date
const DateLayout = "2006-01-02"

// Meeting is the canonical record derived from one provider transcript.
// (AccountID, MeetingID) is the idempotency key.
type Meeting struct {
	AccountID string        `json:"-" gorm:"column:account_id;type:varchar(128);primaryKey"`
	MeetingID string        `json:"id" gorm:"column:meeting_id;type:varchar(255);primaryKey"`
	Title     string        `json:"title" gorm:"type:text;not null"`
	Date      string        `json:"date" gorm:"type:varchar(10);not null;index"`
	Duration  string        `json:"duration" gorm:"type:varchar(64);default:'N/A';not null"`
	Source    MeetingSource `json:"source" gorm:"type:varchar(16);default:'webhook';not null"`

	// OriginalDate keeps the provider timestamp before truncation
	OriginalDate string         `json:"originalDate,omitempty" gorm:"column:original_date;type:varchar(64)"`
	RawEntry     datatypes.JSON `json:"-" gorm:"column:raw_entry;type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// SameContent reports whether two meetings carry the same observable content,
// ignoring write timestamps.
func (m *Meeting) SameContent(other *Meeting) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.MeetingID == other.MeetingID &&
		m.Title == other.Title &&
		m.Date == other.Date &&
		m.Duration == other.Duration &&
		m.Source == other.Source
}
