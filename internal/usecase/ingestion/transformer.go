package ingestion

import (
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// Transform converts validated transcript entries into meetings, one per
// entry, in input order. Account ownership and timestamps are assigned by
// the writer.
func Transform(entries []entities.TranscriptEntry) []*entities.Meeting {
	meetings := make([]*entities.Meeting, 0, len(entries))
	for _, e := range entries {
		m := &entities.Meeting{
			MeetingID:    e.ID,
			Title:        e.Title,
			Date:         ToCalendarDate(e.Date),
			Duration:     entities.DurationUnknown,
			Source:       entities.MeetingSourceWebhook,
			OriginalDate: e.Date,
		}
		if len(e.Raw) > 0 {
			m.RawEntry = datatypes.JSON(append([]byte(nil), e.Raw...))
		}
		meetings = append(meetings, m)
	}
	return meetings
}
