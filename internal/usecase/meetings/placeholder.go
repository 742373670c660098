package meetings

import "github.com/johnquangdev/meeting-sync/internal/domain/entities"

// Placeholder returns the fixed demo set shown when an account has no live
// meetings. A fresh slice is built on every call so callers may mutate it.
func Placeholder() []*entities.Meeting {
	demo := []struct {
		id, title, date, duration string
	}{
		{"1", "Product Strategy Review", "2025-01-15", "45 min"},
		{"2", "Engineering Planning Session", "2025-01-14", "60 min"},
		{"3", "Customer Feedback Review", "2025-01-13", "30 min"},
		{"4", "Q1 Budget Discussion", "2025-01-12", "90 min"},
		{"5", "Design System Updates", "2025-01-11", "40 min"},
	}

	out := make([]*entities.Meeting, 0, len(demo))
	for _, d := range demo {
		out = append(out, &entities.Meeting{
			MeetingID: d.id,
			Title:     d.title,
			Date:      d.date,
			Duration:  d.duration,
			Source:    entities.MeetingSourceManual,
		})
	}
	return out
}
