package entities

import "encoding/json"

// TranscriptEntry is one provider transcript as received on the wire
type TranscriptEntry struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
	Date  string `json:"date" validate:"required,instant"`

	// Raw is the entry exactly as received
	Raw json.RawMessage `json:"-" validate:"-"`
}

// WebhookEvent is the validated inbound envelope. It is never persisted.
type WebhookEvent struct {
	APIKey      string
	Transcripts []TranscriptEntry

	// LegacyKey is set when the credential arrived under the deprecated field name
	LegacyKey bool
}

// MeetingsSynced is emitted after a batch has been written for an account
type MeetingsSynced struct {
	EventID    string   `json:"eventId"`
	AccountID  string   `json:"accountId"`
	MeetingIDs []string `json:"meetingIds"`
	Failed     []string `json:"failed,omitempty"`
	Created    int      `json:"created"`
	Timestamp  string   `json:"timestamp"`
}
