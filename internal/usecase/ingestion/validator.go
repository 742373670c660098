package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	pkgvalidator "github.com/johnquangdev/meeting-sync/pkg/validator"
)

// Reason is the rejection reason reported to the webhook sender
type Reason string

const (
	ReasonMalformedJSON      Reason = "malformed_json"
	ReasonMissingAPIKey      Reason = "missing_api_key"
	ReasonMissingTranscripts Reason = "missing_transcripts"
	ReasonInvalidEntry       Reason = "invalid_transcript_entry"
)

// Rejection is a validation failure. Index is -1 unless Reason is ReasonInvalidEntry.
type Rejection struct {
	Reason Reason
	Index  int
	Detail string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

func reject(reason Reason, format string, args ...interface{}) *Rejection {
	return &Rejection{Reason: reason, Index: -1, Detail: fmt.Sprintf(format, args...)}
}

// Wire keys of { body: { apiKey, transcripts: [{ id, title, date }] } }.
// They match exactly: "APIKEY" or "ID" are unknown keys, not aliases.
const (
	keyBody        = "body"
	keyAPIKey      = "apiKey"
	keyLegacyKey   = "FireFlies_API_KEY"
	keyTranscripts = "transcripts"
	keyID          = "id"
	keyTitle       = "title"
	keyDate        = "date"
	keyDateString  = "dateString"
)

// object decodes a JSON object keeping keys as sent. JSON null yields a nil map.
func object(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// stringField returns nil when key is absent or null
func stringField(fields map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s must be a string", key)
	}
	return &s, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PayloadValidator checks a raw inbound event before any side effect
type PayloadValidator struct {
	v               *pkgvalidator.CustomValidator
	acceptLegacyKey bool
}

// NewPayloadValidator creates a validator. acceptLegacyKey enables the
// deprecated FireFlies_API_KEY credential field.
func NewPayloadValidator(acceptLegacyKey bool) *PayloadValidator {
	v := pkgvalidator.New()
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("instant", func(fl validator.FieldLevel) bool {
		_, ok := ParseInstant(fl.Field().String())
		return ok
	})
	return &PayloadValidator{v: v, acceptLegacyKey: acceptLegacyKey}
}

// Validate runs the checks in order and stops at the first failure.
// It returns either an event or a rejection, never both.
func (pv *PayloadValidator) Validate(raw []byte) (*entities.WebhookEvent, *Rejection) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, reject(ReasonMalformedJSON, "empty request body")
	}

	top, err := object(trimmed)
	if err != nil {
		return nil, reject(ReasonMalformedJSON, "invalid JSON format: %v", err)
	}
	if isNull(top[keyBody]) {
		return nil, reject(ReasonMalformedJSON, "missing body in payload")
	}
	body, err := object(top[keyBody])
	if err != nil {
		return nil, reject(ReasonMalformedJSON, "body must be an object: %v", err)
	}
	apiKey, err := stringField(body, keyAPIKey)
	if err != nil {
		return nil, reject(ReasonMalformedJSON, "%v", err)
	}
	legacyKey, err := stringField(body, keyLegacyKey)
	if err != nil {
		return nil, reject(ReasonMalformedJSON, "%v", err)
	}

	event := &entities.WebhookEvent{}
	switch {
	case strings.TrimSpace(orEmpty(apiKey)) != "":
		event.APIKey = strings.TrimSpace(*apiKey)
	case pv.acceptLegacyKey && strings.TrimSpace(orEmpty(legacyKey)) != "":
		event.APIKey = strings.TrimSpace(*legacyKey)
		event.LegacyKey = true
	default:
		return nil, reject(ReasonMissingAPIKey, "missing apiKey in payload.body")
	}

	rawList := bytes.TrimSpace(body[keyTranscripts])
	if len(rawList) == 0 || bytes.Equal(rawList, []byte("null")) {
		return nil, reject(ReasonMissingTranscripts, "missing transcripts in payload.body")
	}
	if rawList[0] != '[' {
		return nil, reject(ReasonMissingTranscripts, "transcripts must be an array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawList, &items); err != nil {
		return nil, reject(ReasonMalformedJSON, "invalid transcripts array: %v", err)
	}

	event.Transcripts = make([]entities.TranscriptEntry, 0, len(items))
	for i, item := range items {
		entry, rej := pv.validateEntry(i, item)
		if rej != nil {
			return nil, rej
		}
		event.Transcripts = append(event.Transcripts, entry)
	}

	return event, nil
}

func (pv *PayloadValidator) validateEntry(i int, item json.RawMessage) (entities.TranscriptEntry, *Rejection) {
	invalid := func(detail string) *Rejection {
		return &Rejection{
			Reason: ReasonInvalidEntry,
			Index:  i,
			Detail: fmt.Sprintf("invalid transcript at index %d: %s", i, detail),
		}
	}

	const shape = "entry must be an object with string fields id, title, date"
	fields, err := object(item)
	if err != nil {
		return entities.TranscriptEntry{}, invalid(shape)
	}
	var values [4]string
	for k, key := range []string{keyID, keyTitle, keyDate, keyDateString} {
		v, err := stringField(fields, key)
		if err != nil {
			return entities.TranscriptEntry{}, invalid(shape)
		}
		values[k] = orEmpty(v)
	}
	date := values[2]
	if strings.TrimSpace(date) == "" {
		date = values[3]
	}

	entry := entities.TranscriptEntry{
		ID:    strings.TrimSpace(values[0]),
		Title: strings.TrimSpace(values[1]),
		Date:  strings.TrimSpace(date),
		Raw:   item,
	}
	if entry.ID == "" || entry.Title == "" || entry.Date == "" {
		return entities.TranscriptEntry{}, invalid("missing required fields (id, title, date)")
	}
	if err := pv.v.Validate(&entry); err != nil {
		return entities.TranscriptEntry{}, invalid(fmt.Sprintf("invalid fields %v", pkgvalidator.MissingFields(err)))
	}
	return entry, nil
}
