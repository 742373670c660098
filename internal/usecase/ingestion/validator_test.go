package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Accepts(t *testing.T) {
	pv := NewPayloadValidator(true)

	event, rej := pv.Validate([]byte(`{"body":{"apiKey":"key-1","transcripts":[
		{"id":"t1","title":"Standup","date":"2025-07-19T15:20:00.000Z"},
		{"id":"t2","title":"Retro","date":"2025-07-18T09:00:00Z","extra":{"speakers":2}}
	]}}`))
	require.Nil(t, rej)
	require.NotNil(t, event)

	assert.Equal(t, "key-1", event.APIKey)
	assert.False(t, event.LegacyKey)
	require.Len(t, event.Transcripts, 2)
	assert.Equal(t, "t1", event.Transcripts[0].ID)
	assert.Equal(t, "Retro", event.Transcripts[1].Title)
	assert.Contains(t, string(event.Transcripts[1].Raw), "speakers")
}

func TestValidate_EmptyTranscriptList(t *testing.T) {
	pv := NewPayloadValidator(true)

	event, rej := pv.Validate([]byte(`{"body":{"apiKey":"k","transcripts":[]}}`))
	require.Nil(t, rej)
	assert.Empty(t, event.Transcripts)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason Reason
		index  int
	}{
		{"empty body", ``, ReasonMalformedJSON, -1},
		{"not json", `{"body":`, ReasonMalformedJSON, -1},
		{"no body field", `{"apiKey":"k","transcripts":[]}`, ReasonMalformedJSON, -1},
		{"missing api key", `{"body":{"transcripts":[]}}`, ReasonMissingAPIKey, -1},
		{"blank api key", `{"body":{"apiKey":"  ","transcripts":[]}}`, ReasonMissingAPIKey, -1},
		{"missing transcripts", `{"body":{"apiKey":"k"}}`, ReasonMissingTranscripts, -1},
		{"null transcripts", `{"body":{"apiKey":"k","transcripts":null}}`, ReasonMissingTranscripts, -1},
		{"transcripts not a list", `{"body":{"apiKey":"k","transcripts":{"id":"t1"}}}`, ReasonMissingTranscripts, -1},
		{"body not an object", `{"body":"k"}`, ReasonMalformedJSON, -1},
		{"numeric api key", `{"body":{"apiKey":7,"transcripts":[]}}`, ReasonMalformedJSON, -1},
		{"upper-case api key", `{"body":{"APIKEY":"k","transcripts":[]}}`, ReasonMissingAPIKey, -1},
		{"lower-case legacy key", `{"body":{"fireflies_api_key":"k","transcripts":[]}}`, ReasonMissingAPIKey, -1},
		{"capitalised transcripts", `{"body":{"apiKey":"k","Transcripts":[]}}`, ReasonMissingTranscripts, -1},
		{
			"entry with upper-case id",
			`{"body":{"apiKey":"k","transcripts":[{"ID":"a","title":"A","date":"2025-01-01"}]}}`,
			ReasonInvalidEntry, 0,
		},
		{
			"entry with capitalised title",
			`{"body":{"apiKey":"k","transcripts":[{"id":"a","Title":"A","date":"2025-01-01"}]}}`,
			ReasonInvalidEntry, 0,
		},
		{
			"entry missing title",
			`{"body":{"apiKey":"k","transcripts":[{"id":"a","title":"A","date":"2025-01-01"},{"id":"b","date":"2025-01-01"}]}}`,
			ReasonInvalidEntry, 1,
		},
		{
			"entry with empty id",
			`{"body":{"apiKey":"k","transcripts":[{"id":"","title":"A","date":"2025-01-01"}]}}`,
			ReasonInvalidEntry, 0,
		},
		{
			"entry with numeric id",
			`{"body":{"apiKey":"k","transcripts":[{"id":7,"title":"A","date":"2025-01-01"}]}}`,
			ReasonInvalidEntry, 0,
		},
		{
			"entry not an object",
			`{"body":{"apiKey":"k","transcripts":["t1"]}}`,
			ReasonInvalidEntry, 0,
		},
		{
			"unparseable date",
			`{"body":{"apiKey":"k","transcripts":[{"id":"a","title":"A","date":"yesterday"}]}}`,
			ReasonInvalidEntry, 0,
		},
	}

	pv := NewPayloadValidator(true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, rej := pv.Validate([]byte(tt.body))
			assert.Nil(t, event)
			require.NotNil(t, rej)
			assert.Equal(t, tt.reason, rej.Reason)
			assert.Equal(t, tt.index, rej.Index)
		})
	}
}

func TestValidate_EntryDetailNamesIndex(t *testing.T) {
	pv := NewPayloadValidator(true)

	_, rej := pv.Validate([]byte(`{"body":{"apiKey":"k","transcripts":[{"id":"a","title":"A","date":"2025-01-01"},{"id":"b","title":"B"}]}}`))
	require.NotNil(t, rej)
	assert.Equal(t, "invalid transcript at index 1: missing required fields (id, title, date)", rej.Detail)
}

func TestValidate_LegacyKey(t *testing.T) {
	body := []byte(`{"body":{"FireFlies_API_KEY":"legacy","transcripts":[]}}`)

	event, rej := NewPayloadValidator(true).Validate(body)
	require.Nil(t, rej)
	assert.Equal(t, "legacy", event.APIKey)
	assert.True(t, event.LegacyKey)

	_, rej = NewPayloadValidator(false).Validate(body)
	require.NotNil(t, rej)
	assert.Equal(t, ReasonMissingAPIKey, rej.Reason)
}

func TestValidate_CanonicalKeyWins(t *testing.T) {
	event, rej := NewPayloadValidator(true).Validate([]byte(`{"body":{"apiKey":"new","FireFlies_API_KEY":"old","transcripts":[]}}`))
	require.Nil(t, rej)
	assert.Equal(t, "new", event.APIKey)
	assert.False(t, event.LegacyKey)
}

func TestValidate_KeysMatchExactly(t *testing.T) {
	event, rej := NewPayloadValidator(true).Validate([]byte(`{"body":{"apiKey":"k","APIKEY":"other","transcripts":[{"id":"a","ID":"b","title":"A","date":"2025-01-01"}]}}`))
	require.Nil(t, rej)
	assert.Equal(t, "k", event.APIKey)
	require.Len(t, event.Transcripts, 1)
	assert.Equal(t, "a", event.Transcripts[0].ID)
}

func TestValidate_DateStringAlias(t *testing.T) {
	event, rej := NewPayloadValidator(true).Validate([]byte(`{"body":{"apiKey":"k","transcripts":[{"id":"a","title":"A","dateString":"2025-03-02T10:00:00Z"}]}}`))
	require.Nil(t, rej)
	assert.Equal(t, "2025-03-02T10:00:00Z", event.Transcripts[0].Date)
}
