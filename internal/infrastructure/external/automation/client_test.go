package automation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

func TestForward_PostsRegistration(t *testing.T) {
	var got RegistrationRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, time.Second)
	c.now = func() time.Time { return time.Date(2025, 7, 19, 15, 20, 0, 0, time.UTC) }

	require.NoError(t, c.Forward(context.Background(), "key-1"))
	assert.Equal(t, "key-1", got.APIKey)
	assert.Equal(t, RegistrationAction, got.Action)
	assert.Equal(t, "2025-07-19T15:20:00Z", got.Timestamp)
}

func TestForward_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		temporary bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		err := NewClient(ts.URL, time.Second).Forward(context.Background(), "k")
		ts.Close()

		var se *StatusError
		require.True(t, errors.As(err, &se), "status %d", tt.status)
		assert.Equal(t, tt.status, se.StatusCode)
		assert.Equal(t, tt.temporary, IsTemporary(err), "status %d", tt.status)
	}
}

func TestForward_NotConfigured(t *testing.T) {
	err := NewClient("", time.Second).Forward(context.Background(), "k")
	assert.ErrorIs(t, err, entities.ErrRegistrationNotConfigured)
	assert.False(t, IsTemporary(err))
}

func TestForward_TransportErrorIsTemporary(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	err := NewClient(url, time.Second).Forward(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, IsTemporary(err))
}
