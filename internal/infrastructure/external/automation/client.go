package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// RegistrationAction is the action name the automation workflow expects
const RegistrationAction = "user_registration"

// Client forwards newly registered API keys to the external automation webhook
type Client struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewClient creates a new automation client
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: strings.TrimRight(url, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// RegistrationRequest is the body posted to the automation webhook
type RegistrationRequest struct {
	APIKey    string `json:"apiKey"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("automation webhook error (status: %d): %s", e.StatusCode, e.Body)
}

// Temporary reports whether the call may succeed if retried
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsTemporary classifies an error returned by Forward. Transport failures
// and 5xx/429 responses are temporary; everything else is not.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, entities.ErrRegistrationNotConfigured) && !errors.Is(err, errEncode)
}

var errEncode = errors.New("failed to marshal request")

// Forward posts the API key to the automation webhook
func (c *Client) Forward(ctx context.Context, apiKey string) error {
	if c.url == "" {
		return entities.ErrRegistrationNotConfigured
	}

	data, err := json.Marshal(RegistrationRequest{
		APIKey:    apiKey,
		Action:    RegistrationAction,
		Timestamp: c.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errEncode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", errEncode, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Response content is not used; keep a short excerpt for errors
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
