package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type sampleTranscript struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// samplePayload builds a provider-shaped event with n transcripts ending at now
func samplePayload(apiKey string, n int, now time.Time) ([]byte, error) {
	transcripts := make([]sampleTranscript, 0, n)
	for i := 0; i < n; i++ {
		transcripts = append(transcripts, sampleTranscript{
			ID:    uuid.NewString(),
			Title: fmt.Sprintf("Sample meeting %d", i+1),
			Date:  now.Add(-time.Duration(i) * 24 * time.Hour).UTC().Format(time.RFC3339),
		})
	}
	return json.Marshal(map[string]interface{}{
		"body": map[string]interface{}{
			"apiKey":      apiKey,
			"transcripts": transcripts,
		},
	})
}

func newWebhookCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Exercise the transcript webhook",
	}

	var (
		url    string
		apiKey string
		file   string
		count  int
	)
	send := &cobra.Command{
		Use:   "send",
		Short: "POST a transcript batch to a running server",
		Long: `POST a transcript batch to a running server and print the response.

With --file the payload is sent as-is; otherwise a sample batch of
--count transcripts is generated for --api-key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var payload []byte
			var err error
			switch {
			case file != "":
				payload, err = os.ReadFile(file)
			case apiKey != "":
				payload, err = samplePayload(apiKey, count, time.Now())
			default:
				return errors.New("either --file or --api-key is required")
			}
			if err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(payload))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Request-ID", uuid.NewString())

			resp, err := d.HTTPClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to send webhook: %w", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			fmt.Fprintf(d.Out, "%s\n%s\n", resp.Status, bytes.TrimSpace(body))
			if resp.StatusCode >= 300 {
				return fmt.Errorf("webhook returned %d", resp.StatusCode)
			}
			return nil
		},
	}
	send.Flags().StringVar(&url, "url", "http://localhost:8080/v1/webhooks/transcripts", "Webhook endpoint")
	send.Flags().StringVar(&apiKey, "api-key", "", "Sender API key for a generated batch")
	send.Flags().StringVarP(&file, "file", "f", "", "Send this JSON file instead of a generated batch")
	send.Flags().IntVarP(&count, "count", "n", 3, "Number of generated transcripts")

	cmd.AddCommand(send)
	return cmd
}
