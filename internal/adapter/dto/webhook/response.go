package webhook

import (
	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/usecase/ingestion"
)

const (
	MessageProcessed = "Webhook processed successfully"
	MessagePartial   = "Webhook partially processed"
)

// ProcessedData summarizes a processed webhook
type ProcessedData struct {
	AccountID         string `json:"accountId"`
	MeetingsProcessed int    `json:"meetingsProcessed"`
	Timestamp         string `json:"timestamp"`
}

// ProcessedResponse is the 200 body of the ingestion endpoint
type ProcessedResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Data     ProcessedData       `json:"data"`
	Meetings []*entities.Meeting `json:"meetings"`

	// Set only when some records could not be written
	Partial   bool                    `json:"partial,omitempty"`
	Succeeded []string                `json:"succeeded,omitempty"`
	Failed    []ingestion.FailedWrite `json:"failed,omitempty"`
}

// NewProcessedResponse builds the body from a pipeline result
func NewProcessedResponse(res *ingestion.Result, timestamp string) ProcessedResponse {
	meetings := res.Meetings
	if meetings == nil {
		meetings = []*entities.Meeting{}
	}
	resp := ProcessedResponse{
		Success: true,
		Message: MessageProcessed,
		Data: ProcessedData{
			AccountID:         res.Account.AccountID,
			MeetingsProcessed: res.Write.Count(),
			Timestamp:         timestamp,
		},
		Meetings: meetings,
	}
	if res.Write.Partial() {
		resp.Message = MessagePartial
		resp.Partial = true
		resp.Succeeded = res.Write.Succeeded
		resp.Failed = res.Write.Failed
	}
	return resp
}
