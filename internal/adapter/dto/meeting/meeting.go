package meeting

import "github.com/johnquangdev/meeting-sync/internal/domain/entities"

// ListResponse is the GET /v1/meetings body
type ListResponse struct {
	Success   bool                `json:"success"`
	Meetings  []*entities.Meeting `json:"meetings"`
	Count     int                 `json:"count"`
	Timestamp string              `json:"timestamp"`
	Source    string              `json:"source"`
}

// ReplaceRequest is the POST /v1/meetings body
type ReplaceRequest struct {
	Meetings []*entities.Meeting `json:"meetings"`
}

// ReplaceResponse is the POST /v1/meetings reply. Stored is the snapshot held
// after the request, unchanged when the payload was ignored.
type ReplaceResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Count   int                 `json:"count"`
	Stored  []*entities.Meeting `json:"stored"`
}
