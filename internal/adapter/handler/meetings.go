package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/errors"
	"github.com/johnquangdev/meeting-sync/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-sync/internal/usecase/meetings"
)

// Meetings serves the client read/query endpoint
type Meetings struct {
	service *meetings.Service
	logger  *zap.Logger
}

// NewMeetings creates a new meetings handler
func NewMeetings(service *meetings.Service, logger *zap.Logger) *Meetings {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Meetings{service: service, logger: logger}
}

// Meetings dispatches on method
func (h *Meetings) Meetings(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodGet:
		return h.List(c)
	case http.MethodPost:
		return h.Replace(c)
	}
	return HandleError(h.logger, c, methodNotAllowed(c, http.MethodGet, http.MethodPost))
}

// List returns the authenticated account's meetings, newest first
// @Summary      List meetings
// @Description  Lists the account's meetings; falls back to a placeholder set when there is no live data
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meeting.ListResponse
// @Failure      401  {object}  common.ErrorResponse
// @Router       /meetings [get]
func (h *Meetings) List(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	listing := h.service.List(c.Request().Context(), accountID)
	return HandleSuccess(h.logger, c, meeting.ListResponse{
		Success:   true,
		Meetings:  listing.Meetings,
		Count:     len(listing.Meetings),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    listing.Source,
	})
}

// Replace overwrites the account's meeting snapshot. An unreadable body is
// logged and ignored: the reply is still a success carrying the snapshot
// that was already held.
// @Summary      Replace meeting snapshot
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      meeting.ReplaceRequest  true  "meetings"
// @Success      200      {object}  meeting.ReplaceResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Router       /meetings [post]
func (h *Meetings) Replace(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	ctx := c.Request().Context()
	log := h.logger.With(
		zap.String("request_id", getRequestID(c)),
		zap.String("account_id", accountID),
	)

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Warn("failed to read meetings payload", zap.Error(err))
		return h.unchanged(c, accountID)
	}
	var req meeting.ReplaceRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.Meetings == nil {
		log.Warn("invalid meetings payload", zap.Error(err), zap.Int("bytes", len(raw)))
		return h.unchanged(c, accountID)
	}

	valid := make([]*entities.Meeting, 0, len(req.Meetings))
	for i, m := range req.Meetings {
		if m == nil || strings.TrimSpace(m.MeetingID) == "" {
			log.Warn("dropping meeting without id", zap.Int("index", i))
			continue
		}
		valid = append(valid, m)
	}

	if err := h.service.Replace(ctx, accountID, valid); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, meeting.ReplaceResponse{
		Success: true,
		Message: "Meetings stored",
		Count:   len(valid),
		Stored:  valid,
	})
}

// unchanged replies to an ignored payload with the snapshot already held
func (h *Meetings) unchanged(c echo.Context, accountID string) error {
	current, err := h.service.Snapshot(c.Request().Context(), accountID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meeting.ReplaceResponse{
		Success: true,
		Message: "Invalid payload ignored, meetings unchanged",
		Count:   len(current),
		Stored:  current,
	})
}
