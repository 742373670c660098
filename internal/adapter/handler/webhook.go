package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/errors"
	"github.com/johnquangdev/meeting-sync/internal/adapter/dto/webhook"
	"github.com/johnquangdev/meeting-sync/internal/usecase/ingestion"
)

// Webhook is the ingestion gateway for transcript provider events
type Webhook struct {
	ingestion *ingestion.Service
	logger    *zap.Logger
}

// NewWebhook creates a new webhook handler
func NewWebhook(ingestion *ingestion.Service, logger *zap.Logger) *Webhook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{
		ingestion: ingestion,
		logger:    logger,
	}
}

// Transcripts dispatches on method: POST ingests, anything else is rejected
func (h *Webhook) Transcripts(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return HandleError(h.logger, c, methodNotAllowed(c, http.MethodPost))
	}
	return h.Receive(c)
}

// Receive ingests one transcript batch
// @Summary      Transcript webhook
// @Description  Receives transcripts from the transcription provider, resolves the sender by api key and upserts one meeting per transcript
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        payload  body      object  true  "{ body: { apiKey, transcripts: [{id, title, date}] } }"
// @Success      200      {object}  webhook.ProcessedResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Failure      405      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Failure      502      {object}  common.ErrorResponse
// @Router       /webhooks/transcripts [post]
func (h *Webhook) Receive(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// BodyLimit surfaces as an echo.HTTPError
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return HandleError(h.logger, c, errors.ErrRejectedPayload(errors.ErrorCode_MALFORMED_JSON, "failed to read request body"))
	}

	res, err := h.ingestion.Ingest(c.Request().Context(), raw, getRequestID(c))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, webhook.NewProcessedResponse(res, res.Timestamp.Format(time.RFC3339)))
}
