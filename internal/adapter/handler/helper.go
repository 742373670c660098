package handler

import (
	stdErrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/errors"
	"github.com/johnquangdev/meeting-sync/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/usecase/ingestion"
)

// getRequestID reads X-Request-ID from the request, or the id generated by
// the RequestID middleware
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// toAppError classifies pipeline and domain errors
func toAppError(err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	var rej *ingestion.Rejection
	if stdErrors.As(err, &rej) {
		return errors.ErrRejectedPayload(errors.ErrorCode(rej.Reason), rej.Detail)
	}

	switch {
	case stdErrors.Is(err, entities.ErrAccountNotFound):
		return errors.ErrUnknownSender()
	case stdErrors.Is(err, entities.ErrLookupFailed):
		return errors.ErrResolverUnavailable(err)
	case stdErrors.Is(err, entities.ErrStoreUnavailable), stdErrors.Is(err, entities.ErrSnapshotUnavailable):
		return errors.ErrStorageUnavailable(err)
	}
	return errors.ErrInternal(err)
}

func retryable(code errors.ErrorCode) bool {
	switch code {
	case errors.ErrorCode_RESOLVER_UNAVAILABLE, errors.ErrorCode_STORAGE_UNAVAILABLE, errors.ErrorCode_REGISTRATION_FAILED:
		return true
	}
	return false
}

// HandleSuccess writes a success body using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, body interface{}) error {
	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}
	return c.JSON(http.StatusOK, body)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(err)

	if logger != nil {
		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Int("status", appErr.HTTPCode),
		}
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("http.response.error", append(fields, zap.Error(err))...)
		} else {
			logger.Warn("http.response.error", append(fields, zap.String("details", appErr.Message))...)
		}
	}

	details := appErr.Message
	if appErr.Raw != nil {
		details = details + ": " + appErr.Raw.Error()
	}
	body := common.ErrorResponse{
		Success:   false,
		Error:     appErr.Code.String(),
		Details:   details,
		Retryable: retryable(appErr.Code),
	}
	if appErr.Code == errors.ErrorCode_INTERNAL {
		body.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if appErr.Code == errors.ErrorCode_METHOD_NOT_ALLOWED {
		body.AllowedMethods = allowedFor(appErr)
	}
	return c.JSON(appErr.HTTPCode, body)
}

// methodNotAllowed builds a 405 that lists the allowed methods
func methodNotAllowed(c echo.Context, allowed ...string) error {
	joined := strings.Join(allowed, ", ")
	c.Response().Header().Set(echo.HeaderAllow, joined)
	return errors.ErrMethodNotAllowed(c.Request().Method).WithDetail("allowed", strings.Join(allowed, ","))
}

func allowedFor(appErr errors.AppError) []string {
	if appErr.Details == nil || appErr.Details["allowed"] == "" {
		return nil
	}
	return strings.Split(appErr.Details["allowed"], ",")
}
