package handler

import (
	stdErrors "errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/errors"
	"github.com/johnquangdev/meeting-sync/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/domain/repositories"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-sync/internal/usecase/registration"
)

// Accounts exposes the registration side-channel to the authenticated account
type Accounts struct {
	registration *registration.Service
	accounts     repositories.AccountRepository
	logger       *zap.Logger
}

// NewAccounts creates a new accounts handler
func NewAccounts(registration *registration.Service, accounts repositories.AccountRepository, logger *zap.Logger) *Accounts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accounts{registration: registration, accounts: accounts, logger: logger}
}

// RetryRegistration re-runs the API key forwarding step
// @Summary      Retry registration
// @Description  Forwards the account's api key to the automation webhook again and records the outcome
// @Tags         Accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.SuccessResponse
// @Failure      401  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse
// @Failure      502  {object}  common.ErrorResponse
// @Router       /accounts/me/registration [post]
func (h *Accounts) RetryRegistration(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	ctx := c.Request().Context()
	if err := h.registration.Forward(ctx, accountID); err != nil {
		if stdErrors.Is(err, entities.ErrAccountNotFound) {
			return HandleError(h.logger, c, errors.ErrNotFound("account"))
		}
		return HandleError(h.logger, c, errors.ErrRegistrationFailed(err))
	}

	account, err := h.accounts.FindByID(ctx, accountID)
	if err != nil {
		if stdErrors.Is(err, entities.ErrAccountNotFound) {
			return HandleError(h.logger, c, errors.ErrNotFound("account"))
		}
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, common.SuccessResponse{
		Success: true,
		Message: "Registration forwarded",
		Data:    account,
	})
}
