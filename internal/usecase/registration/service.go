package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/domain/repositories"
)

// Forwarder hands an API key to the external automation platform
type Forwarder interface {
	Forward(ctx context.Context, apiKey string) error
}

// Recorder counts forwarding results
type Recorder interface {
	Registration(result string)
}

// Service runs the registration side-channel and records its status on the
// account. A forwarding failure never undoes the account itself.
type Service struct {
	accounts   repositories.AccountRepository
	forwarder  Forwarder
	retryable  func(error) bool
	maxElapsed time.Duration
	interval   time.Duration
	recorder   Recorder
	logger     *zap.Logger
}

// NewService creates a registration service. retryable decides which
// forwarding errors are worth another attempt; nil retries all of them.
func NewService(accounts repositories.AccountRepository, forwarder Forwarder, retryable func(error) bool, maxElapsed time.Duration, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retryable == nil {
		retryable = func(error) bool { return true }
	}
	return &Service{
		accounts:   accounts,
		forwarder:  forwarder,
		retryable:  retryable,
		maxElapsed: maxElapsed,
		interval:   time.Second,
		recorder:   recorder,
		logger:     logger,
	}
}

// CreateAccount stores a new account and then runs the forwarding step.
// The returned account reflects the registration outcome; a forwarding
// failure is logged and recorded, not returned.
func (s *Service) CreateAccount(ctx context.Context, apiKey, email, name string) (*entities.Account, error) {
	account := entities.NewAccount(apiKey, email, name)
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account created", zap.String("account_id", account.AccountID))

	if err := s.Forward(ctx, account.AccountID); err != nil {
		s.logger.Warn("registration forwarding failed, account kept",
			zap.String("account_id", account.AccountID),
			zap.Error(err),
		)
	}

	updated, err := s.accounts.FindByID(ctx, account.AccountID)
	if err != nil {
		return account, nil
	}
	return updated, nil
}

// Forward (re)sends the account's API key to the automation webhook with
// exponential backoff and records completed or failed on the account.
func (s *Service) Forward(ctx context.Context, accountID string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	attempts := 0
	operation := func() error {
		attempts++
		err := s.forwarder.Forward(ctx, account.APIKey)
		if err == nil {
			return nil
		}
		if errors.Is(err, entities.ErrRegistrationNotConfigured) || !s.retryable(err) {
			return backoff.Permanent(err)
		}
		s.logger.Debug("registration attempt failed",
			zap.String("account_id", accountID),
			zap.Int("attempt", attempts),
			zap.Error(err),
		)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.interval
	bo.MaxInterval = 10 * s.interval
	bo.MaxElapsedTime = s.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		// status is recorded even if the caller went away
		recordCtx := context.WithoutCancel(ctx)
		if uerr := s.accounts.UpdateRegistration(recordCtx, accountID, entities.RegistrationFailed, err.Error()); uerr != nil {
			s.logger.Error("failed to record registration failure",
				zap.String("account_id", accountID),
				zap.Error(uerr),
			)
		}
		s.record(entities.RegistrationFailed)
		return fmt.Errorf("registration forwarding failed after %d attempt(s): %w", attempts, err)
	}

	if err := s.accounts.UpdateRegistration(context.WithoutCancel(ctx), accountID, entities.RegistrationCompleted, ""); err != nil {
		return fmt.Errorf("failed to record registration: %w", err)
	}
	s.record(entities.RegistrationCompleted)
	s.logger.Info("registration forwarded",
		zap.String("account_id", accountID),
		zap.Int("attempts", attempts),
	)
	return nil
}

func (s *Service) record(status entities.RegistrationStatus) {
	if s.recorder != nil {
		s.recorder.Registration(string(status))
	}
}
