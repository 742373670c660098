package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *entities.Account) error

	// FindByID finds an account by id
	FindByID(ctx context.Context, accountID string) (*entities.Account, error)

	// FindByAPIKey runs the equality lookup on api_key. It returns the first
	// match in a deterministic order plus the total number of matches seen
	// (capped at 2), so callers can flag a uniqueness violation.
	FindByAPIKey(ctx context.Context, apiKey string) (*entities.Account, int, error)

	// RecordSync applies sync bookkeeping; Created is added atomically to
	// total_meetings_received.
	RecordSync(ctx context.Context, accountID string, update entities.SyncUpdate) error

	// UpdateRegistration records the outcome of the registration forwarding step
	UpdateRegistration(ctx context.Context, accountID string, status entities.RegistrationStatus, errMsg string) error
}
