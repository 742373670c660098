package entities

import "errors"

// Domain errors
var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInvalidAccountID  = errors.New("invalid account id")
	ErrMissingAPIKey     = errors.New("missing api key")
	ErrInvalidSyncStatus = errors.New("invalid sync status")
	ErrDuplicateAPIKey   = errors.New("api key matches more than one account")

	// Upstream errors, safe to retry
	ErrLookupFailed        = errors.New("account lookup failed")
	ErrStoreUnavailable    = errors.New("meeting store unavailable")
	ErrSnapshotUnavailable = errors.New("snapshot store unavailable")

	// Registration errors
	ErrRegistrationNotConfigured = errors.New("registration automation url not configured")
)
