package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/domain/repositories"
)

// Resolver maps an API key to its owning account
type Resolver struct {
	accounts repositories.AccountRepository
	cache    *gocache.Cache
	timeout  time.Duration
	recorder Recorder
	logger   *zap.Logger
}

// NewResolver creates a resolver. A cacheTTL of zero disables the positive cache.
func NewResolver(accounts repositories.AccountRepository, timeout, cacheTTL time.Duration, recorder Recorder, logger *zap.Logger) *Resolver {
	r := &Resolver{
		accounts: accounts,
		timeout:  timeout,
		recorder: orNop(recorder),
		logger:   orNopLogger(logger),
	}
	if cacheTTL > 0 {
		r.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return r
}

// Resolve returns the account owning apiKey.
//
// Errors: entities.ErrAccountNotFound when no account matches (no account is
// ever created here); entities.ErrLookupFailed, wrapped, when the backend
// fails or the lookup exceeds its timeout.
func (r *Resolver) Resolve(ctx context.Context, apiKey string) (*entities.Account, error) {
	if apiKey == "" {
		return nil, entities.ErrAccountNotFound
	}

	cacheKey := hashKey(apiKey)
	if r.cache != nil {
		if v, ok := r.cache.Get(cacheKey); ok {
			return v.(*entities.Account), nil
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	account, matches, err := r.accounts.FindByAPIKey(lookupCtx, apiKey)
	if err != nil {
		if errors.Is(err, entities.ErrAccountNotFound) {
			return nil, entities.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", entities.ErrLookupFailed, err)
	}
	if account == nil {
		return nil, entities.ErrAccountNotFound
	}

	if matches > 1 {
		r.recorder.DuplicateAPIKey()
		r.logger.Error("api key matches more than one account, using first match",
			zap.String("account_id", account.AccountID),
			zap.Int("matches", matches),
			zap.Error(entities.ErrDuplicateAPIKey),
		)
	}

	if r.cache != nil {
		r.cache.SetDefault(cacheKey, account)
	}
	return account, nil
}

// Forget drops a cached resolution, e.g. after an account's key changes
func (r *Resolver) Forget(apiKey string) {
	if r.cache != nil {
		r.cache.Delete(hashKey(apiKey))
	}
}

func hashKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
