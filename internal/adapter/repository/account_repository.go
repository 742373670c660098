package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// AccountRepository implements the account repository interface using GORM
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindByID finds an account by id
func (r *AccountRepository) FindByID(ctx context.Context, accountID string) (*entities.Account, error) {
	var account entities.Account
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by id: %w", err)
	}
	return &account, nil
}

// FindByAPIKey finds the account owning apiKey. Ordering by created_at keeps
// the first match stable if the unique index was ever bypassed.
func (r *AccountRepository) FindByAPIKey(ctx context.Context, apiKey string) (*entities.Account, int, error) {
	var accounts []*entities.Account
	if err := r.db.WithContext(ctx).
		Where("api_key = ?", apiKey).
		Order("created_at ASC, account_id ASC").
		Limit(2).
		Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find account by api key: %w", err)
	}
	if len(accounts) == 0 {
		return nil, 0, entities.ErrAccountNotFound
	}
	return accounts[0], len(accounts), nil
}

// RecordSync updates sync status; on success last_sync_at moves forward and
// the created count is added in the same statement.
func (r *AccountRepository) RecordSync(ctx context.Context, accountID string, update entities.SyncUpdate) error {
	if !update.Status.IsValid() {
		return entities.ErrInvalidSyncStatus
	}

	updates := map[string]interface{}{
		"sync_status": update.Status,
		"updated_at":  time.Now().UTC(),
	}
	if update.Status == entities.SyncStatusActive {
		updates["last_sync_at"] = update.At
		if update.Created > 0 {
			updates["total_meetings_received"] = gorm.Expr("total_meetings_received + ?", update.Created)
		}
	}

	res := r.db.WithContext(ctx).
		Model(&entities.Account{}).
		Where("account_id = ?", accountID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to record sync: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrAccountNotFound
	}
	return nil
}

// UpdateRegistration records the registration forwarding outcome
func (r *AccountRepository) UpdateRegistration(ctx context.Context, accountID string, status entities.RegistrationStatus, errMsg string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Account{}).
		Where("account_id = ?", accountID).
		Updates(map[string]interface{}{
			"registration_status": status,
			"registration_error":  errMsg,
			"webhook_registered":  status == entities.RegistrationCompleted,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update registration: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.ErrAccountNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
