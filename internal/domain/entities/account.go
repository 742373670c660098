package entities

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the webhook sync state of an account
type SyncStatus string

const (
	SyncStatusUnregistered SyncStatus = "unregistered"
	SyncStatusActive       SyncStatus = "active"
	SyncStatusFailed       SyncStatus = "failed"
)

// IsValid checks if the sync status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusUnregistered, SyncStatusActive, SyncStatusFailed:
		return true
	}
	return false
}

// RegistrationStatus is the state of the API key forwarding step
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationCompleted RegistrationStatus = "completed"
	RegistrationFailed    RegistrationStatus = "failed"
)

// Account is a tenant identified by an opaque id and a unique API key
type Account struct {
	AccountID string `json:"accountId" gorm:"column:account_id;type:varchar(128);primaryKey"`
	APIKey    string `json:"-" gorm:"column:api_key;type:varchar(255);uniqueIndex;not null"` // Never expose in JSON
	Email     string `json:"email,omitempty" gorm:"type:varchar(255)"`
	Name      string `json:"displayName,omitempty" gorm:"column:display_name;type:varchar(255)"`

	// Sync bookkeeping, written by the meeting store writer
	SyncStatus            SyncStatus `json:"syncStatus" gorm:"column:sync_status;type:varchar(32);default:'unregistered';not null"`
	LastSyncAt            *time.Time `json:"lastSyncAt,omitempty" gorm:"column:last_sync_at"`
	TotalMeetingsReceived int64      `json:"totalMeetingsReceived" gorm:"column:total_meetings_received;default:0;not null"`

	// Registration side-channel
	RegistrationStatus RegistrationStatus `json:"registrationStatus" gorm:"column:registration_status;type:varchar(32);default:'pending';not null"`
	RegistrationError  string             `json:"registrationError,omitempty" gorm:"column:registration_error;type:text"`
	WebhookRegistered  bool               `json:"webhookRegistered" gorm:"column:webhook_registered;default:false;not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates an account that has not received any webhook yet
func NewAccount(apiKey, email, name string) *Account {
	now := time.Now().UTC()
	return &Account{
		AccountID:          uuid.NewString(),
		APIKey:             apiKey,
		Email:              email,
		Name:               name,
		SyncStatus:         SyncStatusUnregistered,
		RegistrationStatus: RegistrationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Validate validates account data
func (a *Account) Validate() error {
	if a.AccountID == "" {
		return ErrInvalidAccountID
	}
	if a.APIKey == "" {
		return ErrMissingAPIKey
	}
	if !a.SyncStatus.IsValid() {
		return ErrInvalidSyncStatus
	}
	return nil
}

// SyncUpdate is the account-level bookkeeping applied after a batch write
type SyncUpdate struct {
	Status  SyncStatus
	At      time.Time
	Created int // records inserted for the first time by this batch
}
