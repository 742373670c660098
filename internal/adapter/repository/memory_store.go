package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// MemoryStore keeps accounts and meetings in process. It satisfies both the
// account and meeting repository interfaces and is used when no database is
// configured, and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts []*entities.Account // insertion order
	meetings map[string]map[string]*entities.Meeting
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		meetings: make(map[string]map[string]*entities.Meeting),
	}
}

// Create stores a new account. It does not enforce api key uniqueness so
// duplicate detection can be exercised; use the database for that guarantee.
func (s *MemoryStore) Create(ctx context.Context, account *entities.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.AccountID == account.AccountID {
			return entities.ErrAccountExists
		}
	}
	c := *account
	s.accounts = append(s.accounts, &c)
	return nil
}

// FindByID finds an account by id
func (s *MemoryStore) FindByID(ctx context.Context, accountID string) (*entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.AccountID == accountID {
			c := *a
			return &c, nil
		}
	}
	return nil, entities.ErrAccountNotFound
}

// FindByAPIKey returns the earliest account holding apiKey
func (s *MemoryStore) FindByAPIKey(ctx context.Context, apiKey string) (*entities.Account, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *entities.Account
	matches := 0
	for _, a := range s.accounts {
		if a.APIKey != apiKey {
			continue
		}
		matches++
		if first == nil {
			first = a
		}
		if matches == 2 {
			break
		}
	}
	if first == nil {
		return nil, 0, entities.ErrAccountNotFound
	}
	c := *first
	return &c, matches, nil
}

// RecordSync applies sync bookkeeping under the store lock
func (s *MemoryStore) RecordSync(ctx context.Context, accountID string, update entities.SyncUpdate) error {
	if !update.Status.IsValid() {
		return entities.ErrInvalidSyncStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(accountID)
	if a == nil {
		return entities.ErrAccountNotFound
	}
	a.SyncStatus = update.Status
	a.UpdatedAt = time.Now().UTC()
	if update.Status == entities.SyncStatusActive {
		at := update.At
		a.LastSyncAt = &at
		a.TotalMeetingsReceived += int64(update.Created)
	}
	return nil
}

// UpdateRegistration records the registration forwarding outcome
func (s *MemoryStore) UpdateRegistration(ctx context.Context, accountID string, status entities.RegistrationStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(accountID)
	if a == nil {
		return entities.ErrAccountNotFound
	}
	a.RegistrationStatus = status
	a.RegistrationError = errMsg
	a.WebhookRegistered = status == entities.RegistrationCompleted
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Upsert inserts or replaces a meeting, preserving CreatedAt of an existing row
func (s *MemoryStore) Upsert(ctx context.Context, meeting *entities.Meeting) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.meetings[meeting.AccountID]
	if !ok {
		byID = make(map[string]*entities.Meeting)
		s.meetings[meeting.AccountID] = byID
	}
	c := *meeting
	existing, found := byID[meeting.MeetingID]
	if found {
		c.CreatedAt = existing.CreatedAt
		meeting.CreatedAt = existing.CreatedAt
	}
	byID[meeting.MeetingID] = &c
	return !found, nil
}

// ListByAccount returns copies of the account's meetings, newest date first
func (s *MemoryStore) ListByAccount(ctx context.Context, accountID string) ([]*entities.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Meeting, 0, len(s.meetings[accountID]))
	for _, m := range s.meetings[accountID] {
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].MeetingID < out[j].MeetingID
	})
	return out, nil
}

// Count returns the number of stored meetings for an account
func (s *MemoryStore) Count(ctx context.Context, accountID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.meetings[accountID])), nil
}

func (s *MemoryStore) account(accountID string) *entities.Account {
	for _, a := range s.accounts {
		if a.AccountID == accountID {
			return a
		}
	}
	return nil
}
