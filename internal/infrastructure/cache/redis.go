package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/pkg/config"
)

// NewRedisClient creates a Redis client and checks the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisSnapshotStore keeps per-account snapshots as one JSON value per key
type RedisSnapshotStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisSnapshotStore creates a snapshot store on top of client
func NewRedisSnapshotStore(client redis.Cmdable, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

// snapshotRecord carries the fields the Meeting JSON shape hides
type snapshotRecord struct {
	entities.Meeting
	AccountID string `json:"accountId"`
}

func snapshotKey(accountID string) string {
	return "meetings:snapshot:" + accountID
}

// Replace overwrites the account snapshot
func (s *RedisSnapshotStore) Replace(ctx context.Context, accountID string, meetings []*entities.Meeting) error {
	records := make([]snapshotRecord, 0, len(meetings))
	for _, m := range meetings {
		if m != nil {
			records = append(records, snapshotRecord{Meeting: *m, AccountID: m.AccountID})
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(accountID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Load returns the account snapshot, or nil when none is stored
func (s *RedisSnapshotStore) Load(ctx context.Context, accountID string) ([]*entities.Meeting, error) {
	data, err := s.client.Get(ctx, snapshotKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var records []snapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	out := make([]*entities.Meeting, 0, len(records))
	for i := range records {
		m := records[i].Meeting
		m.AccountID = records[i].AccountID
		out = append(out, &m)
	}
	return out, nil
}
