package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
	"github.com/johnquangdev/meeting-sync/internal/domain/repositories"
)

// FailedWrite names a meeting that could not be persisted
type FailedWrite struct {
	MeetingID string `json:"meetingId"`
	Error     string `json:"error"`
}

// WriteResult reports the per-record outcome of a batch
type WriteResult struct {
	Succeeded []string
	Failed    []FailedWrite
	Created   int

	// Written holds the persisted records in batch order, with CreatedAt as stored
	Written []*entities.Meeting
}

// Count is the number of meetings persisted by the batch
func (r *WriteResult) Count() int {
	return len(r.Succeeded)
}

// Partial reports whether some, but not all, records were persisted
func (r *WriteResult) Partial() bool {
	return len(r.Succeeded) > 0 && len(r.Failed) > 0
}

// Writer idempotently persists meeting batches and keeps account sync
// bookkeeping up to date.
type Writer struct {
	meetings    repositories.MeetingRepository
	accounts    repositories.AccountRepository
	timeout     time.Duration
	concurrency int
	now         func() time.Time
	recorder    Recorder
	logger      *zap.Logger
}

// NewWriter creates a writer
func NewWriter(meetings repositories.MeetingRepository, accounts repositories.AccountRepository, timeout time.Duration, concurrency int, recorder Recorder, logger *zap.Logger) *Writer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Writer{
		meetings:    meetings,
		accounts:    accounts,
		timeout:     timeout,
		concurrency: concurrency,
		now:         time.Now,
		recorder:    orNop(recorder),
		logger:      orNopLogger(logger),
	}
}

// Upsert writes every meeting under accountID, keyed by meeting id.
//
// The batch runs detached from ctx cancellation so a dropped connection never
// leaves a half-written, unreported batch; it is bounded by the writer timeout
// instead. When every record fails the account is marked failed and the
// error wraps entities.ErrStoreUnavailable. Otherwise the account is marked
// active and the result lists which ids succeeded and which failed.
func (w *Writer) Upsert(ctx context.Context, accountID string, meetings []*entities.Meeting) (*WriteResult, error) {
	batch := dedupe(meetings)
	result := &WriteResult{}
	if len(batch) == 0 {
		return result, nil
	}

	detached := context.WithoutCancel(ctx)
	writeCtx, cancel := context.WithTimeout(detached, w.timeout)
	defer cancel()

	now := w.now().UTC()
	type outcome struct {
		created bool
		err     error
	}
	outcomes := make([]outcome, len(batch))

	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup
	for i, m := range batch {
		m.AccountID = accountID
		m.CreatedAt = now
		m.UpdatedAt = now

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, m *entities.Meeting) {
			defer wg.Done()
			defer func() { <-sem }()
			created, err := w.meetings.Upsert(writeCtx, m)
			outcomes[i] = outcome{created: created, err: err}
		}(i, m)
	}
	wg.Wait()

	var firstErr error
	for i, o := range outcomes {
		id := batch[i].MeetingID
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
			}
			result.Failed = append(result.Failed, FailedWrite{MeetingID: id, Error: o.err.Error()})
			w.logger.Warn("meeting write failed",
				zap.String("account_id", accountID),
				zap.String("meeting_id", id),
				zap.Error(o.err),
			)
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		result.Written = append(result.Written, batch[i])
		if o.created {
			result.Created++
		}
	}
	w.recorder.MeetingsWritten(len(result.Succeeded), len(result.Failed))

	statusCtx, cancelStatus := context.WithTimeout(detached, w.timeout)
	defer cancelStatus()

	if len(result.Succeeded) == 0 {
		if err := w.accounts.RecordSync(statusCtx, accountID, entities.SyncUpdate{Status: entities.SyncStatusFailed, At: now}); err != nil {
			w.logger.Error("failed to record sync failure",
				zap.String("account_id", accountID),
				zap.Error(err),
			)
		}
		return result, fmt.Errorf("%w: all %d writes failed: %v", entities.ErrStoreUnavailable, len(batch), firstErr)
	}

	update := entities.SyncUpdate{Status: entities.SyncStatusActive, At: now, Created: result.Created}
	if err := w.accounts.RecordSync(statusCtx, accountID, update); err != nil {
		// meetings are already persisted; bookkeeping drift is tolerated
		w.logger.Error("failed to record sync status",
			zap.String("account_id", accountID),
			zap.Int("created", result.Created),
			zap.Error(err),
		)
	}

	return result, nil
}

// dedupe keeps one meeting per id; a later duplicate replaces the earlier
// one in its original position.
func dedupe(meetings []*entities.Meeting) []*entities.Meeting {
	index := make(map[string]int, len(meetings))
	out := make([]*entities.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m == nil {
			continue
		}
		if i, ok := index[m.MeetingID]; ok {
			out[i] = m
			continue
		}
		index[m.MeetingID] = len(out)
		out = append(out, m)
	}
	return out
}
