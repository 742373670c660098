package ingestion

import (
	"context"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// Recorder receives pipeline counters
type Recorder interface {
	Outcome(outcome string)
	MeetingsWritten(succeeded, failed int)
	DuplicateAPIKey()
}

// Notifier publishes a sync event after a batch has been written
type Notifier interface {
	Publish(ctx context.Context, event entities.MeetingsSynced) error
}

// Archiver keeps a copy of accepted raw payloads
type Archiver interface {
	Archive(ctx context.Context, accountID, requestID string, raw []byte) error
}

type nopRecorder struct{}

func (nopRecorder) Outcome(string)           {}
func (nopRecorder) MeetingsWritten(int, int) {}
func (nopRecorder) DuplicateAPIKey()         {}

func orNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func orNopLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
