package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

func newTestService(store *flakyStore, rec Recorder, opts ...Option) *Service {
	return NewService(
		NewPayloadValidator(true),
		NewResolver(store, time.Second, 0, rec, nil),
		NewWriter(store, store, time.Second, 4, rec, nil),
		rec, nil, opts...,
	)
}

func TestIngest_EndToEnd(t *testing.T) {
	store := newFlakyStore()
	account := seedAccount(t, store, "key-1")
	rec := &countingRecorder{}
	notifier := &capturingNotifier{}
	archiver := &capturingArchiver{}
	svc := newTestService(store, rec, WithNotifier(notifier), WithArchiver(archiver, time.Second))

	body := []byte(`{"body":{"apiKey":"key-1","transcripts":[
		{"id":"t1","title":"Weekly sync","date":"2025-07-19T15:20:00.000Z"},
		{"id":"t2","title":"Planning","date":"2025-07-18T10:00:00Z"}
	]}}`)

	res, err := svc.Ingest(context.Background(), body, "req-1")
	require.NoError(t, err)
	assert.Equal(t, account.AccountID, res.Account.AccountID)
	assert.Equal(t, 2, res.Write.Count())
	require.Len(t, res.Meetings, 2)
	assert.Equal(t, "2025-07-19", res.Meetings[0].Date)
	assert.Equal(t, []string{OutcomeProcessed}, rec.outcomes)

	stored, err := store.ListByAccount(context.Background(), account.AccountID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "t1", stored[0].MeetingID)
	assert.Equal(t, account.AccountID, stored[0].AccountID)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, account.AccountID, notifier.events[0].AccountID)
	assert.ElementsMatch(t, []string{"t1", "t2"}, notifier.events[0].MeetingIDs)
	assert.Equal(t, []string{account.AccountID + "/req-1"}, archiver.calls)

	// redelivery is a no-op on content and counters
	_, err = svc.Ingest(context.Background(), body, "req-2")
	require.NoError(t, err)
	got, err := store.FindByID(context.Background(), account.AccountID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.TotalMeetingsReceived)
}

func TestIngest_RejectionHasNoSideEffects(t *testing.T) {
	store := newFlakyStore()
	rec := &countingRecorder{}
	archiver := &capturingArchiver{}
	svc := newTestService(store, rec, WithArchiver(archiver, time.Second))

	_, err := svc.Ingest(context.Background(), []byte(`{"body":{"transcripts":[]}}`), "req")
	var rej *Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ReasonMissingAPIKey, rej.Reason)
	assert.EqualValues(t, 0, store.lookups.Load())
	assert.Empty(t, archiver.calls)
	assert.Equal(t, []string{OutcomeRejected}, rec.outcomes)
}

func TestIngest_UnknownSenderWritesNothing(t *testing.T) {
	store := newFlakyStore()
	seedAccount(t, store, "key-1")
	rec := &countingRecorder{}
	svc := newTestService(store, rec)

	_, err := svc.Ingest(context.Background(), []byte(`{"body":{"apiKey":"nope","transcripts":[{"id":"t1","title":"T","date":"2025-01-01"}]}}`), "req")
	assert.ErrorIs(t, err, entities.ErrAccountNotFound)
	assert.Equal(t, []string{OutcomeUnknown}, rec.outcomes)
	assert.Equal(t, 0, rec.succeeded+rec.failed)
}

func TestIngest_LookupFailure(t *testing.T) {
	store := newFlakyStore()
	store.lookupErr = errors.New("db down")
	svc := newTestService(store, nil)

	_, err := svc.Ingest(context.Background(), []byte(`{"body":{"apiKey":"k","transcripts":[]}}`), "req")
	assert.ErrorIs(t, err, entities.ErrLookupFailed)
}

func TestIngest_StoreFailure(t *testing.T) {
	store := newFlakyStore()
	store.failAll = true
	seedAccount(t, store, "k")
	notifier := &capturingNotifier{}
	svc := newTestService(store, nil, WithNotifier(notifier))

	_, err := svc.Ingest(context.Background(), []byte(`{"body":{"apiKey":"k","transcripts":[{"id":"t1","title":"T","date":"2025-01-01"}]}}`), "req")
	assert.ErrorIs(t, err, entities.ErrStoreUnavailable)
	assert.Empty(t, notifier.events)
}

func TestIngest_PartialWrite(t *testing.T) {
	store := newFlakyStore()
	store.failIDs["t2"] = true
	seedAccount(t, store, "k")
	rec := &countingRecorder{}
	notifier := &capturingNotifier{}
	svc := newTestService(store, rec, WithNotifier(notifier))

	res, err := svc.Ingest(context.Background(), []byte(`{"body":{"apiKey":"k","transcripts":[
		{"id":"t1","title":"A","date":"2025-01-01"},
		{"id":"t2","title":"B","date":"2025-01-02"}
	]}}`), "req")
	require.NoError(t, err)
	assert.True(t, res.Write.Partial())
	require.Len(t, res.Meetings, 1)
	assert.Equal(t, "t1", res.Meetings[0].MeetingID)
	assert.Equal(t, []string{OutcomePartial}, rec.outcomes)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, []string{"t2"}, notifier.events[0].Failed)
}

func TestIngest_NotifierFailureIsNotFatal(t *testing.T) {
	store := newFlakyStore()
	seedAccount(t, store, "k")
	svc := newTestService(store, nil, WithNotifier(&capturingNotifier{err: errors.New("broker down")}))

	res, err := svc.Ingest(context.Background(), []byte(`{"body":{"apiKey":"k","transcripts":[{"id":"t1","title":"A","date":"2025-01-01"}]}}`), "req")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Write.Count())
}

func TestIngest_EmptyListDoesNotTouchAccount(t *testing.T) {
	store := newFlakyStore()
	account := seedAccount(t, store, "k")
	notifier := &capturingNotifier{}
	svc := newTestService(store, nil, WithNotifier(notifier))

	res, err := svc.Ingest(context.Background(), []byte(`{"body":{"apiKey":"k","transcripts":[]}}`), "req")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Write.Count())
	assert.Empty(t, notifier.events)

	got, err := store.FindByID(context.Background(), account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncStatusUnregistered, got.SyncStatus)
}
