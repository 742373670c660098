package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// Outcome labels used for metrics and logs
const (
	OutcomeProcessed   = "processed"
	OutcomePartial     = "partial"
	OutcomeRejected    = "rejected"
	OutcomeUnknown     = "unknown_sender"
	OutcomeLookupError = "resolver_unavailable"
	OutcomeStoreError  = "storage_unavailable"
)

// Result is the outcome of one successfully written (fully or partially) event
type Result struct {
	Account   *entities.Account
	Meetings  []*entities.Meeting
	Write     *WriteResult
	Timestamp time.Time
}

// Service runs the webhook pipeline: validate, resolve, transform, write.
// It holds no per-request state.
type Service struct {
	validator      *PayloadValidator
	resolver       *Resolver
	writer         *Writer
	notifier       Notifier
	archiver       Archiver
	archiveTimeout time.Duration
	recorder       Recorder
	logger         *zap.Logger
}

// Option configures optional pipeline collaborators
type Option func(*Service)

// WithNotifier publishes a MeetingsSynced event after each written batch
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithArchiver archives raw payloads of resolved senders
func WithArchiver(a Archiver, timeout time.Duration) Option {
	return func(s *Service) {
		s.archiver = a
		s.archiveTimeout = timeout
	}
}

// NewService constructs the ingestion pipeline
func NewService(validator *PayloadValidator, resolver *Resolver, writer *Writer, recorder Recorder, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		validator:      validator,
		resolver:       resolver,
		writer:         writer,
		archiveTimeout: 5 * time.Second,
		recorder:       orNop(recorder),
		logger:         orNopLogger(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest processes one raw webhook body.
//
// Errors are one of: *Rejection (bad input), entities.ErrAccountNotFound,
// entities.ErrLookupFailed or entities.ErrStoreUnavailable (wrapped). A
// partial write is not an error; check Result.Write.Partial().
func (s *Service) Ingest(ctx context.Context, raw []byte, requestID string) (*Result, error) {
	log := s.logger.With(zap.String("request_id", requestID))

	event, rejection := s.validator.Validate(raw)
	if rejection != nil {
		s.recorder.Outcome(OutcomeRejected)
		log.Warn("webhook payload rejected",
			zap.String("reason", string(rejection.Reason)),
			zap.Int("index", rejection.Index),
			zap.String("details", rejection.Detail),
		)
		return nil, rejection
	}
	if event.LegacyKey {
		log.Warn("webhook used deprecated credential field FireFlies_API_KEY")
	}
	log.Info("webhook payload accepted",
		zap.String("api_key", "provided"),
		zap.Int("count", len(event.Transcripts)),
	)

	account, err := s.resolver.Resolve(ctx, event.APIKey)
	if err != nil {
		if errors.Is(err, entities.ErrAccountNotFound) {
			s.recorder.Outcome(OutcomeUnknown)
			log.Warn("no account for api key")
		} else {
			s.recorder.Outcome(OutcomeLookupError)
			log.Error("account lookup failed", zap.Error(err))
		}
		return nil, err
	}
	log = log.With(zap.String("account_id", account.AccountID))

	meetings := Transform(event.Transcripts)

	write, err := s.writer.Upsert(ctx, account.AccountID, meetings)
	s.archive(ctx, log, account.AccountID, requestID, raw)
	if err != nil {
		s.recorder.Outcome(OutcomeStoreError)
		log.Error("meeting batch failed", zap.Error(err))
		return nil, err
	}

	if write.Partial() {
		s.recorder.Outcome(OutcomePartial)
		log.Warn("meeting batch partially written",
			zap.Int("succeeded", len(write.Succeeded)),
			zap.Int("failed", len(write.Failed)),
		)
	} else {
		s.recorder.Outcome(OutcomeProcessed)
		log.Info("meeting batch written",
			zap.Int("count", write.Count()),
			zap.Int("created", write.Created),
		)
	}

	now := time.Now().UTC()
	s.notify(ctx, log, account.AccountID, write, now)

	return &Result{
		Account:   account,
		Meetings:  write.Written,
		Write:     write,
		Timestamp: now,
	}, nil
}

func (s *Service) notify(ctx context.Context, log *zap.Logger, accountID string, write *WriteResult, now time.Time) {
	if s.notifier == nil || write.Count() == 0 {
		return
	}
	event := entities.MeetingsSynced{
		EventID:    uuid.NewString(),
		AccountID:  accountID,
		MeetingIDs: write.Succeeded,
		Created:    write.Created,
		Timestamp:  now.Format(time.RFC3339),
	}
	for _, f := range write.Failed {
		event.Failed = append(event.Failed, f.MeetingID)
	}
	if err := s.notifier.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("failed to publish sync event", zap.Error(err))
	}
}

func (s *Service) archive(ctx context.Context, log *zap.Logger, accountID, requestID string, raw []byte) {
	if s.archiver == nil {
		return
	}
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.archiveTimeout)
	defer cancel()
	if err := s.archiver.Archive(archiveCtx, accountID, requestID, raw); err != nil {
		log.Warn("failed to archive webhook payload", zap.Error(err))
	}
}
