package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// SyncedSubjectSuffix is appended to the configured prefix
const SyncedSubjectSuffix = "synced"

// Connect dials NATS with reconnect handling logged through zap
func Connect(url string, logger *zap.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(
		url,
		nats.Name("meeting-sync"),
		nats.DrainTimeout(10*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				logger.Error("async NATS error", zap.String("subject", s.Subject), zap.Error(err))
				return
			}
			logger.Error("async NATS error outside subscription", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// msgPublisher is the subset of *nats.Conn used for publishing
type msgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NATSNotifier publishes sync events to <prefix>.synced
type NATSNotifier struct {
	conn    msgPublisher
	subject string
}

// NewNATSNotifier creates a notifier on top of an open connection
func NewNATSNotifier(conn *nats.Conn, prefix string) *NATSNotifier {
	return newNATSNotifier(conn, prefix)
}

func newNATSNotifier(conn msgPublisher, prefix string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: SubjectFor(prefix)}
}

// SubjectFor builds the sync subject, sanitizing characters that NATS treats specially
func SubjectFor(prefix string) string {
	prefix = strings.NewReplacer(" ", "_", "*", "_", ">", "_").Replace(strings.Trim(prefix, "."))
	if prefix == "" {
		return SyncedSubjectSuffix
	}
	return prefix + "." + SyncedSubjectSuffix
}

// Publish sends the event. The event id doubles as the JetStream
// deduplication id for streams capturing the subject.
func (n *NATSNotifier) Publish(_ context.Context, event entities.MeetingsSynced) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := &nats.Msg{
		Subject: n.subject,
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Nats-Msg-Id", event.EventID)
	msg.Header.Set("Account-Id", event.AccountID)

	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish to NATS subject %s: %w", n.subject, err)
	}
	return nil
}

// Fanout publishes to several notifiers, returning the first error
type Fanout []interface {
	Publish(ctx context.Context, event entities.MeetingsSynced) error
}

// Publish calls every notifier even if one fails
func (f Fanout) Publish(ctx context.Context, event entities.MeetingsSynced) error {
	var first error
	for _, n := range f {
		if err := n.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
