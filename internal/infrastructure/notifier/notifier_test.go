package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

func TestBroadcaster_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	first, cancelFirst := b.Subscribe(1)
	defer cancelFirst()
	second, cancelSecond := b.Subscribe(1)
	defer cancelSecond()

	require.NoError(t, b.Publish(context.Background(), entities.MeetingsSynced{EventID: "e1", AccountID: "A1"}))

	assert.Equal(t, "e1", (<-first).EventID)
	assert.Equal(t, "e1", (<-second).EventID)
}

func TestBroadcaster_DropsWhenFull(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()

	ch, cancel := b.Subscribe(1)
	defer cancel()

	require.NoError(t, b.Publish(context.Background(), entities.MeetingsSynced{EventID: "e1"}))
	require.NoError(t, b.Publish(context.Background(), entities.MeetingsSynced{EventID: "e2"}))

	assert.Equal(t, "e1", (<-ch).EventID)
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %s", e.EventID)
	default:
	}
}

func TestBroadcaster_CancelClosesChannel(t *testing.T) {
	b := NewBroadcaster(nil)
	ch, cancel := b.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	require.NoError(t, b.Publish(context.Background(), entities.MeetingsSynced{EventID: "e1"}))

	b.Close()
	late, _ := b.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}

type capturePublisher struct {
	msgs []*nats.Msg
	err  error
}

func (c *capturePublisher) PublishMsg(msg *nats.Msg) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestNATSNotifier_Publish(t *testing.T) {
	pub := &capturePublisher{}
	n := newNATSNotifier(pub, "meetings")

	event := entities.MeetingsSynced{EventID: "e1", AccountID: "A1", MeetingIDs: []string{"t1"}, Created: 1}
	require.NoError(t, n.Publish(context.Background(), event))

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, "meetings.synced", msg.Subject)
	assert.Equal(t, "e1", msg.Header.Get("Nats-Msg-Id"))
	assert.Equal(t, "A1", msg.Header.Get("Account-Id"))

	var decoded entities.MeetingsSynced
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, event, decoded)
}

func TestNATSNotifier_PublishError(t *testing.T) {
	n := newNATSNotifier(&capturePublisher{err: errors.New("closed")}, "meetings")
	assert.Error(t, n.Publish(context.Background(), entities.MeetingsSynced{EventID: "e1"}))
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "meetings.synced", SubjectFor("meetings"))
	assert.Equal(t, "acme.meetings.synced", SubjectFor("acme.meetings."))
	assert.Equal(t, "synced", SubjectFor(""))
	assert.Equal(t, "my_app.synced", SubjectFor("my app"))
}

func TestFanout_CallsEveryNotifier(t *testing.T) {
	b := NewBroadcaster(nil)
	defer b.Close()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	failing := newNATSNotifier(&capturePublisher{err: errors.New("closed")}, "meetings")
	err := Fanout{failing, b}.Publish(context.Background(), entities.MeetingsSynced{EventID: "e1"})
	assert.Error(t, err)
	assert.Equal(t, "e1", (<-ch).EventID)
}
