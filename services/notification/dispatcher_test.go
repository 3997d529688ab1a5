package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookwell/models"
	"bookwell/services/tasks"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleEvent() models.Event {
	return models.Event{
		ID:         "evt-1",
		TargetID:   "C1",
		TargetRole: models.RoleClient,
		Kind:       models.EventReminder,
		BookingID:  "b1",
		Title:      "Upcoming booking",
		Body:       "Reminder",
		Payload:    map[string]string{"providerId": "P"},
		CreatedAt:  time.Date(2025, 1, 9, 14, 0, 0, 0, time.UTC),
	}
}

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, m)
	return "projects/test/messages/1", nil
}

func TestPushDispatcher(t *testing.T) {
	sender := &fakeSender{}
	d := &PushDispatcher{Client: sender}

	require.NoError(t, d.Deliver(context.Background(), sampleEvent()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "client-C1", msg.Topic)
	assert.Equal(t, "Upcoming booking", msg.Notification.Title)
	assert.Equal(t, map[string]string{
		"providerId": "P",
		"eventId":    "evt-1",
		"kind":       "reminder",
		"bookingId":  "b1",
		"role":       "client",
	}, msg.Data)
	assert.Equal(t, "high", msg.Android.Priority)
}

func TestPushDispatcher_DoesNotMutateEventPayload(t *testing.T) {
	event := sampleEvent()
	d := &PushDispatcher{Client: &fakeSender{}}

	require.NoError(t, d.Deliver(context.Background(), event))
	assert.Equal(t, map[string]string{"providerId": "P"}, event.Payload)
}

func TestPushDispatcher_SendError(t *testing.T) {
	boom := errors.New("quota exceeded")
	d := &PushDispatcher{Client: &fakeSender{err: boom}}

	err := d.Deliver(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "client-C1")
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func TestQueueDispatcher(t *testing.T) {
	q := &mockEnqueuer{}
	q.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		if task.Type() != tasks.TypeDeliverNotification {
			return false
		}
		p, err := tasks.ParseDeliveryTask(task)
		return err == nil && p.EventID == "evt-1" && p.TargetID == "C1" && p.Kind == "reminder"
	}), mock.MatchedBy(func(opts []asynq.Option) bool {
		for _, o := range opts {
			if o.Type() == asynq.TaskIDOpt {
				return o.Value() == "evt-1"
			}
		}
		return false
	})).Return(&asynq.TaskInfo{ID: "evt-1"}, nil).Once()

	d := &QueueDispatcher{Client: q}
	require.NoError(t, d.Deliver(context.Background(), sampleEvent()))
	q.AssertExpectations(t)
}

func TestQueueDispatcher_DuplicateEnqueueIsDelivered(t *testing.T) {
	q := &mockEnqueuer{}
	q.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, asynq.ErrTaskIDConflict)

	d := &QueueDispatcher{Client: q}
	assert.NoError(t, d.Deliver(context.Background(), sampleEvent()))
}

func TestQueueDispatcher_EnqueueError(t *testing.T) {
	q := &mockEnqueuer{}
	q.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))

	d := &QueueDispatcher{Client: q}
	assert.Error(t, d.Deliver(context.Background(), sampleEvent()))
}

type capturePublisher struct {
	key string
	v   any
}

func (p *capturePublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.key, p.v = key, v
	return nil
}

func TestBrokerDispatcher(t *testing.T) {
	pub := &capturePublisher{}
	d := &BrokerDispatcher{Publisher: pub}

	event := sampleEvent()
	event.Kind = models.EventNoShow
	require.NoError(t, d.Deliver(context.Background(), event))

	assert.Equal(t, "booking.no_show", pub.key)
	assert.Equal(t, event, pub.v)
}

func TestDispatchers_RejectMissingTarget(t *testing.T) {
	event := sampleEvent()
	event.TargetID = ""

	dispatchers := map[string]Dispatcher{
		"push":   &PushDispatcher{Client: &fakeSender{}},
		"queue":  &QueueDispatcher{Client: &mockEnqueuer{}},
		"broker": &BrokerDispatcher{Publisher: &capturePublisher{}},
		"log":    LogDispatcher{Logger: zap.NewNop()},
	}
	for name, d := range dispatchers {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, d.Deliver(context.Background(), event), ErrNoTarget)
		})
	}
}

func TestLogDispatcher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	d := LogDispatcher{Logger: zap.New(core)}

	require.NoError(t, d.Deliver(context.Background(), sampleEvent()))
	entries := logs.FilterMessage("notification").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "client:C1", entries[0].ContextMap()["target"])
}

func TestDispatcherFunc(t *testing.T) {
	var got models.Event
	d := DispatcherFunc(func(_ context.Context, e models.Event) error {
		got = e
		return nil
	})
	require.NoError(t, d.Deliver(context.Background(), sampleEvent()))
	assert.Equal(t, "evt-1", got.ID)
}
