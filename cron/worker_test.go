package cron

import (
	"context"
	"errors"
	"testing"

	"bookwell/models"
	"bookwell/services/tasks"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	got []*messaging.Message
	err error
}

func (s *stubSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	s.got = append(s.got, m)
	return "id", s.err
}

func deliveryTask(t *testing.T, p models.DeliveryPayload) *asynq.Task {
	t.Helper()
	task, _, err := tasks.NewDeliveryTask(p)
	require.NoError(t, err)
	return task
}

func TestHandleDeliveryTask(t *testing.T) {
	sender := &stubSender{}
	handler := HandleDeliveryTask(sender)

	err := handler(context.Background(), deliveryTask(t, models.DeliveryPayload{
		EventID:    "evt-1",
		TargetID:   "P1",
		TargetRole: models.RoleProvider,
		Kind:       string(models.EventCancelled),
		BookingID:  "b1",
		Title:      "Booking cancelled",
	}))
	require.NoError(t, err)
	require.Len(t, sender.got, 1)
	assert.Equal(t, "provider-P1", sender.got[0].Topic)
	assert.Equal(t, "cancelled", sender.got[0].Data["kind"])
}

func TestHandleDeliveryTask_SendFailureIsRetried(t *testing.T) {
	boom := errors.New("unavailable")
	handler := HandleDeliveryTask(&stubSender{err: boom})

	err := handler(context.Background(), deliveryTask(t, models.DeliveryPayload{
		EventID: "evt-1", TargetID: "C1", TargetRole: models.RoleClient, Kind: "reminder",
	}))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleDeliveryTask_BadPayloadSkipsRetry(t *testing.T) {
	sender := &stubSender{}
	handler := HandleDeliveryTask(sender)

	err := handler(context.Background(), asynq.NewTask(tasks.TypeDeliverNotification, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = handler(context.Background(), deliveryTask(t, models.DeliveryPayload{EventID: "evt-2", Kind: "reminder"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, sender.got)
}
