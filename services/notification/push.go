package notification

import (
	"context"
	"fmt"
	"maps"

	"bookwell/models"

	"firebase.google.com/go/v4/messaging"
)

// MessageSender is the subset of *messaging.Client used for delivery.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushDispatcher sends FCM messages. Devices subscribe to the topic
// "<role>-<targetId>" so no token lookup is needed here.
type PushDispatcher struct {
	Client MessageSender
}

func (d *PushDispatcher) Deliver(ctx context.Context, event models.Event) error {
	if err := validate(event); err != nil {
		return err
	}
	if _, err := d.Client.Send(ctx, BuildPushMessage(event.ToDeliveryPayload())); err != nil {
		return fmt.Errorf("send %s to %s: %w", event.Kind, Topic(event.TargetRole, event.TargetID), err)
	}
	return nil
}

// Topic names the FCM topic for one recipient.
func Topic(role, targetID string) string {
	return role + "-" + targetID
}

// BuildPushMessage converts a queued payload into a high priority FCM message.
func BuildPushMessage(p models.DeliveryPayload) *messaging.Message {
	data := maps.Clone(p.Data)
	if data == nil {
		data = make(map[string]string)
	}
	data["eventId"] = p.EventID
	data["kind"] = p.Kind
	data["bookingId"] = p.BookingID
	data["role"] = p.TargetRole

	return &messaging.Message{
		Topic: Topic(p.TargetRole, p.TargetID),
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}
