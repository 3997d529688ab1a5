package models

// DeliveryPayload is the queued form of an Event, consumed by the delivery worker.
type DeliveryPayload struct {
	EventID    string            `json:"eventId"`
	TargetID   string            `json:"targetId"`
	TargetRole string            `json:"targetRole"` // "client" or "provider"
	Kind       string            `json:"kind"`
	BookingID  string            `json:"bookingId"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
}

// ToDeliveryPayload flattens an event for queueing.
func (e Event) ToDeliveryPayload() DeliveryPayload {
	return DeliveryPayload{
		EventID:    e.ID,
		TargetID:   e.TargetID,
		TargetRole: e.TargetRole,
		Kind:       string(e.Kind),
		BookingID:  e.BookingID,
		Title:      e.Title,
		Body:       e.Body,
		Data:       e.Payload,
	}
}
