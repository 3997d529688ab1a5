package models

import "time"

// EventKind classifies outbound notifications.
type EventKind string

const (
	EventReminder  EventKind = "reminder"
	EventConfirmed EventKind = "confirmed"
	EventCancelled EventKind = "cancelled"
	EventCompleted EventKind = "completed"
	EventNoShow    EventKind = "no_show"
)

// Roles a notification can target.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
)

// Event is what the notification dispatcher delivers.
type Event struct {
	ID         string            `json:"id"`
	TargetID   string            `json:"targetId"`
	TargetRole string            `json:"targetRole"`
	Kind       EventKind         `json:"kind"`
	BookingID  string            `json:"bookingId"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Payload    map[string]string `json:"payload,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}
