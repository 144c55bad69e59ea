package domain

import (
	"errors"
	"time"
)

// EventNotification is the realtime event name pushed to an assignee.
const EventNotification = "notification"

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is a message addressed to a single recipient.
type Notification struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// RealtimeEvent is a named JSON payload delivered to a user-scoped channel.
type RealtimeEvent struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

// NotificationPayload is the body of a "notification" realtime event.
type NotificationPayload struct {
	Message string `json:"message"`
}
