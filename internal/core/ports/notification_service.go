package ports

import (
	"context"

	"github.com/taskboard/task-manager/internal/core/domain"
)

// Notifier persists a notification and pushes it to the recipient's channel.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string) error
}

// Broadcaster delivers an event to every connection in a group. Delivery is
// fire-and-forget: implementations must not block and report no errors.
type Broadcaster interface {
	Broadcast(group string, event domain.RealtimeEvent)
}

// NotificationService is the read path for a user's notifications.
type NotificationService interface {
	ListUnread(ctx context.Context, actor *domain.User) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, actor *domain.User, id string) (*domain.Notification, error)
}
