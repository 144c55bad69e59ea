package ports

import (
	"context"

	"github.com/taskboard/task-manager/internal/core/domain"
)

// NotificationRepository handles notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	// FindUnread returns the recipient's unread notifications, newest first.
	FindUnread(ctx context.Context, recipient string) ([]*domain.Notification, error)
	// MarkRead sets the read flag. The recipient is never rewritten.
	MarkRead(ctx context.Context, id string) error
}
