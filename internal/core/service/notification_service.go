package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/task-manager/internal/api/metrics"
	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

// NotificationDispatcher persists assignment notifications and pushes them to
// the recipient's realtime group.
type NotificationDispatcher struct {
	repo        ports.NotificationRepository
	broadcaster ports.Broadcaster
	log         zerolog.Logger
}

func NewNotificationDispatcher(repo ports.NotificationRepository, broadcaster ports.Broadcaster, log zerolog.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{repo: repo, broadcaster: broadcaster, log: log}
}

// Notify stores an unread notification for recipient and emits a
// "notification" event to the group named by recipient. The emit is
// fire-and-forget; only the persist step can fail.
func (d *NotificationDispatcher) Notify(ctx context.Context, recipient, message string) error {
	n, err := d.repo.Create(ctx, &domain.Notification{
		Recipient: recipient,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	metrics.NotificationsDispatchedTotal.Inc()

	d.broadcaster.Broadcast(recipient, domain.RealtimeEvent{
		Name:    domain.EventNotification,
		Payload: domain.NotificationPayload{Message: message},
	})

	d.log.Debug().
		Str("notification_id", n.ID).
		Str("recipient", recipient).
		Msg("notification dispatched")
	return nil
}

type notificationService struct {
	repo ports.NotificationRepository
}

// NewNotificationService returns the notification read path.
func NewNotificationService(repo ports.NotificationRepository) ports.NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListUnread(ctx context.Context, actor *domain.User) ([]*domain.Notification, error) {
	items, err := s.repo.FindUnread(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead flips the read flag of a notification owned by actor. Marking an
// already-read notification succeeds and leaves it read.
func (s *notificationService) MarkRead(ctx context.Context, actor *domain.User, id string) (*domain.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Recipient != actor.ID {
		return nil, domain.ErrForbidden
	}

	if err := s.repo.MarkRead(ctx, n.ID); err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.Read = true
	return n, nil
}
