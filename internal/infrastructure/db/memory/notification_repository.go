package memory

import (
	"context"
	"sort"

	"github.com/taskboard/task-manager/internal/core/domain"
)

type NotificationRepository struct {
	s *Store
}

func cloneNotification(n *domain.Notification) *domain.Notification {
	clone := *n
	return &clone
}

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	if err := validID(n.Recipient); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := cloneNotification(n)
	stored.ID = newID()
	r.s.notifications[stored.ID] = stored
	return cloneNotification(stored), nil
}

func (r *NotificationRepository) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return cloneNotification(n), nil
}

func (r *NotificationRepository) FindUnread(_ context.Context, recipient string) ([]*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Notification, 0)
	for _, n := range r.s.notifications {
		if n.Recipient == recipient && !n.Read {
			out = append(out, cloneNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}
