package ports

import (
	"context"

	"github.com/taskboard/task-manager/internal/core/domain"
)

// UserRepository defines the interface for the identity store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns the user without its password hash.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindRefs returns the public projection of every listed user that exists,
	// keyed by id. Unknown ids are silently absent from the result.
	FindRefs(ctx context.Context, ids []string) (map[string]domain.UserRef, error)
	ListRefs(ctx context.Context) ([]domain.UserRef, error)
}
