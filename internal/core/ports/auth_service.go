package ports

import (
	"context"

	"github.com/taskboard/task-manager/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// AuthService covers registration, login and the user directory.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	ListUsers(ctx context.Context) ([]domain.UserRef, error)
}

// TokenService issues and verifies signed session tokens bound to a user id.
type TokenService interface {
	Issue(userID string) (string, error)
	// Verify checks signature and expiry and returns the subject user id.
	Verify(token string) (string, error)
}
