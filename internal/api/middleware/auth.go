package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/task-manager/internal/api/metrics"
	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextUser   = "user"
	ContextUserID = "user_id"
	ContextRole   = "role"
)

const (
	msgNoToken      = "not authorized, no token"
	msgTokenFailed  = "not authorized, token failed"
	msgUserNotFound = "user not found"
)

// Auth validates the bearer token, loads the user it names and injects it
// into the request context.
//
// Every failure after the header check is reported as "token failed",
// including store errors during the user lookup, except a user that no
// longer exists which is reported as 404.
func Auth(tokens ports.TokenService, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues("no_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, msgNoToken)
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("token_failed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, msgTokenFailed)
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.AuthFailuresTotal.WithLabelValues("user_not_found").Inc()
					return echo.NewHTTPError(http.StatusNotFound, msgUserNotFound)
				}
				metrics.AuthFailuresTotal.WithLabelValues("token_failed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, msgTokenFailed)
			}

			c.Set(ContextUser, user)
			c.Set(ContextUserID, user.ID)
			c.Set(ContextRole, user.Role)

			return next(c)
		}
	}
}

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>".
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
