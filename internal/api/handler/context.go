package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/task-manager/internal/api/middleware"
	"github.com/taskboard/task-manager/internal/core/domain"
)

// currentUser returns the user injected by the Auth middleware. A missing
// user means the route was mounted without the middleware; reject with 401
// rather than let a service run without an actor.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.ContextUser).(*domain.User)
	if user == nil || user.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authorized, no token")
	}
	return user, nil
}

// bindAndValidate binds the request body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

const (
	dateOnly       = "2006-01-02"
	dateFormatHint = " must be an RFC 3339 timestamp or YYYY-MM-DD date"
)

func parseDateValue(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, dateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date. An
// empty value yields nil.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, ok := parseDateValue(value)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+dateFormatHint)
	}
	return &t, nil
}
