package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/task-manager/internal/core/domain"
)

type stubTokens struct {
	userID string
	err    error
}

func (s stubTokens) Issue(string) (string, error) { return "", nil }
func (s stubTokens) Verify(string) (string, error) {
	return s.userID, s.err
}

type stubUsers struct {
	user *domain.User
	err  error
}

func (s stubUsers) Create(context.Context, *domain.User) (*domain.User, error) { return nil, nil }
func (s stubUsers) FindByEmail(context.Context, string) (*domain.User, error)   { return nil, nil }
func (s stubUsers) FindByID(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}
func (s stubUsers) FindRefs(context.Context, []string) (map[string]domain.UserRef, error) {
	return nil, nil
}
func (s stubUsers) ListRefs(context.Context) ([]domain.UserRef, error) { return nil, nil }

func runAuth(t *testing.T, header string, tokens stubTokens, users stubUsers) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := Auth(tokens, users)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func expectHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d", code, he.Code)
	}
	if he.Message != msg {
		t.Fatalf("expected message %q, got %v", msg, he.Message)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleManager}

	c, called, err := runAuth(t, "Bearer good", stubTokens{userID: "u1"}, stubUsers{user: user})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if c.Get(ContextUser) != user {
		t.Fatalf("user not set")
	}
	if c.Get(ContextUserID) != "u1" {
		t.Fatalf("user_id not set")
	}
	if c.Get(ContextRole) != domain.RoleManager {
		t.Fatalf("role not set")
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	_, called, err := runAuth(t, "", stubTokens{}, stubUsers{})
	if called {
		t.Fatalf("should not reach next")
	}
	expectHTTPError(t, err, http.StatusUnauthorized, "not authorized, no token")
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer   "} {
		_, _, err := runAuth(t, header, stubTokens{}, stubUsers{})
		expectHTTPError(t, err, http.StatusUnauthorized, "not authorized, no token")
	}
}

func TestAuthMiddleware_VerifyFailure(t *testing.T) {
	_, called, err := runAuth(t, "Bearer bad", stubTokens{err: errors.New("signature is invalid")}, stubUsers{})
	if called {
		t.Fatalf("should not reach next")
	}
	expectHTTPError(t, err, http.StatusUnauthorized, "not authorized, token failed")
}

func TestAuthMiddleware_UserGone(t *testing.T) {
	_, _, err := runAuth(t, "Bearer good", stubTokens{userID: "u1"}, stubUsers{err: domain.ErrUserNotFound})
	expectHTTPError(t, err, http.StatusNotFound, "user not found")
}

func TestAuthMiddleware_StoreFailureIsUnauthorized(t *testing.T) {
	_, _, err := runAuth(t, "Bearer good", stubTokens{userID: "u1"}, stubUsers{err: errors.New("server selection timeout")})
	expectHTTPError(t, err, http.StatusUnauthorized, "not authorized, token failed")
}

func TestBearerToken(t *testing.T) {
	if tok, ok := BearerToken("bearer abc"); !ok || tok != "abc" {
		t.Fatalf("expected abc, got %q %v", tok, ok)
	}
	if _, ok := BearerToken("Basic abc"); ok {
		t.Fatalf("basic scheme must be rejected")
	}
}
