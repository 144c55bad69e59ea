package handler

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskboard/task-manager/internal/api/middleware"
	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
	"github.com/taskboard/task-manager/internal/infrastructure/realtime"
)

// RealtimeHandler upgrades authenticated requests to WebSocket connections
// attached to the hub.
type RealtimeHandler struct {
	hub      *realtime.Hub
	tokens   ports.TokenService
	users    ports.UserRepository
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewRealtimeHandler(
	hub *realtime.Hub,
	tokens ports.TokenService,
	users ports.UserRepository,
	allowOrigins []string,
	log zerolog.Logger,
) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		tokens: tokens,
		users:  users,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowOrigins),
		},
		log: log,
	}
}

// originChecker allows any origin when the list contains "*". Requests
// without an Origin header (non-browser clients) are always allowed.
func originChecker(allowOrigins []string) func(r *http.Request) bool {
	if slices.Contains(allowOrigins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowOrigins, origin)
	}
}

// Connect handles GET /ws.
//
// @Summary      Realtime channel
// @Description  Upgrades to a WebSocket. Frames are {"event": "...", "data": ...}.
// @Description  The token is read from the "token" query parameter or the Authorization header.
// @Tags         realtime
// @Param        token  query     string  false  "Session token"
// @Success      101
// @Failure      401    {object}  messageResponse
// @Router       /ws [get]
func (h *RealtimeHandler) Connect(c echo.Context) error {
	raw := c.QueryParam("token")
	if raw == "" {
		raw, _ = middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	}
	if raw == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, no token")
	}

	userID, err := h.tokens.Verify(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token failed")
	}
	user, err := h.users.FindByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token failed")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("websocket upgrade failed")
		return nil
	}

	realtime.NewClient(h.hub, conn, user.ID, h.log).Run(c.Request().Context())
	return nil
}
