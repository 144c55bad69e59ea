package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16

	EventJoin  = "join"
	EventError = "error"
)

// Envelope is the JSON frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one WebSocket connection owned by an authenticated user.
type Client struct {
	ID     string
	UserID string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	groups map[string]struct{} // guarded by hub.mu
	log    zerolog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, log zerolog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:     id,
		UserID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		groups: make(map[string]struct{}),
		log:    log.With().Str("client_id", id).Str("user_id", userID).Logger(),
	}
}

// Run registers the client, joins its own group and pumps frames until the
// connection drops, ctx is cancelled or the hub closes. It always closes the
// connection before returning.
func (c *Client) Run(ctx context.Context) {
	defer c.conn.Close()

	if !c.hub.Register(c) {
		return
	}
	c.hub.Join(c, c.UserID)
	c.log.Debug().Msg("realtime client connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump(ctx)
	}()

	c.readPump()
	c.hub.Leave(c)
	<-done
	c.log.Debug().Msg("realtime client disconnected")
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("realtime read failed")
			}
			return
		}
		c.handle(env)
	}
}

func (c *Client) handle(env Envelope) {
	switch env.Event {
	case EventJoin:
		group := joinTarget(env.Data)
		if group != c.UserID {
			c.reply(EventError, "cannot join another user's channel")
			c.log.Warn().Str("group", group).Msg("rejected realtime join")
			return
		}
		c.hub.Join(c, group)
	default:
		c.reply(EventError, "unknown event")
	}
}

// joinTarget accepts either a bare user id string or {"userId": "..."}.
func joinTarget(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id
	}
	var obj struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return obj.UserID
	}
	return ""
}

// reply queues a direct error frame for this client only.
func (c *Client) reply(event, message string) {
	data, _ := json.Marshal(map[string]string{"message": message})
	frame, _ := json.Marshal(Envelope{Event: event, Data: data})

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			_ = c.conn.Close()
			return
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the queue: either we left or the hub shut down.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				_ = c.conn.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}
