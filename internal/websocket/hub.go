package websocket

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"planillas/internal/service"
	"planillas/internal/token"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
	publishBuffer  = 1024
)

// Authenticator resolves the claims of an upgrade request.
type Authenticator interface {
	AuthenticateUpgrade(c *gin.Context) (*token.Claims, bool)
}

// Client is a single websocket connection owned by one user.
type Client struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

type message struct {
	userID  string
	payload []byte
}

// Hub fans events out to the connections of each user. Clients are keyed by user id and never
// receive another user's events.
type Hub struct {
	log        *zap.Logger
	upgrader   websocket.Upgrader
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	publish    chan message
	quit       chan struct{}
	mu         sync.RWMutex
}

// NewHub builds a hub. An empty allowedOrigins accepts any origin.
func NewHub(log *zap.Logger, allowedOrigins []string) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		log:        log.Named("websocket"),
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan message, publishBuffer),
		quit:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Run is the dispatch loop; it returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			h.mu.Unlock()
			h.log.Debug("client connected", zap.String("user_id", client.userID))
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.log.Debug("client disconnected", zap.String("user_id", client.userID))
		case msg := <-h.publish:
			h.mu.Lock()
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.payload:
				default:
					// slow consumer; drop the connection rather than stall every user
					h.remove(client)
				}
			}
			h.mu.Unlock()
		case <-h.quit:
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every connection's send queue.
func (h *Hub) Stop() {
	close(h.quit)
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

// PublishToUser queues ev for every connection of userID. It never blocks the caller; when the
// queue is full the event is dropped and the next session.updated supersedes it.
func (h *Hub) PublishToUser(userID string, ev service.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	select {
	case h.publish <- message{userID: userID, payload: payload}:
	default:
		h.log.Warn("publish queue full, event dropped", zap.String("user_id", userID), zap.String("type", ev.Type))
	}
}

// ClientCount reports the open connections of userID.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// one event per frame so clients can JSON.parse each message
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; clients talk to the server over HTTP.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("read error", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

// ServeWs upgrades an authenticated request and subscribes it to the caller's events.
func ServeWs(hub *Hub, auth Authenticator, c *gin.Context) {
	claims, ok := auth.AuthenticateUpgrade(c)
	if !ok {
		hub.log.Info("connection rejected: missing or invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	client := &Client{hub: hub, userID: claims.UserID(), conn: conn, send: make(chan []byte, sendBufferSize)}
	select {
	case hub.register <- client:
	case <-hub.quit:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
