package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/auth"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/metrics"
)

// Handler is implemented by the chat and video coordinators.
type Handler interface {
	HandleCommand(c *Client, cmd Command)
	HandleDisconnect(c *Client)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live connection. Its identity is fixed at handshake time
// from the primary bearer credential, the room access token only shows up
// later inside join commands.
type Client struct {
	id       string
	hub      string
	handler  Handler
	conn     *websocket.Conn
	identity auth.Identity

	send   chan []byte
	sendMu sync.Mutex
	closed bool

	mu     sync.Mutex
	roomID uint // 0 while not joined
	role   string
}

func (c *Client) ID() string { return c.id }

func (c *Client) setRoom(roomID uint, role string) {
	c.mu.Lock()
	c.roomID = roomID
	c.role = role
	c.mu.Unlock()
}

func (c *Client) clearRoom() {
	c.setRoom(0, "")
}

func (c *Client) currentRoom() (uint, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID, c.role
}

// enqueue marshals an event and hands it to the write pump without
// blocking. A full buffer means the recipient is too slow and misses the
// event, delivery is best-effort per recipient.
func (c *Client) enqueue(evt interface{}) {
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.sendMu.Unlock()
}

// Serve upgrades the connection after validating the primary credential.
// This is stage one of the two-stage handshake, the room access token is
// checked by the coordinator on join.
func Serve(hubName string, handler Handler, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c.Request)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		id, err := auth.VerifyIdentity(raw, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := &Client{
			id:       uuid.NewString(),
			hub:      hubName,
			handler:  handler,
			conn:     conn,
			identity: *id,
			send:     make(chan []byte, 256),
		}
		metrics.WsConnections.WithLabelValues(hubName).Inc()
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.handler.HandleDisconnect(c)
		c.closeSend()
		_ = c.conn.Close()
		metrics.WsConnections.WithLabelValues(c.hub).Dec()
	}()
	c.conn.SetReadLimit(1 << 20) // 1MB
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		cmd, err := ParseCommand(data)
		if err != nil {
			// Malformed or unknown frames are dropped, never fatal.
			log.Debug().Str("hub", c.hub).Str("conn", c.id).Err(err).Msg("drop frame")
			continue
		}
		c.handler.HandleCommand(c, cmd)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			_ = w.Close()
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
