package realtime

import (
	"context"
	"sync"
	"time"

	"kotoba-server/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Client represents one authenticated websocket connection.
type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	mu    sync.RWMutex // protects rooms and conn writes
	rooms map[uuid.UUID]bool
}

func NewClient(conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		rooms:  make(map[uuid.UUID]bool),
	}
}

func (c *Client) joinRoom(chatID uuid.UUID) {
	c.mu.Lock()
	c.rooms[chatID] = true
	c.mu.Unlock()
}

func (c *Client) leaveRoom(chatID uuid.UUID) {
	c.mu.Lock()
	delete(c.rooms, chatID)
	c.mu.Unlock()
}

// Rooms returns a copy of the chat ids this client is subscribed to.
func (c *Client) Rooms() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rooms := make([]uuid.UUID, 0, len(c.rooms))
	for id := range c.rooms {
		rooms = append(rooms, id)
	}
	return rooms
}

// WriteLoop drains the Send channel onto the connection and keeps the
// connection alive with periodic pings.
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
			c.mu.Unlock()
		case <-ticker.C:
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
	c.mu.Unlock()
}

// SendRaw queues a pre-encoded frame without blocking. A full buffer drops
// the frame; durability is the store's job, not the transport's.
func (c *Client) SendRaw(msg []byte) {
	select {
	case c.Send <- msg:
	default:
		metrics.PushesDropped.Inc()
	}
}

// SendEvent encodes and queues one event frame.
func (c *Client) SendEvent(event string, data any) error {
	frame, err := encodeFrame(event, data)
	if err != nil {
		return err
	}
	c.SendRaw(frame)
	return nil
}
