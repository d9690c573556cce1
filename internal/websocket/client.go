package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingInterval = idleTimeout * 9 / 10
	readLimit    = 512
	queueSize    = 64
)

// Client is one upgraded connection. The hub queues events with Send and a
// single writer goroutine drains the queue; the peer is only read for
// control frames.
type Client struct {
	id     string
	userID int32
	conn   *websocket.Conn
	queue  chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewClient wraps an upgraded connection for userID
func NewClient(conn *websocket.Conn, userID int32) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		queue:  make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string    { return c.id }
func (c *Client) UserID() int32 { return c.userID }

// Send queues data without blocking
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.queue <- data:
		return nil
	default:
		return ErrSlowClient
	}
}

// Close sends a close frame and releases the connection. Only the first call
// has any effect.
func (c *Client) Close() error {
	err := ErrClientClosed
	c.once.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		err = c.conn.Close()
	})
	return err
}

// Serve runs the connection until the peer leaves or Close is called, then
// removes it from hub
func (c *Client) Serve(hub *Hub) {
	defer func() {
		hub.Unregister(c)
		c.Close()
	}()
	go c.writeLoop()
	c.readLoop()
}

func (c *Client) readLoop() {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("client_id", c.id).Int32("user_id", c.userID).Msg("WebSocket closed unexpectedly")
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.queue:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Warn().Err(err).Str("client_id", c.id).Int32("user_id", c.userID).Msg("WebSocket write failed")
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				c.Close()
				return
			}
		}
	}
}
