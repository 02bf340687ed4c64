package websocket

import (
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
	"campusmarket/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// Event is one frame pushed to a subscriber: either a full snapshot or a
// terminal error.
type Event struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorFrame `json:"error,omitempty"`
}

type ErrorFrame struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client is a single subscription connection.
type Client struct {
	UserID string
	Kind   string
	Conn   *websocket.Conn
	Send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, userID, kind string) *Client {
	return &Client{
		UserID: userID,
		Kind:   kind,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Stream pushes every snapshot of feed to conn until the peer disconnects,
// the feed fails or the manager shuts down. The feed is stopped and the
// connection closed before Stream returns.
func Stream[T any](m *Manager, conn *websocket.Conn, userID, kind string, feed repository.Feed[T]) {
	client := newClient(conn, userID, kind)
	m.register(client)
	defer func() {
		feed.Stop()
		m.unregister(client)
		_ = conn.Close()
	}()

	go client.readPump(feed.Stop)
	go pumpFeed(client, feed)
	client.writePump()
}

// pumpFeed is the only writer of c.Send and closes it when the feed ends.
func pumpFeed[T any](c *Client, feed repository.Feed[T]) {
	defer close(c.Send)

	for {
		snapshot, err := feed.Next()
		if err != nil {
			if !stderrors.Is(err, repository.ErrFeedStopped) {
				logger.Error("Subscription Error: user=%s kind=%s: %v", c.UserID, c.Kind, err)
				c.enqueue(errorEvent(err))
			}
			return
		}

		if !c.enqueue(Event{Type: c.Kind, Data: snapshot}) {
			return
		}
	}
}

func (c *Client) enqueue(event Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Subscription Error: failed to encode %s event: %v", c.Kind, err)
		return false
	}
	select {
	case c.Send <- data:
		return true
	case <-c.done:
		return false
	}
}

func errorEvent(err error) Event {
	frame := &ErrorFrame{Code: errors.CodeInternal, Message: "Subscription failed"}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		frame.Code = appErr.Code
		frame.Message = appErr.Message
	}
	return Event{Type: "error", Error: frame}
}

// readPump only services control frames; subscriptions carry no client
// messages. Any read error ends the stream.
func (c *Client) readPump(stop func()) {
	defer func() {
		c.close()
		stop()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("Subscription Warning: user=%s kind=%s read: %v", c.UserID, c.Kind, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				_ = c.Conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
