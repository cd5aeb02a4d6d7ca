package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

// session - one live connection. The read loop is the only caller of intent handlers,
// so intents of one connection are handled one at a time.
type session struct {
	id   string
	conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	userID string
	gameID string

	// token proves the handle to another connection taking it over.
	token string
}

func newSession(conn *websocket.Conn, id, userID, token string) *session {
	return &session{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		userID: userID,
		token:  token,
	}
}

func (that *session) state() (string, string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.userID, that.gameID
}

func (that *session) credentials() (string, string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.userID, that.token
}

func (that *session) adopt(userID, token string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.userID = userID
	that.token = token
}

func (that *session) bind(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.gameID = gameID
}

// unbind - forgets gameID unless the session has moved on to another room.
func (that *session) unbind(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.gameID == gameID {
		that.gameID = ""
	}
}

// enqueue - never blocks. Reports false when the queue is full or the session is closed.
func (that *session) enqueue(msg []byte) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.send <- msg:
		return true
	default:
		return false
	}
}

func (that *session) isClosed() bool {
	select {
	case <-that.done:
		return true
	default:
		return false
	}
}

func (that *session) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.conn.Close()
	})
}

func (that *session) writePump(log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.close()
	}()

	for {
		select {
		case msg := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("failed to write ping", "error", err)
				return
			}
		case <-that.done:
			return
		}
	}
}

// readPump - blocks until the connection fails or is closed.
func (that *session) readPump(ctx context.Context, log *slog.Logger, dispatch func(context.Context, *session, []byte)) {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		dispatch(ctx, that, data)
	}
}
