// Package websocket streams a session's filtered event feed to browser
// clients. Each connection starts with a snapshot and then receives every
// event its participant may see, in commit order.
package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"retro-backend/application/realtime"
	"retro-backend/domain/core/valueobjects"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients only send pongs.
	maxMessageSize = 4096
)

// Client pumps one subscription onto one WebSocket connection.
type Client struct {
	sessionID   valueobjects.SessionID
	conn        *websocket.Conn
	sub         *realtime.Subscription
	broadcaster *realtime.Broadcaster
	logger      *zap.Logger
}

// NewClient creates a client for an established connection and subscription.
func NewClient(
	sessionID valueobjects.SessionID,
	conn *websocket.Conn,
	sub *realtime.Subscription,
	broadcaster *realtime.Broadcaster,
	logger *zap.Logger,
) *Client {
	return &Client{
		sessionID:   sessionID,
		conn:        conn,
		sub:         sub,
		broadcaster: broadcaster,
		logger: logger.With(
			zap.String("session_id", sessionID.String()),
			zap.String("participant_id", sub.Actor().ParticipantID.String()),
		),
	}
}

// Start sends the snapshot and runs the pumps. It returns when the
// connection closes.
func (c *Client) Start(snapshot *realtime.Snapshot) {
	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		c.logger.Error("failed to encode snapshot", zap.Error(err))
		c.conn.Close()
		c.broadcaster.Unsubscribe(c.sessionID, c.sub)
		return
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.conn.Close()
		c.broadcaster.Unsubscribe(c.sessionID, c.sub)
		return
	}

	go c.readPump()
	c.writePump()
}

// readPump consumes pongs and detects disconnects. Clients never send
// application messages.
func (c *Client) readPump() {
	defer func() {
		c.broadcaster.Unsubscribe(c.sessionID, c.sub)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump forwards subscription events to the connection. When the
// subscription channel closes (eviction or replacement) the client is told
// to reconnect for a fresh snapshot.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.sub.Events():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "resubscribe"))
				return
			}

			payload, err := encodeEvent(event)
			if err != nil {
				c.logger.Error("failed to encode event",
					zap.String("event_type", event.GetEventType()),
					zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.broadcaster.Unsubscribe(c.sessionID, c.sub)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.broadcaster.Unsubscribe(c.sessionID, c.sub)
				return
			}
		}
	}
}
