package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Options tunes one live connection.
type Options struct {
	Buffer       int
	ReadLimit    int64
	PingPeriod   time.Duration
	WriteTimeout time.Duration
}

// Frame is one inbound client message on the live channel.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type joinPayload struct {
	UserID string `json:"user_id"`
}

type typingPayload struct {
	RecipientID string `json:"recipient_id"`
}

// Client bridges one WebSocket connection, its registry session, and the
// dispatcher. Reads and writes run on separate goroutines; the session's
// event queue is the only channel between them.
type Client struct {
	conn       *websocket.Conn
	sess       *Session
	registry   *Registry
	dispatcher *Dispatcher
	opts       Options
	log        *zap.Logger
	userID     string // empty until a token auto-join or join-user frame
}

// ServeConn runs the connection until the peer disconnects. When userID is
// non-empty (a valid bearer token was presented at connect time) the session
// is auto-joined to that user's room. Blocks; callers run it per connection.
func ServeConn(conn *websocket.Conn, userID string, registry *Registry, dispatcher *Dispatcher, opts Options, log *zap.Logger) {
	c := &Client{
		conn:       conn,
		sess:       NewSession(opts.Buffer),
		registry:   registry,
		dispatcher: dispatcher,
		opts:       opts,
		log:        log,
	}
	if userID != "" {
		c.userID = userID
		registry.Join(userID, c.sess)
	}

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.registry.Leave(c.sess)
		c.sess.Close()
		c.conn.Close()
	}()

	pongWait := c.opts.PingPeriod * 10 / 9
	c.conn.SetReadLimit(c.opts.ReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read", zap.String("session_id", c.sess.ID), zap.Error(err))
			}
			return
		}
		c.handleFrame(f)
	}
}

func (c *Client) handleFrame(f Frame) {
	switch f.Type {
	case "join-user":
		var p joinPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil || p.UserID == "" {
			return
		}
		c.userID = p.UserID
		c.registry.Join(p.UserID, c.sess)

	case EventTyping, EventStopTyping:
		// Relayed only, never persisted; silently dropped for anonymous
		// sessions since the recipient needs to know who is typing.
		if c.userID == "" {
			return
		}
		var p typingPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil || p.RecipientID == "" {
			return
		}
		if f.Type == EventTyping {
			c.dispatcher.Publish(p.RecipientID, TypingEvent(c.userID))
		} else {
			c.dispatcher.Publish(p.RecipientID, StopTypingEvent(c.userID))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.sess.Events():
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				c.log.Debug("websocket write", zap.String("session_id", c.sess.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
