package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/gotara"
	"github.com/ZaguanLabs/gotara/internal/logger"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	// Room for maxTextLength runes sent as \u escapes, plus the envelope.
	liveMaxMessage = 6*maxTextLength + 1024
)

// liveMessage is both the request and the successful reply on /v1/live.
type liveMessage struct {
	Text      string `json:"text"`
	Direction string `json:"direction,omitempty"`
}

type liveError struct {
	Error string `json:"error"`
}

// liveConn is one WebSocket client. readPump translates incoming messages
// and queues replies; writePump is the only writer on the connection.
type liveConn struct {
	s      *Server
	conn   *websocket.Conn
	send   chan any
	done   chan struct{} // closed when writePump exits
	client string        // rate limit bucket, shared with the client's HTTP calls
	log    zerolog.Logger
}

func (s *Server) upgrader() *websocket.Upgrader {
	u := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if origins := s.cfg.CORSOrigins; len(origins) > 0 {
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			allowed[o] = true
		}
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		}
	}
	return u
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log := logger.C(r.Context(), s.log)
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	lc := &liveConn{
		s:      s,
		conn:   conn,
		send:   make(chan any, 16),
		done:   make(chan struct{}),
		client: clientKey(r),
		log:    logger.C(r.Context(), s.log),
	}
	lc.log.Debug().Msg("live client connected")

	go lc.writePump()
	lc.readPump()
}

func (c *liveConn) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer func() {
		cancel()
		close(c.send)
		c.log.Debug().Msg("live client disconnected")
	}()

	c.conn.SetReadLimit(liveMaxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(livePongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("websocket unexpected close")
			}
			return
		}

		// Looked up per message so the bucket counts as in use and is not
		// swept while the socket is open.
		if err := c.s.limiter.For(c.client).Wait(ctx); err != nil {
			return
		}
		select {
		case c.send <- c.reply(data):
		case <-c.done:
			return
		}
	}
}

// reply translates one message. Every failure becomes a liveError so the
// connection stays open.
func (c *liveConn) reply(data []byte) any {
	var msg liveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return liveError{Error: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if utf8.RuneCountInString(msg.Text) > maxTextLength {
		return liveError{Error: fmt.Sprintf("text must be at most %d characters", maxTextLength)}
	}

	dir, err := gotara.ParseDirection(msg.Direction)
	if err != nil {
		return liveError{Error: err.Error()}
	}
	dir, _ = gotara.ResolveDirection(msg.Text, dir)

	out, err := c.s.tr.Translate(msg.Text, dir)
	if err != nil {
		return liveError{Error: err.Error()}
	}
	return liveMessage{Text: out, Direction: string(dir)}
}

func (c *liveConn) writePump() {
	ticker := time.NewTicker(livePingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	for {
		select {
		case v, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(v); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
