package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// streamWriteWait is the time allowed to write one message.
	streamWriteWait = 10 * time.Second

	// streamPongWait is how long the client may stay silent before the stream is dropped.
	streamPongWait = 60 * time.Second

	// streamPingInterval must be shorter than streamPongWait.
	streamPingInterval = (streamPongWait * 9) / 10

	// streamMaxMessage bounds client frames; the client only sends control frames.
	streamMaxMessage = 512
)

// Stream handles GET /v1/map-sessions/{sessionId}/stream - a WebSocket pushing
// every new map snapshot. Slow clients skip intermediate snapshots. The stream
// keeps the session from idling out and closes when the session closes.
func (h *MapSessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	userID := owner(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already wrote an HTTP error.
		h.logger.Debug().Err(err).Str("session_id", s.ID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := h.logger.With().Str("session_id", s.ID).Str("user_id", userID).Logger()
	logger.Debug().Msg("map stream opened")

	snapshots, unsubscribe := s.Controller.Subscribe()
	defer unsubscribe()

	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		conn.SetReadLimit(streamMaxMessage)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug().Err(err).Msg("map stream read error")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-snapshots:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "map session closed"))
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				logger.Debug().Err(err).Msg("map stream write failed")
				return
			}

		case <-ticker.C:
			// Keep the session alive while someone is watching it.
			if _, err := h.sessions.Get(userID, s.ID); err != nil {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "map session closed"))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-clientGone:
			logger.Debug().Msg("map stream closed by client")
			return
		}
	}
}
