package gateway

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mfcastro/juniorbot/internal/channel/whatsapp"
)

const (
	eventWriteTimeout = 10 * time.Second
	eventPingInterval = 30 * time.Second
)

// handleSessionEvents upgrades to a websocket and streams session lifecycle
// events (QR challenges, authenticated, ready, disconnected) to the
// dashboard. The current status snapshot is pushed first so a client that
// connects mid-session sees where things stand.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("event feed upgrade failed")
		return
	}
	defer conn.Close()

	write := func(v any) error {
		conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
		return conn.WriteJSON(v)
	}

	if err := write(map[string]any{
		"type":   "status",
		"status": s.sess.Status(),
	}); err != nil {
		return
	}

	// Buffered so a slow client never blocks the session's publish path.
	events := make(chan whatsapp.Event, 16)
	cancel := s.sess.Subscribe(func(ev whatsapp.Event) {
		select {
		case events <- ev:
		default:
			s.log.Warn().Str("event", string(ev.Type)).Msg("event feed backlogged, dropping")
		}
	})
	defer cancel()

	// Drain reads so close frames and pongs are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(eventPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev := <-events:
			if err := write(ev); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
