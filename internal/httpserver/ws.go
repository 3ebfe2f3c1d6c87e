// internal/httpserver/ws.go
//
// LED stream for the virtual panel.
// Responsibilities:
//   - Upgrade GET /ws to a websocket, restricted to the configured client
//     origin when one is set.
//   - Forward panel LED events as JSON; ping every ledWSPingEvery.
//
// Notes:
//   - Inbound messages are discarded; the read loop only tracks pongs and
//     disconnects.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	ledWSWriteWait = 10 * time.Second
	ledWSPongWait  = 60 * time.Second
	ledWSPingEvery = (ledWSPongWait * 9) / 10
)

func (s *Server) ledWSUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.allowOrigin,
	}
}

// allowOrigin accepts any origin when none is configured, otherwise only the
// configured one. Requests without an Origin header (non-browser clients)
// pass.
func (s *Server) allowOrigin(r *http.Request) bool {
	o := r.Header.Get("Origin")
	return s.origin == "" || o == "" || o == s.origin
}

// handleLEDStream pushes every LED transition to the client as
// {"led":bool,"at":time}. Inbound messages are ignored; the read loop only
// exists to notice the client going away and to process pongs.
func (s *Server) handleLEDStream(w http.ResponseWriter, r *http.Request) {
	up := s.ledWSUpgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("origin", r.Header.Get("Origin")).Msg("led ws upgrade")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(ledWSPongWait)); err != nil {
		log.Warn().Err(err).Msg("led ws set read deadline")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ledWSPongWait))
	})

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	events := s.panel.Subscribe(ctx)
	ticker := time.NewTicker(ledWSPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(ledWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(ledWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
