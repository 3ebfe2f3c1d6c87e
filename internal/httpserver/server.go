// internal/httpserver/server.go
//
// HTTP wiring for the virtual front panel.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/" (panel page), "/health".
//   - Game view: GET /api/state, GET /api/history.
//   - Button: POST /api/button/press, POST /api/button/release (token when
//     a secret is configured).
//   - LED stream: GET /ws (websocket).
//
// Notes:
//   - The server never touches the engine. It reads snapshots from the store
//     and flips the panel button; the engine polls the panel on its own.
//   - The timeout middleware only wraps /api; /ws is long lived.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/morse/assets"
	"github.com/robalobadob/morse/internal/device/panel"
	"github.com/robalobadob/morse/internal/store"
)

const defaultHistory = 20

// Options tunes the server.
type Options struct {
	Secret       string // HS256 secret for button routes; empty disables auth
	ClientOrigin string // CORS origin; empty disables CORS headers
}

// Server bundles router, snapshot store and panel.
type Server struct {
	r      *chi.Mux
	store  store.Store
	panel  *panel.Panel
	secret []byte
	origin string
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, p *panel.Panel, opts Options) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		store:  st,
		panel:  p,
		secret: []byte(opts.Secret),
		origin: opts.ClientOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)

	s.r.Get("/", s.handlePage)
	s.r.With(jsonContentType).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)
		r.Get("/state", s.handleState)
		r.Get("/history", s.handleHistory)
		r.With(s.requireToken).Post("/button/press", s.handlePress)
		r.With(s.requireToken).Post("/button/release", s.handleRelease)
	})

	s.r.Get("/ws", s.handleLEDStream)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests and http.Server).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ handlers -----------------------------------

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := assets.PanelPage()
	if err != nil {
		log.Error().Err(err).Msg("read panel page")
		http.Error(w, "panel unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Latest(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"not_started"}`, http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("latest snapshot")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	n := defaultHistory
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v <= 0 {
			http.Error(w, `{"error":"bad_n"}`, http.StatusBadRequest)
			return
		}
		n = v
	}
	rounds, err := s.store.History(r.Context(), n)
	if err != nil {
		log.Error().Err(err).Msg("history")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"rounds": rounds})
}

type buttonRes struct {
	Pressed bool `json:"pressed"`
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	s.panel.Press()
	log.Debug().Str("requestId", chimw.GetReqID(r.Context())).Msg("button pressed")
	_ = json.NewEncoder(w).Encode(buttonRes{Pressed: true})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	s.panel.Release()
	log.Debug().Str("requestId", chimw.GetReqID(r.Context())).Msg("button released")
	_ = json.NewEncoder(w).Encode(buttonRes{Pressed: false})
}
