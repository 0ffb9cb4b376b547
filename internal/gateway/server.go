// Package gateway exposes the dashboard HTTP API and the session event feed.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/mfcastro/juniorbot/internal/channel/whatsapp"
	"github.com/mfcastro/juniorbot/internal/config"
	"github.com/mfcastro/juniorbot/internal/logging"
	"github.com/mfcastro/juniorbot/internal/store"
)

// Fixed dashboard figures the stats endpoint reports until real
// measurements exist.
const (
	responseTimeAvg = 1.2
	revenueGrowth   = 15
)

// Server is the juniorbot HTTP API server.
type Server struct {
	cfg           config.Config
	log           *logging.Logger
	conversations store.ConversationStore
	commerce      store.CommerceStore
	sess          *whatsapp.Session
	dispatcher    *whatsapp.Dispatcher
	roster        *whatsapp.Roster

	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates a server over the given collaborators.
func New(cfg config.Config, conversations store.ConversationStore, commerce store.CommerceStore,
	sess *whatsapp.Session, dispatcher *whatsapp.Dispatcher, roster *whatsapp.Roster,
	log *logging.Logger) *Server {
	return &Server{
		cfg:           cfg,
		log:           log.Sub("gateway"),
		conversations: conversations,
		commerce:      commerce,
		sess:          sess,
		dispatcher:    dispatcher,
		roster:        roster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Start listens and serves until ctx is cancelled. It blocks.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	s.registerRoutes(r)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.startedAt = time.Now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Strs("origins", s.cfg.Server.AllowedOrigins).
		Msg("api server ready")

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/conversations", s.handleListConversations)
		r.Get("/conversations/{id}", s.handleGetConversation)
		r.Post("/conversations/{id}/reply", s.handleReply)

		r.Get("/carts/abandoned", s.handleAbandonedCarts)
		r.Post("/carts/recover/{id}", s.handleRecoverCart)

		r.Get("/orders", s.handleListOrders)
		r.Get("/stats", s.handleStats)

		r.Post("/leads", s.handleCreateLead)
		r.Post("/upload-csv", s.handleUploadCSV)

		r.Post("/messages/bulk", s.handleBulkSend)

		r.Post("/groups/extract", s.handleExtractGroup)
		r.Post("/groups", s.handleCreateGroup)

		r.Get("/session", s.handleSessionStatus)
		r.Get("/session/events", s.handleSessionEvents)
	})
}
