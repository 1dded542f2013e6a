// Package api assembles the local event API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"eosthanks/config"
	"eosthanks/handlers"
	"eosthanks/internal/audio"
	"eosthanks/services/events"
	"eosthanks/utils"
)

const shutdownTimeout = 5 * time.Second

// Server serves the event API until its context ends or /shutdown is called.
type Server struct {
	settings *config.Manager
	events   *events.Service
	logFile  string

	limiter *IPRateLimiter

	mu       sync.Mutex
	srv      *http.Server
	shutdown chan struct{}
	once     sync.Once
}

// NewServer creates the API server.
func NewServer(settings *config.Manager, svc *events.Service, logFile string) *Server {
	return &Server{
		settings: settings,
		events:   svc,
		logFile:  logFile,
		shutdown: make(chan struct{}),
	}
}

// Handler builds the router for cfg.
func (s *Server) Handler(cfg config.Settings) http.Handler {
	policy := utils.OriginPolicy{Extra: cfg.Server.AllowedOrigins, AllowNull: true}
	r := utils.NewRouter(policy)
	r.Use(LoggingMiddleware)

	eventsHandler := handlers.NewEventsHandler(s.events, s.settings)
	settingsHandler := handlers.NewSettingsHandler(s.settings)
	chimeHandler := handlers.NewChimeHandler(audio.DefaultChime())
	versionHandler := handlers.NewVersionHandler()
	logsHandler := handlers.NewLogsHandler(s.logFile)
	shutdownHandler := handlers.NewShutdownHandler(s.RequestShutdown)

	r.HandleFunc("/settings", settingsHandler.GetSettings).Methods(http.MethodGet)
	r.HandleFunc("/followers", eventsHandler.GetFollowers).Methods(http.MethodGet)
	r.HandleFunc("/subscribers", eventsHandler.GetSubscribers).Methods(http.MethodGet)
	r.HandleFunc("/bits", eventsHandler.GetBits).Methods(http.MethodGet)
	r.HandleFunc("/chime.wav", chimeHandler.GetChime).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", versionHandler.GetVersion).Methods(http.MethodGet)
	r.HandleFunc("/logs", logsHandler.GetLogs).Methods(http.MethodGet)

	s.mu.Lock()
	if s.limiter == nil {
		s.limiter = NewIPRateLimiter(PerMinute(cfg.Ingest.PerMinute), cfg.Ingest.Burst)
	}
	limiter := s.limiter
	s.mu.Unlock()

	ingest := r.NewRoute().Subrouter()
	ingest.Use(IngestAuthMiddleware(cfg.Server.IngestToken))
	ingest.Use(RateLimitMiddleware(limiter))
	ingest.HandleFunc("/follow", eventsHandler.PostFollow).Methods(http.MethodPost)
	ingest.HandleFunc("/subscribe", eventsHandler.PostSubscribe).Methods(http.MethodPost)
	ingest.HandleFunc("/bits", eventsHandler.PostBits).Methods(http.MethodPost)
	ingest.HandleFunc("/followers/{userID}", eventsHandler.DeleteFollower).Methods(http.MethodDelete)

	admin := r.NewRoute().Subrouter()
	admin.Use(IngestAuthMiddleware(cfg.Server.IngestToken))
	admin.HandleFunc("/shutdown", shutdownHandler.PostShutdown).Methods(http.MethodPost)
	admin.HandleFunc("/settings", settingsHandler.PutSettings).Methods(http.MethodPut)

	return r
}

// RequestShutdown asks a running server to stop.
func (s *Server) RequestShutdown() {
	s.once.Do(func() { close(s.shutdown) })
}

// ListenAndServe listens on the configured address.
func (s *Server) ListenAndServe(ctx context.Context) error {
	cfg, err := s.settings.Load()
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the API on ln. It returns nil after a requested or
// context-triggered graceful shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	cfg, err := s.settings.Load()
	if err != nil {
		ln.Close()
		return err
	}
	if cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)
	}

	srv := &http.Server{
		Handler:      s.Handler(cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	s.mu.Lock()
	s.srv = srv
	limiter := s.limiter
	s.mu.Unlock()

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go limiter.Run(limiterCtx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[api] listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("[api] context done, shutting down")
	case <-s.shutdown:
		log.Printf("[api] shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
