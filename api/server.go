package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/poiesic/faqmatch/config"
	"github.com/poiesic/faqmatch/matching"
	"github.com/rs/cors"
)

const (
	// searchLimit is the number of matches /search returns.
	searchLimit = 5

	readTimeout  = 10 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
)

// Server routes HTTP requests to a matching.Service.
type Server struct {
	cfg      *config.Config
	service  *matching.Service
	recorder *Recorder
	router   *mux.Router
	handler  http.Handler
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder stores every answered chat message through r.
func WithRecorder(r *Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server. A nil cfg means config.DefaultConfig().
func NewServer(service *matching.Service, cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Server{
		cfg:     cfg,
		service: service,
		router:  mux.NewRouter(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	s.setupMiddleware()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleInfo).Methods(http.MethodGet)
	s.router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)

	admin := s.router.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/reload", s.handleReload).Methods(http.MethodPost)
	admin.HandleFunc("/threshold", s.handleThreshold).Methods(http.MethodPut)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

func (s *Server) setupMiddleware() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.accessLogMiddleware)

	// CORS wraps the router so preflight requests are answered even when
	// no route matches OPTIONS.
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   corsMethods(s.cfg.CORSMethods),
		AllowedHeaders:   s.cfg.CORSHeaders,
		AllowCredentials: s.cfg.CORSCredentials,
	})
	s.handler = c.Handler(s.router)
}

// corsMethods expands a "*" entry, which rs/cors matches literally, into
// every method the router serves.
func corsMethods(methods []string) []string {
	if slices.Contains(methods, "*") {
		return []string{
			http.MethodGet, http.MethodHead, http.MethodPost,
			http.MethodPut, http.MethodPatch, http.MethodDelete,
		}
	}
	return methods
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// HTTPServer returns an http.Server listening on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// ensureReady initializes the service on demand. Initialize is a no-op
// once the service is ready.
func (s *Server) ensureReady(ctx context.Context) error {
	if s.service.IsReady() {
		return nil
	}
	if err := s.service.Initialize(ctx); err != nil {
		s.logger.Error("FAQ service initialization failed", "err", err)
		return err
	}
	return nil
}
