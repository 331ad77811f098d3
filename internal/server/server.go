package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/canpog/realestate-app-sub000/internal/config"
	"github.com/canpog/realestate-app-sub000/internal/obs"
	"github.com/canpog/realestate-app-sub000/internal/server/middleware"
	"github.com/canpog/realestate-app-sub000/internal/server/ratelimit"
	"github.com/canpog/realestate-app-sub000/internal/session"
	"github.com/canpog/realestate-app-sub000/internal/storage"
	"github.com/canpog/realestate-app-sub000/internal/types"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Store is the record store the handlers read and write. *db.DB implements it.
type Store interface {
	AgentStore

	CreateListing(ctx context.Context, l *types.Listing) error
	GetListing(ctx context.Context, agentID, id uuid.UUID) (*types.Listing, error)
	ListListings(ctx context.Context, agentID uuid.UUID, filters types.ListingFilters) ([]types.Listing, error)
	UpdateListing(ctx context.Context, l *types.Listing) error
	UpdateListingStatus(ctx context.Context, agentID, id uuid.UUID, from, status types.ListingStatus) error
	AppendListingImage(ctx context.Context, agentID, id uuid.UUID, url string) error
	DeleteListing(ctx context.Context, agentID, id uuid.UUID) error

	CreateClient(ctx context.Context, c *types.Client) error
	GetClient(ctx context.Context, agentID, id uuid.UUID) (*types.Client, error)
	ListClients(ctx context.Context, agentID uuid.UUID) ([]types.Client, error)
	UpdateClient(ctx context.Context, c *types.Client) error
	DeleteClient(ctx context.Context, agentID, id uuid.UUID) error
	CreateNote(ctx context.Context, n *types.Note) error
	ListNotes(ctx context.Context, agentID, clientID uuid.UUID) ([]types.Note, error)

	CreateFollowUp(ctx context.Context, f *types.FollowUp) error
	GetFollowUp(ctx context.Context, agentID, id uuid.UUID) (*types.FollowUp, error)
	ListFollowUps(ctx context.Context, agentID uuid.UUID, filters types.FollowUpFilters) ([]types.FollowUp, error)
	UpdateFollowUpStatus(ctx context.Context, agentID, id uuid.UUID, from, status types.FollowUpStatus) error

	CreateTransaction(ctx context.Context, tx *types.Transaction) error
	ListTransactions(ctx context.Context, agentID uuid.UUID) ([]types.Transaction, error)

	CreatePDFExport(ctx context.Context, e *types.PDFExport) error
	ListPDFExports(ctx context.Context, agentID, listingID uuid.UUID) ([]types.PDFExport, error)

	Ping(ctx context.Context) error
}

// Matcher ranks listings for a client.
type Matcher interface {
	Match(ctx context.Context, client *types.Client, listings []types.Listing, notes ...string) types.MatchResponse
}

// Valuator values a property.
type Valuator interface {
	Valuate(ctx context.Context, params types.ValuationParams, listing *types.Listing) (types.ValuationResult, error)
}

// Exporter renders a listing brochure to a stored PDF.
type Exporter interface {
	Export(ctx context.Context, agent *types.Agent, listing *types.Listing) (*types.PDFExport, error)
}

// Deps are the collaborators the server is built from. Store, JWT and
// Passwords are required; a nil Matcher, Valuator or Exporter makes the
// matching endpoints answer 503.
type Deps struct {
	Store     Store
	Matcher   Matcher
	Valuator  Valuator
	Exporter  Exporter
	Uploader  storage.Uploader
	Sessions  session.Store
	Metrics   *obs.Metrics
	Logger    *slog.Logger
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	RateLimit *ratelimit.Config
}

// Config holds server configuration
type Config struct {
	Port int
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	matcher     Matcher
	valuator    Valuator
	exporter    Exporter
	uploader    storage.Uploader
	sessions    session.Store
	metrics     *obs.Metrics
	logger      *slog.Logger
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	agents      *AgentService
	authHandler *AuthHandler
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if deps.JWT == nil || deps.Passwords == nil {
		return nil, errors.New("server: JWT and password configs are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Uploader == nil {
		deps.Uploader = storage.NoopUploader{}
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore()
	}
	if deps.RateLimit == nil {
		deps.RateLimit = ratelimit.LoadConfig()
	}

	s := &Server{
		store:       deps.Store,
		matcher:     deps.Matcher,
		valuator:    deps.Valuator,
		exporter:    deps.Exporter,
		uploader:    deps.Uploader,
		sessions:    deps.Sessions,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		jwtService:  NewJWTService(deps.JWT),
	}
	s.agents = NewAgentService(deps.Store, deps.Passwords)
	s.authHandler = NewAuthHandler(s.agents, s.jwtService, s.sessions, s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Auth
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("POST /auth/logout", s.authed(s.authHandler.Logout))
	mux.Handle("GET /me", s.authed(s.authHandler.Me))
	mux.Handle("PUT /me/password", s.authed(s.authHandler.UpdatePassword))

	// Listings
	mux.Handle("GET /listings", s.authed(s.handleListListings))
	mux.Handle("POST /listings", s.authed(s.handleCreateListing))
	mux.Handle("GET /listings/{id}", s.authed(s.handleGetListing))
	mux.Handle("PUT /listings/{id}", s.authed(s.handleUpdateListing))
	mux.Handle("DELETE /listings/{id}", s.authed(s.handleDeleteListing))
	mux.Handle("POST /listings/{id}/status", s.authed(s.handleListingStatus))
	mux.Handle("POST /listings/{id}/images", s.authed(s.handleUploadListingImage))
	mux.Handle("POST /listings/{id}/exports", s.authed(s.handleCreateExport))
	mux.Handle("GET /listings/{id}/exports", s.authed(s.handleListExports))

	// Clients, notes and follow-ups
	mux.Handle("GET /clients", s.authed(s.handleListClients))
	mux.Handle("POST /clients", s.authed(s.handleCreateClient))
	mux.Handle("GET /clients/{id}", s.authed(s.handleGetClient))
	mux.Handle("PUT /clients/{id}", s.authed(s.handleUpdateClient))
	mux.Handle("DELETE /clients/{id}", s.authed(s.handleDeleteClient))
	mux.Handle("GET /clients/{id}/notes", s.authed(s.handleListNotes))
	mux.Handle("POST /clients/{id}/notes", s.authed(s.handleCreateNote))
	mux.Handle("POST /clients/{id}/follow-ups", s.authed(s.handleCreateFollowUp))
	mux.Handle("GET /follow-ups", s.authed(s.handleListFollowUps))
	mux.Handle("POST /follow-ups/{id}/status", s.authed(s.handleFollowUpStatus))

	// Model-backed operations
	mux.Handle("POST /clients/{id}/matches", s.authed(s.handleMatchClient))
	mux.Handle("POST /valuations", s.authed(s.handleValuation))

	// Transactions
	mux.Handle("GET /transactions", s.authed(s.handleListTransactions))
	mux.Handle("POST /transactions", s.authed(s.handleCreateTransaction))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withRateLimit(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // model calls and PDF renders
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.Close()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources. The store is owned by the caller.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// authed wraps h with bearer-token authentication and revocation checks.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), s.sessions)(h)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			if s.metrics != nil {
				s.metrics.ObserveRateLimited(info.Tier)
			}
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging logs each request and records HTTP metrics by route pattern.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		// The mux fills in r.Pattern on the shared request.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.ObserveHTTP(r.Method, route, status, elapsed)
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"remote", s.extractClientID(r))
	})
}

// handleHealth reports whether the record store answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "health check failed", "error", err)
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// fail maps err to a status, logs server-side failures and writes the body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	jsonResponse(w, status, newErrorBody(err, status))
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// agentID returns the authenticated agent, writing 401 when absent.
func (s *Server) agentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.GetAgentID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the named path value as a UUID, writing 400 when invalid.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// extractClientID uses the remote IP. X-Forwarded-For is ignored since the
// server may not sit behind a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"tier":      info.Tier,
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.WarnContext(r.Context(), "rate limit exceeded",
		"tier", info.Tier,
		"path", r.URL.Path,
		"limit", info.Limit,
		"remote", s.extractClientID(r))

	jsonResponse(w, http.StatusTooManyRequests, response)
}
