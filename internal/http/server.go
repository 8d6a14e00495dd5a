// Package http provides the JSON API server.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"wisewallet/internal/assistant"
	"wisewallet/internal/auth"
	"wisewallet/internal/cache"
	"wisewallet/internal/config"
	"wisewallet/internal/log"
	"wisewallet/internal/services"
)

// contextKey is a private type for request context values.
type contextKey string

const ownerIDKey contextKey = "owner_id"

// OwnerID returns the authenticated owner for the request, or "" when the
// request carried no valid token.
func OwnerID(ctx context.Context) string {
	if v, ok := ctx.Value(ownerIDKey).(string); ok {
		return v
	}
	return ""
}

type Server struct {
	http.Server

	auth      *auth.Service
	ledger    *services.LedgerService
	budgets   *services.BudgetService
	goals     *services.GoalService
	wealth    *services.WealthService
	insights  *services.InsightService
	reconcile *services.Reconciler
	snapshots *cache.SnapshotCache
	assistant *assistant.Service

	logs         *log.StructuredLogger
	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	seriesMonths int

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Deps bundles everything the server needs. Assistant may be backed by a
// nil generator; the parse endpoint then answers 503.
type Deps struct {
	Auth      *auth.Service
	Ledger    *services.LedgerService
	Budgets   *services.BudgetService
	Goals     *services.GoalService
	Wealth    *services.WealthService
	Insights  *services.InsightService
	Reconcile *services.Reconciler
	Snapshots *cache.SnapshotCache
	Assistant *assistant.Service
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg *config.Config, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    ":" + cfg.Port,
			Handler: mux,
		},
		auth:             deps.Auth,
		ledger:           deps.Ledger,
		budgets:          deps.Budgets,
		goals:            deps.Goals,
		wealth:           deps.Wealth,
		insights:         deps.Insights,
		reconcile:        deps.Reconcile,
		snapshots:        deps.Snapshots,
		assistant:        deps.Assistant,
		rateLimiter:      newRateLimiter(),
		metrics:          &securityMetrics{},
		seriesMonths:     cfg.SeriesMonths,
		stopCacheCleanup: make(chan struct{}),
	}

	logger := log.New(log.Config{Handler: slog.Default().Handler(), Component: log.ComponentHTTP})
	s.logs = log.NewStructuredLogger(logger)
	s.Server.Handler = log.Middleware(logger)(mux)

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("POST /api/v1/auth/register", s.public(s.handleRegister))
	mux.HandleFunc("POST /api/v1/auth/login", s.public(s.handleLogin))

	mux.HandleFunc("GET /api/v1/categories", s.protected(s.handleListCategories))
	mux.HandleFunc("POST /api/v1/categories", s.protected(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/v1/categories/{id}", s.protected(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/v1/transactions", s.protected(s.handleListTransactions))
	mux.HandleFunc("POST /api/v1/transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/v1/transactions/recent", s.protected(s.handleRecentTransactions))
	mux.HandleFunc("POST /api/v1/transactions/reset", s.protected(s.handleResetTransactions))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/v1/budgets", s.protected(s.handleListBudgets))
	mux.HandleFunc("POST /api/v1/budgets", s.protected(s.handleCreateBudget))
	mux.HandleFunc("DELETE /api/v1/budgets/{id}", s.protected(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/v1/goals", s.protected(s.handleListGoals))
	mux.HandleFunc("POST /api/v1/goals", s.protected(s.handleCreateGoal))
	mux.HandleFunc("GET /api/v1/goals/completed", s.protected(s.handleListCompletedGoals))
	mux.HandleFunc("POST /api/v1/goals/{id}/contribute", s.protected(s.handleContributeGoal))
	mux.HandleFunc("DELETE /api/v1/goals/{id}", s.protected(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/v1/wealth", s.protected(s.handleGetWealth))
	mux.HandleFunc("PUT /api/v1/wealth", s.protected(s.handleSetWealth))

	mux.HandleFunc("GET /api/v1/dashboard", s.protected(s.handleDashboard))
	mux.HandleFunc("GET /api/v1/overview", s.protected(s.handleOverview))
	mux.HandleFunc("GET /api/v1/series", s.protected(s.handleSeries))

	mux.HandleFunc("POST /api/v1/assistant/parse", s.protected(s.handleAssistantParse))

	return s
}

// public wraps a handler with logging, rate limiting and security headers.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(next)
}

// protected additionally requires a valid bearer token and puts the owner
// into the request context.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := s.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next(w, r.WithContext(ctx))
	})
}

func (s *Server) authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", auth.ErrInvalidToken
	}
	return s.auth.VerifyToken(strings.TrimSpace(token))
}

// withSecurityHeaders adds security headers, rate limiting, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), contextKey("request_id"), requestID)
		r = r.WithContext(ctx)

		s.logs.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request detected", "client_ip", clientIP, "url", r.URL.Path)
		}

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logs.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// startCacheCleanup runs periodic cleanup of the snapshot cache.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.snapshots == nil {
				continue
			}
			if removed := s.snapshots.CleanExpired(); removed > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", removed)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
