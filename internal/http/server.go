// Package http exposes the JSON API: auth, transactions, settings,
// reports and exports.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/auth"
	"finboard/internal/services"
	"finboard/internal/store"
)

// ExportPublisher queues async export jobs. *amqp.Client implements
// it; nil disables POST /api/export.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

type Server struct {
	http.Server

	transactions *services.TransactionService
	settings     *services.SettingsService
	authSvc      *auth.Service
	txStore      store.TransactionStore
	publisher    ExportPublisher

	rateLimiter *rateLimiter
	// injectable clock so budget reports are deterministic in tests
	now func() time.Time
	// optional backend probe for readiness
	readyCheck func(ctx context.Context) error

	shutdownOnce sync.Once
}

// Options carries the optional server collaborators.
type Options struct {
	Publisher  ExportPublisher
	ReadyCheck func(ctx context.Context) error
	Now        func() time.Time
}

func NewServer(addr string, txService *services.TransactionService, settingsService *services.SettingsService, authService *auth.Service, txStore store.TransactionStore, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		transactions: txService,
		settings:     settingsService,
		authSvc:      authService,
		txStore:      txStore,
		publisher:    opts.Publisher,
		rateLimiter:  newRateLimiter(),
		now:          opts.Now,
		readyCheck:   opts.ReadyCheck,
	}
	if s.now == nil {
		s.now = time.Now
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/api/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/api/logout", s.withSecurityHeaders(s.requireAuth(s.handleLogout)))

	mux.HandleFunc("/api/transactions", s.withSecurityHeaders(s.requireAuth(s.handleTransactions)))
	mux.HandleFunc("/api/transactions/", s.withSecurityHeaders(s.requireAuth(s.handleTransactionByID)))
	mux.HandleFunc("/api/settings", s.withSecurityHeaders(s.requireAuth(s.handleSettings)))
	mux.HandleFunc("/api/categories", s.withSecurityHeaders(s.requireAuth(s.handleCategories)))

	mux.HandleFunc("/api/dashboard", s.withSecurityHeaders(s.requireAuth(s.handleDashboard)))
	mux.HandleFunc("/api/reports/trend", s.withSecurityHeaders(s.requireAuth(s.handleTrendReport)))
	mux.HandleFunc("/api/reports/categories", s.withSecurityHeaders(s.requireAuth(s.handleCategoryReport)))
	mux.HandleFunc("/api/reports/balance", s.withSecurityHeaders(s.requireAuth(s.handleBalanceReport)))
	mux.HandleFunc("/api/reports/budget", s.withSecurityHeaders(s.requireAuth(s.handleBudgetReport)))

	mux.HandleFunc("/api/export", s.withSecurityHeaders(s.requireAuth(s.handleExport)))

	return s
}

// withSecurityHeaders adds security headers, per-IP rate limiting on
// mutations, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// requireAuth resolves the bearer token (or session cookie) to a
// session and rejects the request when neither is valid.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		sess, ok := s.authSvc.SessionFor(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next(w, r.WithContext(ctx))
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	sessionKey   contextKey = "session"
)

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(buf)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readyCheck != nil {
		if err := s.readyCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "backend not ready")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the listener and the rate limiter janitor.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
