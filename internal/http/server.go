// Package http is the REST surface of the ledger. Handlers decode JSON,
// resolve the session, call into services and map the error taxonomy to
// status codes; no business rules live here.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"moncash/internal/cache"
	"moncash/internal/core"
	"moncash/internal/services"
)

const sessionCookie = "moncash_session"

type Server struct {
	http.Server

	auth    *services.AuthService
	ledger  *services.LedgerService
	reports *services.ReportService

	sessionTTL  time.Duration
	rateLimiter *rateLimiter

	// Per-user summary cache, invalidated on every transaction mutation.
	// Keys embed a per-user generation; bumping it orphans stale entries,
	// which then age out through the TTL.
	summaryCache *cache.LRUCache[core.Summary]
	generationMu sync.Mutex
	generations  map[int64]userGeneration

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// reports may be nil when neither SMTP nor AMQP is configured; the report
// routes then answer 503.
func NewServer(addr string, auth *services.AuthService, ledger *services.LedgerService, reports *services.ReportService, sessionTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:             auth,
		ledger:           ledger,
		reports:          reports,
		sessionTTL:       sessionTTL,
		rateLimiter:      newRateLimiter(),
		summaryCache:     cache.NewLRUCache[core.Summary](500, summaryCacheTTL),
		generations:      make(map[int64]userGeneration),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("POST /login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("POST /auth/google", s.withMiddleware(s.handleGoogleLogin))
	mux.HandleFunc("POST /logout", s.withMiddleware(s.requireAuth(s.handleLogout)))
	mux.HandleFunc("GET /me", s.withMiddleware(s.requireAuth(s.handleMe)))
	mux.HandleFunc("PUT /profile", s.withMiddleware(s.requireAuth(s.handleUpdateProfile)))

	mux.HandleFunc("GET /transactions", s.withMiddleware(s.requireAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /transactions", s.withMiddleware(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("PUT /transactions/{id}", s.withMiddleware(s.requireAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /transactions/{id}", s.withMiddleware(s.requireAuth(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /debts", s.withMiddleware(s.requireAuth(s.handleListDebts)))
	mux.HandleFunc("POST /debts", s.withMiddleware(s.requireAuth(s.handleCreateDebt)))
	mux.HandleFunc("PUT /debts/{id}", s.withMiddleware(s.requireAuth(s.handleUpdateDebt)))
	mux.HandleFunc("PUT /debts/{id}/status", s.withMiddleware(s.requireAuth(s.handleSetDebtStatus)))
	mux.HandleFunc("DELETE /debts/{id}", s.withMiddleware(s.requireAuth(s.handleDeleteDebt)))

	mux.HandleFunc("GET /summary", s.withMiddleware(s.requireAuth(s.handleSummary)))

	mux.HandleFunc("GET /reports/monthly", s.withMiddleware(s.requireAuth(s.handleMonthlyReportPreview)))
	mux.HandleFunc("POST /reports/monthly", s.withMiddleware(s.requireAuth(s.handleSendMonthlyReport)))
	mux.HandleFunc("GET /reports/debts", s.withMiddleware(s.requireAuth(s.handleDebtReportPreview)))
	mux.HandleFunc("POST /reports/debts", s.withMiddleware(s.requireAuth(s.handleSendDebtReport)))

	return s
}

// withMiddleware adds security headers, rate limiting on mutating methods,
// and request logging with a generated request id.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientIP(r)
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "rate limit exceeded", "client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

// authedHandler receives the user id the session resolved to.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// requireAuth resolves the session cookie and rejects with 401 when it is
// missing, expired or unknown.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		userID, err := s.auth.SessionUserID(r.Context(), token)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		next(w, r, userID)
	}
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

const summaryCacheTTL = 5 * time.Minute

// userGeneration tracks the cache generation for one user and when it was
// last touched, so idle counters can be evicted.
type userGeneration struct {
	gen     uint64
	touched time.Time
}

func (s *Server) summaryCacheKey(userID int64, r *core.DateRange) string {
	s.generationMu.Lock()
	g := s.generations[userID]
	g.touched = time.Now()
	s.generations[userID] = g
	s.generationMu.Unlock()

	key := strconv.FormatInt(userID, 10) + ":" + strconv.FormatUint(g.gen, 10)
	if r != nil {
		key += ":" + r.Start.String() + ":" + r.End.String()
	}
	return key
}

// invalidateSummaries orphans every cached summary for the user by bumping
// the generation; stale entries age out through the TTL.
func (s *Server) invalidateSummaries(userID int64) {
	s.generationMu.Lock()
	g := s.generations[userID]
	g.gen++
	g.touched = time.Now()
	s.generations[userID] = g
	s.generationMu.Unlock()
}

// pruneGenerations drops counters idle for longer than the cache TTL. Any
// entry cached under such a counter has already expired, so a fresh counter
// restarting at zero cannot resurrect it.
func (s *Server) pruneGenerations() int {
	cutoff := time.Now().Add(-summaryCacheTTL)
	s.generationMu.Lock()
	defer s.generationMu.Unlock()
	pruned := 0
	for userID, g := range s.generations {
		if g.touched.Before(cutoff) {
			delete(s.generations, userID)
			pruned++
		}
	}
	return pruned
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.summaryCache.CleanExpired()
			pruned := s.pruneGenerations()
			if cleaned > 0 || pruned > 0 {
				slog.Debug("summary cache cleanup completed", "entries_removed", cleaned, "generations_pruned", pruned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the janitor goroutines and then the listener.
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

type contextKey string

const requestIDKey contextKey = "request_id"

// clientIP keys the rate limiter on the connection's peer address.
// Forwarded-for headers are client-supplied and would let a caller rotate
// identities, so they are ignored; a trusted reverse proxy would need its
// own handling here.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
