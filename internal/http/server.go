package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"financetracker/internal/auth"
	"financetracker/internal/log"
	"financetracker/internal/middleware/ratelimit"
	"financetracker/internal/middleware/security"
	"financetracker/internal/middleware/trace"
	"financetracker/internal/services"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	DB           Pinger
	Issuer       *auth.Issuer
	Accounts     *services.AccountService
	Transactions *services.TransactionService
	Categories   *services.CategoryService
	Budgets      *services.BudgetService
	Dashboard    *services.DashboardService
	Logger       *log.Logger
}

// Options tune the middleware stack.
type Options struct {
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	deps   Deps
	logger *log.Logger

	traceMiddleware  *trace.Middleware
	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	startedAt        time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.FromContext(context.Background())
	}

	s := &Server{
		deps:             deps,
		logger:           logger.WithComponent(log.ComponentHTTP),
		securityDetector: security.NewDetector(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		startedAt:        time.Now(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health/{$}", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("POST /register/{$}", s.handleRegister)
	mux.HandleFunc("POST /login/{$}", s.handleLogin)

	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.requireAuth(h))
	}
	protected("GET /{$}", s.handleDashboard)
	protected("GET /dashboard", s.handleDashboard)
	protected("GET /dashboard/{$}", s.handleDashboard)

	protected("GET /transactions/{$}", s.handleListTransactions)
	protected("GET /transactions/export.xlsx", s.handleExportTransactions)
	protected("POST /transactions/create/{$}", s.handleCreateTransaction)
	protected("GET /transactions/{id}/{$}", s.handleGetTransaction)
	protected("POST /transactions/{id}/edit/{$}", s.handleUpdateTransaction)
	protected("PUT /transactions/{id}/edit/{$}", s.handleUpdateTransaction)
	protected("POST /transactions/{id}/delete/{$}", s.handleDeleteTransaction)
	protected("DELETE /transactions/{id}/delete/{$}", s.handleDeleteTransaction)

	protected("GET /categories/{$}", s.handleListCategories)
	protected("POST /categories/create/{$}", s.handleCreateCategory)

	protected("GET /budgets/{$}", s.handleListBudgets)
	protected("POST /budgets/create/{$}", s.handleCreateBudget)
}

// requireAuth accepts "Authorization: Bearer <jwt>" and stores the principal in the context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			UnauthorizedError("Authentication credentials were not provided.").Write(w)
			return
		}

		claims, err := s.deps.Issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			log.FromContext(r.Context()).WithComponent(log.ComponentAuth).DebugContext(r.Context(),
				"Rejected bearer token", log.FieldError, err)
			UnauthorizedError("Invalid or expired token.").Write(w)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			UnauthorizedError("Invalid or expired token.").Write(w)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), auth.Principal{UserID: userID, Username: claims.Username})
		ctx = log.WithContext(ctx, log.FromContext(ctx).With(log.FieldUserID, userID))
		next(w, r.WithContext(ctx))
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// userID returns the authenticated user. Only called behind requireAuth.
func userID(r *http.Request) int64 {
	p, _ := auth.PrincipalFrom(r.Context())
	return p.UserID
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
