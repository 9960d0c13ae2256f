package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"financas/internal/api"
	"financas/internal/core"
	ilog "financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/services"
	"financas/internal/session"
	appweb "financas/web"
)

// Authenticator is the part of the remote API that works without a session.
type Authenticator interface {
	Login(ctx context.Context, in core.Credentials) (api.AuthResult, error)
	Register(ctx context.Context, in core.Registration) (api.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, in core.PasswordReset) error
}

// Pinger reports whether a dependency is ready to serve.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr               string
	CookieSecure       bool
	RateLimitPerMinute int
	TrustedProxies     []string
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Auth      Authenticator
	Sessions  *session.Manager
	Dashboard *services.DashboardService
	Goals     *services.GoalService
	Reminders *services.ReminderService
	ViewCache *services.ViewCache
	Ready     Pinger
	Clock     services.Clock
	Logger    *ilog.Logger
}

type Server struct {
	http.Server
	deps      Deps
	opts      Options
	templates *template.Template
	logger    *ilog.Logger
	events    *ilog.StructuredLogger

	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires the router. The returned
// server is ready for ListenAndServe.
func NewServer(opts Options, deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = ilog.New(ilog.DefaultConfig())
	}
	logger = logger.WithComponent(ilog.ComponentHTTP)

	tmpl, err := parseTemplates(appweb.TemplatesFS)
	if err != nil {
		return nil, err
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	limit := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limit.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		deps:      deps,
		opts:      opts,
		templates: tmpl,
		logger:    logger,
		events:    ilog.NewStructuredLogger(logger),
		detector:  detector,
		limiter:   ratelimit.NewLimiter(limit),
	}
	s.tracer = trace.NewMiddleware(detector.ExtractClientIP, s.events)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.detector.Middleware)
	r.Use(s.tracer.Middleware)
	r.Use(ilog.Middleware(s.logger, trace.GetRequestID))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited, http.MethodPost))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.newMetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(security.NoStore)

		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Get("/register", s.handleRegisterPage)
		r.Post("/register", s.handleRegister)
		r.Get("/forgot-password", s.handleForgotPasswordPage)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/verify-reset-code", s.handleVerifyResetCode)
		r.Post("/reset-password", s.handleResetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(security.NoStore)
		r.Use(s.requireSession)

		r.Get("/", s.handleDashboard)
		r.Get("/ui/summary", s.handleSummary)
		r.Get("/ui/transactions", s.handleTransactions)
		r.Get("/ui/insights", s.handleInsights)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
		r.Get("/transactions/export", s.handleExport)

		r.Get("/charts", s.handleChartsPage)
		r.Get("/api/charts/monthly", s.handleMonthlyChart)

		r.Get("/goals", s.handleGoalsPage)
		r.Get("/ui/goals", s.handleGoalList)
		r.Post("/goals", s.handleCreateGoal)
		r.Put("/goals/{id}", s.handleUpdateGoal)
		r.Delete("/goals/{id}", s.handleDeleteGoal)
		r.Post("/goals/{id}/contribute", s.handleContribute)

		r.Get("/reminders", s.handleReminders)
		r.Post("/reminders/{id}/paid", s.handleMarkPaid)

		r.Post("/logout", s.handleLogout)
	})
	return r
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
