package routes

import (
	"net/http"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/handlers"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Emotions    *handlers.EmotionHandler
	Events      *handlers.EventsHandler
	Health      *handlers.HealthHandler
	RequireAuth *middleware.Auth
}

type Options struct {
	Log            *zap.SugaredLogger
	AllowedOrigins []string
	Production     bool
	AllowedHost    string
	// nil disables the corresponding limiter
	GlobalLimiter middleware.RateLimiter
	LoginLimiter  middleware.RateLimiter
}

// NewRouter builds the middleware stack and registers every route.
func NewRouter(h Handlers, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(opts.Log))
	r.Use(middleware.Recoverer(opts.Log))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	if opts.Production {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.HostCheck(opts.AllowedHost))
	}

	// Health check (no rate limit)
	r.Get("/health", h.Health.Health)

	r.Group(func(r chi.Router) {
		if opts.GlobalLimiter != nil {
			r.Use(middleware.RateLimit(opts.GlobalLimiter, opts.Log, "Too many requests. Please slow down."))
		}
		if opts.LoginLimiter != nil {
			r.Use(middleware.LoginRateLimit(opts.LoginLimiter, opts.Log))
		}
		SetupRoutes(r, h)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Route not found"}}`))
	})

	return r
}

func SetupRoutes(r chi.Router, h Handlers) {
	// Public auth routes
	r.Post("/auth/login", h.Auth.Login)
	r.Post("/users", h.Auth.Register)

	// Bearer-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth.Require)

		r.Get("/auth/me", h.Auth.Me)

		r.Post("/emotions", h.Emotions.Record)
		r.Get("/emotions/monthly", h.Emotions.Monthly)
		r.Get("/emotions/yearly-stats", h.Emotions.YearlyStats)
		r.Get("/emotions/history", h.Emotions.History)
	})

	// WebSocket endpoint for live entry updates; browsers pass ?token=
	r.With(h.RequireAuth.RequireWithQueryToken).Get("/ws/emotions", h.Events.Stream)
}
