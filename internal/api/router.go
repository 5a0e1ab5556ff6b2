package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gatherhub/server/internal/api/handlers"
	"github.com/gatherhub/server/internal/api/middleware"
	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/config"
	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/notifications"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/email"
	"github.com/gatherhub/server/internal/metrics"
	"github.com/gatherhub/server/internal/realtime"
	"github.com/gatherhub/server/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps carries everything the router needs; the serve command wires it up.
type Deps struct {
	Config config.Config
	Logger zerolog.Logger
	Repo   storage.Repository
	DB     handlers.Pinger
	Hub    *realtime.Hub
	Mailer *email.Service
}

// NewRouter builds the full HTTP surface with per-route role policy.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logger := deps.Logger
	repo := deps.Repo

	userService := users.NewService(repo.Users(), logger)
	broadcaster := notifications.NewBroadcaster(repo.Notifications(), logger)
	notificationService := notifications.NewService(repo.Notifications(), logger)
	eventService := events.NewService(repo.Events(), repo.RSVPs(), repo.Users(), broadcaster, deps.Hub, logger)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)

	authHandler := handlers.NewAuthHandler(userService, jwtManager, deps.Mailer)
	eventsHandler := handlers.NewEventsHandler(eventService)
	notificationsHandler := handlers.NewNotificationsHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(userService)

	authed := middleware.Authenticate(jwtManager)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)
	organizerOnly := middleware.RequireRole(auth.RoleOrganizer)

	// One limiter store shared between the global public tier and the
	// stricter login tier applied inside the /login route.
	rateLimiter := middleware.RateLimit(cfg.RateLimit)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)

	mux := http.NewServeMux()

	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(deps.DB))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/signup", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Signup),
	}))
	mux.Handle("/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginTier(rateLimiter(http.HandlerFunc(authHandler.Login))),
	}))

	mux.Handle("/events", methodMux(map[string]http.Handler{
		http.MethodGet:  authed(http.HandlerFunc(eventsHandler.List)),
		http.MethodPost: authed(adminOnly(http.HandlerFunc(eventsHandler.Create))),
	}))
	mux.Handle("/events/suggest", methodMux(map[string]http.Handler{
		http.MethodPost: authed(organizerOnly(http.HandlerFunc(eventsHandler.Suggest))),
	}))
	mux.Handle("/events/pending", methodMux(map[string]http.Handler{
		http.MethodGet: authed(adminOnly(http.HandlerFunc(eventsHandler.Pending))),
	}))
	mux.Handle("/events/{id}/approve", methodMux(map[string]http.Handler{
		http.MethodPut: authed(adminOnly(http.HandlerFunc(eventsHandler.Approve))),
	}))
	mux.Handle("/events/{id}/rsvp", methodMux(map[string]http.Handler{
		http.MethodPost: authed(http.HandlerFunc(eventsHandler.RSVP)),
	}))

	mux.Handle("/notifications", methodMux(map[string]http.Handler{
		http.MethodGet: authed(http.HandlerFunc(notificationsHandler.List)),
	}))
	mux.Handle("/notifications/{id}/read", methodMux(map[string]http.Handler{
		http.MethodPut: authed(http.HandlerFunc(notificationsHandler.MarkRead)),
	}))

	mux.Handle("/admin/stats", methodMux(map[string]http.Handler{
		http.MethodGet: authed(adminOnly(http.HandlerFunc(adminHandler.Stats))),
	}))
	mux.Handle("/admin/users", methodMux(map[string]http.Handler{
		http.MethodGet: authed(adminOnly(http.HandlerFunc(adminHandler.ListUsers))),
	}))
	mux.Handle("/admin/users/{id}/role", methodMux(map[string]http.Handler{
		http.MethodPut: authed(adminOnly(http.HandlerFunc(adminHandler.UpdateRole))),
	}))

	var handler http.Handler = mux
	handler = rateLimiter(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
