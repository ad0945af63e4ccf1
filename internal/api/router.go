package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventuraa/server/internal/api/handlers"
	"github.com/eventuraa/server/internal/api/middleware"
	"github.com/eventuraa/server/internal/auth"
	"github.com/eventuraa/server/internal/config"
	"github.com/eventuraa/server/internal/domain/events"
	"github.com/eventuraa/server/internal/domain/users"
	"github.com/eventuraa/server/internal/metrics"
)

// Deps carries everything the router needs. Construction happens in the
// serve command; tests inject fakes.
type Deps struct {
	Config      config.Config
	Logger      zerolog.Logger
	Tokens      *auth.JWTManager
	Users       *users.Service
	UsersRepo   users.Repository
	Events      *events.Service
	AdminEvents *events.AdminService
	Pool        *pgxpool.Pool
	Version     string
	GitCommit   string
}

// NewRouter builds the full route table with its middleware chain.
func NewRouter(d Deps) http.Handler {
	env := d.Config.Environment

	authHandler := handlers.NewAuthHandler(d.Users, env)
	eventsHandler := handlers.NewEventsHandler(d.Events, env)
	adminHandler := handlers.NewAdminHandler(d.Users, d.AdminEvents, env)
	health := handlers.NewHealthChecker(d.Pool, d.Version, d.GitCommit)

	requireAuth := middleware.RequireAuth(d.Tokens, d.UsersRepo, env)
	adminOnly := middleware.RequireRole(env, auth.RoleAdmin)
	verifiedOrganizer := middleware.RequireVerifiedOrganizer(env)

	rateLimiter := middleware.NewRateLimiter(d.Config.RateLimit)
	loginLimit := rateLimiter.Limit(middleware.TierLogin)

	mux := http.NewServeMux()

	mux.Handle("/healthz", health.Health())
	mux.Handle("/readyz", handlers.Readyz())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// Registration and sign-in are the only unauthenticated write paths;
	// the login tier throttles guessing attacks per client.
	mux.Handle("/api/auth/signup", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(authHandler.Signup)),
	}))
	mux.Handle("/api/auth/organizer/signup", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(authHandler.SignupOrganizer)),
	}))
	mux.Handle("/api/auth/doctor/signup", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(authHandler.SignupDoctor)),
	}))
	mux.Handle("/api/auth/admin/signup", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(authHandler.SignupAdmin)),
	}))
	mux.Handle("/api/auth/signin", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimit(http.HandlerFunc(authHandler.Signin)),
	}))
	mux.Handle("/api/auth/profile", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(authHandler.Profile)),
	}))

	// Public catalogue: approved events only.
	mux.Handle("/api/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.List),
	}))
	mux.Handle("/api/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Get),
	}))
	mux.Handle("/api/events/{id}/reserve", methodMux(map[string]http.Handler{
		http.MethodPost: requireAuth(http.HandlerFunc(eventsHandler.Reserve)),
	}))

	// Organizer console: verified organizers only.
	organizerChain := func(h http.Handler) http.Handler {
		return requireAuth(verifiedOrganizer(h))
	}
	mux.Handle("/api/organizer/events", methodMux(map[string]http.Handler{
		http.MethodGet:  organizerChain(http.HandlerFunc(eventsHandler.ListOwn)),
		http.MethodPost: organizerChain(http.HandlerFunc(eventsHandler.Create)),
	}))
	mux.Handle("/api/organizer/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    organizerChain(http.HandlerFunc(eventsHandler.GetOwn)),
		http.MethodPut:    organizerChain(http.HandlerFunc(eventsHandler.Update)),
		http.MethodDelete: organizerChain(http.HandlerFunc(eventsHandler.Delete)),
	}))

	// Admin console.
	adminChain := func(h http.Handler) http.Handler {
		return requireAuth(adminOnly(h))
	}
	mux.Handle("/api/admin/dashboard", methodMux(map[string]http.Handler{
		http.MethodGet: adminChain(http.HandlerFunc(adminHandler.Dashboard)),
	}))
	mux.Handle("/api/admin/events", methodMux(map[string]http.Handler{
		http.MethodGet: adminChain(http.HandlerFunc(adminHandler.ListEvents)),
	}))
	mux.Handle("/api/admin/events/pending", methodMux(map[string]http.Handler{
		http.MethodGet: adminChain(http.HandlerFunc(adminHandler.ListPendingEvents)),
	}))
	mux.Handle("/api/admin/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: adminChain(http.HandlerFunc(adminHandler.GetEvent)),
	}))
	mux.Handle("/api/admin/events/{id}/review", methodMux(map[string]http.Handler{
		http.MethodPut: adminChain(http.HandlerFunc(adminHandler.ReviewEvent)),
	}))
	mux.Handle("/api/admin/organizers", methodMux(map[string]http.Handler{
		http.MethodGet: adminChain(http.HandlerFunc(adminHandler.ListOrganizers)),
	}))
	mux.Handle("/api/admin/organizers/{id}/verify", methodMux(map[string]http.Handler{
		http.MethodPut: adminChain(http.HandlerFunc(adminHandler.VerifyOrganizer)),
	}))

	var handler http.Handler = mux
	handler = middleware.RequestLogging(d.Logger)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = rateLimiter.Limit(middleware.TierPublic)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(d.Logger)(handler)
	handler = middleware.CORS(d.Config.CORS, d.Logger)(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
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
