package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "eventsapi/docs"
	"eventsapi/internal/delivery/http/controllers"
	"eventsapi/internal/delivery/http/helpers"
	"eventsapi/internal/delivery/http/middleware"
	"eventsapi/internal/domain"
)

// RouterConfig carries the cross-cutting HTTP settings.
type RouterConfig struct {
	CORSAllowedOrigins []string
	// RateLimitRequests <= 0 disables per-IP rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// TokenVerifier guards write routes when set; nil leaves them open.
	TokenVerifier domain.TokenVerifier
}

// NewRouter initializes the HTTP router with all application routes and
// wraps it in the middleware chain (request id, logging, recover, CORS, rate limit).
func NewRouter(logger *slog.Logger, events *controllers.EventController, health *controllers.HealthController, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	write := func(h http.HandlerFunc) http.HandlerFunc { return h }
	if cfg.TokenVerifier != nil {
		write = middleware.RequireAuth(cfg.TokenVerifier, logger)
	}

	// API Routes
	mux.HandleFunc("GET /events", events.ListEvents)
	mux.HandleFunc("GET /events/all", events.ListAllEvents)
	mux.HandleFunc("GET /events/{id}", events.GetEvent)
	mux.HandleFunc("POST /events", write(events.CreateEvent))
	mux.HandleFunc("PUT /events/{id}", write(events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", write(events.DeleteEvent))

	// Health
	mux.HandleFunc("GET /healthz", health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = jsonFallback(mux)
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
		handler = httprate.Limit(
			cfg.RateLimitRequests,
			cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				helpers.WriteJSONError(w, http.StatusTooManyRequests, "too many requests")
			}),
		)(handler)
	}
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.Recover(logger, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	return middleware.RequestID(handler)
}

var routedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// jsonFallback answers unmatched paths and methods with the JSON error body
// instead of the mux's plain-text 404 and 405.
func jsonFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		var allowed []string
		for _, m := range routedMethods {
			alt := r.Clone(r.Context())
			alt.Method = m
			if _, pattern := mux.Handler(alt); pattern != "" {
				allowed = append(allowed, m)
			}
		}
		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			helpers.WriteJSONError(w, http.StatusMethodNotAllowed, helpers.MsgMethodNotAllowed)
			return
		}
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.MsgRouteNotFound)
	})
}
