package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"retro-backend/application/ports"
	"retro-backend/interfaces/http/rest/handlers"
	"retro-backend/interfaces/http/rest/middleware"
	ws "retro-backend/interfaces/websocket"
	"retro-backend/pkg/auth"
	"retro-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	sessionHandler *handlers.SessionHandler
	noteHandler    *handlers.NoteHandler
	wsHandler      *ws.Handler
	tokens         *auth.TokenService
	pinger         ports.StorePinger
	metrics        *observability.Collector
	enableCORS     bool
	logger         *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	sessionHandler *handlers.SessionHandler,
	noteHandler *handlers.NoteHandler,
	wsHandler *ws.Handler,
	tokens *auth.TokenService,
	pinger ports.StorePinger,
	metrics *observability.Collector,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		sessionHandler: sessionHandler,
		noteHandler:    noteHandler,
		wsHandler:      wsHandler,
		tokens:         tokens,
		pinger:         pinger,
		metrics:        metrics,
		enableCORS:     enableCORS,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Operational endpoints
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		// Entry points establish identity; no token yet.
		r.Post("/sessions", rt.sessionHandler.CreateSession)
		r.Post("/sessions/join", rt.sessionHandler.JoinSession)

		// The websocket dial authenticates itself via query parameter.
		r.Get("/sessions/{sessionID}/ws", rt.wsHandler.Serve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokens))

			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Get("/", rt.sessionHandler.GetSession)
				r.Post("/phase/advance", rt.sessionHandler.AdvancePhase)
				r.Put("/participants/{participantID}/completed", rt.sessionHandler.SetCompleted)

				r.Route("/notes", func(r chi.Router) {
					r.Get("/", rt.noteHandler.ListNotes)
					r.Post("/", rt.noteHandler.CreateNote)
					r.Get("/{noteID}", rt.noteHandler.GetNote)
					r.Patch("/{noteID}", rt.noteHandler.UpdateNote)
					r.Delete("/{noteID}", rt.noteHandler.DeleteNote)
				})
			})
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := rt.pinger.Ping(ctx); err != nil {
		rt.logger.Warn("readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
