package routes

import (
	"net/http"

	"github.com/zatekoja/courtside/internal/api/handlers"
	"github.com/zatekoja/courtside/internal/api/middleware"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
)

// Handlers groups the route handlers. A nil handler leaves its routes unmounted.
type Handlers struct {
	Interactions *handlers.InteractionHandler
	Moderation   *handlers.ModerationHandler
	Reviews      *handlers.ReviewHandler
	Intents      *handlers.IntentHandler
	Stream       *handlers.SSEHandler
}

// Router holds all route handlers
type Router struct {
	mux            *http.ServeMux
	handlers       Handlers
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(h Handlers, allowedOrigins []string, metrics *observability.Metrics) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		handlers:       h,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if h := r.handlers.Interactions; h != nil {
		r.mux.HandleFunc("POST /api/places/{id}/interactions", h.RecordInteraction)
		r.mux.HandleFunc("GET /api/places/{id}/weight", h.GetWeight)
	}

	if h := r.handlers.Moderation; h != nil {
		r.mux.HandleFunc("POST /api/places/{id}/edits", h.SubmitEdit)
		r.mux.HandleFunc("GET /api/places/{id}/edits/pending", h.ListPendingEdits)
		r.mux.HandleFunc("POST /api/edits/{id}/resolve", h.ResolveEdit)
	}

	if h := r.handlers.Reviews; h != nil {
		r.mux.HandleFunc("POST /api/places/{id}/reviews", h.SubmitReview)
		r.mux.HandleFunc("GET /api/places/{id}/reviews", h.ListReviews)
		r.mux.HandleFunc("PUT /api/reviews/{id}", h.UpdateReview)
	}

	if h := r.handlers.Intents; h != nil {
		r.mux.HandleFunc("POST /api/places/{id}/intents", h.CreateIntent)
		r.mux.HandleFunc("GET /api/places/{id}/timeline", h.GetTimeline)
	}

	if h := r.handlers.Stream; h != nil {
		r.mux.HandleFunc("GET /api/stream/places/{id}/timeline", h.StreamPlaceTimeline)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// Logging and observability read the matched pattern off the request the
	// mux routed, so nothing between them and the mux may copy the request.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.IdentityMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

// SetupInternalRoutes configures the routes served to trusted services only.
// They carry no caller identity and must not be exposed publicly.
func (r *Router) SetupInternalRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if h := r.handlers.Interactions; h != nil {
		mux.HandleFunc("POST /internal/places/{id}/interactions", h.RecordTrustedInteraction)
	}

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	return handler
}
