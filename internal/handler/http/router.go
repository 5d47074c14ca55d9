package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/remedyhub/review-service/internal/repository"
	"github.com/remedyhub/review-service/internal/service"
	"github.com/remedyhub/review-service/pkg/health"
	"github.com/remedyhub/review-service/pkg/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Submissions  *service.SubmissionService
	Lists        *service.ListService
	Reviews      *service.ReviewService
	Stats        *service.StatsService
	Interactions *service.InteractionService
	Ailments     repository.AilmentRepository
	Health       *health.Handler
	CORS         middleware.CORSConfig
	Logger       *slog.Logger
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("review"))
	r.Use(middleware.RequestLogger(deps.Logger))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	reviewHandler := NewReviewHandler(deps.Submissions, deps.Lists, deps.Reviews, deps.Stats, deps.Logger)
	interactionHandler := NewInteractionHandler(deps.Interactions, deps.Logger)
	ailmentHandler := NewAilmentHandler(deps.Ailments, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/remedies/{remedyId}/reviews", func(r chi.Router) {
			r.Post("/", reviewHandler.Submit)
			r.Get("/", reviewHandler.List)
			r.Get("/stats", reviewHandler.Stats)
		})

		r.Route("/reviews/{reviewId}", func(r chi.Router) {
			r.Get("/", reviewHandler.Get)
			r.Patch("/", reviewHandler.Update)
			r.Delete("/", reviewHandler.Delete)

			r.Post("/like", interactionHandler.ToggleLike)
			r.Get("/interactions", interactionHandler.GetInteractions)

			r.Post("/comments", interactionHandler.AddComment)
			r.Get("/comments", interactionHandler.ListComments)
		})

		r.Route("/comments/{commentId}", func(r chi.Router) {
			r.Patch("/", interactionHandler.UpdateComment)
			r.Delete("/", interactionHandler.DeleteComment)
		})

		r.Get("/ailments", ailmentHandler.List)
	})

	return r
}
