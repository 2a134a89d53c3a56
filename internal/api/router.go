package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/xtlz/xtlz-english/internal/api/middleware"
	"github.com/xtlz/xtlz-english/internal/service"
)

// RequestTimeout bounds a single request. Draft requests wait on the
// language model and the rate limiter, so it is generous.
const RequestTimeout = 90 * time.Second

// Services are the application services exposed over HTTP.
type Services struct {
	Review     service.ReviewService
	Collection service.CollectionService
	Dashboard  service.DashboardService
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(services Services, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewTraceMiddleware(logger))
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(RequestTimeout))

	reviewHandler := NewReviewHandler(services.Review, logger)
	cardHandler := NewCardHandler(services.Collection, logger)
	ruleHandler := NewRuleHandler(services.Collection, logger)
	dashboardHandler := NewDashboardHandler(services.Dashboard, logger)
	collectionHandler := NewCollectionHandler(services.Collection, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/review", func(r chi.Router) {
			r.Get("/batch", reviewHandler.GetBatch)
			r.Post("/items/{id}/outcome", reviewHandler.SubmitOutcome)
			r.Post("/sessions", reviewHandler.CompleteSession)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.ListCards)
			r.Post("/", cardHandler.CreateCard)
			r.Post("/draft", cardHandler.DraftCard)
			r.Get("/{id}", cardHandler.GetCard)
			r.Put("/{id}", cardHandler.UpdateCard)
			r.Delete("/{id}", cardHandler.DeleteCard)
			r.Put("/{id}/favorite", cardHandler.SetFavorite)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", ruleHandler.ListRules)
			r.Post("/", ruleHandler.CreateRule)
			r.Post("/draft", ruleHandler.DraftRule)
			r.Get("/{id}", ruleHandler.GetRule)
			r.Put("/{id}", ruleHandler.UpdateRule)
			r.Delete("/{id}", ruleHandler.DeleteRule)
			r.Put("/{id}/favorite", ruleHandler.SetFavorite)
		})

		r.Get("/dashboard", dashboardHandler.GetOverview)

		r.Get("/collection", collectionHandler.Export)
		r.Put("/collection", collectionHandler.Import)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
