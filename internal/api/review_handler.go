package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xtlz/xtlz-english/internal/api/shared"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
	"github.com/xtlz/xtlz-english/internal/service"
)

// ReviewHandler serves review sessions.
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "review_handler")),
	}
}

// GetBatch handles GET /api/review/batch. An empty batch is a 200 with no items.
func (h *ReviewHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	batch, err := h.reviewService.NextBatch(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build review batch")
		return
	}

	items := make([]ReviewItemResponse, 0, len(batch.Items))
	for _, item := range batch.Items {
		resp := ReviewItemResponse{ID: item.ID, Kind: item.Kind, Card: item.Card}
		if item.Rule != nil {
			rule := toRuleResponse(*item.Rule, log)
			resp.Rule = &rule
		}
		items = append(items, resp)
	}

	log.Debug("review batch served", slog.Int("items", len(items)), slog.Int("due", batch.DueCount))
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewBatchResponse{
		Items:       items,
		DueCount:    batch.DueCount,
		GeneratedAt: batch.GeneratedAt.Format(time.RFC3339),
	})
}

// SubmitOutcome handles POST /api/review/items/{id}/outcome.
func (h *ReviewHandler) SubmitOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req OutcomeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reviewed, err := h.reviewService.SubmitOutcome(r.Context(), id, *req.Remembered)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit outcome")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reviewed)
}

// CompleteSession handles POST /api/review/sessions.
func (h *ReviewHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	results := make([]service.ReviewResult, 0, len(req.Results))
	for _, result := range req.Results {
		results = append(results, service.ReviewResult{ItemID: result.ItemID, Remembered: *result.Remembered})
	}

	summary, err := h.reviewService.CompleteSession(r.Context(), results)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete session")
		return
	}

	log.Info("review session completed",
		slog.Int("applied", summary.Applied),
		slog.Int("skipped", len(summary.Skipped)))
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}
