package api

import (
	"log/slog"
	"net/http"

	"github.com/xtlz/xtlz-english/internal/api/shared"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
	"github.com/xtlz/xtlz-english/internal/redact"
	"github.com/xtlz/xtlz-english/internal/service"
	"github.com/xtlz/xtlz-english/internal/store"
)

// RuleHandler handles grammar rule requests. Every rule in a response
// carries its explanation rendered to HTML.
type RuleHandler struct {
	collectionService service.CollectionService
	logger            *slog.Logger
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(collectionService service.CollectionService, logger *slog.Logger) *RuleHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RuleHandler")
	}
	return &RuleHandler{
		collectionService: collectionService,
		logger:            logger.With(slog.String("component", "rule_handler")),
	}
}

// ListRules handles GET /api/rules with the search, favorites and status
// query parameters.
func (h *RuleHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	favorites, err := queryBool(r, "favorites")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	query := r.URL.Query()
	filter := store.RuleFilter{Search: query.Get("search"), FavoritesOnly: favorites}
	if raw := query.Get("status"); raw != "" {
		filter.Status = parseStatus(raw)
	}

	rules, err := h.collectionService.ListRules(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list rules")
		return
	}

	resp := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		resp = append(resp, toRuleResponse(rule, log))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateRule handles POST /api/rules.
func (h *RuleHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RuleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rule, err := h.collectionService.AddRule(r.Context(), req.Content())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create rule")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, toRuleResponse(*rule, log))
}

// GetRule handles GET /api/rules/{id}.
func (h *RuleHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	rule, err := h.collectionService.GetRule(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get rule")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toRuleResponse(*rule, log))
}

// UpdateRule handles PUT /api/rules/{id}.
func (h *RuleHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req RuleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rule, err := h.collectionService.UpdateRule(r.Context(), id, req.Content())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update rule")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toRuleResponse(*rule, log))
}

// DeleteRule handles DELETE /api/rules/{id}.
func (h *RuleHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.collectionService.DeleteRule(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete rule")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetFavorite handles PUT /api/rules/{id}/favorite.
func (h *RuleHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req FavoriteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rule, err := h.collectionService.SetRuleFavorite(r.Context(), id, *req.Favorite)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update rule")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toRuleResponse(*rule, log))
}

// DraftRule handles POST /api/rules/draft. Nothing is saved.
func (h *RuleHandler) DraftRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RuleDraftRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	draft, err := h.collectionService.DraftRule(r.Context(), req.Topic)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RuleDraftResponse{
		RuleDraft:       *draft,
		ExplanationHTML: renderExplanation(draft.Explanation, log),
	})
}

func toRuleResponse(rule domain.Rule, log *slog.Logger) RuleResponse {
	return RuleResponse{Rule: rule, ExplanationHTML: renderExplanation(rule.Explanation, log)}
}

// renderExplanation falls back to an empty string when rendering fails.
// The markdown source is still in the response.
func renderExplanation(source string, log *slog.Logger) string {
	html, err := RenderMarkdown(source)
	if err != nil {
		log.Warn("failed to render rule explanation", slog.String("error", redact.Error(err)))
		return ""
	}
	return html
}
