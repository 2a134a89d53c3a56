package api

import (
	"log/slog"
	"net/http"

	"github.com/xtlz/xtlz-english/internal/api/shared"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
	"github.com/xtlz/xtlz-english/internal/service"
	"github.com/xtlz/xtlz-english/internal/store"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	collectionService service.CollectionService
	logger            *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(collectionService service.CollectionService, logger *slog.Logger) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	return &CardHandler{
		collectionService: collectionService,
		logger:            logger.With(slog.String("component", "card_handler")),
	}
}

// ListCards handles GET /api/cards. Supported query parameters are search,
// favorites, status and type.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	favorites, err := queryBool(r, "favorites")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	query := r.URL.Query()
	filter := store.CardFilter{
		Search:        query.Get("search"),
		FavoritesOnly: favorites,
		Kind:          parseCardKind(query.Get("type")),
	}
	if raw := query.Get("status"); raw != "" {
		filter.Status = parseStatus(raw)
	}

	cards, err := h.collectionService.ListCards(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	if cards == nil {
		cards = []domain.Card{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// CreateCard handles POST /api/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.collectionService.AddCard(r.Context(), req.Content(), req.AutoFill)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	log.Debug("card created", slog.String("card_id", card.ID), slog.Bool("auto_fill", req.AutoFill))
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// GetCard handles GET /api/cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.collectionService.GetCard(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// UpdateCard handles PUT /api/cards/{id}. Review progress is kept.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.collectionService.UpdateCard(r.Context(), id, req.Content())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.collectionService.DeleteCard(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetFavorite handles PUT /api/cards/{id}/favorite.
func (h *CardHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req FavoriteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.collectionService.SetCardFavorite(r.Context(), id, *req.Favorite)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DraftCard handles POST /api/cards/draft. Nothing is saved.
func (h *CardHandler) DraftCard(w http.ResponseWriter, r *http.Request) {
	var req CardDraftRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	draft, err := h.collectionService.DraftCard(r.Context(), req.Term)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, draft)
}

// parseStatus accepts status names in any case. Unknown names are passed
// through so the service rejects them.
func parseStatus(value string) domain.Status {
	status, err := domain.ParseStatus(value)
	if err != nil {
		return domain.Status(value)
	}
	return status
}
