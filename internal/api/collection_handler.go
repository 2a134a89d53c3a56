package api

import (
	"log/slog"
	"net/http"

	"github.com/xtlz/xtlz-english/internal/api/shared"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
	"github.com/xtlz/xtlz-english/internal/service"
)

// CollectionHandler exports and imports the whole collection.
type CollectionHandler struct {
	collectionService service.CollectionService
	logger            *slog.Logger
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionService service.CollectionService, logger *slog.Logger) *CollectionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CollectionHandler")
	}
	return &CollectionHandler{
		collectionService: collectionService,
		logger:            logger.With(slog.String("component", "collection_handler")),
	}
}

// Export handles GET /api/collection. With ?download the response is sent
// as a file attachment.
func (h *CollectionHandler) Export(w http.ResponseWriter, r *http.Request) {
	download, err := queryBool(r, "download")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	collection, err := h.collectionService.Export(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export collection")
		return
	}

	if download {
		w.Header().Set("Content-Disposition", `attachment; filename="xtlz-collection.json"`)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, collection)
}

// Import handles PUT /api/collection. With ?replace=true items missing from
// the body are deleted. The body is the document produced by Export.
func (h *CollectionHandler) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	replace, err := queryBool(r, "replace")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var collection domain.Collection
	if err := shared.DecodeJSON(w, r, &collection); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid collection format", err)
		return
	}

	if err := h.collectionService.Import(r.Context(), &collection, replace); err != nil {
		HandleAPIError(w, r, err, "Failed to import collection")
		return
	}

	log.Info("collection imported",
		slog.Int("cards", len(collection.Cards)),
		slog.Int("rules", len(collection.Rules)),
		slog.Bool("replace", replace))
	shared.RespondWithJSON(w, r, http.StatusOK, ImportResponse{
		Cards:    len(collection.Cards),
		Rules:    len(collection.Rules),
		Replaced: replace,
	})
}

