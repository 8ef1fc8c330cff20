package handler

import (
	"log/slog"
	"net/http"

	"github.com/moodtune/playlist-api/internal/service"
)

// SearchHandler exposes playlist search, ordered by popularity.
type SearchHandler struct {
	playlists *service.PlaylistService
	logger    *slog.Logger
}

func NewSearchHandler(playlists *service.PlaylistService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{playlists: playlists, logger: logger}
}

// HandleSearch searches public playlists.
//
// HTTP: GET /api/search?q=&category=&tag=&page=
//
// An empty q matches everything; the page size is fixed at 20. Results
// are ordered by like count descending, then creation time descending.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := h.playlists.Search(r.Context(), service.SearchOptions{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Tag:      r.URL.Query().Get("tag"),
		Page:     queryInt(r, "page"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Playlists: result.Playlists,
		Total:     result.Total,
		Page:      result.Page,
		Limit:     result.Limit,
	})
}
