package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/moodtune/playlist-api/internal/identity"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/service"
)

// PlaylistHandler exposes playlist CRUD and the public feed.
type PlaylistHandler struct {
	playlists *service.PlaylistService
	logger    *slog.Logger
}

func NewPlaylistHandler(playlists *service.PlaylistService, logger *slog.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, logger: logger}
}

// listResponse is the paginated envelope shared by the feed and search.
type listResponse struct {
	Playlists []model.Playlist `json:"playlists"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	Limit     int              `json:"limit"`
}

type playlistResponse struct {
	Playlist *model.Playlist `json:"playlist"`
}

type playlistsResponse struct {
	Playlists []model.Playlist `json:"playlists"`
}

// HandleList returns the public feed.
//
// HTTP: GET /api/playlists?category=&tag=&page=&limit=
//
// Unparseable page/limit values fall back to defaults rather than 400 —
// the service clamps everything to a sane range.
func (h *PlaylistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := h.playlists.ListPublic(r.Context(), service.ListOptions{
		Category: r.URL.Query().Get("category"),
		Tag:      r.URL.Query().Get("tag"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
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

// HandleGetByID returns a public playlist's detail and counts the view.
//
// HTTP: GET /api/playlists/{id}
// 404 if absent, 403 if private — in that order.
func (h *PlaylistHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playlistResponse{Playlist: playlist})
}

// HandleListMine returns all of the requester's playlists, private ones
// included.
//
// HTTP: GET /api/playlists/my (auth required)
func (h *PlaylistHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	playlists, err := h.playlists.ListMine(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if playlists == nil {
		playlists = []model.Playlist{}
	}

	writeJSON(w, http.StatusOK, playlistsResponse{Playlists: playlists})
}

// HandleCreate creates a playlist owned by the requester.
//
// HTTP: POST /api/playlists (auth required)
func (h *PlaylistHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var input service.PlaylistInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid playlist JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	playlist, err := h.playlists.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, playlistResponse{Playlist: playlist})
}

// HandleUpdate applies a partial update to the requester's playlist.
//
// HTTP: PUT /api/playlists/{id} (auth required)
// 404 if absent, 403 if not the owner.
func (h *PlaylistHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var patch service.PlaylistPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.Warn("invalid playlist JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	playlist, err := h.playlists.Update(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playlistResponse{Playlist: playlist})
}

// HandleDelete removes the requester's playlist and everything attached
// to it.
//
// HTTP: DELETE /api/playlists/{id} (auth required)
func (h *PlaylistHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	if err := h.playlists.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter, returning 0 (which the
// service treats as "use the default") when missing or malformed.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
