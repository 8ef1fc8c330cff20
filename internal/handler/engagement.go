package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/moodtune/playlist-api/internal/identity"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/service"
)

// EngagementHandler exposes likes, bookmarks, and comments.
type EngagementHandler struct {
	engagements *service.EngagementService
	logger      *slog.Logger
}

func NewEngagementHandler(engagements *service.EngagementService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{engagements: engagements, logger: logger}
}

// HandleLike likes a playlist on behalf of the requester.
//
// HTTP: POST /api/playlists/{id}/like (auth required)
// 201 on a new like; 409 if this user already liked it (the like count is
// untouched either way on conflict).
func (h *EngagementHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	if err := h.engagements.Like(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"liked": true})
}

// HandleUnlike removes the requester's like.
//
// HTTP: DELETE /api/playlists/{id}/like (auth required)
// 204 on removal; 404 if the user never liked this playlist.
func (h *EngagementHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	if err := h.engagements.Unlike(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleBookmark bookmarks a playlist.
//
// HTTP: POST /api/playlists/{id}/bookmark (auth required)
func (h *EngagementHandler) HandleBookmark(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	if err := h.engagements.Bookmark(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"bookmarked": true})
}

// HandleUnbookmark removes the requester's bookmark.
//
// HTTP: DELETE /api/playlists/{id}/bookmark (auth required)
func (h *EngagementHandler) HandleUnbookmark(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	if err := h.engagements.Unbookmark(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bookmarksResponse struct {
	Bookmarks []model.Bookmark `json:"bookmarks"`
}

// HandleListBookmarks returns the requester's bookmark feed with the
// bookmarked playlists (and their owners) embedded.
//
// HTTP: GET /api/bookmarks (auth required)
func (h *EngagementHandler) HandleListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	bookmarks, err := h.engagements.Bookmarks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}

	writeJSON(w, http.StatusOK, bookmarksResponse{Bookmarks: bookmarks})
}

type commentsResponse struct {
	Comments []model.Comment `json:"comments"`
}

type commentResponse struct {
	Comment *model.Comment `json:"comment"`
}

// HandleListComments returns a playlist's comments, oldest first.
//
// HTTP: GET /api/playlists/{id}/comments
func (h *EngagementHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.engagements.Comments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commentsResponse{Comments: comments})
}

// HandleCreateComment attaches a comment to a playlist.
//
// HTTP: POST /api/playlists/{id}/comments (auth required)
// BODY: {"content": "..."}
func (h *EngagementHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	comment, err := h.engagements.AddComment(r.Context(), userID, r.PathValue("id"), body.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentResponse{Comment: comment})
}

// HandleDeleteComment removes the requester's own comment.
//
// HTTP: DELETE /api/comments/{id} (auth required)
// 404 if absent, 403 if the requester isn't the author.
func (h *EngagementHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	if err := h.engagements.DeleteComment(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
