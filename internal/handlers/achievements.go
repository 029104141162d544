package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hashblen/stardb-api/internal/logic"
	"github.com/hashblen/stardb-api/internal/models"
)

// PutAchievementComment sets the guide comment of an achievement
// PUT /api/achievements/{id}/comment
func (h *Handler) PutAchievementComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid achievement ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	var req models.CommentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Comment must be between 1 and 4096 characters")
		return
	}

	if err := h.achievements.SetComment(r.Context(), id, req.Comment); err != nil {
		h.achievementError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAchievementComment removes the guide comment of an achievement
// DELETE /api/achievements/{id}/comment
func (h *Handler) DeleteAchievementComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid achievement ID")
		return
	}

	if err := h.achievements.DeleteComment(r.Context(), id); err != nil {
		h.achievementError(w, id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) achievementError(w http.ResponseWriter, id int64, err error) {
	if errors.Is(err, logic.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Achievement not found")
		return
	}
	h.logger.Errorw("Failed to update achievement comment", "id", id, "error", err)
	h.errorResponse(w, http.StatusInternalServerError, "Database error")
}
