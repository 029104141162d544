package handlers

import "net/http"

// GetMyUIDs returns the game accounts connected to the logged in user
// GET /api/users/me/uids
func (h *Handler) GetMyUIDs(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFromContext(r.Context())
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "Not logged in")
		return
	}

	uids, err := h.users.UIDs(r.Context(), username)
	if err != nil {
		h.logger.Errorw("Failed to get connections", "username", username, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.jsonResponse(w, http.StatusOK, uids)
}
