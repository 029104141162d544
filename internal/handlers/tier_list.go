package handlers

import (
	"net/http"

	"github.com/hashblen/stardb-api/internal/models"
)

// GetCommunityTierList returns the community tier list in the requested language
// @Summary Get community tier list
// @Tags Pages
// @Produce json
// @Param lang query string false "Language, defaults to en"
// @Success 200 {object} models.CommunityTierList
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /pages/community-tier-list [get]
func (h *Handler) GetCommunityTierList(w http.ResponseWriter, r *http.Request) {
	lang, err := models.ParseLanguage(r.URL.Query().Get("lang"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Unsupported language")
		return
	}

	list, err := h.tierList.GetCommunityTierList(r.Context(), lang)
	if err != nil {
		h.logger.Errorw("Failed to get community tier list", "lang", lang, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get tier list")
		return
	}

	h.jsonResponse(w, http.StatusOK, list)
}
