package handlers

import (
	"net/http"

	"github.com/hashblen/stardb-api/internal/gacha"
	"github.com/hashblen/stardb-api/internal/models"
)

// GetWishesStats returns the luck and 50/50 statistics of every banner
// @Summary Get wish statistics
// @Tags Wishes
// @Produce json
// @Param uid path int true "Game uid"
// @Success 200 {object} map[string]models.WishStat
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /gi/wishes-stats/{uid} [get]
func (h *Handler) GetWishesStats(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid uid")
		return
	}

	stats, err := h.stats.GetStats(r.Context(), uid)
	if err != nil {
		h.logger.Errorw("Failed to get wish stats", "uid", uid, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get wish stats")
		return
	}

	// Banners without statistics are reported as null.
	response := make(map[gacha.Category]*models.WishStat, len(gacha.Categories))
	for _, c := range gacha.Categories {
		response[c] = stats[c]
	}

	h.jsonResponse(w, http.StatusOK, response)
}
