package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hashblen/stardb-api/internal/logic"
	"github.com/hashblen/stardb-api/internal/models"
	"github.com/hashblen/stardb-api/internal/worker"
)

// statusWriteTimeout bounds import status writes made after the request ended.
const statusWriteTimeout = 5 * time.Second

// ImportPaimonWishes imports the wish history of a paimon.moe backup
// @Summary Import paimon.moe wishes
// @Tags Wishes
// @Accept json
// @Produce json
// @Param body body models.PaimonImportRequest true "paimon.moe export"
// @Success 200 {object} models.ImportInfo
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 413 {object} map[string]string "Request Entity Too Large"
// @Router /paimon-wishes-import [post]
func (h *Handler) ImportPaimonWishes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImportBody)

	var req models.PaimonImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Missing export data")
		return
	}

	export, err := models.ParsePaimonExport(req.Data)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid paimon.moe export")
		return
	}

	ctx := r.Context()
	info := &models.ImportInfo{
		ID:        uuid.NewString(),
		UID:       int32(export.UID),
		Status:    models.ImportImporting,
		UpdatedAt: time.Now().UTC(),
	}
	h.setImportStatus(ctx, info)

	result, err := h.imports.ImportPaimon(ctx, export)
	if err != nil {
		status, message := importErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Errorw("Paimon import failed", "uid", info.UID, "error", err)
		}
		info.Status = models.ImportError
		info.Error = message
		info.UpdatedAt = time.Now().UTC()
		h.setImportStatus(ctx, info)
		h.errorResponse(w, status, message)
		return
	}

	info.Imported = result.Total()
	if len(result.Categories) == 0 {
		h.jsonResponse(w, http.StatusOK, h.finishImport(*info, nil))
		return
	}

	info.Status = models.ImportComputing
	info.UpdatedAt = time.Now().UTC()
	h.setImportStatus(ctx, info)

	pending := *info
	job := worker.Job{
		UID:        info.UID,
		Categories: result.Categories,
		Reason:     "import",
		Done:       func(err error) { h.finishImport(pending, err) },
	}
	if !h.queue.Enqueue(job) {
		// Recalculations of a uid only run on its worker shard, so a full
		// queue is waited on rather than bypassed.
		submitCtx, cancel := context.WithTimeout(ctx, h.submitTimeout)
		err := h.queue.Submit(submitCtx, job)
		cancel()
		if err != nil {
			// The scheduled sweep recomputes the stats later.
			h.logger.Warnw("Recalculation queue full, import left computing", "uid", info.UID, "error", err)
		}
	}

	h.jsonResponse(w, http.StatusOK, info)
}

// GetImportStatus returns the progress of the latest import of a uid
// @Summary Get import status
// @Tags Wishes
// @Produce json
// @Param uid path int true "Game uid"
// @Success 200 {object} models.ImportInfo
// @Failure 404 {object} map[string]string "Not Found"
// @Router /wishes-import/{uid} [get]
func (h *Handler) GetImportStatus(w http.ResponseWriter, r *http.Request) {
	uid, err := uidParam(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid uid")
		return
	}

	info, err := h.importStatus.Get(r.Context(), uid)
	if err != nil {
		h.logger.Errorw("Failed to load import status", "uid", uid, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load import status")
		return
	}
	if info == nil {
		h.errorResponse(w, http.StatusNotFound, "No import found")
		return
	}

	h.jsonResponse(w, http.StatusOK, info)
}

// finishImport records the outcome of the statistics recalculation. It may
// run after the request is gone, so it does not use the request context.
func (h *Handler) finishImport(info models.ImportInfo, err error) models.ImportInfo {
	info.Status = models.ImportFinished
	if err != nil {
		info.Status = models.ImportError
		info.Error = "Failed to compute statistics"
	}
	info.UpdatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()
	h.setImportStatus(ctx, &info)
	return info
}

func (h *Handler) setImportStatus(ctx context.Context, info *models.ImportInfo) {
	if err := h.importStatus.Set(ctx, info); err != nil {
		h.logger.Warnw("Failed to store import status", "uid", info.UID, "status", info.Status, "error", err)
	}
}

func importErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, logic.ErrUnknownProfile):
		return http.StatusBadRequest, "Unknown uid, load the profile first"
	case errors.Is(err, logic.ErrBadImport):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Failed to import wishes"
	}
}
