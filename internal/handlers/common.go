package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hashblen/stardb-api/internal/logic"
)

type contextKey string

const usernameKey contextKey = "username"

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := make(map[string]bool, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		err := check(ctx)
		checks[name] = err == nil
		if err != nil {
			allHealthy = false
			h.logger.Warnw("Readiness check failed", "check", name, "error", err)
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"queueDepth": h.queue.QueueDepth(),
	})
}

// SessionMiddleware resolves the session cookie to a username. Requests
// without a valid session continue anonymously.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		username, err := h.sessions.Username(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, logic.ErrNotFound) {
				h.logger.Errorw("Session lookup failed", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose session user is not an admin.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := usernameFromContext(r.Context())
		if !ok {
			h.errorResponse(w, http.StatusUnauthorized, "Not logged in")
			return
		}

		admin, err := h.users.IsAdmin(r.Context(), username)
		if err != nil {
			h.logger.Errorw("Admin lookup failed", "username", username, "error", err)
			h.errorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !admin {
			h.errorResponse(w, http.StatusForbidden, "Admin only")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PrivateMiddleware guards internal routes with the x-api-key header.
func (h *Handler) PrivateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-api-key")
		if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) != 1 {
			h.errorResponse(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func usernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok && username != ""
}

// uidParam parses the {uid} route parameter.
func uidParam(r *http.Request) (int32, error) {
	uid, err := strconv.ParseInt(chi.URLParam(r, "uid"), 10, 32)
	if err != nil || uid <= 0 {
		return 0, errors.New("invalid uid")
	}
	return int32(uid), nil
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
