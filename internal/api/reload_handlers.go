package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/foodiepro/api/internal/auth"
	"github.com/foodiepro/api/internal/dataset"
	"github.com/foodiepro/api/internal/middleware"
)

// ReloadHandlers holds dependencies for the dataset reload endpoint.
type ReloadHandlers struct {
	store  *dataset.Store
	loader dataset.Loader
	jwt    *auth.JWTService
	logger *slog.Logger
}

// NewReloadHandlers creates a new ReloadHandlers instance.
func NewReloadHandlers(store *dataset.Store, loader dataset.Loader, jwt *auth.JWTService, logger *slog.Logger) *ReloadHandlers {
	return &ReloadHandlers{
		store:  store,
		loader: loader,
		jwt:    jwt,
		logger: logger,
	}
}

// ReloadResponse is the response body for POST /internal/reload.
type ReloadResponse struct {
	Status   string `json:"status"`
	Places   int    `json:"places"`
	Reviews  int    `json:"reviews"`
	LoadedAt string `json:"loaded_at"`
}

// Reload handles POST /internal/reload. It loads a fresh dataset snapshot
// and swaps it in atomically; in-flight requests keep using the snapshot
// they started with.
//
// The endpoint requires a Bearer token with the ops:reload scope.
func (h *ReloadHandlers) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	claims, ok := h.authorize(w, r)
	if !ok {
		return
	}

	snap, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset reload failed",
			"error", err,
			"subject", claims.Subject,
		)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to reload dataset")
		return
	}

	h.store.Swap(snap)

	h.logger.InfoContext(r.Context(), "dataset reloaded",
		"subject", claims.Subject,
		"places", len(snap.Places),
		"reviews", len(snap.Reviews),
	)

	writeJSON(w, r, http.StatusOK, ReloadResponse{
		Status:   "reloaded",
		Places:   len(snap.Places),
		Reviews:  len(snap.Reviews),
		LoadedAt: snap.LoadedAt.UTC().Format(time.RFC3339),
	})
}

// authorize validates the Bearer token and its scope. On failure it writes
// the error response and returns ok=false.
func (h *ReloadHandlers) authorize(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Missing bearer token")
		return nil, false
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid token")
		return nil, false
	}
	if !claims.HasScope(auth.ScopeReload) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeAuthFailed, "Token lacks required scope")
		return nil, false
	}
	return claims, true
}
