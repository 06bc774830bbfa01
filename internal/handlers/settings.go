package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mosswell/inkwell/internal/models"
	pkghttp "github.com/mosswell/inkwell/pkg/http"
)

// SettingRepositoryInterface defines the storage operations for settings.
// Settings are plain key/value rows; there is no service layer between the
// handler and the repository.
type SettingRepositoryInterface interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) (*models.Setting, error)
}

// SettingHandler handles site settings HTTP requests
type SettingHandler struct {
	repo SettingRepositoryInterface
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(repo SettingRepositoryInterface) *SettingHandler {
	return &SettingHandler{repo: repo}
}

// UpsertSettingRequest represents the request body for a settings write
type UpsertSettingRequest struct {
	Key         string  `json:"key" validate:"required,min=1,max=100"`
	Value       string  `json:"value" validate:"required"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// List returns all site settings.
func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"settings": settings,
	})
}

// Upsert creates or replaces a setting value.
func (h *SettingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	setting, err := h.repo.Upsert(r.Context(), &models.Setting{
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"setting": setting,
	})
}
