package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/models"
	"github.com/Asna-1994/ArticleSphere/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler { return &UserHandler{svc: s} }

// @Summary Perfil propio
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/users/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetProfile(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// @Summary Actualizar perfil (parcial)
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.UpdateUserRequest true "campos opcionales"
// @Success 200 {object} map[string]any
// @Router /api/users/profile [patch]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(err.Error()))
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), UserIDFromContext(r.Context()), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// @Summary Reemplazar preferencias de categorías
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.UpdatePreferencesRequest true "ids de categorías"
// @Success 200 {object} map[string]any
// @Router /api/users/preferences [patch]
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(err.Error()))
		return
	}

	u, err := h.svc.UpdatePreferences(r.Context(), UserIDFromContext(r.Context()), req.Preferences)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
