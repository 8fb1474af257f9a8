package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/models"
	"github.com/Asna-1994/ArticleSphere/internal/service"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryHandler struct {
	svc *service.CategoryService
}

func NewCategoryHandler(s *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: s}
}

// @Summary Listar categorías
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/categories [get]
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if list == nil {
		list = []models.CategoryDoc{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": list})
}

// @Summary Obtener categoría
// @Tags categories
// @Produce json
// @Param id path string true "categoryId"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": c})
}

// @Summary Crear categoría
// @Tags categories
// @Accept json
// @Produce json
// @Param body body models.CategoryCreateRequest true "datos"
// @Success 201 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /api/categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(err.Error()))
		return
	}
	c, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"category": c})
}

// @Summary Actualizar categoría (parcial)
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "categoryId"
// @Param body body models.CategoryUpdateRequest true "campos opcionales"
// @Success 200 {object} map[string]any
// @Router /api/categories/{id} [patch]
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	var req models.CategoryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(err.Error()))
		return
	}
	c, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": c})
}

// @Summary Borrar categoría
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Param id path string true "categoryId"
// @Success 200 {object} map[string]any
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "deleted successfully"})
}

func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}
