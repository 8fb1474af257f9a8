package handler

import (
	"context"
	"encoding/json"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/assets"
	"github.com/Asna-1994/ArticleSphere/internal/models"
	"github.com/Asna-1994/ArticleSphere/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ArticleHandler struct {
	svc        *service.ArticleService
	assetStore assets.Store
}

func NewArticleHandler(s *service.ArticleService, assetStore assets.Store) *ArticleHandler {
	return &ArticleHandler{svc: s, assetStore: assetStore}
}

// @Summary Feed personalizado (paginado por preferencias)
// @Tags articles
// @Security BearerAuth
// @Produce json
// @Param page query int false "página (default 1)"
// @Param limit query int false "tamaño de página (default 10, máx 50)"
// @Success 200 {object} map[string]any
// @Router /api/articles [get]
func (h *ArticleHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	feed, err := h.svc.Feed(r.Context(), UserIDFromContext(r.Context()), page, limit)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results":     len(feed.Articles),
		"total":       feed.Total,
		"currentPage": feed.CurrentPage,
		"totalPages":  feed.TotalPages,
		"articles":    feed.Articles,
	})
}

// @Summary Artículos propios
// @Tags articles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/articles/user [get]
func (h *ArticleHandler) GetUserArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.svc.GetUserArticles(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results":  len(articles),
		"articles": articles,
	})
}

// @Summary Obtener artículo
// @Tags articles
// @Produce json
// @Param id path string true "articleId"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /api/articles/{id} [get]
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	article, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"article": article})
}

// @Summary Crear artículo (multipart, hasta 5 imágenes)
// @Tags articles
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param title formData string true "título"
// @Param description formData string true "descripción"
// @Param content formData string true "contenido"
// @Param category formData string true "categoryId"
// @Param tags formData string false "JSON array de tags"
// @Param images formData file false "imágenes (jpeg/png, máx 5MB c/u)"
// @Success 201 {object} map[string]any
// @Router /api/articles [post]
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErr(w, apperr.Validation("invalid multipart form"))
		return
	}

	images, err := h.uploadImages(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	article, err := h.svc.Create(r.Context(), UserIDFromContext(r.Context()), models.ArticleCreateRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Content:     r.FormValue("content"),
		Category:    r.FormValue("category"),
		Tags:        parseTags(r.FormValue("tags")),
		ImageURLs:   images,
	})
	if err != nil {
		h.discardImages(r.Context(), images)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"article": article})
}

// @Summary Actualizar artículo (parcial; solo el autor)
// @Tags articles
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param id path string true "articleId"
// @Param removedImages formData string false "JSON array de {publicId}"
// @Param images formData file false "imágenes nuevas"
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/articles/{id} [patch]
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErr(w, apperr.Validation("invalid multipart form"))
		return
	}

	newImages, err := h.uploadImages(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	req := models.ArticleUpdateRequest{
		NewImages:     newImages,
		RemovedImages: parseRemovedImages(r.FormValue("removedImages")),
	}
	// solo los campos presentes en el form se actualizan
	if v, ok := formValue(r, "title"); ok {
		req.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		req.Description = &v
	}
	if v, ok := formValue(r, "content"); ok {
		req.Content = &v
	}
	if v, ok := formValue(r, "category"); ok {
		req.Category = &v
	}
	if v, ok := formValue(r, "tags"); ok {
		tags := parseTags(v)
		req.Tags = &tags
	}

	article, err := h.svc.Update(r.Context(), id, UserIDFromContext(r.Context()), req)
	if err != nil {
		// si el servicio rechaza (no es el autor, no existe), las
		// imágenes recién subidas quedarían huérfanas en el asset store
		h.discardImages(r.Context(), newImages)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"article": article})
}

// @Summary Borrar artículo (solo el autor)
// @Tags articles
// @Security BearerAuth
// @Produce json
// @Param id path string true "articleId"
// @Success 200 {object} map[string]any
// @Router /api/articles/{id} [delete]
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, UserIDFromContext(r.Context())); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "deleted successfully"})
}

// ================== Reacciones ==================

// @Summary Like (toggle; saca el dislike si existía)
// @Tags articles
// @Security BearerAuth
// @Produce json
// @Param id path string true "articleId"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /api/articles/{id}/like [post]
func (h *ArticleHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.svc.Like)
}

// @Summary Dislike (toggle; saca el like si existía)
// @Tags articles
// @Security BearerAuth
// @Produce json
// @Param id path string true "articleId"
// @Success 200 {object} map[string]any
// @Router /api/articles/{id}/dislike [post]
func (h *ArticleHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.svc.Dislike)
}

// @Summary Bloquear artículo (lo saca del feed propio)
// @Tags articles
// @Security BearerAuth
// @Produce json
// @Param id path string true "articleId"
// @Success 200 {object} map[string]any
// @Router /api/articles/{id}/block [post]
func (h *ArticleHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, h.svc.Block)
}

func (h *ArticleHandler) react(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleView, error),
) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeErr(w, err)
		return
	}
	article, err := fn(r.Context(), id, UserIDFromContext(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"article": article})
}

// ================== helpers ==================

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// uploadImages valida y sube los archivos "images" al asset store.
func (h *ArticleHandler) uploadImages(r *http.Request) ([]models.ImageRef, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > models.MaxArticleImages {
		return nil, apperr.Validationf("an article can have at most %d images", models.MaxArticleImages)
	}

	out := make([]models.ImageRef, 0, len(files))
	for _, fh := range files {
		if err := validateImage(fh); err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		ref, err := h.assetStore.Upload(r.Context(), f, "articles")
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// discardImages borra best-effort imágenes ya subidas cuyo artículo no
// se llegó a persistir.
func (h *ArticleHandler) discardImages(ctx context.Context, images []models.ImageRef) {
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := h.assetStore.Delete(ctx, img.PublicID); err != nil {
			log.Printf("[assets] no se pudo borrar %s: %v", img.PublicID, err)
		}
	}
}

func validateImage(fh *multipart.FileHeader) error {
	if fh.Size > models.MaxImageBytes {
		return apperr.Validation("image exceeds the 5MB limit")
	}
	if !allowedImageTypes[fh.Header.Get("Content-Type")] {
		return apperr.Validation("invalid file type, only JPEG and PNG are allowed")
	}
	return nil
}

func parseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	return tags
}

// el cliente manda removedImages como JSON array de {publicId}
func parseRemovedImages(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []struct {
		PublicID string `json:"publicId"`
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.PublicID)
	}
	return out
}

func formValue(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vals, ok := r.MultipartForm.Value[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
