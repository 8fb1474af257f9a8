package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/assets"
	"github.com/Asna-1994/ArticleSphere/internal/cache"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DefaultPageSize = 10
	// límite de página por seguridad, no deja pedir 1000 artículos
	MaxPageSize = 50

	feedCacheTTLSeconds = 60
)

type ArticleService struct {
	articles   ArticleStore
	users      UserStore
	categories CategoryStore
	assetStore assets.Store
}

func NewArticleService(articles ArticleStore, users UserStore, categories CategoryStore, assetStore assets.Store) *ArticleService {
	return &ArticleService{
		articles:   articles,
		users:      users,
		categories: categories,
		assetStore: assetStore,
	}
}

// ================== CRUD ==================

func (s *ArticleService) Create(ctx context.Context, authorID primitive.ObjectID, req models.ArticleCreateRequest) (*models.ArticleView, error) {
	if req.Title == "" || req.Description == "" || req.Content == "" {
		return nil, apperr.Validation("title, description and content are required")
	}
	if len(req.ImageURLs) > models.MaxArticleImages {
		return nil, apperr.Validationf("an article can have at most %d images", models.MaxArticleImages)
	}

	categoryID, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		return nil, apperr.Validation("invalid category id")
	}
	cat, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound(apperr.MsgCategoryNotFound)
	}

	now := time.Now().UTC()
	a := &models.ArticleDoc{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		ImageURLs:   req.ImageURLs,
		Tags:        req.Tags,
		Category:    categoryID,
		Author:      authorID,
		Likes:       []primitive.ObjectID{},
		Dislikes:    []primitive.ObjectID{},
		Blocks:      []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.articles.Insert(ctx, a); err != nil {
		return nil, err
	}

	view, err := s.hydrateOne(ctx, a)
	if err != nil {
		return nil, err
	}

	// stream en vivo: no rompemos la creación si el publish falla
	if err := cache.PublishJSON(ctx, cache.ChannelNewArticles, view); err != nil {
		log.Printf("[live] no se pudo publicar artículo nuevo: %v", err)
	}
	return view, nil
}

func (s *ArticleService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ArticleView, error) {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound(apperr.MsgArticleNotFound)
	}
	return s.hydrateOne(ctx, a)
}

func (s *ArticleService) GetUserArticles(ctx context.Context, authorID primitive.ObjectID) ([]models.ArticleView, error) {
	docs, err := s.articles.FindByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, docs)
}

// Update: solo el autor. Campos parciales; las imágenes retiradas se
// borran del asset store y las nuevas se agregan (máx 5 en total).
func (s *ArticleService) Update(ctx context.Context, articleID, authorID primitive.ObjectID, req models.ArticleUpdateRequest) (*models.ArticleView, error) {
	a, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound(apperr.MsgArticleNotFound)
	}
	if a.Author != authorID {
		return nil, apperr.Forbidden(apperr.MsgNotArticleOwner)
	}

	update := map[string]any{}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		update["title"] = *req.Title
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Content != nil {
		update["content"] = *req.Content
	}
	if req.Tags != nil {
		update["tags"] = *req.Tags
	}
	if req.Category != nil {
		categoryID, err := primitive.ObjectIDFromHex(*req.Category)
		if err != nil {
			return nil, apperr.Validation("invalid category id")
		}
		cat, err := s.categories.FindByID(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, apperr.NotFound(apperr.MsgCategoryNotFound)
		}
		update["category"] = categoryID
	}

	if len(req.RemovedImages) > 0 || len(req.NewImages) > 0 {
		removed := make(map[string]bool, len(req.RemovedImages))
		for _, publicID := range req.RemovedImages {
			removed[publicID] = true
		}

		merged := make([]models.ImageRef, 0, len(a.ImageURLs)+len(req.NewImages))
		for _, img := range a.ImageURLs {
			if !removed[img.PublicID] {
				merged = append(merged, img)
			}
		}
		merged = append(merged, req.NewImages...)

		if len(merged) > models.MaxArticleImages {
			return nil, apperr.Validationf("an article can have at most %d images", models.MaxArticleImages)
		}

		// borrado best-effort: si el asset store falla no se revierte
		for _, publicID := range req.RemovedImages {
			if publicID == "" {
				continue
			}
			if err := s.assetStore.Delete(ctx, publicID); err != nil {
				log.Printf("[assets] no se pudo borrar %s: %v", publicID, err)
			}
		}

		update["imageUrls"] = merged
	}

	if len(update) == 0 {
		return nil, apperr.Validation("no fields to update")
	}
	update["updatedAt"] = time.Now().UTC()

	if err := s.articles.UpdateByID(ctx, articleID, update); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, articleID)
}

// Delete: solo el autor. Los assets se borran best-effort antes del
// documento; si un borrado de asset falla igual se borra el registro
// (inconsistencia aceptada).
func (s *ArticleService) Delete(ctx context.Context, articleID, authorID primitive.ObjectID) error {
	a, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		return err
	}
	if a == nil {
		return apperr.NotFound(apperr.MsgArticleNotFound)
	}
	if a.Author != authorID {
		return apperr.Forbidden("you are not authorized to delete this article")
	}

	for _, img := range a.ImageURLs {
		if img.PublicID == "" {
			continue
		}
		if err := s.assetStore.Delete(ctx, img.PublicID); err != nil {
			log.Printf("[assets] no se pudo borrar %s: %v", img.PublicID, err)
		}
	}

	err = s.articles.DeleteByID(ctx, articleID)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound(apperr.MsgArticleNotFound)
	}
	return err
}

// ================== REACCIONES ==================

// Like/Dislike/Block delegan en el update atómico del repo; el repo
// devuelve nil cuando el artículo no existe.

func (s *ArticleService) Like(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleView, error) {
	a, err := s.articles.Like(ctx, articleID, userID)
	return s.reactionResult(ctx, a, err)
}

func (s *ArticleService) Dislike(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleView, error) {
	a, err := s.articles.Dislike(ctx, articleID, userID)
	return s.reactionResult(ctx, a, err)
}

// Block además sube la versión de feed del usuario: su feed no debe
// volver a mostrar este artículo ni desde cache.
func (s *ArticleService) Block(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleView, error) {
	a, err := s.articles.Block(ctx, articleID, userID)
	if err == nil && a != nil {
		if _, verr := cache.Incr(ctx, feedVersionKey(userID)); verr != nil {
			log.Printf("[cache] no se pudo subir versión de feed: %v", verr)
		}
	}
	return s.reactionResult(ctx, a, err)
}

func (s *ArticleService) reactionResult(ctx context.Context, a *models.ArticleDoc, err error) (*models.ArticleView, error) {
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound(apperr.MsgArticleNotFound)
	}
	return s.hydrateOne(ctx, a)
}

// ================== FEED ==================

// Feed: artículos de las categorías preferidas del usuario, excluyendo
// los que él bloqueó, más reciente primero. Usuario sin preferencias ve
// feed vacío (retorno temprano, nada de firehose).
func (s *ArticleService) Feed(ctx context.Context, userID primitive.ObjectID, page, limit int) (*models.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}

	prefs, err := s.users.GetPreferences(ctx, userID)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound(apperr.MsgUserNotFound)
	}
	if err != nil {
		return nil, err
	}

	if len(prefs) == 0 {
		return &models.FeedPage{
			Articles:    []models.ArticleView{},
			Total:       0,
			CurrentPage: page,
			TotalPages:  0,
		}, nil
	}

	// cache por (usuario, versión, página, límite); subir la versión
	// invalida sin escanear keys
	ver, _ := cache.GetInt64(ctx, feedVersionKey(userID))
	key := fmt.Sprintf("feed:user:%s:v%d:p%d:l%d", userID.Hex(), ver, page, limit)

	var cached models.FeedPage
	if ok, err := cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}

	skip := int64(page-1) * int64(limit)
	docs, total, err := s.articles.FindByPreferences(ctx, userID, prefs, skip, int64(limit))
	if err != nil {
		return nil, err
	}

	views, err := s.hydrate(ctx, docs)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	result := &models.FeedPage{
		Articles:    views,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}

	if err := cache.SetJSON(ctx, key, result, feedCacheTTLSeconds); err != nil {
		log.Printf("[cache] no se pudo cachear feed: %v", err)
	}
	return result, nil
}

// ================== HIDRATACIÓN ==================

// hydrate materializa las referencias (autor, categoría, sets de
// reacciones) en refs con campos de display, con dos fetches $in en
// lote. Reemplazo explícito del populate de Mongoose.
func (s *ArticleService) hydrate(ctx context.Context, docs []models.ArticleDoc) ([]models.ArticleView, error) {
	views := make([]models.ArticleView, 0, len(docs))
	if len(docs) == 0 {
		return views, nil
	}

	userIDSet := map[primitive.ObjectID]bool{}
	categoryIDSet := map[primitive.ObjectID]bool{}
	for _, d := range docs {
		userIDSet[d.Author] = true
		for _, id := range d.Likes {
			userIDSet[id] = true
		}
		for _, id := range d.Dislikes {
			userIDSet[id] = true
		}
		for _, id := range d.Blocks {
			userIDSet[id] = true
		}
		categoryIDSet[d.Category] = true
	}

	userIDs := make([]primitive.ObjectID, 0, len(userIDSet))
	for id := range userIDSet {
		userIDs = append(userIDs, id)
	}
	categoryIDs := make([]primitive.ObjectID, 0, len(categoryIDSet))
	for id := range categoryIDSet {
		categoryIDs = append(categoryIDs, id)
	}

	userRefs, err := s.users.FindRefsByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	categoryRefs, err := s.categories.FindRefsByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	refOf := func(id primitive.ObjectID) models.UserRef {
		if ref, ok := userRefs[id]; ok {
			return ref
		}
		// usuario borrado: queda solo la referencia
		return models.UserRef{ID: id}
	}
	refsOf := func(ids []primitive.ObjectID) []models.UserRef {
		out := make([]models.UserRef, 0, len(ids))
		for _, id := range ids {
			out = append(out, refOf(id))
		}
		return out
	}

	for _, d := range docs {
		catRef, ok := categoryRefs[d.Category]
		if !ok {
			catRef = models.CategoryRef{ID: d.Category}
		}
		views = append(views, models.ArticleView{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Content:     d.Content,
			ImageURLs:   d.ImageURLs,
			Tags:        d.Tags,
			Category:    catRef,
			Author:      refOf(d.Author),
			Likes:       refsOf(d.Likes),
			Dislikes:    refsOf(d.Dislikes),
			Blocks:      refsOf(d.Blocks),
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		})
	}
	return views, nil
}

func (s *ArticleService) hydrateOne(ctx context.Context, a *models.ArticleDoc) (*models.ArticleView, error) {
	views, err := s.hydrate(ctx, []models.ArticleDoc{*a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
