package service

import (
	"context"
	"log"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/cache"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const categoriesCacheKey = "categories:all"

type CategoryService struct {
	categories CategoryStore
}

func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

// List devuelve todas las categorías (data de referencia, cache 1h).
func (s *CategoryService) List(ctx context.Context) ([]models.CategoryDoc, error) {
	var cached []models.CategoryDoc
	if ok, err := cache.GetJSON(ctx, categoriesCacheKey, &cached); err == nil && ok {
		return cached, nil
	}

	list, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, categoriesCacheKey, list, 60*60); err != nil {
		log.Printf("[cache] no se pudo cachear categorías: %v", err)
	}
	return list, nil
}

func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*models.CategoryDoc, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound(apperr.MsgCategoryNotFound)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, req models.CategoryCreateRequest) (*models.CategoryDoc, error) {
	if req.CategoryName == "" || req.Description == "" {
		return nil, apperr.Validation("categoryName and description are required")
	}

	now := time.Now().UTC()
	c := &models.CategoryDoc{
		CategoryName: req.CategoryName,
		Description:  req.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.categories.Insert(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("category with this name already exists")
		}
		return nil, err
	}

	s.invalidate(ctx)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, req models.CategoryUpdateRequest) (*models.CategoryDoc, error) {
	update := map[string]any{}
	if req.CategoryName != nil {
		if *req.CategoryName == "" {
			return nil, apperr.Validation("categoryName cannot be empty")
		}
		update["categoryName"] = *req.CategoryName
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if len(update) == 0 {
		return nil, apperr.Validation("no fields to update")
	}
	update["updatedAt"] = time.Now().UTC()

	err := s.categories.UpdateByID(ctx, id, update)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound(apperr.MsgCategoryNotFound)
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("category with this name already exists")
		}
		return nil, err
	}

	s.invalidate(ctx)
	return s.Get(ctx, id)
}

func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.categories.DeleteByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		return apperr.NotFound(apperr.MsgCategoryNotFound)
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := cache.Del(ctx, categoriesCacheKey); err != nil {
		log.Printf("[cache] no se pudo invalidar categorías: %v", err)
	}
}
