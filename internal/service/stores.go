package service

import (
	"context"

	"github.com/Asna-1994/ArticleSphere/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interfaces de persistencia que consumen los servicios. Los repos de
// internal/repository las implementan; los tests usan fakes en memoria.

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.UserDoc, error)
	FindByPhone(ctx context.Context, phone string) (*models.UserDoc, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserDoc, error)
	Insert(ctx context.Context, u *models.UserDoc) error
	UpdateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	GetPreferences(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error)
	FindRefsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error)
}

type CategoryStore interface {
	FindAll(ctx context.Context) ([]models.CategoryDoc, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CategoryDoc, error)
	FindRefsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CategoryRef, error)
	Insert(ctx context.Context, c *models.CategoryDoc) error
	UpdateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

type ArticleStore interface {
	Insert(ctx context.Context, a *models.ArticleDoc) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ArticleDoc, error)
	FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.ArticleDoc, error)
	FindByPreferences(ctx context.Context, userID primitive.ObjectID, preferences []primitive.ObjectID, skip, limit int64) ([]models.ArticleDoc, int64, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	Like(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error)
	Dislike(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error)
	Block(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error)
}
