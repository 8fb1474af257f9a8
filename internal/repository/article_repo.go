package repository

import (
	"context"

	"github.com/Asna-1994/ArticleSphere/internal/db"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ArticleRepository struct {
	col *mongo.Collection
}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{col: db.DB().Collection("articles")}
}

func (r *ArticleRepository) Insert(ctx context.Context, a *models.ArticleDoc) error {
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ArticleDoc, error) {
	var a models.ArticleDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &a, err
}

func (r *ArticleRepository) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.ArticleDoc, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.col.Find(ctx, bson.M{"author": authorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ArticleDoc
	for cur.Next(ctx) {
		var a models.ArticleDoc
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

// FindByPreferences: artículos cuya categoría está en las preferencias
// del usuario y que el usuario NO bloqueó, más reciente primero
// (desempate estable por _id). El total sale del mismo filtro.
func (r *ArticleRepository) FindByPreferences(
	ctx context.Context,
	userID primitive.ObjectID,
	preferences []primitive.ObjectID,
	skip, limit int64,
) ([]models.ArticleDoc, int64, error) {

	filter := bson.M{
		"category": bson.M{"$in": preferences},
		"blocks":   bson.M{"$ne": userID},
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: -1},
		}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []models.ArticleDoc
	for cur.Next(ctx) {
		var a models.ArticleDoc
		if err := cur.Decode(&a); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, cur.Err()
}

// UpdateByID aplica un $set parcial.
func (r *ArticleRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ArticleRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// =======================================================
//  Reacciones (un solo update condicional, sin read-modify-write)
// =======================================================

// Like: si el usuario ya estaba en likes lo saca (toggle a neutral);
// si no, lo agrega. En ambos casos lo saca de dislikes. Todo en un
// update pipeline atómico; devuelve nil si el artículo no existe.
func (r *ArticleRepository) Like(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error) {
	return r.toggleReaction(ctx, articleID, userID, "likes", "dislikes")
}

// Dislike: simétrico a Like.
func (r *ArticleRepository) Dislike(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error) {
	return r.toggleReaction(ctx, articleID, userID, "dislikes", "likes")
}

func (r *ArticleRepository) toggleReaction(
	ctx context.Context,
	articleID, userID primitive.ObjectID,
	field, opposite string,
) (*models.ArticleDoc, error) {

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			field: bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{userID, "$" + field}},
				bson.M{"$setDifference": bson.A{"$" + field, bson.A{userID}}},
				bson.M{"$setUnion": bson.A{"$" + field, bson.A{userID}}},
			}},
			opposite: bson.M{"$setDifference": bson.A{"$" + opposite, bson.A{userID}}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.ArticleDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": articleID}, pipeline, opts).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Block: $addToSet idempotente; no toca likes/dislikes.
func (r *ArticleRepository) Block(ctx context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.ArticleDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": articleID},
		bson.M{"$addToSet": bson.M{"blocks": userID}},
		opts,
	).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
