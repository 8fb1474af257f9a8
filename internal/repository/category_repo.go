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

type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{col: db.DB().Collection("categories")}
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.CategoryDoc, error) {
	opts := options.Find().SetSort(bson.D{{Key: "categoryName", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CategoryDoc
	for cur.Next(ctx) {
		var c models.CategoryDoc
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, cur.Err()
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CategoryDoc, error) {
	var c models.CategoryDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &c, err
}

// FindRefsByIDs trae los nombres de un lote de categorías para hidratar.
func (r *CategoryRepository) FindRefsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CategoryRef, error) {
	out := make(map[primitive.ObjectID]models.CategoryRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"categoryName": 1})
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var ref models.CategoryRef
		if err := cur.Decode(&ref); err != nil {
			return nil, err
		}
		out[ref.ID] = ref
	}
	return out, cur.Err()
}

// Insert devuelve IsDuplicate=true vía mongo.IsDuplicateKeyError si el
// nombre ya existe (índice único de categoryName).
func (r *CategoryRepository) Insert(ctx context.Context, c *models.CategoryDoc) error {
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CategoryRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *CategoryRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
