package db

import (
	"context"
	"log"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

func InitMongo(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("[mongo] error conectando: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("[mongo] ping falló: %v", err)
	}

	mongoClient = client
	mongoDB = client.Database(cfg.MongoDB)
	log.Printf("[mongo] conectado a %s / DB=%s\n", cfg.MongoURI, cfg.MongoDB)

	ensureIndexes(ctx)
}

// Índices únicos: email/phone de usuarios y categoryName.
func ensureIndexes(ctx context.Context) {
	users := mongoDB.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		// phone es opcional: el único aplica solo a documentos con
		// phone no vacío, si no el segundo registro sin teléfono choca
		// contra el índice
		{
			Keys: bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"phone": bson.M{"$gt": ""}}),
		},
	})
	if err != nil {
		log.Printf("[mongo] no se pudieron crear índices de users: %v", err)
	}

	categories := mongoDB.Collection("categories")
	_, err = categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "categoryName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("[mongo] no se pudo crear índice de categories: %v", err)
	}

	// el feed filtra por categoría y ordena por fecha
	articles := mongoDB.Collection("articles")
	_, err = articles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		log.Printf("[mongo] no se pudo crear índice de articles: %v", err)
	}
}

func DB() *mongo.Database {
	return mongoDB
}
