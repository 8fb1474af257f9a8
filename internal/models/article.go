package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxArticleImages = 5
	MaxImageBytes    = 5 * 1024 * 1024
)

// ImageRef es lo que devuelve el asset store externo al subir.
type ImageRef struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"publicId" bson:"publicId"`
}

// ArticleDoc es el documento de la colección articles. likes/dislikes y
// blocks son sets de referencias a usuarios; un usuario está a lo sumo
// en uno de {likes, dislikes}, blocks es independiente.
type ArticleDoc struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Content     string               `json:"content" bson:"content"`
	ImageURLs   []ImageRef           `json:"imageUrls" bson:"imageUrls"`
	Tags        []string             `json:"tags" bson:"tags"`
	Category    primitive.ObjectID   `json:"category" bson:"category"`
	Author      primitive.ObjectID   `json:"author" bson:"author"`
	Likes       []primitive.ObjectID `json:"likes" bson:"likes"`
	Dislikes    []primitive.ObjectID `json:"dislikes" bson:"dislikes"`
	Blocks      []primitive.ObjectID `json:"blocks" bson:"blocks"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// ArticleView es el artículo hidratado que expone la API: las
// referencias se materializan en refs con los campos de display
// (reemplazo explícito del populate de Mongoose).
type ArticleView struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Content     string             `json:"content"`
	ImageURLs   []ImageRef         `json:"imageUrls"`
	Tags        []string           `json:"tags"`
	Category    CategoryRef        `json:"category"`
	Author      UserRef            `json:"author"`
	Likes       []UserRef          `json:"likes"`
	Dislikes    []UserRef          `json:"dislikes"`
	Blocks      []UserRef          `json:"blocks"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Payload para crear un artículo (las imágenes llegan por multipart y
// se suben al asset store antes de persistir).
type ArticleCreateRequest struct {
	Title       string
	Description string
	Content     string
	Category    string
	Tags        []string
	ImageURLs   []ImageRef
}

// Payload de actualización parcial de artículo.
type ArticleUpdateRequest struct {
	Title       *string
	Description *string
	Content     *string
	Category    *string
	Tags        *[]string
	// imágenes nuevas ya subidas + publicIds a retirar
	NewImages     []ImageRef
	RemovedImages []string
}

// FeedPage es el resultado paginado del feed por preferencias.
type FeedPage struct {
	Articles    []ArticleView `json:"articles"`
	Total       int64         `json:"total"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
}
