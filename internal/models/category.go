package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryDoc struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CategoryName string             `json:"categoryName" bson:"categoryName"`
	Description  string             `json:"description" bson:"description"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CategoryRef vista desnormalizada para artículos hidratados.
type CategoryRef struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	CategoryName string             `json:"categoryName" bson:"categoryName"`
}

type CategoryCreateRequest struct {
	CategoryName string `json:"categoryName"`
	Description  string `json:"description"`
}

type CategoryUpdateRequest struct {
	CategoryName *string `json:"categoryName,omitempty"`
	Description  *string `json:"description,omitempty"`
}
