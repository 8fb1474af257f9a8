package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDoc es el documento de la colección users. El hash de password y
// el refresh token nunca se serializan hacia afuera.
type UserDoc struct {
	ID           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	FirstName    string               `json:"firstName" bson:"firstName"`
	LastName     string               `json:"lastName" bson:"lastName"`
	Email        string               `json:"email" bson:"email"`
	Phone        string               `json:"phone" bson:"phone"`
	DOB          time.Time            `json:"dob" bson:"dob"`
	PasswordHash string               `json:"-" bson:"passwordHash"`
	Preferences  []primitive.ObjectID `json:"preferences" bson:"preferences"`
	// sesión única: un login nuevo lo sobreescribe e invalida la anterior
	RefreshToken string    `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// UserRef es la vista desnormalizada que se incrusta al hidratar
// artículos (reemplazo explícito del populate de Mongoose).
type UserRef struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	FirstName string             `json:"firstName" bson:"firstName"`
	LastName  string             `json:"lastName" bson:"lastName"`
}

// Payload de actualización parcial de perfil.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	DOB       *string `json:"dob,omitempty"` // RFC3339 o YYYY-MM-DD
}

type UpdatePreferencesRequest struct {
	Preferences []string `json:"preferences"`
}
