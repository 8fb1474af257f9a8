package service

import (
	"context"
	"log"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/cache"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	users      UserStore
	categories CategoryStore
}

func NewUserService(users UserStore, categories CategoryStore) *UserService {
	return &UserService{users: users, categories: categories}
}

func (s *UserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.UserDoc, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound(apperr.MsgUserNotFound)
	}
	return u, nil
}

// UpdateProfile aplica solo los campos presentes.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, data models.UpdateUserRequest) (*models.UserDoc, error) {
	update := map[string]any{}

	if data.FirstName != nil {
		if *data.FirstName == "" {
			return nil, apperr.Validation("firstName cannot be empty")
		}
		update["firstName"] = *data.FirstName
	}
	if data.LastName != nil {
		update["lastName"] = *data.LastName
	}
	if data.Phone != nil {
		if *data.Phone == "" {
			return nil, apperr.Validation("phone cannot be empty")
		}
		existing, err := s.users.FindByPhone(ctx, *data.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, apperr.Conflict(apperr.MsgPhoneAlreadyExists)
		}
		update["phone"] = *data.Phone
	}
	if data.DOB != nil {
		dob, err := parseDate(*data.DOB)
		if err != nil {
			return nil, apperr.Validation("invalid dob")
		}
		update["dob"] = dob
	}

	if len(update) == 0 {
		return nil, apperr.Validation("no fields to update")
	}
	update["updatedAt"] = time.Now().UTC()

	if err := s.users.UpdateByID(ctx, userID, update); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// UpdatePreferences reemplaza el set completo de categorías preferidas
// y sube la versión de feed del usuario (invalida sus páginas cacheadas).
func (s *UserService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, hexIDs []string) (*models.UserDoc, error) {
	prefs, err := parseObjectIDs(hexIDs)
	if err != nil {
		return nil, apperr.Validation("invalid preference id")
	}

	// toda preferencia debe referir a una categoría existente
	refs, err := s.categories.FindRefsByIDs(ctx, prefs)
	if err != nil {
		return nil, err
	}
	for _, id := range prefs {
		if _, ok := refs[id]; !ok {
			return nil, apperr.Validation("unknown category in preferences")
		}
	}

	err = s.users.UpdateByID(ctx, userID, map[string]any{
		"preferences": prefs,
		"updatedAt":   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := cache.Incr(ctx, feedVersionKey(userID)); err != nil {
		// la cache expira sola en 60s, no rompemos la respuesta
		log.Printf("[cache] no se pudo subir versión de feed: %v", err)
	}

	return s.GetProfile(ctx, userID)
}

func feedVersionKey(userID primitive.ObjectID) string {
	return "feed:ver:" + userID.Hex()
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
