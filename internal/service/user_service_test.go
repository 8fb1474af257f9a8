package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userFixture struct {
	svc        *UserService
	users      *fakeUserStore
	categories *fakeCategoryStore
	user       *models.UserDoc
	sports     primitive.ObjectID
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:      newFakeUserStore(),
		categories: newFakeCategoryStore(),
	}
	f.svc = NewUserService(f.users, f.categories)

	ctx := context.Background()
	sports := &models.CategoryDoc{CategoryName: "Sports"}
	require.NoError(t, f.categories.Insert(ctx, sports))
	f.sports = sports.ID

	f.user = &models.UserDoc{FirstName: "Ana", LastName: "Pérez", Email: "ana@example.com", Phone: "111"}
	require.NoError(t, f.users.Insert(ctx, f.user))
	return f
}

func TestGetProfile(t *testing.T) {
	f := newUserFixture(t)

	u, err := f.svc.GetProfile(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = f.svc.GetProfile(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestUpdateProfilePartial(t *testing.T) {
	f := newUserFixture(t)
	first := "Anita"

	u, err := f.svc.UpdateProfile(context.Background(), f.user.ID, models.UpdateUserRequest{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Anita", u.FirstName)
	// los campos ausentes no se tocan
	assert.Equal(t, "Pérez", u.LastName)
	assert.Equal(t, "111", u.Phone)
}

func TestUpdateProfilePhoneConflict(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	other := &models.UserDoc{FirstName: "Caro", Email: "caro@example.com", Phone: "222"}
	require.NoError(t, f.users.Insert(ctx, other))

	phone := "222"
	_, err := f.svc.UpdateProfile(ctx, f.user.ID, models.UpdateUserRequest{Phone: &phone})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.StatusOf(err))

	// el teléfono propio no cuenta como conflicto
	own := "111"
	_, err = f.svc.UpdateProfile(ctx, f.user.ID, models.UpdateUserRequest{Phone: &own})
	require.NoError(t, err)
}

func TestUpdateProfileNoFields(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.UpdateProfile(context.Background(), f.user.ID, models.UpdateUserRequest{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestUpdatePreferences(t *testing.T) {
	f := newUserFixture(t)

	u, err := f.svc.UpdatePreferences(context.Background(), f.user.ID, []string{f.sports.Hex()})
	require.NoError(t, err)
	require.Len(t, u.Preferences, 1)
	assert.Equal(t, f.sports, u.Preferences[0])

	// el set se reemplaza completo
	u, err = f.svc.UpdatePreferences(context.Background(), f.user.ID, []string{})
	require.NoError(t, err)
	assert.Empty(t, u.Preferences)
}

func TestUpdatePreferencesUnknownCategory(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.UpdatePreferences(context.Background(), f.user.ID, []string{primitive.NewObjectID().Hex()})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	_, err = f.svc.UpdatePreferences(context.Background(), f.user.ID, []string{"no-es-un-id"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}
