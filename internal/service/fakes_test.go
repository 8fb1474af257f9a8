package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/assets"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fakes en memoria de los stores. Replican el contrato de los repos
// reales, incluido el toggle atómico de reacciones.

var (
	_ UserStore     = (*fakeUserStore)(nil)
	_ CategoryStore = (*fakeCategoryStore)(nil)
	_ ArticleStore  = (*fakeArticleStore)(nil)

	_ assets.Store = (*fakeAssetStore)(nil)
)

// ================== users ==================

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.UserDoc
	// error a devolver en el próximo Insert (simula el índice único
	// saltando en una carrera que el chequeo previo no vio)
	insertErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*models.UserDoc{}}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.UserDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByPhone(_ context.Context, phone string) (*models.UserDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Phone != "" && u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.UserDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserStore) Insert(_ context.Context, u *models.UserDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) UpdateByID(_ context.Context, id primitive.ObjectID, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for k, v := range update {
		switch k {
		case "firstName":
			u.FirstName = v.(string)
		case "lastName":
			u.LastName = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "dob":
			u.DOB = v.(time.Time)
		case "passwordHash":
			u.PasswordHash = v.(string)
		case "refreshToken":
			u.RefreshToken = v.(string)
		case "preferences":
			u.Preferences = v.([]primitive.ObjectID)
		case "updatedAt":
			u.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (f *fakeUserStore) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return f.UpdateByID(ctx, id, bson.M{"refreshToken": token})
}

func (f *fakeUserStore) GetPreferences(_ context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return append([]primitive.ObjectID{}, u.Preferences...), nil
}

func (f *fakeUserStore) FindRefsByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[primitive.ObjectID]models.UserRef{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = models.UserRef{ID: id, FirstName: u.FirstName, LastName: u.LastName}
		}
	}
	return out, nil
}

// ================== categories ==================

type fakeCategoryStore struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]*models.CategoryDoc
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: map[primitive.ObjectID]*models.CategoryDoc{}}
}

func (f *fakeCategoryStore) FindAll(_ context.Context) ([]models.CategoryDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CategoryDoc
	for _, c := range f.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryName < out[j].CategoryName })
	return out, nil
}

func (f *fakeCategoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.CategoryDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCategoryStore) FindRefsByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.CategoryRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[primitive.ObjectID]models.CategoryRef{}
	for _, id := range ids {
		if c, ok := f.categories[id]; ok {
			out[id] = models.CategoryRef{ID: id, CategoryName: c.CategoryName}
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) Insert(_ context.Context, c *models.CategoryDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	f.categories[c.ID] = &cp
	return nil
}

func (f *fakeCategoryStore) UpdateByID(_ context.Context, id primitive.ObjectID, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for k, v := range update {
		switch k {
		case "categoryName":
			c.CategoryName = v.(string)
		case "description":
			c.Description = v.(string)
		case "updatedAt":
			c.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (f *fakeCategoryStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.categories, id)
	return nil
}

// ================== articles ==================

type fakeArticleStore struct {
	mu       sync.Mutex
	articles map[primitive.ObjectID]*models.ArticleDoc
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{articles: map[primitive.ObjectID]*models.ArticleDoc{}}
}

func (f *fakeArticleStore) Insert(_ context.Context, a *models.ArticleDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	cp := *a
	f.articles[a.ID] = &cp
	return nil
}

func (f *fakeArticleStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.ArticleDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.articles[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeArticleStore) FindByAuthor(_ context.Context, authorID primitive.ObjectID) ([]models.ArticleDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ArticleDoc
	for _, a := range f.articles {
		if a.Author == authorID {
			out = append(out, *a)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeArticleStore) FindByPreferences(
	_ context.Context,
	userID primitive.ObjectID,
	preferences []primitive.ObjectID,
	skip, limit int64,
) ([]models.ArticleDoc, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefSet := map[primitive.ObjectID]bool{}
	for _, p := range preferences {
		prefSet[p] = true
	}

	var matched []models.ArticleDoc
	for _, a := range f.articles {
		if !prefSet[a.Category] {
			continue
		}
		if containsID(a.Blocks, userID) {
			continue
		}
		matched = append(matched, *a)
	}
	sortNewestFirst(matched)

	total := int64(len(matched))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (f *fakeArticleStore) UpdateByID(_ context.Context, id primitive.ObjectID, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for k, v := range update {
		switch k {
		case "title":
			a.Title = v.(string)
		case "description":
			a.Description = v.(string)
		case "content":
			a.Content = v.(string)
		case "tags":
			a.Tags = v.([]string)
		case "category":
			a.Category = v.(primitive.ObjectID)
		case "imageUrls":
			a.ImageURLs = v.([]models.ImageRef)
		case "updatedAt":
			a.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (f *fakeArticleStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.articles, id)
	return nil
}

func (f *fakeArticleStore) Like(_ context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error) {
	return f.toggle(articleID, userID, true)
}

func (f *fakeArticleStore) Dislike(_ context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error) {
	return f.toggle(articleID, userID, false)
}

// toggle replica el update pipeline del repo real: toggle en el set
// propio, remove incondicional en el opuesto.
func (f *fakeArticleStore) toggle(articleID, userID primitive.ObjectID, like bool) (*models.ArticleDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[articleID]
	if !ok {
		return nil, nil
	}

	if like {
		if containsID(a.Likes, userID) {
			a.Likes = removeID(a.Likes, userID)
		} else {
			a.Likes = append(a.Likes, userID)
		}
		a.Dislikes = removeID(a.Dislikes, userID)
	} else {
		if containsID(a.Dislikes, userID) {
			a.Dislikes = removeID(a.Dislikes, userID)
		} else {
			a.Dislikes = append(a.Dislikes, userID)
		}
		a.Likes = removeID(a.Likes, userID)
	}

	cp := *a
	return &cp, nil
}

func (f *fakeArticleStore) Block(_ context.Context, articleID, userID primitive.ObjectID) (*models.ArticleDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[articleID]
	if !ok {
		return nil, nil
	}
	if !containsID(a.Blocks, userID) {
		a.Blocks = append(a.Blocks, userID)
	}
	cp := *a
	return &cp, nil
}

// ================== asset store ==================

type fakeAssetStore struct {
	mu      sync.Mutex
	deleted []string
	failing bool
}

func (f *fakeAssetStore) Upload(_ context.Context, _ io.Reader, _ string) (models.ImageRef, error) {
	return models.ImageRef{URL: "https://cdn.test/img", PublicID: "articles/test"}, nil
}

func (f *fakeAssetStore) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return io.ErrUnexpectedEOF
	}
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeAssetStore) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.deleted...)
}

// ================== helpers ==================

func sortNewestFirst(list []models.ArticleDoc) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID.Hex() > list[j].ID.Hex()
	})
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
