package client

import (
	"context"
	"sync"

	"github.com/Asna-1994/ArticleSphere/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feed acumula páginas del feed personalizado (scroll infinito). Un
// guard de "fetch en vuelo" asegura que por más triggers que disparen,
// hay a lo sumo un fetch a la vez.
type Feed struct {
	c        *Client
	pageSize int

	mu          sync.Mutex
	fetching    bool
	articles    []models.ArticleView
	currentPage int
	totalPages  int
	total       int64
	started     bool
}

func NewFeed(c *Client, pageSize int) *Feed {
	return &Feed{c: c, pageSize: pageSize}
}

// LoadMore trae la página siguiente y la agrega a la lista acumulada.
// Devuelve false sin error cuando ya hay un fetch en vuelo o no quedan
// páginas.
func (f *Feed) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.fetching || (f.started && !f.hasMoreLocked()) {
		f.mu.Unlock()
		return false, nil
	}
	f.fetching = true
	next := f.currentPage + 1
	f.mu.Unlock()

	resp, err := f.c.GetFeed(ctx, next, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetching = false
	if err != nil {
		return false, err
	}

	f.articles = append(f.articles, resp.Articles...)
	f.currentPage = resp.CurrentPage
	f.totalPages = resp.TotalPages
	f.total = resp.Total
	f.started = true
	return true, nil
}

func (f *Feed) hasMoreLocked() bool {
	return f.currentPage < f.totalPages
}

func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return true
	}
	return f.hasMoreLocked()
}

func (f *Feed) Total() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// Articles devuelve una copia de la lista acumulada.
func (f *Feed) Articles() []models.ArticleView {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ArticleView, len(f.articles))
	copy(out, f.articles)
	return out
}

// ================== reacciones optimistas ==================

// Like aplica el toggle local de inmediato y confirma contra el
// servidor; si falla, recupera el estado real del artículo (no se
// calcula la inversa a mano, se pide la verdad).
func (f *Feed) Like(ctx context.Context, articleID primitive.ObjectID) error {
	me, err := f.me()
	if err != nil {
		return err
	}

	f.mu.Lock()
	if a := f.findLocked(articleID); a != nil {
		applyLike(a, me)
	}
	f.mu.Unlock()

	if _, err := f.c.LikeArticle(ctx, articleID.Hex()); err != nil {
		f.restore(ctx, articleID)
		return err
	}
	return nil
}

func (f *Feed) Dislike(ctx context.Context, articleID primitive.ObjectID) error {
	me, err := f.me()
	if err != nil {
		return err
	}

	f.mu.Lock()
	if a := f.findLocked(articleID); a != nil {
		applyDislike(a, me)
	}
	f.mu.Unlock()

	if _, err := f.c.DislikeArticle(ctx, articleID.Hex()); err != nil {
		f.restore(ctx, articleID)
		return err
	}
	return nil
}

// Block saca el artículo de la lista local de inmediato; si el server
// falla se recupera el artículo y se reinserta donde estaba.
func (f *Feed) Block(ctx context.Context, articleID primitive.ObjectID) error {
	if _, err := f.me(); err != nil {
		return err
	}

	f.mu.Lock()
	idx := -1
	for i := range f.articles {
		if f.articles[i].ID == articleID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		f.articles = append(f.articles[:idx], f.articles[idx+1:]...)
	}
	f.mu.Unlock()

	if _, err := f.c.BlockArticle(ctx, articleID.Hex()); err != nil {
		if idx >= 0 {
			if fresh, ferr := f.c.GetArticle(ctx, articleID.Hex()); ferr == nil && fresh != nil {
				f.mu.Lock()
				if idx > len(f.articles) {
					idx = len(f.articles)
				}
				f.articles = append(f.articles[:idx], append([]models.ArticleView{*fresh}, f.articles[idx:]...)...)
				f.mu.Unlock()
			}
		}
		return err
	}
	return nil
}

// HasLiked indica si el usuario logueado tiene like en el artículo.
func (f *Feed) HasLiked(articleID primitive.ObjectID) bool {
	me, err := f.me()
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.findLocked(articleID); a != nil {
		return containsUser(a.Likes, me.ID)
	}
	return false
}

func (f *Feed) HasDisliked(articleID primitive.ObjectID) bool {
	me, err := f.me()
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.findLocked(articleID); a != nil {
		return containsUser(a.Dislikes, me.ID)
	}
	return false
}

// ================== helpers ==================

func (f *Feed) me() (models.UserRef, error) {
	u := f.c.CurrentUser()
	if u == nil {
		return models.UserRef{}, &APIError{Status: 401, Message: "you must be logged in"}
	}
	return models.UserRef{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}, nil
}

func (f *Feed) findLocked(id primitive.ObjectID) *models.ArticleView {
	for i := range f.articles {
		if f.articles[i].ID == id {
			return &f.articles[i]
		}
	}
	return nil
}

// restore reemplaza la copia local por el estado autoritativo del
// servidor tras una mutación optimista fallida.
func (f *Feed) restore(ctx context.Context, articleID primitive.ObjectID) {
	fresh, err := f.c.GetArticle(ctx, articleID.Hex())
	if err != nil || fresh == nil {
		return
	}
	f.mu.Lock()
	if a := f.findLocked(articleID); a != nil {
		*a = *fresh
	}
	f.mu.Unlock()
}

// applyLike replica la máquina de estados del servidor: like sobre
// Liked vuelve a Neutral; like sobre Neutral/Disliked deja Liked y
// limpia el dislike.
func applyLike(a *models.ArticleView, me models.UserRef) {
	if containsUser(a.Likes, me.ID) {
		a.Likes = removeUser(a.Likes, me.ID)
		return
	}
	a.Likes = append(a.Likes, me)
	a.Dislikes = removeUser(a.Dislikes, me.ID)
}

func applyDislike(a *models.ArticleView, me models.UserRef) {
	if containsUser(a.Dislikes, me.ID) {
		a.Dislikes = removeUser(a.Dislikes, me.ID)
		return
	}
	a.Dislikes = append(a.Dislikes, me)
	a.Likes = removeUser(a.Likes, me.ID)
}

func containsUser(refs []models.UserRef, id primitive.ObjectID) bool {
	for _, r := range refs {
		if r.ID == id {
			return true
		}
	}
	return false
}

func removeUser(refs []models.UserRef, id primitive.ObjectID) []models.UserRef {
	out := refs[:0]
	for _, r := range refs {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
