package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// feedServer sirve un feed paginado fijo de n artículos, más reciente
// primero, con los endpoints de reacción configurables.
type feedServer struct {
	mux      *http.ServeMux
	articles []models.ArticleView

	mu        sync.Mutex
	reactFail bool
	// primer GET del feed se bloquea acá si no es nil
	holdFirst chan struct{}
	served    int
}

func newFeedServer(n int) *feedServer {
	s := &feedServer{mux: http.NewServeMux()}
	for i := n; i >= 1; i-- {
		s.articles = append(s.articles, models.ArticleView{
			ID:    primitive.NewObjectID(),
			Title: fmt.Sprintf("Article %d", i),
		})
	}

	s.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    models.UserDoc{ID: primitive.NewObjectID(), FirstName: "Ana"},
		})
	})

	s.mux.HandleFunc("GET /api/articles", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.served++
		hold := s.holdFirst
		s.holdFirst = nil
		s.mu.Unlock()
		if hold != nil {
			<-hold
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 10
		}

		total := len(s.articles)
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		pageArticles := s.articles[start:end]

		writeTestJSON(w, http.StatusOK, FeedResponse{
			Success:     true,
			Results:     len(pageArticles),
			Total:       int64(total),
			CurrentPage: page,
			TotalPages:  (total + limit - 1) / limit,
			Articles:    pageArticles,
		})
	})

	s.mux.HandleFunc("GET /api/articles/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, a := range s.articles {
			if a.ID.Hex() == r.PathValue("id") {
				writeTestJSON(w, http.StatusOK, map[string]any{"success": true, "article": a})
				return
			}
		}
		writeTestJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "article not found"})
	})

	react := func(apply func(*models.ArticleView)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.mu.Lock()
			fail := s.reactFail
			s.mu.Unlock()
			if fail {
				writeTestJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "boom"})
				return
			}
			for i := range s.articles {
				if s.articles[i].ID.Hex() == r.PathValue("id") {
					apply(&s.articles[i])
					writeTestJSON(w, http.StatusOK, map[string]any{"success": true, "article": s.articles[i]})
					return
				}
			}
			writeTestJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "article not found"})
		}
	}
	s.mux.HandleFunc("POST /api/articles/{id}/like", react(func(a *models.ArticleView) {}))
	s.mux.HandleFunc("POST /api/articles/{id}/dislike", react(func(a *models.ArticleView) {}))
	s.mux.HandleFunc("POST /api/articles/{id}/block", react(func(a *models.ArticleView) {}))

	return s
}

func newFeedClient(t *testing.T, s *feedServer) *Client {
	t.Helper()
	srv := httptest.NewServer(s.mux)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "ana@example.com", "secret123")
	require.NoError(t, err)
	return c
}

// Scroll infinito: 12 artículos con páginas de 10 son dos fetches, el
// tercero no sale.
func TestFeedAccumulatesPages(t *testing.T) {
	s := newFeedServer(12)
	c := newFeedClient(t, s)
	f := NewFeed(c, 10)
	ctx := context.Background()

	assert.True(t, f.HasMore())

	ok, err := f.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.Articles(), 10)
	assert.EqualValues(t, 12, f.Total())
	assert.True(t, f.HasMore())
	assert.Equal(t, "Article 12", f.Articles()[0].Title)

	ok, err = f.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, f.Articles(), 12)
	assert.False(t, f.HasMore())
	assert.Equal(t, "Article 1", f.Articles()[11].Title)

	// no quedan páginas: no-op sin error y sin request
	ok, err = f.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, s.served)
}

func TestFeedEmpty(t *testing.T) {
	s := newFeedServer(0)
	c := newFeedClient(t, s)
	f := NewFeed(c, 10)

	ok, err := f.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.Articles())
	assert.False(t, f.HasMore())
}

// Con un fetch en vuelo, LoadMore no dispara otro: devuelve false de
// inmediato.
func TestFeedSingleFetchInFlight(t *testing.T) {
	s := newFeedServer(12)
	c := newFeedClient(t, s)
	f := NewFeed(c, 10)

	release := make(chan struct{})
	s.mu.Lock()
	s.holdFirst = release
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ok, err := f.LoadMore(context.Background())
		assert.NoError(t, err)
		assert.True(t, ok)
	}()

	// esperar a que el primer fetch esté bloqueado en el server
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.served == 1
	}, 2*time.Second, 10*time.Millisecond)

	ok, err := f.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	close(release)
	<-done
	assert.Len(t, f.Articles(), 10)
	assert.Equal(t, 1, s.served)
}

// ================== reacciones optimistas ==================

func loadAll(t *testing.T, f *Feed) {
	t.Helper()
	for f.HasMore() {
		ok, err := f.LoadMore(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestFeedOptimisticLike(t *testing.T) {
	s := newFeedServer(3)
	c := newFeedClient(t, s)
	f := NewFeed(c, 10)
	loadAll(t, f)

	id := f.Articles()[0].ID
	require.False(t, f.HasLiked(id))

	require.NoError(t, f.Like(context.Background(), id))
	assert.True(t, f.HasLiked(id))
	assert.False(t, f.HasDisliked(id))

	// like de nuevo: vuelve a neutral
	require.NoError(t, f.Like(context.Background(), id))
	assert.False(t, f.HasLiked(id))

	// dislike pisa el like
	require.NoError(t, f.Like(context.Background(), id))
	require.NoError(t, f.Dislike(context.Background(), id))
	assert.False(t, f.HasLiked(id))
	assert.True(t, f.HasDisliked(id))
}

// Si el server rechaza la reacción, el estado local vuelve a la verdad
// del servidor.
func TestFeedLikeRollback(t *testing.T) {
	s := newFeedServer(3)
	c := newFeedClient(t, s)
	f := NewFeed(c, 10)
	loadAll(t, f)

	id := f.Articles()[0].ID
	s.mu.Lock()
	s.reactFail = true
	s.mu.Unlock()

	err := f.Like(context.Background(), id)
	require.Error(t, err)
	assert.False(t, f.HasLiked(id))
}

func TestFeedBlockRemovesArticle(t *testing.T) {
	s := newFeedServer(3)
	c := newFeedClient(t, s)
	f := NewFeed(c, 10)
	loadAll(t, f)

	id := f.Articles()[1].ID
	require.NoError(t, f.Block(context.Background(), id))

	require.Len(t, f.Articles(), 2)
	for _, a := range f.Articles() {
		assert.NotEqual(t, id, a.ID)
	}
}

func TestFeedBlockRollbackReinserts(t *testing.T) {
	s := newFeedServer(3)
	c := newFeedClient(t, s)
	f := NewFeed(c, 10)
	loadAll(t, f)

	id := f.Articles()[1].ID
	s.mu.Lock()
	s.reactFail = true
	s.mu.Unlock()

	err := f.Block(context.Background(), id)
	require.Error(t, err)

	articles := f.Articles()
	require.Len(t, articles, 3)
	assert.Equal(t, id, articles[1].ID)
}

func TestFeedReactionsRequireLogin(t *testing.T) {
	s := newFeedServer(1)
	srv := httptest.NewServer(s.mux)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)

	f := NewFeed(c, 10)
	err = f.Like(context.Background(), s.articles[0].ID)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}
