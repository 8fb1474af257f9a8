// Package live reparte los artículos recién publicados a los clientes
// websocket suscritos, filtrando por sus preferencias. El transporte
// entre instancias del API es el pub/sub de Redis.
package live

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/Asna-1994/ArticleSphere/internal/cache"
	"github.com/Asna-1994/ArticleSphere/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscriber es un cliente websocket conectado. C entrega los
// artículos que matchean sus preferencias.
type Subscriber struct {
	userID primitive.ObjectID
	prefs  map[primitive.ObjectID]bool
	ch     chan models.ArticleView
}

func (s *Subscriber) C() <-chan models.ArticleView { return s.ch }

type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]bool)}
}

// Run consume el canal de Redis y reparte a los suscriptores. Bloquea
// hasta que se cancele el contexto; correr en su propia goroutine.
func (h *Hub) Run(ctx context.Context) {
	ps := cache.Subscribe(ctx, cache.ChannelNewArticles)
	if ps == nil {
		return
	}
	defer ps.Close()

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var view models.ArticleView
			if err := json.Unmarshal([]byte(msg.Payload), &view); err != nil {
				log.Printf("[live] payload inválido: %v", err)
				continue
			}
			h.broadcast(view)
		}
	}
}

func (h *Hub) Subscribe(userID primitive.ObjectID, preferences []primitive.ObjectID) *Subscriber {
	prefs := make(map[primitive.ObjectID]bool, len(preferences))
	for _, id := range preferences {
		prefs[id] = true
	}
	sub := &Subscriber{
		userID: userID,
		prefs:  prefs,
		// buffer corto: si el cliente no drena, se pierden eventos en
		// vez de frenar el hub
		ch: make(chan models.ArticleView, 8),
	}

	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if h.subs[sub] {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(view models.ArticleView) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		// el autor no recibe su propio artículo
		if sub.userID == view.Author.ID {
			continue
		}
		if !sub.prefs[view.Category.ID] {
			continue
		}
		select {
		case sub.ch <- view:
		default:
		}
	}
}
