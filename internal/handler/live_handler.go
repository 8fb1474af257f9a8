package handler

import (
	"net/http"
	"time"

	"github.com/Asna-1994/ArticleSphere/internal/live"
	"github.com/Asna-1994/ArticleSphere/internal/service"

	"github.com/gorilla/websocket"
)

// upgrader global (CORS lo maneja el middleware HTTP)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type LiveHandler struct {
	hub   *live.Hub
	users *service.UserService
}

func NewLiveHandler(hub *live.Hub, users *service.UserService) *LiveHandler {
	return &LiveHandler{hub: hub, users: users}
}

// @Summary Stream de artículos nuevos (WebSocket)
// @Description Empuja los artículos recién publicados que matchean las preferencias del usuario
// @Tags articles
// @Security BearerAuth
// @Router /api/articles/ws [get]
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	u, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(userID, u.Preferences)
	defer h.hub.Unsubscribe(sub)

	conn.WriteJSON(map[string]any{
		"type": "start",
		"msg":  "Conexión WS abierta, escuchando artículos nuevos…",
	})

	// lector solo para detectar el cierre del cliente
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case view, ok := <-sub.C():
			if !ok {
				return
			}
			err := conn.WriteJSON(map[string]any{
				"type":    "article",
				"article": view,
			})
			if err != nil {
				return
			}
		}
	}
}
