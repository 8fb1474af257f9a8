package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Asna-1994/ArticleSphere/internal/apperr"
)

// Todos los errores salen con el mismo sobre {success:false, message},
// el status viene del error tipado (500 si no lo es).
func writeErr(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.StatusOf(err))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload["success"] = true
	_ = json.NewEncoder(w).Encode(payload)
}
