// Package api provides HTTP handlers for the chat API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joonhan/charchat/internal/chat"
	"github.com/joonhan/charchat/internal/repository"
	"github.com/joonhan/charchat/internal/session"
)

// Handler provides the HTTP surface over the repository and the
// conversation service.
type Handler struct {
	repo      *repository.Repository
	chat      *chat.Service
	completer chat.Completer
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo *repository.Repository, chatSvc *chat.Service, completer chat.Completer) *Handler {
	return &Handler{
		repo:      repo,
		chat:      chatSvc,
		completer: completer,
	}
}

// RegisterRoutes mounts all API routes. Everything except login and the
// stateless relay route sits behind the session guard.
func (h *Handler) RegisterRoutes(r chi.Router, guard *session.Guard) {
	r.Post("/api/login", h.Login)
	r.Post("/api/chat", h.RelayChat)

	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware)

		r.Get("/api/user", h.GetUser)
		r.Put("/api/user", h.UpdateUser)
		r.Post("/api/logout", h.Logout)

		r.Get("/api/characters", h.ListCharacters)
		r.Post("/api/characters", h.CreateCharacter)
		r.Put("/api/characters/{id}", h.UpdateCharacter)
		r.Delete("/api/characters/{id}", h.DeleteCharacter)

		r.Get("/api/characters/{id}/messages", h.ListMessages)
		r.Post("/api/characters/{id}/messages", h.SendMessage)
		r.Delete("/api/characters/{id}/messages", h.ClearMessages)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
