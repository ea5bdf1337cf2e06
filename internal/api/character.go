package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joonhan/charchat/internal/domain"
	"github.com/joonhan/charchat/internal/repository"
)

type characterRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
	Thumbnail    string `json:"thumbnail"`
}

func (req *characterRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.SystemPrompt) == "" {
		return "name and systemPrompt are required"
	}
	return ""
}

// ListCharacters returns the character collection, seeding the defaults
// on the first read.
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := h.repo.ListCharacters(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load characters")
		return
	}
	JSON(w, http.StatusOK, chars)
}

// CreateCharacter appends a user-created character.
func (h *Handler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		Error(w, http.StatusBadRequest, msg)
		return
	}

	character := domain.Character{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		Thumbnail:    req.Thumbnail,
		IsDefault:    false,
	}
	if character.Thumbnail == "" {
		character.Thumbnail = "https://api.dicebear.com/7.x/bottts/svg?seed=" + character.ID
	}

	if err := h.repo.AddCharacter(r.Context(), character); err != nil {
		Error(w, http.StatusInternalServerError, "failed to save character")
		return
	}

	JSON(w, http.StatusCreated, character)
}

// UpdateCharacter replaces a user-created character. Seeded defaults are
// immutable.
func (h *Handler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		Error(w, http.StatusBadRequest, msg)
		return
	}

	character := domain.Character{
		ID:           chi.URLParam(r, "id"),
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		Thumbnail:    req.Thumbnail,
	}

	err := h.repo.UpdateCharacter(r.Context(), character)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		Error(w, http.StatusNotFound, "character not found")
	case errors.Is(err, repository.ErrDefaultCharacter):
		Error(w, http.StatusForbidden, "default characters cannot be edited")
	case err != nil:
		Error(w, http.StatusInternalServerError, "failed to save character")
	default:
		JSON(w, http.StatusOK, character)
	}
}

// DeleteCharacter removes a user-created character. Deleting a default
// (or an unknown id) is a silent no-op, so the response is 204 either way.
func (h *Handler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteCharacter(r.Context(), chi.URLParam(r, "id")); err != nil {
		Error(w, http.StatusInternalServerError, "failed to delete character")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
