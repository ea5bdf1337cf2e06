package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/joonhan/charchat/internal/domain"
	"github.com/joonhan/charchat/internal/session"
)

type loginRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login validates the submitted credentials and stores the profile
// record. The password is checked but never persisted; there is no
// account database behind this.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		Error(w, http.StatusBadRequest, "email, password and confirmation are required")
		return
	}
	if !domain.ValidEmail(req.Email) {
		Error(w, http.StatusBadRequest, "email must be a valid address of at most 30 characters")
		return
	}
	if !domain.ValidPassword(req.Password) {
		Error(w, http.StatusBadRequest, "password must be 8-20 characters with a letter, a digit and a special character")
		return
	}
	if req.Password != req.ConfirmPassword {
		Error(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	// Already logged in: return the stored profile instead of replacing it.
	if existing, err := h.repo.GetUser(r.Context()); err == nil && existing != nil {
		JSON(w, http.StatusOK, existing)
		return
	}

	user := domain.User{
		ID:    uuid.NewString(),
		Email: req.Email,
		Name:  strings.SplitN(req.Email, "@", 2)[0],
		Theme: domain.ThemeLight,
	}
	if err := h.repo.SaveUser(r.Context(), user); err != nil {
		Error(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	JSON(w, http.StatusCreated, user)
}

// GetUser returns the stored profile record.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, session.UserFromContext(r.Context()))
}

type updateUserRequest struct {
	Name  string       `json:"name"`
	Theme domain.Theme `json:"theme"`
}

// UpdateUser saves profile edits. The id and email are immutable.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Theme.Valid() {
		Error(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}

	user := *session.UserFromContext(r.Context())
	user.Name = req.Name
	user.Theme = req.Theme

	if err := h.repo.SaveUser(r.Context(), user); err != nil {
		Error(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	JSON(w, http.StatusOK, user)
}

// Logout removes the profile record. The next guarded request observes
// the absence and is rejected.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.ClearUser(r.Context()); err != nil {
		Error(w, http.StatusInternalServerError, "failed to clear profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
