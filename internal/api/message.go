package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joonhan/charchat/internal/chat"
)

// ListMessages returns the ordered conversation log for a character.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	characterID := chi.URLParam(r, "id")

	character, err := h.repo.GetCharacter(r.Context(), characterID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load character")
		return
	}
	if character == nil {
		Error(w, http.StatusNotFound, "character not found")
		return
	}

	msgs, err := h.repo.ListMessages(r.Context(), characterID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	JSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage runs one conversation turn: the user message is persisted
// before the completion call, and the assistant reply after it.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.chat.Send(r.Context(), chi.URLParam(r, "id"), req.Content)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		Error(w, http.StatusBadRequest, "message is empty")
	case errors.Is(err, chat.ErrMessageTooLong):
		Error(w, http.StatusBadRequest, "message must be at most 200 characters")
	case errors.Is(err, chat.ErrCharacterNotFound):
		Error(w, http.StatusNotFound, "character not found")
	case errors.Is(err, chat.ErrBusy):
		Error(w, http.StatusConflict, "a message is already being sent")
	case err != nil:
		// The user message is already persisted; the client may resubmit.
		Error(w, http.StatusBadGateway, "failed to fetch a reply")
	default:
		JSON(w, http.StatusOK, result)
	}
}

// ClearMessages deletes the whole conversation log for a character.
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.ClearMessages(r.Context(), chi.URLParam(r, "id")); err != nil {
		Error(w, http.StatusInternalServerError, "failed to clear messages")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
