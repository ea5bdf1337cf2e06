package api

import (
	"encoding/json"
	"net/http"

	"github.com/joonhan/charchat/internal/domain"
)

type relayRequest struct {
	Messages     []domain.ChatMessage `json:"messages"`
	SystemPrompt string               `json:"systemPrompt"`
}

type relayResponse struct {
	Content string `json:"content"`
}

// RelayChat is the stateless passthrough to the completion API: the full
// role/content history plus the persona prompt in, the reply text out.
// No retry is performed and nothing is persisted here.
func (h *Handler) RelayChat(w http.ResponseWriter, r *http.Request) {
	var req relayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		Error(w, http.StatusBadRequest, "messages are required")
		return
	}

	content, err := h.completer.Complete(r.Context(), req.SystemPrompt, req.Messages)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to fetch response from completion API")
		return
	}

	JSON(w, http.StatusOK, relayResponse{Content: content})
}
