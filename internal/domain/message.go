package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxUserMessageLen is the maximum length (in runes) of a user-authored
// message. Longer input is rejected before anything is recorded.
const MaxUserMessageLen = 200

// Message is one entry in a character's conversation log. Messages are
// append-only: they are never edited in place, and removed only by a
// whole-log clear.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

// ChatMessage is the provider-facing message shape: role and content
// only, ids and timestamps stripped.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage builds a user-role message with a fresh id and the
// current timestamp.
func NewUserMessage(content string) Message {
	return newMessage(RoleUser, content)
}

// NewAssistantMessage builds an assistant-role message with a fresh id
// and the current timestamp.
func NewAssistantMessage(content string) Message {
	return newMessage(RoleAssistant, content)
}

func newMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ToChatMessages strips messages down to role+content pairs for the
// completion request payload.
func ToChatMessages(msgs []Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}
