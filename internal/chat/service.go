// Package chat orchestrates a conversation turn: validating and
// persisting the user's message, invoking the remote completion, and
// persisting the reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/joonhan/charchat/internal/domain"
	"github.com/joonhan/charchat/internal/repository"
)

// Completer produces an assistant reply for a conversation plus persona
// prompt. It is implemented by the relay client and faked in tests.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error)
}

// State is the conversation controller state for one character.
type State string

const (
	// StateIdle means no completion request is outstanding.
	StateIdle State = "idle"
	// StateSending means a single completion request is in flight and
	// further submissions are rejected until it resolves.
	StateSending State = "sending"
)

var (
	// ErrEmptyMessage is returned for input that is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned for input longer than
	// domain.MaxUserMessageLen runes. Nothing is recorded.
	ErrMessageTooLong = errors.New("message exceeds maximum length")

	// ErrBusy is returned while a completion for the same character is
	// already in flight.
	ErrBusy = errors.New("a message is already being sent")

	// ErrCharacterNotFound is returned when the character id does not
	// exist.
	ErrCharacterNotFound = errors.New("character not found")
)

// Result holds the two messages persisted by a successful turn.
type Result struct {
	UserMessage domain.Message `json:"userMessage"`
	Reply       domain.Message `json:"reply"`
}

// Service runs the per-character send state machine. One Service is
// shared by all conversations; state is tracked per character id.
type Service struct {
	repo      *repository.Repository
	completer Completer
	logger    *slog.Logger

	mu      sync.Mutex
	sending map[string]bool
}

// NewService creates a conversation service.
func NewService(repo *repository.Repository, completer Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		completer: completer,
		logger:    logger,
		sending:   make(map[string]bool),
	}
}

// State returns the controller state for a character.
func (s *Service) State(characterID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending[characterID] {
		return StateSending
	}
	return StateIdle
}

func (s *Service) acquire(characterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending[characterID] {
		return false
	}
	s.sending[characterID] = true
	return true
}

func (s *Service) release(characterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sending, characterID)
}

// Send runs one conversation turn for the given character.
//
// Validation failures reject the input before any state transition or
// write. The user message is persisted before the completion request is
// issued, so a failed or interrupted request still preserves it. A
// completion failure records no assistant message and does not roll the
// user message back; the caller may simply resubmit.
func (s *Service) Send(ctx context.Context, characterID, text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > domain.MaxUserMessageLen {
		return nil, ErrMessageTooLong
	}

	character, err := s.repo.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("load character: %w", err)
	}
	if character == nil {
		return nil, ErrCharacterNotFound
	}

	if !s.acquire(characterID) {
		return nil, ErrBusy
	}
	defer s.release(characterID)

	userMsg := domain.NewUserMessage(text)
	if err := s.repo.AppendMessage(ctx, characterID, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	history, err := s.repo.ListMessages(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	content, err := s.completer.Complete(ctx, character.SystemPrompt, domain.ToChatMessages(history))
	if err != nil {
		// Intentional asymmetry: the user message above stays persisted,
		// the failed assistant turn leaves no trace.
		s.logger.Warn("completion failed", "character_id", characterID, "error", err)
		return nil, fmt.Errorf("complete conversation: %w", err)
	}

	reply := domain.NewAssistantMessage(content)
	if err := s.repo.AppendMessage(ctx, characterID, reply); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	return &Result{UserMessage: userMsg, Reply: reply}, nil
}
