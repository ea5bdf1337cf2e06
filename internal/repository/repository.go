// Package repository exposes typed CRUD operations for the User,
// Character and Message entities on top of the key-value store. It is
// the sole owner of (de)serialization, default-character seeding and the
// default-record protection invariant.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joonhan/charchat/internal/domain"
	"github.com/joonhan/charchat/internal/kv"
)

// Key namespaces. Message logs are additionally parameterized by
// character id: one logical log per character.
const (
	userKey       = "user:profile"
	charactersKey = "character:collection"
	messageLogKey = "chat:history:"
	schemaVersion = 1
)

var (
	// ErrNotFound is returned when an update targets an id that is not
	// in the collection.
	ErrNotFound = errors.New("record not found")

	// ErrDefaultCharacter is returned when an operation would mutate a
	// seeded default character.
	ErrDefaultCharacter = errors.New("default characters cannot be modified")

	// ErrDuplicateID is returned when an added character reuses an
	// existing id.
	ErrDuplicateID = errors.New("character id already exists")
)

// envelope wraps every persisted value with a serialization version so
// the schema can evolve without guessing at stored shapes.
type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

// Repository provides typed access to the persisted entities. Construct
// one per process and pass it to consumers; it is safe for concurrent
// use to the extent the underlying store is (each call is a single
// read-modify-write, last writer wins at whole-value granularity).
type Repository struct {
	store kv.Store
}

// New creates a repository over the given key-value store.
func New(store kv.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) read(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	if raw == nil {
		return false, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Corrupted bytes are fatal for this read: surface "no data"
		// rather than crashing the caller. The corruption is not repaired.
		slog.Warn("discarding malformed stored value", "key", key, "error", err)
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		slog.Warn("discarding malformed stored value", "key", key, "version", env.Version, "error", err)
		return false, nil
	}
	return true, nil
}

func (r *Repository) write(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	raw, err := json.Marshal(envelope{Version: schemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("marshal envelope for %q: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// SaveUser creates or replaces the profile record.
func (r *Repository) SaveUser(ctx context.Context, user domain.User) error {
	return r.write(ctx, userKey, user)
}

// GetUser returns the profile record, or nil if none is stored.
func (r *Repository) GetUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	ok, err := r.read(ctx, userKey, &user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// ClearUser removes the profile record. The record is deleted, not
// archived.
func (r *Repository) ClearUser(ctx context.Context) error {
	return r.store.Delete(ctx, userKey)
}

// ListCharacters returns the character collection in insertion order.
// On the first call against an empty store it seeds the three default
// characters and persists them, so subsequent calls are idempotent.
func (r *Repository) ListCharacters(ctx context.Context) ([]domain.Character, error) {
	var chars []domain.Character
	ok, err := r.read(ctx, charactersKey, &chars)
	if err != nil {
		return nil, err
	}
	if !ok {
		chars = domain.DefaultCharacters()
		if err := r.write(ctx, charactersKey, chars); err != nil {
			return nil, fmt.Errorf("seed default characters: %w", err)
		}
	}
	return chars, nil
}

// GetCharacter returns the character with the given id, or nil if it is
// not in the collection.
func (r *Repository) GetCharacter(ctx context.Context, id string) (*domain.Character, error) {
	chars, err := r.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chars {
		if chars[i].ID == id {
			return &chars[i], nil
		}
	}
	return nil, nil
}

// AddCharacter appends a character to the collection. The caller must
// have generated a unique id beforehand.
func (r *Repository) AddCharacter(ctx context.Context, character domain.Character) error {
	chars, err := r.ListCharacters(ctx)
	if err != nil {
		return err
	}
	for _, c := range chars {
		if c.ID == character.ID {
			return fmt.Errorf("add character %q: %w", character.ID, ErrDuplicateID)
		}
	}
	return r.write(ctx, charactersKey, append(chars, character))
}

// UpdateCharacter replaces the record whose id matches. It returns
// ErrNotFound when the id is not in the collection and
// ErrDefaultCharacter when it targets a seeded default; in both cases
// the stored collection is left unchanged.
func (r *Repository) UpdateCharacter(ctx context.Context, character domain.Character) error {
	chars, err := r.ListCharacters(ctx)
	if err != nil {
		return err
	}
	for i, c := range chars {
		if c.ID != character.ID {
			continue
		}
		if c.IsDefault {
			return fmt.Errorf("update character %q: %w", character.ID, ErrDefaultCharacter)
		}
		// User-created records stay that way regardless of the payload.
		character.IsDefault = false
		chars[i] = character
		return r.write(ctx, charactersKey, chars)
	}
	return fmt.Errorf("update character %q: %w", character.ID, ErrNotFound)
}

// DeleteCharacter removes the record with the given id. Seeded defaults
// are never removed: the call is a silent no-op for them, and for ids
// that are not in the collection.
func (r *Repository) DeleteCharacter(ctx context.Context, id string) error {
	chars, err := r.ListCharacters(ctx)
	if err != nil {
		return err
	}
	kept := chars[:0:0]
	for _, c := range chars {
		if c.ID == id && !c.IsDefault {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == len(chars) {
		return nil
	}
	return r.write(ctx, charactersKey, kept)
}

// ListMessages returns the ordered message log for a character. An
// absent log yields an empty slice; message logs are never seeded.
func (r *Repository) ListMessages(ctx context.Context, characterID string) ([]domain.Message, error) {
	var msgs []domain.Message
	if _, err := r.read(ctx, messageLogKey+characterID, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// AppendMessage appends a message to a character's log. The store has no
// partial-update primitive, so this is a read-modify-write of the whole
// log; concurrent writers race and the last full write wins.
func (r *Repository) AppendMessage(ctx context.Context, characterID string, message domain.Message) error {
	msgs, err := r.ListMessages(ctx, characterID)
	if err != nil {
		return err
	}
	return r.write(ctx, messageLogKey+characterID, append(msgs, message))
}

// ClearMessages deletes the whole message log for a character.
func (r *Repository) ClearMessages(ctx context.Context, characterID string) error {
	return r.store.Delete(ctx, messageLogKey+characterID)
}
