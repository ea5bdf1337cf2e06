//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/joonhan/charchat/internal/chat"
	"github.com/joonhan/charchat/internal/domain"
	"github.com/joonhan/charchat/internal/kv"
	"github.com/joonhan/charchat/internal/repository"
	"github.com/joonhan/charchat/internal/session"
)

type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, _ []domain.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reply, f.err
}

type testServer struct {
	router    *chi.Mux
	repo      *repository.Repository
	completer *fakeCompleter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := repository.New(kv.NewMemory())
	completer := &fakeCompleter{reply: "ok"}
	handler := NewHandler(repo, chat.NewService(repo, completer, nil), completer)

	r := chi.NewRouter()
	handler.RegisterRoutes(r, session.NewGuard(repo))

	return &testServer{router: r, repo: repo, completer: completer}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T) domain.User {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":           "me@example.com",
		"password":        "pass123!x",
		"confirmPassword": "pass123!x",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	var user domain.User
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return user
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing fields", map[string]string{"email": "me@example.com"}},
		{"bad email", map[string]string{"email": "not-an-email", "password": "pass123!x", "confirmPassword": "pass123!x"}},
		{"weak password", map[string]string{"email": "me@example.com", "password": "short", "confirmPassword": "short"}},
		{"mismatch", map[string]string{"email": "me@example.com", "password": "pass123!x", "confirmPassword": "pass123!y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			w := ts.do(t, http.MethodPost, "/api/login", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestLoginCreatesProfileAndDerivesName(t *testing.T) {
	ts := newTestServer(t)

	user := ts.login(t)
	if user.Name != "me" {
		t.Errorf("expected name derived from email local part, got %q", user.Name)
	}
	if user.Theme != domain.ThemeLight {
		t.Errorf("expected light theme default, got %q", user.Theme)
	}
	if user.ID == "" {
		t.Error("expected generated id")
	}
}

func TestGuardBlocksProtectedRoutesUntilLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/characters", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", w.Code)
	}

	ts.login(t)

	w = ts.do(t, http.MethodGet, "/api/characters", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after login, got %d", w.Code)
	}

	// Logout removes the profile; the very next guarded request is
	// rejected again.
	w = ts.do(t, http.MethodPost, "/api/logout", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", w.Code)
	}
	w = ts.do(t, http.MethodGet, "/api/characters", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t)

	w := ts.do(t, http.MethodPut, "/api/user", map[string]string{"name": "  ", "theme": "dark"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank name: expected 400, got %d", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/api/user", map[string]string{"name": "new name", "theme": "sepia"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad theme: expected 400, got %d", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/api/user", map[string]string{"name": "new name", "theme": "dark"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	user, err := ts.repo.GetUser(context.Background())
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Name != "new name" || user.Theme != domain.ThemeDark {
		t.Errorf("profile edit not persisted: %+v", user)
	}
	if user.Email != "me@example.com" {
		t.Errorf("email must be immutable, got %q", user.Email)
	}
}

func TestCharacterCRUD(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t)

	w := ts.do(t, http.MethodPost, "/api/characters", map[string]string{"name": "Test"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing systemPrompt: expected 400, got %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/characters", map[string]string{
		"name":         "Test",
		"systemPrompt": "x",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created domain.Character
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.IsDefault {
		t.Error("created characters must not be default")
	}
	if created.Thumbnail == "" {
		t.Error("expected a generated thumbnail")
	}

	w = ts.do(t, http.MethodGet, "/api/characters", nil)
	var chars []domain.Character
	if err := json.NewDecoder(w.Body).Decode(&chars); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(chars) != 4 {
		t.Fatalf("expected 3 defaults + 1 created, got %d", len(chars))
	}

	w = ts.do(t, http.MethodPut, "/api/characters/"+created.ID, map[string]string{
		"name":         "Renamed",
		"systemPrompt": "y",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPut, "/api/characters/char_default_1", map[string]string{
		"name":         "Hijack",
		"systemPrompt": "z",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("update default: expected 403, got %d", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/api/characters/missing", map[string]string{
		"name":         "Ghost",
		"systemPrompt": "z",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing: expected 404, got %d", w.Code)
	}

	w = ts.do(t, http.MethodDelete, "/api/characters/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	w = ts.do(t, http.MethodDelete, "/api/characters/char_default_1", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete default is a silent no-op: expected 204, got %d", w.Code)
	}

	w = ts.do(t, http.MethodGet, "/api/characters", nil)
	chars = nil
	if err := json.NewDecoder(w.Body).Decode(&chars); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(chars) != 3 {
		t.Errorf("expected the 3 defaults back, got %d", len(chars))
	}
}

func TestSendMessageFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t)
	ts.completer.reply = "반가워요"

	w := ts.do(t, http.MethodPost, "/api/characters/char_default_1/messages", map[string]string{"content": "안녕"})
	if w.Code != http.StatusOK {
		t.Fatalf("send: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result chat.Result
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Reply.Content != "반가워요" {
		t.Errorf("unexpected reply: %+v", result.Reply)
	}

	w = ts.do(t, http.MethodGet, "/api/characters/char_default_1/messages", nil)
	var msgs []domain.Message
	if err := json.NewDecoder(w.Body).Decode(&msgs); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected both turns persisted, got %d", len(msgs))
	}
	if msgs[0].Content != "안녕" || msgs[1].Content != "반가워요" {
		t.Errorf("unexpected log: %+v", msgs)
	}
}

func TestSendMessageErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t)

	w := ts.do(t, http.MethodPost, "/api/characters/char_default_1/messages", map[string]string{"content": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty message: expected 400, got %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/characters/missing/messages", map[string]string{"content": "hi"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown character: expected 404, got %d", w.Code)
	}

	ts.completer.err = errors.New("upstream down")
	w = ts.do(t, http.MethodPost, "/api/characters/char_default_1/messages", map[string]string{"content": "hi"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("completion failure: expected 502, got %d", w.Code)
	}

	// The failed turn keeps the user message and records no reply.
	msgs, err := ts.repo.ListMessages(context.Background(), "char_default_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != domain.RoleUser {
		t.Errorf("expected only the user message persisted, got %+v", msgs)
	}
}

func TestClearMessagesRoute(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t)

	if _, err := ts.repo.ListCharacters(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ts.repo.AppendMessage(context.Background(), "char_default_1", domain.NewUserMessage("hi")); err != nil {
		t.Fatalf("append: %v", err)
	}

	w := ts.do(t, http.MethodDelete, "/api/characters/char_default_1/messages", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", w.Code)
	}

	msgs, err := ts.repo.ListMessages(context.Background(), "char_default_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected empty log after clear, got %d", len(msgs))
	}
}

func TestRelayRoute(t *testing.T) {
	ts := newTestServer(t)
	ts.completer.reply = "hello there"

	// The relay route is public and stateless: no login required.
	w := ts.do(t, http.MethodPost, "/api/chat", map[string]interface{}{
		"messages":     []map[string]string{{"role": "user", "content": "hi"}},
		"systemPrompt": "be nice",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("relay: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["content"] != "hello there" {
		t.Errorf("unexpected relay response: %v", resp)
	}

	w = ts.do(t, http.MethodPost, "/api/chat", map[string]interface{}{"messages": []map[string]string{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty messages: expected 400, got %d", w.Code)
	}

	ts.completer.err = errors.New("upstream down")
	w = ts.do(t, http.MethodPost, "/api/chat", map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("relay failure: expected 500, got %d", w.Code)
	}
}
