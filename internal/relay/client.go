// Package relay forwards a conversation plus persona prompt to the
// Anthropic Messages API and returns the reply text. It holds no state
// and performs no retry.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/joonhan/charchat/internal/domain"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

var (
	errUpstreamStatus = errors.New("completion API returned non-success status")
	errEmptyContent   = errors.New("completion API returned no content")
)

// Config holds configuration for the completion client.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

// Client calls the Anthropic Messages API over HTTP.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
}

// NewClient creates a completion client. The underlying HTTP client has
// no timeout: a pending completion is awaited until it resolves, fails,
// or the request context is cancelled.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		logger:     logger,
	}
}

type messagesRequest struct {
	Model     string               `json:"model"`
	MaxTokens int                  `json:"max_tokens"`
	System    string               `json:"system,omitempty"`
	Messages  []domain.ChatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the full message history plus system prompt upstream
// and returns the assistant's reply text.
func (c *Client) Complete(ctx context.Context, systemPrompt string, messages []domain.ChatMessage) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completion API: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close completion response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The body is not parsed beyond existence; drain it so the
		// connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: %d", errUpstreamStatus, resp.StatusCode)
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(out.Content) == 0 {
		return "", errEmptyContent
	}
	return out.Content[0].Text, nil
}
