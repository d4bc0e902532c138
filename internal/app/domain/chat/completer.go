package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

const maxErrorDetails = 1000

// Completer sends a prepared conversation to a language model and returns an
// OpenAI-style chat completion body.
type Completer interface {
	Provider() string
	Model() string
	Complete(ctx context.Context, messages []models.ChatMessage) (json.RawMessage, error)
}

// UpstreamError is a non-success answer from the chat provider.
type UpstreamError struct {
	Status  int
	Details string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chat provider returned %d", e.Status)
}

func truncateDetails(s string) string {
	if r := []rune(s); len(r) > maxErrorDetails {
		return string(r[:maxErrorDetails])
	}
	return s
}

var _ Completer = (*XAICompleter)(nil)

// XAICompleter talks to an OpenAI-compatible chat completions endpoint.
type XAICompleter struct {
	httpClient  *http.Client
	url         string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

func NewXAICompleter(cfg config.ChatConfig, logger *zap.Logger) *XAICompleter {
	return &XAICompleter{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		url:         cfg.XAIURL,
		apiKey:      cfg.XAIAPIKey,
		model:       cfg.XAIModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

func (x *XAICompleter) Provider() string { return "xai" }

func (x *XAICompleter) Model() string { return x.model }

type completionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float32              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
}

func (x *XAICompleter) Complete(ctx context.Context, messages []models.ChatMessage) (json.RawMessage, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       x.model,
		Messages:    messages,
		Temperature: x.temperature,
		MaxTokens:   x.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+x.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		x.logger.Warn("Chat provider rejected request", zap.Int("status", resp.StatusCode))
		return nil, &UpstreamError{Status: resp.StatusCode, Details: truncateDetails(string(body))}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("chat provider returned invalid JSON")
	}
	return body, nil
}

// ReplyText pulls choices[0].message.content out of a completion body.
func ReplyText(body json.RawMessage) string {
	var parsed struct {
		Choices []struct {
			Message models.ChatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return ""
	}
	return parsed.Choices[0].Message.Content
}
