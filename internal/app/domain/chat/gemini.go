package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

var _ Completer = (*GeminiCompleter)(nil)

// GeminiCompleter answers through the Gemini API and reshapes the reply into
// the chat completion envelope the site expects.
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	logger      *zap.Logger
}

// NewGeminiCompleter creates the client. opts may adjust the client config,
// e.g. to point it at a test server.
func NewGeminiCompleter(ctx context.Context, cfg config.ChatConfig, logger *zap.Logger, opts ...func(*genai.ClientConfig)) (*GeminiCompleter, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiCompleter{
		client:      client,
		model:       cfg.GeminiModel,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
		logger:      logger,
	}, nil
}

func (g *GeminiCompleter) Provider() string { return "gemini" }

func (g *GeminiCompleter) Model() string { return g.model }

type completionChoice struct {
	Index        int                `json:"index"`
	Message      models.ChatMessage `json:"message"`
	FinishReason string             `json:"finish_reason,omitempty"`
}

type completionBody struct {
	Object  string             `json:"object"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
}

func (g *GeminiCompleter) Complete(ctx context.Context, messages []models.ChatMessage) (json.RawMessage, error) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			g.logger.Warn("Gemini rejected request", zap.Int("status", apiErr.Code))
			return nil, &UpstreamError{Status: apiErr.Code, Details: truncateDetails(apiErr.Message)}
		}
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	choice := completionChoice{Message: models.ChatMessage{Role: "assistant", Content: resp.Text()}}
	if len(resp.Candidates) > 0 {
		choice.FinishReason = strings.ToLower(string(resp.Candidates[0].FinishReason))
	}
	body, err := json.Marshal(completionBody{
		Object:  "chat.completion",
		Model:   g.model,
		Choices: []completionChoice{choice},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion: %w", err)
	}
	return body, nil
}
