package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

func testChatConfig(url string) config.ChatConfig {
	return config.ChatConfig{
		Provider:     "xai",
		XAIAPIKey:    "xai-test",
		XAIURL:       url,
		XAIModel:     "grok-3-mini",
		GeminiAPIKey: "gem-test",
		GeminiModel:  "gemini-2.0-flash",
		MaxTokens:    150,
		Temperature:  0.3,
	}
}

func TestXAICompleter(t *testing.T) {
	msgs := []models.ChatMessage{{Role: "system", Content: "rules"}, {Role: "user", Content: "hi"}}

	t.Run("it sends the fixed sampling settings and returns the body verbatim", func(t *testing.T) {
		const reply = `{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"}}],"usage":{"total_tokens":9}}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer xai-test", r.Header.Get("Authorization"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "grok-3-mini", body["model"])
			assert.Equal(t, 0.3, body["temperature"])
			assert.Equal(t, 150.0, body["max_tokens"])
			assert.Len(t, body["messages"], 2)
			_, _ = w.Write([]byte(reply))
		}))
		defer srv.Close()

		got, err := NewXAICompleter(testChatConfig(srv.URL), zap.NewNop()).Complete(context.Background(), msgs)
		require.NoError(t, err)
		assert.JSONEq(t, reply, string(got))
		assert.Equal(t, "Hello!", ReplyText(got))
	})

	t.Run("it reports provider failures with truncated details", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(strings.Repeat("x", 1500)))
		}))
		defer srv.Close()

		_, err := NewXAICompleter(testChatConfig(srv.URL), zap.NewNop()).Complete(context.Background(), msgs)
		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusTooManyRequests, upErr.Status)
		assert.Len(t, upErr.Details, 1000)
	})
}

func TestGeminiCompleter(t *testing.T) {
	msgs := []models.ChatMessage{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "breakfast?"},
	}

	newCompleter := func(t *testing.T, h http.HandlerFunc) *GeminiCompleter {
		t.Helper()
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		g, err := NewGeminiCompleter(context.Background(), testChatConfig(""), zap.NewNop(), func(cc *genai.ClientConfig) {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: srv.URL + "/"}
		})
		require.NoError(t, err)
		return g
	}

	t.Run("it reshapes the reply into a chat completion", func(t *testing.T) {
		g := newCompleter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Len(t, body["contents"], 3)
			assert.NotNil(t, body["systemInstruction"])
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Yes, breakfast is served."}]},"finishReason":"STOP"}]}`))
		})

		got, err := g.Complete(context.Background(), msgs)
		require.NoError(t, err)
		assert.Equal(t, "Yes, breakfast is served.", ReplyText(got))
		assert.Contains(t, string(got), `"role":"assistant"`)
		assert.Contains(t, string(got), `"finish_reason":"stop"`)
	})

	t.Run("it maps API errors to provider errors", func(t *testing.T) {
		g := newCompleter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`))
		})

		_, err := g.Complete(context.Background(), msgs)
		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, http.StatusTooManyRequests, upErr.Status)
	})
}
