package customer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

// Subscriber is the MailerLite create-or-update payload.
type Subscriber struct {
	Email  string            `json:"email"`
	Fields map[string]string `json:"fields"`
	Groups []string          `json:"groups,omitempty"`
}

// ListClient adds subscribers to the mailing list.
type ListClient interface {
	Configured() bool
	Upsert(ctx context.Context, sub Subscriber) error
}

var _ ListClient = (*MailerLiteClient)(nil)

// StatusError is a non-success answer from MailerLite.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mailerlite returned %d: %s", e.Status, e.Body)
}

type MailerLiteClient struct {
	httpClient *http.Client
	url        string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewMailerLiteClient(cfg config.MailerLiteConfig, logger *zap.Logger) *MailerLiteClient {
	return &MailerLiteClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		cb:         newBreaker("mailerlite", logger),
		logger:     logger,
	}
}

// newBreaker opens after three consecutive failures. Client errors (4xx)
// mean the request was bad, not that MailerLite is down, so they do not count.
func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			se, ok := err.(*StatusError)
			return ok && se.Status >= 400 && se.Status < 500
		},
	})
}

func (m *MailerLiteClient) Configured() bool {
	return m.apiKey != ""
}

func (m *MailerLiteClient) Upsert(ctx context.Context, sub Subscriber) error {
	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.post(ctx, sub)
	})
	return err
}

func (m *MailerLiteClient) post(ctx context.Context, sub Subscriber) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode subscriber: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build subscriber request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("subscriber request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
