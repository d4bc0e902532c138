package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/app/observability/metrics"
)

const reviewLimit = 50

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Configured reports whether a chat provider credential is present.
	Configured() bool
	// Reply answers the visitor, grounded on the hotel they are viewing when
	// the page identifies one.
	Reply(ctx context.Context, req models.ChatRequest) (json.RawMessage, error)
}

type ServiceImpl struct {
	gateway      liteapi.Client
	completer    Completer
	interactions *InteractionLogger
	logger       *zap.Logger
}

// NewService wires the bridge. completer is nil when no provider key is set
// and interactions is nil when no database is configured.
func NewService(gateway liteapi.Client, completer Completer, interactions *InteractionLogger, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		gateway:      gateway,
		completer:    completer,
		interactions: interactions,
		logger:       logger,
	}
}

func (s *ServiceImpl) Configured() bool {
	return s.completer != nil
}

func (s *ServiceImpl) Reply(ctx context.Context, req models.ChatRequest) (json.RawMessage, error) {
	if s.completer == nil {
		return nil, models.ErrNotConfigured
	}
	if len(req.Messages) == 0 {
		return nil, models.Invalid("Request must include a non-empty messages array.")
	}

	ctx, span := otel.Tracer("ChatService").Start(ctx, "Reply", trace.WithAttributes(
		attribute.String("chat.provider", s.completer.Provider()),
		attribute.String("chat.pathname", req.Pathname),
		attribute.Int("chat.messages", len(req.Messages)),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Reply"), zap.String("provider", s.completer.Provider()))

	hotelID := HotelIDFromPage(req.Pathname, req.Search)
	hotelContext, hasHotel := s.hotelContext(ctx, hotelID, l)
	span.SetAttributes(attribute.Bool("chat.hotel_context", hasHotel))

	messages := composeMessages(req.Messages, hotelContext, hasHotel)

	start := time.Now()
	body, err := s.completer.Complete(ctx, messages)
	latency := time.Since(start)

	in := models.ChatInteraction{
		ID:              uuid.NewString(),
		Provider:        s.completer.Provider(),
		Model:           s.completer.Model(),
		HotelID:         hotelID,
		HasHotelContext: hasHotel,
		Prompt:          lastUserMessage(req.Messages),
		StatusCode:      http.StatusOK,
		LatencyMs:       latency.Milliseconds(),
		CreatedAt:       start.UTC(),
	}

	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			in.StatusCode = upErr.Status
			in.ErrorMessage = upErr.Details
		} else {
			in.StatusCode = http.StatusInternalServerError
			in.ErrorMessage = err.Error()
		}
		s.record(ctx, in, "error")
		l.Warn("Chat completion failed", zap.Error(err), zap.Duration("latency", latency))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Completion failed")
		return nil, fmt.Errorf("failed to complete chat: %w", err)
	}

	in.Response = ReplyText(body)
	s.record(ctx, in, "ok")
	l.Info("Chat completed", zap.Bool("hotelContext", hasHotel), zap.Duration("latency", latency))
	span.SetStatus(codes.Ok, "Completion returned")
	return body, nil
}

// hotelContext fetches hotel details and review sentiment together. A
// failed review lookup only drops the sentiment; a failed hotel lookup
// drops the context entirely.
func (s *ServiceImpl) hotelContext(ctx context.Context, hotelID string, l *zap.Logger) (string, bool) {
	if hotelID == "" || !s.gateway.Configured() {
		return "", false
	}

	var (
		hotel   *models.HotelDetail
		reviews *models.ReviewSentiment
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		hotel, err = s.gateway.GetHotel(ctx, hotelID)
		return err
	})
	g.Go(func() error {
		r, err := s.gateway.GetHotelReviews(ctx, hotelID, reviewLimit)
		if err != nil {
			l.Debug("Hotel reviews unavailable", zap.String("hotelID", hotelID), zap.Error(err))
			return nil
		}
		if !r.Empty() {
			reviews = r
		}
		return nil
	})
	if err := g.Wait(); err != nil || hotel == nil {
		l.Warn("Continuing without hotel context", zap.String("hotelID", hotelID), zap.Error(err))
		return "", false
	}
	return HotelContext(hotel, reviews), true
}

func (s *ServiceImpl) record(ctx context.Context, in models.ChatInteraction, outcome string) {
	metrics.Get().ChatCompletionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", in.Provider),
		attribute.String("outcome", outcome),
	))
	if s.interactions != nil {
		s.interactions.LogAsync(ctx, in)
	}
}

func lastUserMessage(msgs []models.ChatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			return msgs[i].Content
		}
	}
	return msgs[len(msgs)-1].Content
}
