package chat

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/models"
	database "github.com/FACorreiaa/saferstays/internal/db"
)

var _ InteractionRepository = (*InteractionRepositoryImpl)(nil)

// InteractionRepository stores assistant turns for later review.
type InteractionRepository interface {
	Save(ctx context.Context, in models.ChatInteraction) error
}

type InteractionRepositoryImpl struct {
	db     database.DBTX
	logger *zap.Logger
}

func NewInteractionRepository(db database.DBTX, logger *zap.Logger) *InteractionRepositoryImpl {
	return &InteractionRepositoryImpl{db: db, logger: logger}
}

func (r *InteractionRepositoryImpl) Save(ctx context.Context, in models.ChatInteraction) error {
	ctx, span := otel.Tracer("ChatInteractions").Start(ctx, "Save", trace.WithAttributes(
		attribute.String("provider", in.Provider),
		attribute.Int("status_code", in.StatusCode),
	))
	defer span.End()

	id, err := uuid.Parse(in.ID)
	if err != nil {
		id = uuid.New()
	}

	query, args, err := sq.Insert("chat_interactions").
		Columns("id", "provider", "model", "hotel_id", "has_hotel_context", "prompt",
			"response", "status_code", "error_message", "latency_ms").
		Values(id, in.Provider, in.Model, nullable(in.HotelID), in.HasHotelContext, in.Prompt,
			nullable(in.Response), in.StatusCode, nullable(in.ErrorMessage), in.LatencyMs).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build chat interaction insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save chat interaction: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// InteractionLogger writes interactions off the request path.
type InteractionLogger struct {
	repo   InteractionRepository
	logger *zap.Logger
}

func NewInteractionLogger(repo InteractionRepository, logger *zap.Logger) *InteractionLogger {
	return &InteractionLogger{repo: repo, logger: logger}
}

// LogAsync saves in on a detached context; failures are only logged. The
// returned channel is closed once the write has finished.
func (l *InteractionLogger) LogAsync(ctx context.Context, in models.ChatInteraction) <-chan struct{} {
	done := make(chan struct{})
	asyncCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		if err := l.repo.Save(asyncCtx, in); err != nil {
			l.logger.Error("Failed to log chat interaction",
				zap.String("provider", in.Provider),
				zap.String("hotelID", in.HotelID),
				zap.Error(err))
		}
	}()
	return done
}
