package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/checkout"
	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/app/observability/metrics"
	database "github.com/FACorreiaa/saferstays/internal/db"
)

var (
	_ Repository               = (*RepositoryImpl)(nil)
	_ checkout.BookingRecorder = (*RepositoryImpl)(nil)
)

// Repository keeps confirmed bookings. Rows are written once and never updated.
type Repository interface {
	Save(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.DBTX
}

func NewRepository(db database.DBTX, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

func (r *RepositoryImpl) Save(ctx context.Context, booking *models.Booking) error {
	ctx, span := otel.Tracer("BookingsRepository").Start(ctx, "Save", trace.WithAttributes(
		attribute.String("booking.id", booking.BookingID),
	))
	defer span.End()

	payload, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to encode booking: %w", err)
	}

	var hotelID, hotelName string
	if booking.Hotel != nil {
		hotelID, hotelName = booking.Hotel.HotelID, booking.Hotel.Name
	}

	query, args, err := sq.Insert("bookings").
		Columns("booking_id", "prebook_id", "status", "hotel_id", "hotel_name",
			"hotel_confirmation_code", "checkin", "checkout", "price", "currency", "payload").
		Values(booking.BookingID, booking.PrebookID, booking.Status, hotelID, hotelName,
			booking.HotelConfirmationCode, booking.Checkin, booking.Checkout, booking.Price, booking.Currency, payload).
		Suffix("ON CONFLICT (booking_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build booking insert: %w", err)
	}

	start := time.Now()
	_, err = r.db.Exec(ctx, query, args...)
	r.observe(ctx, "save", start, err)
	if err != nil {
		r.logger.Error("Failed to save booking", zap.String("bookingID", booking.BookingID), zap.Error(err))
		span.RecordError(err)
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, span := otel.Tracer("BookingsRepository").Start(ctx, "GetByID", trace.WithAttributes(
		attribute.String("booking.id", bookingID),
	))
	defer span.End()

	query, args, err := sq.Select("payload", "created_at").
		From("bookings").
		Where(sq.Eq{"booking_id": bookingID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build booking query: %w", err)
	}

	var payload []byte
	var createdAt time.Time
	start := time.Now()
	err = r.db.QueryRow(ctx, query, args...).Scan(&payload, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		r.observe(ctx, "get", start, nil)
		return nil, fmt.Errorf("booking %s: %w", bookingID, models.ErrNotFound)
	}
	r.observe(ctx, "get", start, err)
	if err != nil {
		r.logger.Error("Failed to load booking", zap.String("bookingID", bookingID), zap.Error(err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	var booking models.Booking
	if err := json.Unmarshal(payload, &booking); err != nil {
		return nil, fmt.Errorf("failed to decode stored booking: %w", err)
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = createdAt
	}
	return &booking, nil
}

func (r *RepositoryImpl) observe(ctx context.Context, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("table", "bookings"), attribute.String("op", op))
	m.DBQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DBQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
