package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/domain/sessionstore"
	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/app/observability/metrics"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

var _ Service = (*ServiceImpl)(nil)

// FinalizeRequest is the body of a finalize-booking call. Exactly one of
// TransactionID and UseStoredPaymentMethod must be set.
type FinalizeRequest struct {
	PrebookID              string              `json:"prebookId"`
	TransactionID          string              `json:"transactionId,omitempty"`
	UseStoredPaymentMethod bool                `json:"useStoredPaymentMethod,omitempty"`
	Holder                 models.GuestProfile `json:"holder"`
	Guests                 []models.Guest      `json:"guests"`
}

// BookingRecorder persists confirmed bookings beyond the session.
type BookingRecorder interface {
	Save(ctx context.Context, booking *models.Booking) error
}

type Service interface {
	Prebook(ctx context.Context, offerID string) (*models.PrebookHold, error)
	// Book validates the request, claims the hold for owner and calls upstream.
	Book(ctx context.Context, req FinalizeRequest, owner string) (*models.Booking, error)
	// Record stores a booking by id in the session store and durably.
	Record(ctx context.Context, booking *models.Booking) error
	// Finalize is Book followed by Record.
	Finalize(ctx context.Context, req FinalizeRequest) (*models.Booking, error)
}

type ServiceImpl struct {
	gateway  liteapi.Client
	holds    HoldLedger
	store    sessionstore.Store
	recorder BookingRecorder
	cfg      config.CheckoutConfig
	logger   *zap.Logger
}

// NewService creates the checkout service. recorder may be nil when no
// database is configured.
func NewService(gateway liteapi.Client, holds HoldLedger, store sessionstore.Store, recorder BookingRecorder, cfg config.CheckoutConfig, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		gateway:  gateway,
		holds:    holds,
		store:    store,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *ServiceImpl) Prebook(ctx context.Context, offerID string) (*models.PrebookHold, error) {
	ctx, span := otel.Tracer("CheckoutService").Start(ctx, "Prebook", trace.WithAttributes(
		attribute.String("offer.id", offerID),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Prebook"), zap.String("offerID", offerID))

	hold, err := s.gateway.Prebook(ctx, offerID)
	if err != nil {
		l.Warn("Prebook failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Prebook failed")
		return nil, fmt.Errorf("failed to prebook offer: %w", err)
	}

	l.Info("Prebook hold created", zap.String("prebookID", hold.PrebookID))
	span.SetStatus(codes.Ok, "Hold created")
	return hold, nil
}

func (s *ServiceImpl) Book(ctx context.Context, req FinalizeRequest, owner string) (*models.Booking, error) {
	ctx, span := otel.Tracer("CheckoutService").Start(ctx, "Book", trace.WithAttributes(
		attribute.String("prebook.id", req.PrebookID),
		attribute.Bool("payment.stored_method", req.UseStoredPaymentMethod),
		attribute.Int("guests.count", len(req.Guests)),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Book"), zap.String("prebookID", req.PrebookID), zap.String("owner", owner))

	params, err := s.bookParams(req)
	if err != nil {
		s.countBooking(ctx, "rejected")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid finalize request")
		return nil, err
	}

	if err := s.holds.Claim(ctx, params.PrebookID, owner); err != nil {
		l.Warn("Hold claim refused", zap.Error(err))
		s.countBooking(ctx, "duplicate")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Hold already consumed")
		return nil, err
	}

	booking, err := s.gateway.Book(ctx, params)
	if err != nil {
		l.Error("Upstream book failed, hold abandoned", zap.Error(err))
		s.countBooking(ctx, "failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Book failed")
		return nil, fmt.Errorf("failed to finalize booking: %w", err)
	}
	if booking.PrebookID == "" {
		booking.PrebookID = params.PrebookID
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	s.countBooking(ctx, "confirmed")
	l.Info("Booking confirmed", zap.String("bookingID", booking.BookingID))
	span.SetStatus(codes.Ok, "Booking confirmed")
	return booking, nil
}

func (s *ServiceImpl) Record(ctx context.Context, booking *models.Booking) error {
	l := s.logger.With(zap.String("method", "Record"), zap.String("bookingID", booking.BookingID))

	if err := s.store.Put(ctx, sessionstore.BookingKey(booking.BookingID), booking, s.cfg.BookingTTL); err != nil {
		l.Error("Failed to store booking in session", zap.Error(err))
		return fmt.Errorf("failed to store booking: %w", err)
	}

	if s.recorder != nil {
		if err := s.recorder.Save(ctx, booking); err != nil {
			l.Error("Failed to persist booking", zap.Error(err))
		}
	}
	return nil
}

func (s *ServiceImpl) Finalize(ctx context.Context, req FinalizeRequest) (*models.Booking, error) {
	booking, err := s.Book(ctx, req, "api")
	if err != nil {
		return nil, err
	}
	if err := s.Record(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// bookParams checks the request shape before anything touches the ledger or upstream.
func (s *ServiceImpl) bookParams(req FinalizeRequest) (models.BookParams, error) {
	hasTx := strings.TrimSpace(req.TransactionID) != ""
	switch {
	case hasTx && req.UseStoredPaymentMethod:
		return models.BookParams{}, models.Invalid("provide either transactionId or useStoredPaymentMethod, not both")
	case !hasTx && !req.UseStoredPaymentMethod:
		return models.BookParams{}, models.Invalid("a payment method is required: transactionId or useStoredPaymentMethod")
	case req.UseStoredPaymentMethod && !s.cfg.AccountPaymentEnabled:
		return models.BookParams{}, models.Invalid("Stored payment method is not enabled for this account")
	}

	payment := models.Payment{Method: models.PaymentAccountCard}
	if hasTx {
		payment = models.Payment{Method: models.PaymentTransactionID, TransactionID: strings.TrimSpace(req.TransactionID)}
	}
	params := models.BookParams{
		PrebookID: strings.TrimSpace(req.PrebookID),
		Holder:    req.Holder,
		Payment:   payment,
		Guests:    req.Guests,
	}
	if err := liteapi.ValidateBookParams(params); err != nil {
		return models.BookParams{}, err
	}
	return params, nil
}

func (s *ServiceImpl) countBooking(ctx context.Context, outcome string) {
	metrics.Get().BookingsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// SynthesizeGuests duplicates the holder once per traveller. adults below one
// is treated as one.
func SynthesizeGuests(holder models.GuestProfile, adults int) []models.Guest {
	if adults < 1 {
		adults = 1
	}
	guests := make([]models.Guest, adults)
	for i := range guests {
		guests[i] = models.Guest{
			OccupancyNumber: i + 1,
			FirstName:       holder.FirstName,
			LastName:        holder.LastName,
			Email:           holder.Email,
		}
	}
	return guests
}
