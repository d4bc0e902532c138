package bookings

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/sessionstore"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Confirmation returns the stored booking, or a stub carrying only the id
	// when neither the session store nor the database knows it.
	Confirmation(ctx context.Context, bookingID string) (*models.Booking, error)
}

type ServiceImpl struct {
	store  sessionstore.Store
	repo   Repository
	logger *zap.Logger
}

// NewService creates the confirmation lookup. repo may be nil when no database
// is configured.
func NewService(store sessionstore.Store, repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{store: store, repo: repo, logger: logger}
}

func (s *ServiceImpl) Confirmation(ctx context.Context, bookingID string) (*models.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, models.Invalid("bookingId is required")
	}
	l := s.logger.With(zap.String("method", "Confirmation"), zap.String("bookingID", bookingID))

	var booking models.Booking
	err := s.store.Get(ctx, sessionstore.BookingKey(bookingID), &booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, sessionstore.ErrNotFound) {
		l.Warn("Session store lookup failed", zap.Error(err))
	}

	if s.repo != nil {
		stored, err := s.repo.GetByID(ctx, bookingID)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			l.Warn("Database lookup failed", zap.Error(err))
		}
	}

	l.Debug("Booking details unavailable, returning id only")
	return &models.Booking{BookingID: bookingID}, nil
}
