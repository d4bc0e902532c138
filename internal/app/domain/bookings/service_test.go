package bookings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/sessionstore"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) Save(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func TestConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("it prefers the session store", func(t *testing.T) {
		store := sessionstore.NewMemoryStore(nil)
		require.NoError(t, store.Put(ctx, sessionstore.BookingKey("bk-1"), confirmedBooking(), 0))
		repo := new(MockRepository)

		got, err := NewService(store, repo, zap.NewNop()).Confirmation(ctx, "bk-1")
		require.NoError(t, err)
		assert.Equal(t, "HC-7", got.HotelConfirmationCode)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("it falls back to the database", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, "bk-1").Return(confirmedBooking(), nil).Once()

		got, err := NewService(sessionstore.NewMemoryStore(nil), repo, zap.NewNop()).Confirmation(ctx, "bk-1")
		require.NoError(t, err)
		assert.Equal(t, "Hotel Lumiere", got.Hotel.Name)
		repo.AssertExpectations(t)
	})

	t.Run("it returns the id alone when nothing is stored", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, "bk-9").Return(nil, models.ErrNotFound).Once()

		got, err := NewService(sessionstore.NewMemoryStore(nil), repo, zap.NewNop()).Confirmation(ctx, "bk-9")
		require.NoError(t, err)
		assert.Equal(t, &models.Booking{BookingID: "bk-9"}, got)
	})

	t.Run("it works without a database", func(t *testing.T) {
		got, err := NewService(sessionstore.NewMemoryStore(nil), nil, zap.NewNop()).Confirmation(ctx, "bk-9")
		require.NoError(t, err)
		assert.Equal(t, "bk-9", got.BookingID)
	})

	t.Run("it requires an id", func(t *testing.T) {
		_, err := NewService(sessionstore.NewMemoryStore(nil), nil, zap.NewNop()).Confirmation(ctx, "  ")
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}
