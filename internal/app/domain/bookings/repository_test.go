package bookings

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

func confirmedBooking() *models.Booking {
	price := 1240.5
	return &models.Booking{
		BookingID:             "bk-1",
		Status:                "CONFIRMED",
		HotelConfirmationCode: "HC-7",
		Checkin:               "2026-03-06",
		Checkout:              "2026-03-16",
		Price:                 &price,
		Currency:              "EUR",
		Hotel:                 &models.BookingHotel{HotelID: "paris-1", Name: "Hotel Lumiere"},
		PrebookID:             "pb-1",
	}
}

func TestRepositorySave(t *testing.T) {
	ctx := context.Background()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, zap.NewNop())
	b := confirmedBooking()

	pool.ExpectExec(`INSERT INTO bookings \(booking_id,prebook_id,status,hotel_id,hotel_name,hotel_confirmation_code,checkin,checkout,price,currency,payload\) VALUES \(.+\) ON CONFLICT \(booking_id\) DO NOTHING`).
		WithArgs("bk-1", "pb-1", "CONFIRMED", "paris-1", "Hotel Lumiere", "HC-7", "2026-03-06", "2026-03-16",
			pgxmock.AnyArg(), "EUR", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Save(ctx, b))

	t.Run("it treats a duplicate booking id as saved", func(t *testing.T) {
		pool.ExpectExec(`INSERT INTO bookings`).
			WithArgs("bk-1", "pb-1", "CONFIRMED", "paris-1", "Hotel Lumiere", "HC-7", "2026-03-06", "2026-03-16",
				pgxmock.AnyArg(), "EUR", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
		assert.NoError(t, repo.Save(ctx, b))
	})

	t.Run("it wraps driver errors", func(t *testing.T) {
		pool.ExpectExec(`INSERT INTO bookings`).WillReturnError(assert.AnError)
		err := repo.Save(ctx, &models.Booking{BookingID: "bk-2", PrebookID: "pb-2"})
		assert.ErrorIs(t, err, assert.AnError)
	})

	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryGetByID(t *testing.T) {
	ctx := context.Background()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, zap.NewNop())
	payload, err := json.Marshal(confirmedBooking())
	require.NoError(t, err)
	createdAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	selectSQL := regexp.QuoteMeta(`SELECT payload, created_at FROM bookings WHERE booking_id = $1`)

	pool.ExpectQuery(selectSQL).
		WithArgs("bk-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload", "created_at"}).AddRow(payload, createdAt))

	got, err := repo.GetByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", got.BookingID)
	assert.Equal(t, "HC-7", got.HotelConfirmationCode)
	assert.Equal(t, "paris-1", got.Hotel.HotelID)
	assert.Equal(t, createdAt, got.CreatedAt)

	pool.ExpectQuery(selectSQL).
		WithArgs("bk-404").
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetByID(ctx, "bk-404")
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.NoError(t, pool.ExpectationsWereMet())
}
