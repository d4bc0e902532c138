package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	t.Run("it round-trips a guest profile", func(t *testing.T) {
		in := models.GuestProfile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
		require.NoError(t, s.Put(ctx, GuestProfileKey("c1"), in, time.Hour))

		var out models.GuestProfile
		require.NoError(t, s.Get(ctx, GuestProfileKey("c1"), &out))
		assert.Equal(t, in, out)
	})

	t.Run("it reports a miss as not found", func(t *testing.T) {
		var out models.GuestProfile
		err := s.Get(ctx, GuestProfileKey("missing"), &out)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("it deletes entries", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "k", "v", time.Hour))
		require.NoError(t, s.Delete(ctx, "k"))
		var out string
		assert.ErrorIs(t, s.Get(ctx, "k", &out), ErrNotFound)
	})

	t.Run("it expires entries", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "short", "v", 20*time.Millisecond))
		time.Sleep(40 * time.Millisecond)
		var out string
		assert.ErrorIs(t, s.Get(ctx, "short", &out), ErrNotFound)
	})

	t.Run("put if absent claims once", func(t *testing.T) {
		ok, err := s.PutIfAbsent(ctx, ConsumedHoldKey("pb-1"), "c1", 0)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.PutIfAbsent(ctx, ConsumedHoldKey("pb-1"), "c2", 0)
		require.NoError(t, err)
		assert.False(t, ok)

		var owner string
		require.NoError(t, s.Get(ctx, ConsumedHoldKey("pb-1"), &owner))
		assert.Equal(t, "c1", owner)
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "pending-guest-profile:c1", GuestProfileKey("c1"))
	assert.Equal(t, "booking-by-id:bk-1", BookingKey("bk-1"))
	assert.Equal(t, "checkout-session:c1", CheckoutSessionKey("c1"))
	assert.Equal(t, "consumed-hold:pb-1", ConsumedHoldKey("pb-1"))
}
