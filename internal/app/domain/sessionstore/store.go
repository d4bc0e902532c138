package sessionstore

import (
	"context"
	"fmt"
	"time"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

// ErrNotFound is returned for a missing or expired entry.
var ErrNotFound = fmt.Errorf("session entry %w", models.ErrNotFound)

// Store is the key-value handoff channel between checkout steps. Values are
// stored JSON-encoded so every backend round-trips the same shapes.
type Store interface {
	Put(ctx context.Context, key string, value any, ttl time.Duration) error
	// PutIfAbsent stores value only when key holds no live entry and reports
	// whether it did.
	PutIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string, dst any) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

const (
	guestProfilePrefix    = "pending-guest-profile:"
	bookingPrefix         = "booking-by-id:"
	checkoutSessionPrefix = "checkout-session:"
	consumedHoldPrefix    = "consumed-hold:"
)

func GuestProfileKey(checkoutID string) string { return guestProfilePrefix + checkoutID }

func BookingKey(bookingID string) string { return bookingPrefix + bookingID }

func CheckoutSessionKey(checkoutID string) string { return checkoutSessionPrefix + checkoutID }

func ConsumedHoldKey(prebookID string) string { return consumedHoldPrefix + prebookID }
