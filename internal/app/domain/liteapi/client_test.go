package liteapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

func newTestClient(t *testing.T, key string, h http.HandlerFunc) (*ClientImpl, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(config.LiteAPIConfig{
		APIKey:  key,
		DataURL: srv.URL,
		BookURL: srv.URL + "/book",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	return c, &calls
}

func TestSearchRates(t *testing.T) {
	t.Run("it applies provider defaults and sends the search target", func(t *testing.T) {
		var got map[string]any
		c, _ := newTestClient(t, "sand_key", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/hotels/rates", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "sand_key", r.Header.Get("X-API-Key"))
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			_, _ = w.Write([]byte(`{"data":[{"hotelId":"h1","roomTypes":[{"offerId":"o1","rates":[{"name":"Double","mappedRoomId":7,"retailRate":{"total":[{"amount":120.5,"currency":"EUR"}]},"cancellationPolicies":{"refundableTag":"RFN"}}]}]}]}`))
		})

		resp, err := c.SearchRates(context.Background(), models.RateSearchParams{
			PlaceID:  "paris-1",
			Checkin:  "2026-03-06",
			Checkout: "2026-03-16",
		})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "h1", resp.Data[0].HotelID)
		assert.True(t, resp.Data[0].RoomTypes[0].Rates[0].Refundable())
		assert.Equal(t, 120.5, resp.Data[0].RoomTypes[0].Rates[0].RetailRate.Total[0].Amount)

		assert.Equal(t, "EUR", got["currency"])
		assert.Equal(t, "US", got["guestNationality"])
		assert.Equal(t, "paris-1", got["placeId"])
		assert.Equal(t, true, got["roomMapping"])
		assert.Equal(t, true, got["includeHotelData"])
		assert.EqualValues(t, 1, got["maxRatesPerHotel"])
		assert.Equal(t, []any{map[string]any{"adults": float64(2)}}, got["occupancies"])
		assert.NotContains(t, got, "hotelIds")
	})

	t.Run("it rejects a search without a target before calling upstream", func(t *testing.T) {
		c, calls := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {})
		_, err := c.SearchRates(context.Background(), models.RateSearchParams{Checkin: "a", Checkout: "b"})
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Zero(t, atomic.LoadInt32(calls))
	})

	t.Run("it reports a plain status message when the body has no error", func(t *testing.T) {
		c, _ := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.SearchRates(context.Background(), models.RateSearchParams{AISearch: "quiet", Checkin: "a", Checkout: "b"})
		var pe *ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, http.StatusBadGateway, pe.Status)
		assert.Equal(t, "Rates search failed: 502", pe.Message)
	})
}

func TestPrebook(t *testing.T) {
	t.Run("it returns the hold", func(t *testing.T) {
		c, _ := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/book/rates/prebook", r.URL.Path)
			var body prebookBody
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.True(t, body.UsePaymentSdk)
			assert.Equal(t, "off-123", body.OfferID)
			_, _ = w.Write([]byte(`{"data":{"prebookId":"pb-1","transactionId":"tx-1","secretKey":"sk-1"}}`))
		})
		hold, err := c.Prebook(context.Background(), "off-123")
		require.NoError(t, err)
		assert.Equal(t, &models.PrebookHold{PrebookID: "pb-1", TransactionID: "tx-1", SecretKey: "sk-1", OfferID: "off-123"}, hold)
	})

	t.Run("it surfaces the upstream error message verbatim", func(t *testing.T) {
		c, _ := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":4002,"message":"offer expired"}}`))
		})
		_, err := c.Prebook(context.Background(), "off-123")
		var pe *ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "offer expired", pe.Message)
		assert.Equal(t, http.StatusBadRequest, pe.Status)
	})

	t.Run("it refuses to call upstream without an api key", func(t *testing.T) {
		c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {})
		_, err := c.Prebook(context.Background(), "off-123")
		assert.ErrorIs(t, err, models.ErrNotConfigured)
		assert.Zero(t, atomic.LoadInt32(calls))
		assert.False(t, c.Configured())
	})
}

func TestBook(t *testing.T) {
	holder := models.GuestProfile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	guests := []models.Guest{{OccupancyNumber: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}}

	t.Run("it sends a transaction id payment", func(t *testing.T) {
		c, _ := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
			var body models.BookParams
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, models.Payment{Method: models.PaymentTransactionID, TransactionID: "tx-1"}, body.Payment)
			assert.Equal(t, "pb-1", body.PrebookID)
			_, _ = w.Write([]byte(`{"data":{"bookingId":"bk-1","status":"CONFIRMED","hotelConfirmationCode":"HC9"}}`))
		})
		b, err := c.Book(context.Background(), models.BookParams{
			PrebookID: "pb-1",
			Holder:    holder,
			Payment:   models.Payment{Method: models.PaymentTransactionID, TransactionID: "tx-1"},
			Guests:    guests,
		})
		require.NoError(t, err)
		assert.Equal(t, "bk-1", b.BookingID)
		assert.Equal(t, "HC9", b.HotelConfirmationCode)
	})

	cases := []struct {
		name   string
		params models.BookParams
	}{
		{"no payment method", models.BookParams{PrebookID: "pb-1", Holder: holder, Guests: guests}},
		{"transaction method without id", models.BookParams{PrebookID: "pb-1", Holder: holder, Guests: guests, Payment: models.Payment{Method: models.PaymentTransactionID}}},
		{"both payment methods", models.BookParams{PrebookID: "pb-1", Holder: holder, Guests: guests, Payment: models.Payment{Method: models.PaymentAccountCard, TransactionID: "tx-1"}}},
		{"no guests", models.BookParams{PrebookID: "pb-1", Holder: holder, Payment: models.Payment{Method: models.PaymentAccountCard}}},
		{"missing holder email", models.BookParams{PrebookID: "pb-1", Holder: models.GuestProfile{FirstName: "A", LastName: "B"}, Guests: guests, Payment: models.Payment{Method: models.PaymentAccountCard}}},
		{"missing prebook id", models.BookParams{Holder: holder, Guests: guests, Payment: models.Payment{Method: models.PaymentAccountCard}}},
	}
	for _, tc := range cases {
		t.Run("it rejects "+tc.name+" before any upstream call", func(t *testing.T) {
			c, calls := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {})
			_, err := c.Book(context.Background(), tc.params)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Zero(t, atomic.LoadInt32(calls))
		})
	}
}

func TestGetHotelAndReviews(t *testing.T) {
	c, _ := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/hotel":
			assert.Equal(t, "h1", r.URL.Query().Get("hotelId"))
			assert.Equal(t, "4", r.URL.Query().Get("timeout"))
			_, _ = w.Write([]byte(`{"data":{"id":"h1","name":"Hotel One","starRating":4,"hotelImages":[{"url":"https://img/1.jpg"}]}}`))
		case "/data/reviews":
			assert.Equal(t, "true", r.URL.Query().Get("getSentiment"))
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"data":{"sentiment_analysis":{"pros":["quiet"],"cons":["small rooms"]}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	h, err := c.GetHotel(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, "Hotel One", h.Name)
	assert.Equal(t, "https://img/1.jpg", h.Photo())
	require.NotNil(t, h.StarRating)
	assert.Equal(t, 4.0, *h.StarRating)

	s, err := c.GetHotelReviews(context.Background(), "h1", 0)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, []string{"quiet"}, s.Pros)
	assert.Equal(t, []string{"small rooms"}, s.Cons)
}

func TestProbe(t *testing.T) {
	t.Run("it reports the upstream status on failure", func(t *testing.T) {
		c, _ := newTestClient(t, "bad", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Paris", r.URL.Query().Get("textQuery"))
			w.WriteHeader(http.StatusUnauthorized)
		})
		status, err := c.Probe(context.Background())
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("it reports 200 when reachable", func(t *testing.T) {
		c, _ := newTestClient(t, "good", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		})
		status, err := c.Probe(context.Background())
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestSearchPlaces(t *testing.T) {
	c, calls := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "New York", r.URL.Query().Get("textQuery"))
		_, _ = w.Write([]byte(`{"data":[{"placeId":"ny-1","displayName":"New York","formattedAddress":"NY, USA"}]}`))
	})

	places, err := c.SearchPlaces(context.Background(), "  New York ")
	require.NoError(t, err)
	assert.Equal(t, []models.Place{{PlaceID: "ny-1", DisplayName: "New York", FormattedAddress: "NY, USA"}}, places)

	_, err = c.SearchPlaces(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}
