package liteapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/app/observability/metrics"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

const maxBodyBytes = 8 << 20

var _ Client = (*ClientImpl)(nil)

// Client is the gateway to the hotel inventory provider. Every method issues
// exactly one HTTP call and never retries.
type Client interface {
	SearchPlaces(ctx context.Context, query string) ([]models.Place, error)
	GetPlaceLocation(ctx context.Context, placeID string) (*models.PlaceLocation, error)
	SearchRates(ctx context.Context, params models.RateSearchParams) (*models.RateSearchResponse, error)
	GetHotel(ctx context.Context, hotelID string) (*models.HotelDetail, error)
	GetHotelReviews(ctx context.Context, hotelID string, limit int) (*models.ReviewSentiment, error)
	Prebook(ctx context.Context, offerID string) (*models.PrebookHold, error)
	Book(ctx context.Context, params models.BookParams) (*models.Booking, error)
	Probe(ctx context.Context) (int, error)
	Configured() bool
}

// ProviderError is a non-success answer from the provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

type ClientImpl struct {
	httpClient *http.Client
	apiKey     string
	dataURL    string
	bookURL    string
	logger     *zap.Logger
}

func NewClient(cfg config.LiteAPIConfig, logger *zap.Logger) *ClientImpl {
	return &ClientImpl{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		dataURL:    strings.TrimRight(cfg.DataURL, "/"),
		bookURL:    strings.TrimRight(cfg.BookURL, "/"),
		logger:     logger,
	}
}

func (c *ClientImpl) Configured() bool {
	return c.apiKey != ""
}

func (c *ClientImpl) SearchPlaces(ctx context.Context, query string) ([]models.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.Invalid("q is required")
	}
	var out models.Envelope[[]models.Place]
	endpoint := c.dataURL + "/data/places?textQuery=" + url.QueryEscape(query)
	if err := c.do(ctx, "Places search", http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ClientImpl) GetPlaceLocation(ctx context.Context, placeID string) (*models.PlaceLocation, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, models.Invalid("placeId required")
	}
	var raw json.RawMessage
	endpoint := c.dataURL + "/data/places/" + url.PathEscape(placeID)
	if err := c.do(ctx, "Place details", http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	return NormalizePlaceLocation(raw)
}

type rateSearchBody struct {
	Occupancies      []occupancy `json:"occupancies"`
	Currency         string      `json:"currency"`
	GuestNationality string      `json:"guestNationality"`
	Checkin          string      `json:"checkin"`
	Checkout         string      `json:"checkout"`
	RoomMapping      bool        `json:"roomMapping"`
	MaxRatesPerHotel int         `json:"maxRatesPerHotel"`
	IncludeHotelData bool        `json:"includeHotelData"`
	PlaceID          string      `json:"placeId,omitempty"`
	HotelIDs         []string    `json:"hotelIds,omitempty"`
	AISearch         string      `json:"aiSearch,omitempty"`
}

type occupancy struct {
	Adults int `json:"adults"`
}

func (c *ClientImpl) SearchRates(ctx context.Context, params models.RateSearchParams) (*models.RateSearchResponse, error) {
	if params.Checkin == "" || params.Checkout == "" {
		return nil, models.Invalid("checkin and checkout are required")
	}
	if params.PlaceID == "" && len(params.HotelIDs) == 0 && params.AISearch == "" {
		return nil, models.Invalid("one of placeId, hotelIds or aiSearch is required")
	}

	body := rateSearchBody{
		Occupancies:      []occupancy{{Adults: orInt(params.Adults, 2)}},
		Currency:         orString(params.Currency, "EUR"),
		GuestNationality: orString(params.GuestNationality, "US"),
		Checkin:          params.Checkin,
		Checkout:         params.Checkout,
		RoomMapping:      true,
		MaxRatesPerHotel: orInt(params.MaxRatesPerHotel, 1),
		IncludeHotelData: true,
		PlaceID:          params.PlaceID,
		HotelIDs:         params.HotelIDs,
		AISearch:         params.AISearch,
	}

	var out models.RateSearchResponse
	if err := c.do(ctx, "Rates search", http.MethodPost, c.dataURL+"/hotels/rates", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ClientImpl) GetHotel(ctx context.Context, hotelID string) (*models.HotelDetail, error) {
	if hotelID == "" {
		return nil, models.Invalid("hotelId is required")
	}
	var out models.Envelope[*models.HotelDetail]
	endpoint := c.dataURL + "/data/hotel?hotelId=" + url.QueryEscape(hotelID) + "&timeout=4"
	if err := c.do(ctx, "Hotel fetch", http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, fmt.Errorf("hotel %s: %w", hotelID, models.ErrNotFound)
	}
	return out.Data, nil
}

// GetHotelReviews returns the sentiment summary of a hotel's reviews, or nil
// when the provider has none.
func (c *ClientImpl) GetHotelReviews(ctx context.Context, hotelID string, limit int) (*models.ReviewSentiment, error) {
	if hotelID == "" {
		return nil, models.Invalid("hotelId is required")
	}
	q := url.Values{}
	q.Set("hotelId", hotelID)
	q.Set("getSentiment", "true")
	q.Set("limit", strconv.Itoa(orInt(limit, 50)))

	var raw json.RawMessage
	if err := c.do(ctx, "Reviews fetch", http.MethodGet, c.dataURL+"/data/reviews?"+q.Encode(), nil, &raw); err != nil {
		return nil, err
	}
	return extractSentiment(raw), nil
}

type prebookBody struct {
	UsePaymentSdk bool   `json:"usePaymentSdk"`
	OfferID       string `json:"offerId"`
}

func (c *ClientImpl) Prebook(ctx context.Context, offerID string) (*models.PrebookHold, error) {
	if offerID == "" {
		return nil, models.Invalid("offerId is required")
	}
	var out models.Envelope[*models.PrebookHold]
	body := prebookBody{UsePaymentSdk: true, OfferID: offerID}
	if err := c.do(ctx, "Prebook", http.MethodPost, c.bookURL+"/rates/prebook", body, &out); err != nil {
		return nil, err
	}
	if out.Data == nil || out.Data.PrebookID == "" {
		return nil, &ProviderError{Status: http.StatusOK, Message: "Prebook response did not include a prebookId"}
	}
	if out.Data.OfferID == "" {
		out.Data.OfferID = offerID
	}
	return out.Data, nil
}

func (c *ClientImpl) Book(ctx context.Context, params models.BookParams) (*models.Booking, error) {
	if err := ValidateBookParams(params); err != nil {
		return nil, err
	}
	var out models.Envelope[*models.Booking]
	if err := c.do(ctx, "Book", http.MethodPost, c.bookURL+"/rates/book", params, &out); err != nil {
		return nil, err
	}
	if out.Data == nil || out.Data.BookingID == "" {
		return nil, &ProviderError{Status: http.StatusOK, Message: "Book response did not include a bookingId"}
	}
	return out.Data, nil
}

// ValidateBookParams enforces the finalize contract: holder identity, at least
// one guest and exactly one payment method.
func ValidateBookParams(p models.BookParams) error {
	if p.PrebookID == "" {
		return models.Invalid("prebookId is required")
	}
	if p.Holder.FirstName == "" || p.Holder.LastName == "" || p.Holder.Email == "" {
		return models.Invalid("holder firstName, lastName and email are required")
	}
	if len(p.Guests) == 0 {
		return models.Invalid("at least one guest is required")
	}
	switch p.Payment.Method {
	case models.PaymentTransactionID:
		if p.Payment.TransactionID == "" {
			return models.Invalid("transactionId is required for TRANSACTION_ID payment")
		}
	case models.PaymentAccountCard:
		if p.Payment.TransactionID != "" {
			return models.Invalid("provide either transactionId or useStoredPaymentMethod, not both")
		}
	default:
		return models.Invalid("a payment method is required: transactionId or useStoredPaymentMethod")
	}
	return nil
}

// Probe performs the health reachability call and returns the upstream status.
func (c *ClientImpl) Probe(ctx context.Context) (int, error) {
	endpoint := c.dataURL + "/data/places?textQuery=Paris"
	if err := c.do(ctx, "Health probe", http.MethodGet, endpoint, nil, nil); err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return pe.Status, err
		}
		return 0, err
	}
	return http.StatusOK, nil
}

type errorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ClientImpl) do(ctx context.Context, op, method, endpoint string, in, out any) error {
	ctx, span := otel.Tracer("LiteAPIClient").Start(ctx, op, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("liteapi.operation", op),
	))
	defer span.End()

	l := c.logger.With(zap.String("method", op))

	if c.apiKey == "" {
		span.SetStatus(codes.Error, "missing api key")
		return fmt.Errorf("liteapi %s: %w", op, models.ErrNotConfigured)
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.record(ctx, op, status, time.Since(start))
	if err != nil {
		l.Error("Provider call failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return fmt.Errorf("%s failed: %w", op, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", status))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if status < 200 || status > 299 {
		msg := fmt.Sprintf("%s failed: %d", op, status)
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != nil && eb.Error.Message != "" {
			msg = eb.Error.Message
		}
		l.Warn("Provider returned an error", zap.Int("status", status), zap.String("message", msg))
		span.SetStatus(codes.Error, msg)
		return &ProviderError{Status: status, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return fmt.Errorf("failed to decode %s response: %w", op, err)
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *ClientImpl) record(ctx context.Context, op string, status int, elapsed time.Duration) {
	m := metrics.Get()
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.Int("status", status),
	)
	m.ProviderRequestsTotal.Add(ctx, 1, attrs)
	m.ProviderRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
