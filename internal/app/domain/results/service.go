package results

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

// stayRatesPerHotel is how many rates the hotel page asks for.
const stayRatesPerHotel = 10

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	SearchPlaces(ctx context.Context, query string) ([]models.Place, error)
	PlaceLocation(ctx context.Context, placeID string) (*models.PlaceLocation, error)
	Rates(ctx context.Context, params models.RateSearchParams) (*models.RateSearchResponse, error)
	Hotel(ctx context.Context, hotelID string) (*models.HotelDetail, error)
	// Search runs a rate search and returns the filtered result rows.
	Search(ctx context.Context, params models.RateSearchParams, filters models.Filters) ([]models.HotelSummary, error)
	// Stay returns the hotel page: metadata plus rates grouped by room.
	// Rates are only fetched when both dates are given.
	Stay(ctx context.Context, hotelID string, params models.RateSearchParams) (*models.StayDetail, error)
}

type ServiceImpl struct {
	gateway liteapi.Client
	logger  *zap.Logger
}

func NewService(gateway liteapi.Client, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{gateway: gateway, logger: logger}
}

func (s *ServiceImpl) SearchPlaces(ctx context.Context, query string) ([]models.Place, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Place{}, nil
	}
	places, err := s.gateway.SearchPlaces(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}
	if places == nil {
		places = []models.Place{}
	}
	return places, nil
}

func (s *ServiceImpl) PlaceLocation(ctx context.Context, placeID string) (*models.PlaceLocation, error) {
	loc, err := s.gateway.GetPlaceLocation(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load place details: %w", err)
	}
	return loc, nil
}

func (s *ServiceImpl) Rates(ctx context.Context, params models.RateSearchParams) (*models.RateSearchResponse, error) {
	resp, err := s.gateway.SearchRates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search rates: %w", err)
	}
	return resp, nil
}

func (s *ServiceImpl) Hotel(ctx context.Context, hotelID string) (*models.HotelDetail, error) {
	hotel, err := s.gateway.GetHotel(ctx, strings.TrimSpace(hotelID))
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	return hotel, nil
}

func (s *ServiceImpl) Search(ctx context.Context, params models.RateSearchParams, filters models.Filters) ([]models.HotelSummary, error) {
	ctx, span := otel.Tracer("ResultsService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("search.place_id", params.PlaceID),
		attribute.Int("search.hotel_ids", len(params.HotelIDs)),
		attribute.Bool("search.ai", params.AISearch != ""),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Search"))

	resp, err := s.gateway.SearchRates(ctx, params)
	if err != nil {
		l.Warn("Rate search failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Rate search failed")
		return nil, fmt.Errorf("failed to search rates: %w", err)
	}

	items := Compose(ctx, resp, params.AISearch != "", s.gateway.GetHotel, l)
	filtered := Filter(items, filters)
	span.SetAttributes(attribute.Int("results.composed", len(items)), attribute.Int("results.shown", len(filtered)))
	l.Debug("Results composed", zap.Int("composed", len(items)), zap.Int("shown", len(filtered)))
	return filtered, nil
}

func (s *ServiceImpl) Stay(ctx context.Context, hotelID string, params models.RateSearchParams) (*models.StayDetail, error) {
	hotelID = strings.TrimSpace(hotelID)
	if hotelID == "" {
		return nil, models.Invalid("hotelId is required")
	}
	ctx, span := otel.Tracer("ResultsService").Start(ctx, "Stay", trace.WithAttributes(
		attribute.String("hotel.id", hotelID),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Stay"), zap.String("hotelID", hotelID))

	var (
		hotel *models.HotelDetail
		rates *models.RateSearchResponse
	)
	withRates := params.Checkin != "" && params.Checkout != ""
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hotel, err = s.gateway.GetHotel(gctx, hotelID)
		return err
	})
	if withRates {
		params.PlaceID = ""
		params.AISearch = ""
		params.HotelIDs = []string{hotelID}
		params.MaxRatesPerHotel = stayRatesPerHotel
		g.Go(func() error {
			var err error
			rates, err = s.gateway.SearchRates(gctx, params)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		l.Warn("Hotel page lookup failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Hotel page lookup failed")
		return nil, fmt.Errorf("failed to load hotel page: %w", err)
	}

	out := &models.StayDetail{Hotel: hotel, Rooms: []models.RoomGroup{}}
	if rates != nil {
		if rooms := GroupRooms(rates, hotelID, hotel); rooms != nil {
			out.Rooms = rooms
		}
		out.HasFreeCancellation = HasFreeCancellation(rates.Data)
	}
	return out, nil
}
