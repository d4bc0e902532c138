// Package liteapitest provides test doubles for the provider gateway.
package liteapitest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

// MockClient is a testify mock of liteapi.Client. It reports itself
// configured unless Unconfigured is set.
type MockClient struct {
	mock.Mock
	Unconfigured bool
}

var _ liteapi.Client = (*MockClient)(nil)

func (m *MockClient) SearchPlaces(ctx context.Context, query string) ([]models.Place, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Place), args.Error(1)
}

func (m *MockClient) GetPlaceLocation(ctx context.Context, placeID string) (*models.PlaceLocation, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlaceLocation), args.Error(1)
}

func (m *MockClient) SearchRates(ctx context.Context, params models.RateSearchParams) (*models.RateSearchResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateSearchResponse), args.Error(1)
}

func (m *MockClient) GetHotel(ctx context.Context, hotelID string) (*models.HotelDetail, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HotelDetail), args.Error(1)
}

func (m *MockClient) GetHotelReviews(ctx context.Context, hotelID string, limit int) (*models.ReviewSentiment, error) {
	args := m.Called(ctx, hotelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewSentiment), args.Error(1)
}

func (m *MockClient) Prebook(ctx context.Context, offerID string) (*models.PrebookHold, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrebookHold), args.Error(1)
}

func (m *MockClient) Book(ctx context.Context, params models.BookParams) (*models.Booking, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockClient) Probe(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockClient) Configured() bool {
	return !m.Unconfigured
}
