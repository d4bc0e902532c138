package results

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

const (
	// MaxHotels caps how many hotels one results page shows.
	MaxHotels = 20

	detailConcurrency = 8
	defaultCurrency   = "USD"
)

// HotelLookup fetches hotel metadata for one id.
type HotelLookup func(ctx context.Context, hotelID string) (*models.HotelDetail, error)

// rateSummary is what a hotel's rate groups say about price and refundability.
type rateSummary struct {
	price      *float64
	currency   string
	refundable bool
}

func summarizeRates(d models.HotelRateData) rateSummary {
	var s rateSummary
	for _, rt := range d.RoomTypes {
		for _, r := range rt.Rates {
			if r.Refundable() {
				s.refundable = true
			}
			if s.price == nil && len(r.RetailRate.Total) > 0 {
				amount := r.RetailRate.Total[0].Amount
				s.price = &amount
				s.currency = r.RetailRate.Total[0].Currency
			}
		}
	}
	if s.currency == "" {
		s.currency = defaultCurrency
	}
	return s
}

// HasFreeCancellation reports whether any rate in groups carries the refundable tag.
func HasFreeCancellation(groups []models.HotelRateData) bool {
	for _, g := range groups {
		if summarizeRates(g).refundable {
			return true
		}
	}
	return false
}

// Compose turns a rate search response into result rows. An AI search that
// embeds hotel metadata is used directly; every other search fetches hotel
// details per id, even when the provider sent a hotels array along. A hotel
// whose lookup fails is left out of the page.
func Compose(ctx context.Context, resp *models.RateSearchResponse, aiSearch bool, lookup HotelLookup, logger *zap.Logger) []models.HotelSummary {
	if resp == nil {
		return nil
	}
	rates := make(map[string]rateSummary, len(resp.Data))
	var ids []string
	for _, d := range resp.Data {
		if d.HotelID == "" {
			continue
		}
		if _, seen := rates[d.HotelID]; seen {
			continue
		}
		rates[d.HotelID] = summarizeRates(d)
		ids = append(ids, d.HotelID)
	}

	if aiSearch && len(resp.Hotels) > 0 {
		return fromEmbedded(resp.Hotels, rates)
	}

	if len(ids) > MaxHotels {
		ids = ids[:MaxHotels]
	}

	details := make([]*models.HotelDetail, len(ids))
	var mu sync.Mutex
	var failed []string
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			detail, err := lookup(gctx, id)
			if err != nil {
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
				logger.Warn("Hotel lookup failed, omitting from results", zap.String("hotelID", id), zap.Error(err))
				return nil
			}
			details[i] = detail
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.HotelSummary, 0, len(ids))
	for i, id := range ids {
		detail := details[i]
		if detail == nil {
			continue
		}
		rs := rates[id]
		out = append(out, models.HotelSummary{
			HotelID:             id,
			Name:                detail.Name,
			Photo:               detail.Photo(),
			Address:             detail.Address,
			Rating:              detail.StarRating,
			Price:               rs.price,
			Currency:            rs.currency,
			HasFreeCancellation: rs.refundable,
			Location:            detail.Location,
		})
	}
	if len(failed) > 0 {
		logger.Info("Results composed with omissions", zap.Int("shown", len(out)), zap.Strings("omitted", failed))
	}
	return out
}

func fromEmbedded(hotels []models.HotelInfo, rates map[string]rateSummary) []models.HotelSummary {
	out := make([]models.HotelSummary, 0, len(hotels))
	seen := make(map[string]bool, len(hotels))
	for _, h := range hotels {
		if h.ID == "" || seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		rs, ok := rates[h.ID]
		if !ok {
			rs = rateSummary{currency: defaultCurrency}
		}
		out = append(out, models.HotelSummary{
			HotelID:             h.ID,
			Name:                h.Name,
			Photo:               h.MainPhoto,
			Address:             h.Address,
			Rating:              h.Rating,
			Price:               rs.price,
			Currency:            rs.currency,
			HasFreeCancellation: rs.refundable,
			Location:            h.Location,
			Tags:                h.Tags,
			Persona:             h.Persona,
			Style:               h.Style,
			Story:               h.Story,
		})
		if len(out) == MaxHotels {
			break
		}
	}
	return out
}
