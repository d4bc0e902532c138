package results

import (
	"math"
	"sort"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

// Filter keeps the items matching f and orders them by rating, highest
// first. Items with equal rating keep their input order. A missing rating
// counts as 0 and a missing price as unbounded.
func Filter(items []models.HotelSummary, f models.Filters) []models.HotelSummary {
	out := make([]models.HotelSummary, 0, len(items))
	for _, it := range items {
		if ratingOf(it) < f.MinRating {
			continue
		}
		if f.MaxPrice != nil && priceOf(it) > *f.MaxPrice {
			continue
		}
		if f.FreeCancellationOnly && !it.HasFreeCancellation {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ratingOf(out[i]) > ratingOf(out[j])
	})
	return out
}

func ratingOf(h models.HotelSummary) float64 {
	if h.Rating == nil {
		return 0
	}
	return *h.Rating
}

func priceOf(h models.HotelSummary) float64 {
	if h.Price == nil {
		return math.Inf(1)
	}
	return *h.Price
}
