package results

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

func TestFilter(t *testing.T) {
	items := []models.HotelSummary{
		{HotelID: "a", Rating: ptr(3), Price: ptr(100), HasFreeCancellation: true},
		{HotelID: "b", Rating: ptr(5), Price: ptr(300)},
		{HotelID: "c", Price: ptr(50), HasFreeCancellation: true},
		{HotelID: "d", Rating: ptr(5), HasFreeCancellation: true},
		{HotelID: "e", Rating: ptr(4), Price: ptr(120), HasFreeCancellation: true},
	}

	ids := func(hs []models.HotelSummary) []string {
		out := make([]string, 0, len(hs))
		for _, h := range hs {
			out = append(out, h.HotelID)
		}
		return out
	}

	t.Run("it sorts by rating and keeps ties in input order", func(t *testing.T) {
		assert.Equal(t, []string{"b", "d", "e", "a", "c"}, ids(Filter(items, models.Filters{})))
	})

	t.Run("it keeps only refundable hotels when asked", func(t *testing.T) {
		assert.Equal(t, []string{"d", "e", "a", "c"}, ids(Filter(items, models.Filters{FreeCancellationOnly: true})))
	})

	t.Run("it treats a missing price as above any ceiling", func(t *testing.T) {
		assert.Equal(t, []string{"e", "a", "c"}, ids(Filter(items, models.Filters{MaxPrice: ptr(150)})))
	})

	t.Run("it treats a missing rating as zero", func(t *testing.T) {
		assert.Equal(t, []string{"b", "d", "e"}, ids(Filter(items, models.Filters{MinRating: 4})))
		assert.Contains(t, ids(Filter(items, models.Filters{MinRating: 0})), "c")
	})

	t.Run("it returns exactly the matching set in non-increasing rating order", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for round := 0; round < 50; round++ {
			var hs []models.HotelSummary
			for i := 0; i < 25; i++ {
				h := models.HotelSummary{HotelID: fmt.Sprintf("h%d", i), HasFreeCancellation: rng.Intn(2) == 0}
				if rng.Intn(4) > 0 {
					h.Rating = ptr(float64(rng.Intn(11)) / 2)
				}
				if rng.Intn(4) > 0 {
					h.Price = ptr(float64(50 + rng.Intn(500)))
				}
				hs = append(hs, h)
			}
			f := models.Filters{
				MinRating:            float64(rng.Intn(6)),
				MaxPrice:             ptr(float64(100 + rng.Intn(400))),
				FreeCancellationOnly: rng.Intn(2) == 0,
			}

			got := Filter(hs, f)

			want := map[string]bool{}
			for _, h := range hs {
				if ratingOf(h) >= f.MinRating && priceOf(h) <= *f.MaxPrice && (!f.FreeCancellationOnly || h.HasFreeCancellation) {
					want[h.HotelID] = true
				}
			}
			assert.Len(t, got, len(want))
			prev := math.Inf(1)
			for _, h := range got {
				assert.True(t, want[h.HotelID], "unexpected hotel %s", h.HotelID)
				assert.LessOrEqual(t, ratingOf(h), prev)
				prev = ratingOf(h)
			}
		}
	})
}
