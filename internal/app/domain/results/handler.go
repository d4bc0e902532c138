package results

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/handlers"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{BaseHandler: handlers.NewBaseHandler(logger), service: service}
}

// Places handles GET /api/places?q=.
func (h *Handler) Places(c *gin.Context) {
	places, err := h.service.SearchPlaces(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, places)
}

// PlaceDetails handles GET /api/places/details?placeId=.
func (h *Handler) PlaceDetails(c *gin.Context) {
	placeID := strings.TrimSpace(c.Query("placeId"))
	if placeID == "" {
		h.RespondError(c, models.Invalid("placeId required"))
		return
	}
	loc, err := h.service.PlaceLocation(c.Request.Context(), placeID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, loc)
}

// Rates handles POST /api/rates and returns the provider payload unchanged.
func (h *Handler) Rates(c *gin.Context) {
	var params models.RateSearchParams
	if err := h.BindJSON(c, &params); err != nil {
		h.RespondError(c, err)
		return
	}
	if params.Adults < 1 {
		params.Adults = 2
	}
	resp, err := h.service.Rates(c.Request.Context(), params)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Hotel handles GET /api/hotel?hotelId=.
func (h *Handler) Hotel(c *gin.Context) {
	hotelID := strings.TrimSpace(c.Query("hotelId"))
	if hotelID == "" {
		h.RespondError(c, models.Invalid("hotelId is required"))
		return
	}
	hotel, err := h.service.Hotel(c.Request.Context(), hotelID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, hotel)
}

// Results handles GET /api/results.
func (h *Handler) Results(c *gin.Context) {
	params := searchParams(c)
	filters, err := parseFilters(c)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	items, err := h.service.Search(c.Request.Context(), params, filters)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, items)
}

// Stay handles GET /api/stays/:hotelId.
func (h *Handler) Stay(c *gin.Context) {
	detail, err := h.service.Stay(c.Request.Context(), c.Param("hotelId"), searchParams(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, detail)
}

func searchParams(c *gin.Context) models.RateSearchParams {
	p := models.RateSearchParams{
		PlaceID:          strings.TrimSpace(c.Query("placeId")),
		AISearch:         strings.TrimSpace(c.Query("aiSearch")),
		Checkin:          c.Query("checkin"),
		Checkout:         c.Query("checkout"),
		Currency:         c.Query("currency"),
		GuestNationality: c.Query("guestNationality"),
		Adults:           2,
	}
	if ids := c.Query("hotelIds"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				p.HotelIDs = append(p.HotelIDs, id)
			}
		}
	}
	if n, err := strconv.Atoi(c.Query("adults")); err == nil && n > 0 {
		p.Adults = n
	}
	return p
}

func parseFilters(c *gin.Context) (models.Filters, error) {
	var f models.Filters
	if v := c.Query("minRating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, models.Invalid("minRating must be a number")
		}
		f.MinRating = r
	}
	if v := c.Query("maxPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, models.Invalid("maxPrice must be a number")
		}
		f.MaxPrice = &p
	}
	switch strings.ToLower(c.Query("freeCancellation")) {
	case "1", "true", "yes":
		f.FreeCancellationOnly = true
	}
	return f, nil
}
