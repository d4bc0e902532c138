package bookings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/handlers"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{BaseHandler: handlers.NewBaseHandler(logger), service: service}
}

// Get handles GET /api/bookings/:bookingId.
func (h *Handler) Get(c *gin.Context) {
	booking, err := h.service.Confirmation(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, booking)
}
