package customer

import (
	"net/http"

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

// Capture handles POST /api/customer. Apart from an invalid email it always
// answers 200 so a list outage never blocks the booking flow.
func (h *Handler) Capture(c *gin.Context) {
	var in models.CustomerCapture
	if err := c.ShouldBindJSON(&in); err != nil {
		h.Logger.Warn("Unreadable customer capture body", zap.Error(err))
		c.JSON(http.StatusOK, models.CaptureResult{Saved: false, Reason: reasonServerError})
		return
	}

	result, err := h.service.Capture(c.Request.Context(), in)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
