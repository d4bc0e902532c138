package checkout

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/handlers"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

type Handler struct {
	*handlers.BaseHandler
	service      Service
	orchestrator Orchestrator
}

func NewHandler(service Service, orchestrator Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{
		BaseHandler:  handlers.NewBaseHandler(logger),
		service:      service,
		orchestrator: orchestrator,
	}
}

type prebookRequest struct {
	OfferID string `json:"offerId"`
}

// Prebook handles POST /api/prebook.
func (h *Handler) Prebook(c *gin.Context) {
	var req prebookRequest
	if err := h.BindJSON(c, &req); err != nil {
		h.RespondError(c, err)
		return
	}
	if req.OfferID == "" {
		h.RespondError(c, models.Invalid("offerId is required"))
		return
	}

	hold, err := h.service.Prebook(c.Request.Context(), req.OfferID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, hold)
}

// Book handles POST /api/book.
func (h *Handler) Book(c *gin.Context) {
	var req FinalizeRequest
	if err := h.BindJSON(c, &req); err != nil {
		h.RespondError(c, err)
		return
	}

	booking, err := h.service.Finalize(c.Request.Context(), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, booking)
}

// Start handles POST /api/checkout.
func (h *Handler) Start(c *gin.Context) {
	var stay models.Stay
	if err := h.BindJSON(c, &stay); err != nil {
		h.RespondError(c, err)
		return
	}

	view, err := h.orchestrator.Start(c.Request.Context(), stay)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusCreated, view)
}

// Get handles GET /api/checkout/:checkoutId.
func (h *Handler) Get(c *gin.Context) {
	view, err := h.orchestrator.Get(c.Request.Context(), c.Param("checkoutId"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, view)
}

// SubmitGuest handles POST /api/checkout/:checkoutId/guest.
func (h *Handler) SubmitGuest(c *gin.Context) {
	var guest models.GuestProfile
	if err := h.BindJSON(c, &guest); err != nil {
		h.RespondError(c, err)
		return
	}

	view, err := h.orchestrator.SubmitGuest(c.Request.Context(), c.Param("checkoutId"), guest)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, view)
}

// PaymentReturned handles GET /api/checkout/:checkoutId/payment-return.
func (h *Handler) PaymentReturned(c *gin.Context) {
	view, err := h.orchestrator.PaymentReturned(
		c.Request.Context(),
		c.Param("checkoutId"),
		c.Query("prebookId"),
		c.Query("transactionId"),
		c.Query("state"),
	)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.RespondData(c, http.StatusOK, view)
}
