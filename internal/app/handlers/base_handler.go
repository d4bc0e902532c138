package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

// BaseHandler carries the JSON response helpers shared by every domain handler.
type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// StatusFor maps a domain error onto its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrHoldConsumed),
		errors.Is(err, models.ErrCheckoutInFlight),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrNoCoordinates):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrGuestProfileGone):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// MessageFor returns the text shown to the caller. Validation and provider
// messages are surfaced verbatim; anything else keeps its sentinel text.
func MessageFor(err error) string {
	var inputErr *models.InputError
	var provErr *liteapi.ProviderError
	switch {
	case errors.As(err, &inputErr):
		return inputErr.Msg
	case errors.As(err, &provErr):
		return provErr.Message
	case errors.Is(err, models.ErrNotConfigured):
		return "Booking provider is not configured. Missing LITEAPI_KEY in the environment."
	case errors.Is(err, models.ErrHoldConsumed):
		return models.ErrHoldConsumed.Error()
	case errors.Is(err, models.ErrCheckoutInFlight):
		return models.ErrCheckoutInFlight.Error()
	case errors.Is(err, models.ErrInvalidTransition):
		return models.ErrInvalidTransition.Error()
	case errors.Is(err, models.ErrNoCoordinates):
		return models.ErrNoCoordinates.Error()
	case errors.Is(err, models.ErrGuestProfileGone):
		return models.ErrGuestProfileGone.Error()
	case errors.Is(err, models.ErrNotFound):
		return models.ErrNotFound.Error()
	default:
		return err.Error()
	}
}

func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	l := h.Logger.With(zap.String("path", c.FullPath()), zap.Int("status", status))
	if status >= http.StatusInternalServerError {
		l.Error("request failed", zap.Error(err))
	} else {
		l.Info("request rejected", zap.Error(err))
	}
	c.JSON(status, ErrorBody{Error: MessageFor(err)})
}

// RespondData wraps payload in the {data: ...} envelope.
func (h *BaseHandler) RespondData(c *gin.Context, status int, payload any) {
	c.JSON(status, models.Envelope[any]{Data: payload})
}

// BindJSON decodes the request body and reports malformed input as a validation error.
func (h *BaseHandler) BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return models.Invalid("Request body must be a JSON object.")
	}
	return nil
}
