package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/handlers"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
	keyName string
}

// NewHandler creates the chat handler. keyName is the environment variable
// named in the not-configured message.
func NewHandler(service Service, keyName string, logger *zap.Logger) *Handler {
	return &Handler{BaseHandler: handlers.NewBaseHandler(logger), service: service, keyName: keyName}
}

type providerErrorBody struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

// Chat handles POST /api/chat. A successful reply is the provider's
// completion body, unwrapped.
func (h *Handler) Chat(c *gin.Context) {
	if !h.service.Configured() {
		h.notConfigured(c)
		return
	}

	var req models.ChatRequest
	if err := h.BindJSON(c, &req); err != nil {
		h.RespondError(c, err)
		return
	}

	body, err := h.service.Reply(c.Request.Context(), req)
	if err != nil {
		var upErr *UpstreamError
		switch {
		case errors.Is(err, models.ErrNotConfigured):
			h.notConfigured(c)
		case errors.Is(err, models.ErrValidation):
			h.RespondError(c, err)
		case errors.As(err, &upErr):
			c.JSON(http.StatusBadGateway, providerErrorBody{
				Error:   "Chat provider error",
				Status:  upErr.Status,
				Details: upErr.Details,
			})
		default:
			h.Logger.Error("Chat request failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, handlers.ErrorBody{Error: "Unexpected error while handling chat request."})
		}
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) notConfigured(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, handlers.ErrorBody{
		Error: "Chat is not configured. Missing " + h.keyName + " in the environment.",
	})
}
