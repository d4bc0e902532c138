package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation keeps its text", fmt.Errorf("wrapped: %w", models.Invalid("offerId is required")), http.StatusBadRequest, "offerId is required"},
		{"not found", models.ErrNotFound, http.StatusNotFound, "requested item not found"},
		{"consumed hold", models.ErrHoldConsumed, http.StatusConflict, "prebook hold has already been finalized"},
		{"in flight", models.ErrCheckoutInFlight, http.StatusConflict, "checkout step already in progress"},
		{"bad transition", models.ErrInvalidTransition, http.StatusConflict, "invalid checkout transition"},
		{"no coordinates", models.ErrNoCoordinates, http.StatusUnprocessableEntity, "Place details did not include coordinates"},
		{"guest profile gone", models.ErrGuestProfileGone, http.StatusGone, "Guest details not found. Please start the checkout again."},
		{"provider message verbatim", &liteapi.ProviderError{Status: 400, Message: "offer expired"}, http.StatusInternalServerError, "offer expired"},
		{"not configured", models.ErrNotConfigured, http.StatusInternalServerError, "Booking provider is not configured. Missing LITEAPI_KEY in the environment."},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
			assert.Equal(t, tt.msg, MessageFor(tt.err))
		})
	}
}

func TestResponders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBaseHandler(zap.NewNop())
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { h.RespondData(c, http.StatusOK, gin.H{"id": "bk-1"}) })
	r.GET("/fail", func(c *gin.Context) { h.RespondError(c, models.ErrNotFound) })
	r.POST("/bind", func(c *gin.Context) {
		var body struct{ Name string }
		if err := h.BindJSON(c, &body); err != nil {
			h.RespondError(c, err)
			return
		}
		h.RespondData(c, http.StatusOK, body.Name)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.JSONEq(t, `{"data":{"id":"bk-1"}}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"requested item not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Request body must be a JSON object."}`, w.Body.String())
}
