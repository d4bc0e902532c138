package checkout

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/models"
)

func newTestRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.service, f.orch, zap.NewNop())
	r := gin.New()
	r.POST("/api/prebook", h.Prebook)
	r.POST("/api/book", h.Book)
	r.POST("/api/checkout", h.Start)
	r.GET("/api/checkout/:checkoutId", h.Get)
	r.POST("/api/checkout/:checkoutId/guest", h.SubmitGuest)
	r.GET("/api/checkout/:checkoutId/payment-return", h.PaymentReturned)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPrebookHandler(t *testing.T) {
	t.Run("it requires an offer id", func(t *testing.T) {
		f := newFixture(testCheckoutConfig())
		w := doJSON(newTestRouter(f), http.MethodPost, "/api/prebook", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"offerId is required"}`, w.Body.String())
		f.gateway.AssertNotCalled(t, "Prebook", mock.Anything, mock.Anything)
	})

	t.Run("it returns the hold in a data envelope", func(t *testing.T) {
		f := newFixture(testCheckoutConfig())
		f.gateway.On("Prebook", mock.Anything, "off-123").Return(holdPB1(), nil).Once()

		w := doJSON(newTestRouter(f), http.MethodPost, "/api/prebook", map[string]string{"offerId": "off-123"})
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data models.PrebookHold `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "pb-1", body.Data.PrebookID)
		assert.Equal(t, "tx-1", body.Data.TransactionID)
		assert.Equal(t, "sk-1", body.Data.SecretKey)
	})

	t.Run("it passes the provider message through with a 500", func(t *testing.T) {
		f := newFixture(testCheckoutConfig())
		f.gateway.On("Prebook", mock.Anything, "off-123").
			Return(nil, &liteapi.ProviderError{Status: 400, Message: "offer expired"}).Once()

		w := doJSON(newTestRouter(f), http.MethodPost, "/api/prebook", map[string]string{"offerId": "off-123"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"offer expired"}`, w.Body.String())
	})

	t.Run("it reports a missing provider key distinctly", func(t *testing.T) {
		f := newFixture(testCheckoutConfig())
		f.gateway.On("Prebook", mock.Anything, "off-123").Return(nil, models.ErrNotConfigured).Once()

		w := doJSON(newTestRouter(f), http.MethodPost, "/api/prebook", map[string]string{"offerId": "off-123"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "LITEAPI_KEY")
	})
}

func TestBookHandler(t *testing.T) {
	t.Run("it rejects a finalize without payment before upstream", func(t *testing.T) {
		f := newFixture(testCheckoutConfig())
		req := finalizePB1()
		req.TransactionID = ""

		w := doJSON(newTestRouter(f), http.MethodPost, "/api/book", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.gateway.AssertNotCalled(t, "Book", mock.Anything, mock.Anything)
	})

	t.Run("it books once and answers 409 for the same hold", func(t *testing.T) {
		f := newFixture(testCheckoutConfig())
		f.gateway.On("Book", mock.Anything, mock.Anything).Return(&models.Booking{BookingID: "bk-1"}, nil).Once()
		f.recorder.On("Save", mock.Anything, mock.Anything).Return(nil)
		r := newTestRouter(f)

		w := doJSON(r, http.MethodPost, "/api/book", finalizePB1())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"bookingId":"bk-1"`)

		w = doJSON(r, http.MethodPost, "/api/book", finalizePB1())
		assert.Equal(t, http.StatusConflict, w.Code)
		f.gateway.AssertNumberOfCalls(t, "Book", 1)
	})

	t.Run("it rejects a malformed body", func(t *testing.T) {
		f := newFixture(testCheckoutConfig())
		req := httptest.NewRequest(http.MethodPost, "/api/book", bytes.NewBufferString("not json"))
		w := httptest.NewRecorder()
		newTestRouter(f).ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCheckoutFlowHandlers(t *testing.T) {
	f := newFixture(testCheckoutConfig())
	r := newTestRouter(f)
	f.gateway.On("Prebook", mock.Anything, "off-123").Return(holdPB1(), nil).Once()

	w := doJSON(r, http.MethodPost, "/api/checkout", parisStay())
	require.Equal(t, http.StatusCreated, w.Code)
	var started struct {
		Data View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	id := started.Data.ID
	require.NotEmpty(t, id)

	w = doJSON(r, http.MethodPost, "/api/checkout/"+id+"/guest", map[string]string{"firstName": "Ada"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Please fill in all guest details."}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/checkout/"+id+"/guest", ada)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"awaiting-payment"`)

	w = doJSON(r, http.MethodGet, "/api/checkout/"+id+"/payment-return?prebookId=pb-1&transactionId=tx-1&state=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/checkout/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
