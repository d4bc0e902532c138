package platform

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/handlers"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

const probeTimeout = 10 * time.Second

// Pinger is a dependency the health check can reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReport is the body of GET /api/health.
type HealthReport struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	Checks  map[string]any `json:"checks"`
}

// PublicConfig is the client-visible payment configuration.
type PublicConfig struct {
	AccountPaymentEnabled bool   `json:"accountPaymentEnabled"`
	PaymentEnv            string `json:"paymentEnv"`
}

type Handler struct {
	*handlers.BaseHandler
	gateway  liteapi.Client
	pingers  map[string]Pinger
	liteCfg  config.LiteAPIConfig
	checkout config.CheckoutConfig
}

// NewHandler creates the platform routes. Each pinger is reported under its
// map key, e.g. "database".
func NewHandler(gateway liteapi.Client, pingers map[string]Pinger, liteCfg config.LiteAPIConfig, checkout config.CheckoutConfig, logger *zap.Logger) *Handler {
	if pingers == nil {
		pingers = map[string]Pinger{}
	}
	return &Handler{
		BaseHandler: handlers.NewBaseHandler(logger),
		gateway:     gateway,
		pingers:     pingers,
		liteCfg:     liteCfg,
		checkout:    checkout,
	}
}

// Check runs every readiness check. The provider probe is a live call.
func (h *Handler) Check(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	checks := map[string]any{}
	ok := true

	checks["apiKey"] = h.gateway.Configured()
	if !h.gateway.Configured() {
		ok = false
	} else {
		status, err := h.gateway.Probe(ctx)
		checks["liteApiReachable"] = err == nil
		if err != nil {
			ok = false
			var pe *liteapi.ProviderError
			if errors.As(err, &pe) && status > 0 {
				checks["liteApiStatus"] = status
			} else {
				checks["liteApiError"] = err.Error()
			}
		}
	}

	names := make([]string, 0, len(h.pingers))
	for name := range h.pingers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.pingers[name].Ping(ctx); err != nil {
			h.Logger.Warn("Health dependency unreachable", zap.String("check", name), zap.Error(err))
			checks[name] = false
			ok = false
			continue
		}
		checks[name] = true
	}

	msg := "Booking pipeline checks passed."
	if !ok {
		msg = "One or more checks failed. See checks."
	}
	return HealthReport{OK: ok, Message: msg, Checks: checks}
}

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	report := h.Check(c.Request.Context())
	status := http.StatusOK
	if !report.OK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// Config handles GET /api/config.
func (h *Handler) Config(c *gin.Context) {
	env := "live"
	if h.liteCfg.IsSandbox() {
		env = "sandbox"
	}
	c.JSON(http.StatusOK, PublicConfig{
		AccountPaymentEnabled: h.checkout.AccountPaymentEnabled,
		PaymentEnv:            env,
	})
}
