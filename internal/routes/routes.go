package routes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/bookings"
	"github.com/FACorreiaa/saferstays/internal/app/domain/chat"
	"github.com/FACorreiaa/saferstays/internal/app/domain/checkout"
	"github.com/FACorreiaa/saferstays/internal/app/domain/customer"
	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi"
	"github.com/FACorreiaa/saferstays/internal/app/domain/platform"
	"github.com/FACorreiaa/saferstays/internal/app/domain/results"
	"github.com/FACorreiaa/saferstays/internal/app/domain/sessionstore"
	"github.com/FACorreiaa/saferstays/internal/app/middleware"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

// Per-IP limits for the routes that spend third-party quota.
const (
	chatPerMinute     = 20
	chatBurst         = 5
	customerPerMinute = 10
	customerBurst     = 3
)

// Dependencies are the connections opened by the server. DB and Redis are nil
// when not configured.
type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Logger *zap.Logger
}

// AppHandlers groups the HTTP handlers of every domain.
type AppHandlers struct {
	Checkout *checkout.Handler
	Bookings *bookings.Handler
	Results  *results.Handler
	Chat     *chat.Handler
	Customer *customer.Handler
	Platform *platform.Handler
}

// Setup builds the domain services and registers every route on r.
func Setup(r *gin.Engine, deps Dependencies) error {
	h, err := buildHandlers(context.Background(), deps)
	if err != nil {
		return err
	}
	register(r, h, deps.Logger)
	return nil
}

func buildHandlers(ctx context.Context, deps Dependencies) (*AppHandlers, error) {
	cfg, logger := deps.Config, deps.Logger

	var store sessionstore.Store
	if deps.Redis != nil {
		store = sessionstore.NewRedisStore(deps.Redis, logger)
	} else {
		store = sessionstore.NewMemoryStore(logger)
	}

	gateway := liteapi.NewClient(cfg.LiteAPI, logger)
	if !gateway.Configured() {
		logger.Warn("LITEAPI_KEY is not set, provider routes will fail until it is configured")
	}

	var (
		holds    checkout.HoldLedger = checkout.NewStoreHoldLedger(store, cfg.Checkout.HoldClaimTTL)
		recorder checkout.BookingRecorder
		repo     bookings.Repository
		logs     *chat.InteractionLogger
	)
	pingers := map[string]platform.Pinger{"sessionStore": store}
	if deps.DB != nil {
		holds = checkout.NewPostgresHoldLedger(deps.DB, logger)
		bookingRepo := bookings.NewRepository(deps.DB, logger)
		recorder, repo = bookingRepo, bookingRepo
		logs = chat.NewInteractionLogger(chat.NewInteractionRepository(deps.DB, logger), logger)
		pingers["database"] = deps.DB
	}

	checkoutService := checkout.NewService(gateway, holds, store, recorder, cfg.Checkout, logger)
	signer := checkout.NewStateSigner(cfg.Checkout.StateSecret, cfg.Checkout.SessionTTL)
	orchestrator := checkout.NewOrchestrator(checkoutService, store, signer, cfg.Checkout, logger)

	completer, err := newCompleter(ctx, cfg.Chat, logger)
	if err != nil {
		return nil, err
	}

	mailer := customer.NewMailerLiteClient(cfg.MailerLite, logger)

	return &AppHandlers{
		Checkout: checkout.NewHandler(checkoutService, orchestrator, logger),
		Bookings: bookings.NewHandler(bookings.NewService(store, repo, logger), logger),
		Results:  results.NewHandler(results.NewService(gateway, logger), logger),
		Chat:     chat.NewHandler(chat.NewService(gateway, completer, logs, logger), cfg.Chat.KeyName(), logger),
		Customer: customer.NewHandler(customer.NewService(mailer, cfg.MailerLite, logger), logger),
		Platform: platform.NewHandler(gateway, pingers, cfg.LiteAPI, cfg.Checkout, logger),
	}, nil
}

// newCompleter returns nil when the selected provider has no key, which the
// chat service reports as not configured.
func newCompleter(ctx context.Context, cfg config.ChatConfig, logger *zap.Logger) (chat.Completer, error) {
	if cfg.APIKey() == "" {
		logger.Warn("Chat provider key missing, chat is disabled", zap.String("key", cfg.KeyName()))
		return nil, nil
	}
	if cfg.Provider == "gemini" {
		c, err := chat.NewGeminiCompleter(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return c, nil
	}
	return chat.NewXAICompleter(cfg, logger), nil
}

func register(r *gin.Engine, h *AppHandlers, logger *zap.Logger) {
	chatLimiter := middleware.NewRateLimiter(chatPerMinute, chatBurst, logger)
	customerLimiter := middleware.NewRateLimiter(customerPerMinute, customerBurst, logger)

	api := r.Group("/api")
	{
		api.GET("/health", h.Platform.Health)
		api.GET("/config", h.Platform.Config)

		api.GET("/places", h.Results.Places)
		api.GET("/places/details", h.Results.PlaceDetails)
		api.POST("/rates", h.Results.Rates)
		api.GET("/hotel", h.Results.Hotel)
		api.GET("/results", h.Results.Results)
		api.GET("/stays/:hotelId", h.Results.Stay)

		api.POST("/prebook", h.Checkout.Prebook)
		api.POST("/book", h.Checkout.Book)

		co := api.Group("/checkout")
		co.POST("", h.Checkout.Start)
		co.GET("/:checkoutId", h.Checkout.Get)
		co.POST("/:checkoutId/guest", h.Checkout.SubmitGuest)
		co.GET("/:checkoutId/payment-return", h.Checkout.PaymentReturned)

		api.GET("/bookings/:bookingId", h.Bookings.Get)

		api.POST("/chat", chatLimiter.Middleware(), h.Chat.Chat)
		api.POST("/customer", customerLimiter.Middleware(), h.Customer.Capture)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}
