package checkout

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/liteapi/liteapitest"
	"github.com/FACorreiaa/saferstays/internal/app/domain/sessionstore"
	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Save(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		PublicBaseURL:   "https://stays.test",
		StateSecret:     "test-secret",
		GuestProfileTTL: time.Hour,
		BookingTTL:      24 * time.Hour,
		SessionTTL:      2 * time.Hour,
		HoldClaimTTL:    72 * time.Hour,
	}
}

type fixture struct {
	gateway  *liteapitest.MockClient
	recorder *MockRecorder
	store    *sessionstore.MemoryStore
	service  *ServiceImpl
	orch     *OrchestratorImpl
	signer   *StateSigner
}

func newFixture(cfg config.CheckoutConfig) *fixture {
	f := &fixture{
		gateway:  new(liteapitest.MockClient),
		recorder: new(MockRecorder),
		store:    sessionstore.NewMemoryStore(nil),
	}
	f.service = NewService(f.gateway, NewStoreHoldLedger(f.store, cfg.HoldClaimTTL), f.store, f.recorder, cfg, zap.NewNop())
	f.signer = NewStateSigner(cfg.StateSecret, cfg.SessionTTL)
	f.orch = NewOrchestrator(f.service, f.store, f.signer, cfg, zap.NewNop())
	return f
}

var ada = models.GuestProfile{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

func holdPB1() *models.PrebookHold {
	return &models.PrebookHold{PrebookID: "pb-1", TransactionID: "tx-1", SecretKey: "sk-1", OfferID: "off-123"}
}
