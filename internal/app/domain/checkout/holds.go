package checkout

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/sessionstore"
	"github.com/FACorreiaa/saferstays/internal/app/models"
	database "github.com/FACorreiaa/saferstays/internal/db"
)

const defaultHoldClaimTTL = 7 * 24 * time.Hour

// HoldLedger records which prebook holds have been sent to finalize. A claim
// is permanent: it is not released when the upstream book call fails.
type HoldLedger interface {
	// Claim marks prebookID as consumed by owner. It returns ErrHoldConsumed
	// when the hold was already claimed.
	Claim(ctx context.Context, prebookID, owner string) error
}

var (
	_ HoldLedger = (*PostgresHoldLedger)(nil)
	_ HoldLedger = (*StoreHoldLedger)(nil)
)

type PostgresHoldLedger struct {
	db     database.DBTX
	logger *zap.Logger
}

func NewPostgresHoldLedger(db database.DBTX, logger *zap.Logger) *PostgresHoldLedger {
	return &PostgresHoldLedger{db: db, logger: logger}
}

func (p *PostgresHoldLedger) Claim(ctx context.Context, prebookID, owner string) error {
	query, args, err := sq.Insert("consumed_holds").
		Columns("prebook_id", "claimed_by").
		Values(prebookID, owner).
		Suffix("ON CONFLICT (prebook_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build hold claim query: %w", err)
	}

	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		p.logger.Error("Failed to claim prebook hold", zap.String("prebookID", prebookID), zap.Error(err))
		return fmt.Errorf("failed to claim prebook hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("prebook %s: %w", prebookID, models.ErrHoldConsumed)
	}
	return nil
}

// StoreHoldLedger keeps claims in the session store when no database is
// configured. Claims expire after ttl, which must outlive any provider hold.
type StoreHoldLedger struct {
	store sessionstore.Store
	ttl   time.Duration
}

func NewStoreHoldLedger(store sessionstore.Store, ttl time.Duration) *StoreHoldLedger {
	if ttl <= 0 {
		ttl = defaultHoldClaimTTL
	}
	return &StoreHoldLedger{store: store, ttl: ttl}
}

func (s *StoreHoldLedger) Claim(ctx context.Context, prebookID, owner string) error {
	ok, err := s.store.PutIfAbsent(ctx, sessionstore.ConsumedHoldKey(prebookID), owner, s.ttl)
	if err != nil {
		return fmt.Errorf("failed to claim prebook hold: %w", err)
	}
	if !ok {
		return fmt.Errorf("prebook %s: %w", prebookID, models.ErrHoldConsumed)
	}
	return nil
}
