// Package engine implements the reputation and governance core:
// profiles, the endorsement graph, trust score calculation, proposal
// lifecycle and reward accrual. All state lives in the injected gorm
// database; every operation is a single transaction serialized per
// entity.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config carries the scoring and governance constants. Defaults mirror
// the deployed TrustChain/GovGame contract parameters.
type Config struct {
	BaseScore         uint32
	MaxScore          uint32
	EndorsementWeight uint32
	MetricMax         uint32
	ProposalThreshold uint32
	MinVotingPower    uint32
	VotingPeriod      time.Duration
	VoterRewardRate   uint64
}

func DefaultConfig() Config {
	return Config{
		BaseScore:         100,
		MaxScore:          1000,
		EndorsementWeight: 10,
		MetricMax:         1000,
		ProposalThreshold: 500,
		MinVotingPower:    100,
		VotingPeriod:      7 * 24 * time.Hour,
		VoterRewardRate:   1,
	}
}

// Ledger is the reward balance store. Credit runs inside the claiming
// transaction, so the balance and the pending reset commit or roll
// back together.
type Ledger interface {
	Credit(ctx context.Context, tx *gorm.DB, address string, amount uint64) error
}

type Engine struct {
	db     *gorm.DB
	cfg    Config
	sink   Sink
	ledger Ledger
	log    *zap.Logger
	locks  *keyedMutex
	now    func() time.Time
}

func New(db *gorm.DB, cfg Config, sink Sink, ledger Ledger, log *zap.Logger) *Engine {
	return &Engine{
		db:     db,
		cfg:    cfg,
		sink:   sink,
		ledger: ledger,
		log:    log,
		locks:  newKeyedMutex(),
		now:    time.Now,
	}
}

// Models returns every gorm model the engine persists, for migration.
func Models() []interface{} {
	return []interface{}{
		&types.Profile{}, &types.Endorsement{},
		&types.Proposal{}, &types.Vote{},
		&types.PendingReward{}, &types.LedgerBalance{},
		&types.Operator{}, &types.Event{},
	}
}

func normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// mutate runs fn in a transaction while holding the lock for key.
// Events recorded by fn are appended to the event log inside the same
// transaction and mirrored to the sink only after commit.
func (e *Engine) mutate(ctx context.Context, key string, fn func(tx *gorm.DB, rec *recorder) error) error {
	unlock := e.locks.lock(key)
	defer unlock()

	rec := &recorder{at: e.now().UTC()}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx, rec); err != nil {
			return err
		}
		return rec.flush(tx)
	})
	if err != nil {
		if KindOf(err) == Internal {
			e.log.Error("engine operation failed", zap.String("key", key), zap.Error(err))
		}
		return err
	}

	for _, ev := range rec.events {
		e.sink.Publish(ctx, ev)
	}
	return nil
}

func (e *Engine) isOperator(tx *gorm.DB, addr string) (bool, error) {
	var op types.Operator
	err := tx.First(&op, "address = ?", addr).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, internalErr("operator lookup", err)
	}
	return true, nil
}

// ListEvents returns the newest events first. A non-positive limit
// falls back to 50; the page size is capped at 500.
func (e *Engine) ListEvents(ctx context.Context, limit int) ([]types.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	var events []types.Event
	if err := e.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&events).Error; err != nil {
		return nil, internalErr("event list", err)
	}
	return events, nil
}
