package data

import (
	"context"
	"time"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"gorm.io/gorm"
)

// Ledger is the gorm-backed reward ledger. It stands in for the
// on-chain RewardsToken balance store; credits are additive upserts
// applied on the caller's transaction.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger { return &Ledger{db: db} }

func (l *Ledger) Credit(ctx context.Context, tx *gorm.DB, address string, amount uint64) error {
	db := tx.WithContext(ctx)

	var balance types.LedgerBalance
	if err := db.FirstOrCreate(&balance, types.LedgerBalance{Address: address}).Error; err != nil {
		return err
	}
	return db.Model(&balance).Updates(map[string]interface{}{
		"balance":    gorm.Expr("balance + ?", amount),
		"updated_at": time.Now().UTC(),
	}).Error
}

func (l *Ledger) Balance(ctx context.Context, address string) (uint64, error) {
	var balance types.LedgerBalance
	err := l.db.WithContext(ctx).First(&balance, "address = ?", address).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Balance, nil
}
