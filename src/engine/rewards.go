package engine

import (
	"context"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"gorm.io/gorm"
)

// accrueReward adds amount to the address's pending balance inside the
// caller's transaction. Called once per accrual event.
func accrueReward(tx *gorm.DB, addr string, amount uint64, rec *recorder) error {
	var pending types.PendingReward
	err := tx.First(&pending, "address = ?", addr).Error
	switch err {
	case gorm.ErrRecordNotFound:
		pending = types.PendingReward{Address: addr, Amount: amount, UpdatedAt: rec.at}
		if err := tx.Create(&pending).Error; err != nil {
			return internalErr("reward accrue", err)
		}
		return nil
	case nil:
		pending.Amount += amount
		pending.UpdatedAt = rec.at
		if err := tx.Save(&pending).Error; err != nil {
			return internalErr("reward accrue", err)
		}
		return nil
	default:
		return internalErr("reward lookup", err)
	}
}

// PendingRewards returns the unclaimed balance; addresses without an
// accrual row simply have zero pending.
func (e *Engine) PendingRewards(ctx context.Context, address string) (uint64, error) {
	var pending types.PendingReward
	err := e.db.WithContext(ctx).First(&pending, "address = ?", normalize(address)).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, internalErr("reward lookup", err)
	}
	return pending.Amount, nil
}

// ClaimRewards transfers the full pending balance to the reward ledger
// and zeroes it. The credit and the reset share one transaction, so a
// failed credit rolls the claim back and a retry never double-pays.
func (e *Engine) ClaimRewards(ctx context.Context, address string) (uint64, error) {
	addr := normalize(address)

	var claimed uint64
	err := e.mutate(ctx, addr, func(tx *gorm.DB, rec *recorder) error {
		var pending types.PendingReward
		err := tx.First(&pending, "address = ?", addr).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNoRewardsToClaim
		}
		if err != nil {
			return internalErr("reward lookup", err)
		}
		if pending.Amount == 0 {
			return ErrNoRewardsToClaim
		}

		claimed = pending.Amount
		if err := e.ledger.Credit(ctx, tx, addr, claimed); err != nil {
			return internalErr("ledger credit", err)
		}

		pending.Amount = 0
		pending.UpdatedAt = rec.at
		if err := tx.Save(&pending).Error; err != nil {
			return internalErr("reward claim", err)
		}

		rec.emit(EventRewardsDistributed, addr, 0, map[string]any{
			"amount": claimed,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}
