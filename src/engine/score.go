package engine

import (
	"context"
	"time"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"gorm.io/gorm"
)

// computeScore derives the bounded trust score:
// clamp(base + endorsementWeight*received + trading + governance, 0, max).
func (e *Engine) computeScore(received int64, trading, governance uint32) uint32 {
	score := uint64(e.cfg.BaseScore) +
		uint64(e.cfg.EndorsementWeight)*uint64(received) +
		uint64(trading) + uint64(governance)
	if score > uint64(e.cfg.MaxScore) {
		return e.cfg.MaxScore
	}
	return uint32(score)
}

// recomputeScore refreshes the stored score from the active
// endorsement count and the profile's activity metrics. Callers hold
// the per-address lock.
func (e *Engine) recomputeScore(tx *gorm.DB, profile *types.Profile, at time.Time) (uint32, error) {
	var received int64
	err := tx.Model(&types.Endorsement{}).
		Where("endorsed = ? AND active = ?", profile.Address, true).
		Count(&received).Error
	if err != nil {
		return 0, internalErr("endorsement count", err)
	}

	profile.TrustScore = e.computeScore(received, profile.TradingMetric, profile.GovernanceMetric)
	profile.UpdatedAt = at
	// Score columns only; renames serialize on a different lock and a
	// full-row save would silently revert them.
	err = tx.Model(profile).Updates(map[string]interface{}{
		"trust_score":       profile.TrustScore,
		"trading_metric":    profile.TradingMetric,
		"governance_metric": profile.GovernanceMetric,
		"updated_at":        at,
	}).Error
	if err != nil {
		return 0, internalErr("score update", err)
	}
	return profile.TrustScore, nil
}

// UpdateMetrics sets both activity metrics in one privileged call and
// recomputes the score. Raw metric values are bounded by the contract
// cap, not by the 0-100 range activity feeds normally supply.
func (e *Engine) UpdateMetrics(ctx context.Context, operator, address string, trading, governance uint32) (uint32, error) {
	return e.setMetrics(ctx, operator, address, func(p *types.Profile) error {
		if trading > e.cfg.MetricMax || governance > e.cfg.MetricMax {
			return ErrScoreExceedsMaximum
		}
		p.TradingMetric = trading
		p.GovernanceMetric = governance
		return nil
	})
}

// SyncTradingMetrics folds externally observed trading performance
// into the score. Operator only; never triggered automatically.
func (e *Engine) SyncTradingMetrics(ctx context.Context, operator, address string, value uint32) (uint32, error) {
	return e.setMetrics(ctx, operator, address, func(p *types.Profile) error {
		if value > e.cfg.MetricMax {
			return ErrScoreExceedsMaximum
		}
		p.TradingMetric = value
		return nil
	})
}

// SyncGovernanceMetrics is the governance-participation counterpart of
// SyncTradingMetrics.
func (e *Engine) SyncGovernanceMetrics(ctx context.Context, operator, address string, value uint32) (uint32, error) {
	return e.setMetrics(ctx, operator, address, func(p *types.Profile) error {
		if value > e.cfg.MetricMax {
			return ErrScoreExceedsMaximum
		}
		p.GovernanceMetric = value
		return nil
	})
}

func (e *Engine) setMetrics(ctx context.Context, operator, address string, apply func(*types.Profile) error) (uint32, error) {
	op := normalize(operator)
	addr := normalize(address)

	var score uint32
	err := e.mutate(ctx, addr, func(tx *gorm.DB, rec *recorder) error {
		if ok, err := e.isOperator(tx, op); err != nil {
			return err
		} else if !ok {
			return ErrNotAuthorized
		}

		var profile types.Profile
		if err := loadProfile(tx, addr, &profile); err != nil {
			return err
		}
		if err := apply(&profile); err != nil {
			return err
		}

		var err error
		score, err = e.recomputeScore(tx, &profile, rec.at)
		if err != nil {
			return err
		}

		rec.emit(EventScoreUpdated, addr, 0, map[string]any{
			"trustScore": score,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// CalculateScore is a pure read of the stored trust score.
func (e *Engine) CalculateScore(ctx context.Context, address string) (uint32, error) {
	var profile types.Profile
	if err := loadProfile(e.db.WithContext(ctx), normalize(address), &profile); err != nil {
		return 0, err
	}
	return profile.TrustScore, nil
}
