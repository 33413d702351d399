package engine

import (
	"context"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"gorm.io/gorm"
)

// Endorse records a directed endorsement and recomputes the endorsed
// profile's trust score. At most one active endorsement may exist per
// ordered pair.
func (e *Engine) Endorse(ctx context.Context, endorser, endorsed string) error {
	from := normalize(endorser)
	to := normalize(endorsed)
	if from == to {
		return ErrSelfEndorsement
	}

	// Lock the score target; duplicate endorsements race on the same key.
	return e.mutate(ctx, to, func(tx *gorm.DB, rec *recorder) error {
		var fromProfile, toProfile types.Profile
		if err := loadProfile(tx, from, &fromProfile); err != nil {
			return err
		}
		if err := loadProfile(tx, to, &toProfile); err != nil {
			return err
		}

		var existing types.Endorsement
		switch err := tx.First(&existing, "endorser = ? AND endorsed = ? AND active = ?", from, to, true).Error; err {
		case nil:
			return ErrAlreadyEndorsed
		case gorm.ErrRecordNotFound:
		default:
			return internalErr("endorsement lookup", err)
		}

		row := types.Endorsement{
			Endorser:  from,
			Endorsed:  to,
			Active:    true,
			CreatedAt: rec.at,
		}
		if err := tx.Create(&row).Error; err != nil {
			return internalErr("endorsement create", err)
		}

		score, err := e.recomputeScore(tx, &toProfile, rec.at)
		if err != nil {
			return err
		}

		rec.emit(EventEndorsementUpdated, to, 0, map[string]any{
			"action":     "endorse",
			"endorser":   from,
			"endorsed":   to,
			"trustScore": score,
		})
		return nil
	})
}

// RevokeEndorsement soft-deletes the active endorsement for the
// ordered pair and recomputes the endorsed profile's score.
func (e *Engine) RevokeEndorsement(ctx context.Context, endorser, endorsed string) error {
	from := normalize(endorser)
	to := normalize(endorsed)

	return e.mutate(ctx, to, func(tx *gorm.DB, rec *recorder) error {
		var row types.Endorsement
		err := tx.First(&row, "endorser = ? AND endorsed = ? AND active = ?", from, to, true).Error
		if err == gorm.ErrRecordNotFound {
			return ErrEndorsementNotFound
		}
		if err != nil {
			return internalErr("endorsement lookup", err)
		}

		revokedAt := rec.at
		row.Active = false
		row.RevokedAt = &revokedAt
		if err := tx.Save(&row).Error; err != nil {
			return internalErr("endorsement revoke", err)
		}

		var toProfile types.Profile
		if err := loadProfile(tx, to, &toProfile); err != nil {
			return err
		}
		score, err := e.recomputeScore(tx, &toProfile, rec.at)
		if err != nil {
			return err
		}

		rec.emit(EventEndorsementUpdated, to, 0, map[string]any{
			"action":     "revoke",
			"endorser":   from,
			"endorsed":   to,
			"trustScore": score,
		})
		return nil
	})
}

// UserEndorsements returns the active endorsements received by the
// address, oldest first.
func (e *Engine) UserEndorsements(ctx context.Context, address string) ([]types.Endorsement, error) {
	addr := normalize(address)

	var profile types.Profile
	if err := loadProfile(e.db.WithContext(ctx), addr, &profile); err != nil {
		return nil, err
	}

	var rows []types.Endorsement
	err := e.db.WithContext(ctx).
		Where("endorsed = ? AND active = ?", addr, true).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, internalErr("endorsement list", err)
	}
	return rows, nil
}

// Leaderboard pages profiles by trust score descending; ties rank the
// older profile first.
func (e *Engine) Leaderboard(ctx context.Context, limit, offset int) ([]types.Profile, error) {
	if limit <= 0 {
		return nil, ErrInvalidRange
	}
	if offset < 0 {
		offset = 0
	}

	var rows []types.Profile
	err := e.db.WithContext(ctx).
		Order("trust_score desc, created_at asc").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, internalErr("leaderboard", err)
	}
	return rows, nil
}
