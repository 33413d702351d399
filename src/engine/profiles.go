package engine

import (
	"context"
	"unicode/utf8"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"gorm.io/gorm"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 30

	profilesKey = "profiles"
)

func validUsername(username string) bool {
	if !utf8.ValidString(username) {
		return false
	}
	n := utf8.RuneCountInString(username)
	return n >= usernameMinLen && n <= usernameMaxLen
}

// CreateProfile registers a wallet address with a globally unique
// username. The new profile starts unverified at the base trust score.
func (e *Engine) CreateProfile(ctx context.Context, address, username string) (*types.Profile, error) {
	addr := normalize(address)
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}

	var profile types.Profile
	// Creation and renames share one lock so username uniqueness
	// checks cannot race across addresses.
	err := e.mutate(ctx, profilesKey, func(tx *gorm.DB, rec *recorder) error {
		var existing types.Profile
		switch err := tx.First(&existing, "address = ?", addr).Error; err {
		case nil:
			return ErrDuplicateProfile
		case gorm.ErrRecordNotFound:
		default:
			return internalErr("profile lookup", err)
		}

		if taken, err := usernameTaken(tx, username, ""); err != nil {
			return err
		} else if taken {
			return ErrUsernameTaken
		}

		profile = types.Profile{
			Address:    addr,
			Username:   username,
			TrustScore: e.cfg.BaseScore,
			CreatedAt:  rec.at,
			UpdatedAt:  rec.at,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return internalErr("profile create", err)
		}

		rec.emit(EventProfileCreated, addr, 0, map[string]any{
			"username":   username,
			"trustScore": profile.TrustScore,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the username. Everything else on the profile
// is immutable from the outside.
func (e *Engine) UpdateProfile(ctx context.Context, address, newUsername string) (*types.Profile, error) {
	addr := normalize(address)
	if !validUsername(newUsername) {
		return nil, ErrInvalidUsername
	}

	var profile types.Profile
	err := e.mutate(ctx, profilesKey, func(tx *gorm.DB, rec *recorder) error {
		if err := loadProfile(tx, addr, &profile); err != nil {
			return err
		}
		if taken, err := usernameTaken(tx, newUsername, addr); err != nil {
			return err
		} else if taken {
			return ErrUsernameTaken
		}

		profile.Username = newUsername
		profile.UpdatedAt = rec.at
		// Username columns only; score mutations run under the
		// address lock and must not be overwritten here.
		err := tx.Model(&profile).Updates(map[string]interface{}{
			"username":   newUsername,
			"updated_at": rec.at,
		}).Error
		if err != nil {
			return internalErr("profile update", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// VerifyProfile marks a profile verified. Operator only.
func (e *Engine) VerifyProfile(ctx context.Context, operator, address string) error {
	op := normalize(operator)
	addr := normalize(address)

	return e.mutate(ctx, addr, func(tx *gorm.DB, rec *recorder) error {
		if ok, err := e.isOperator(tx, op); err != nil {
			return err
		} else if !ok {
			return ErrNotAuthorized
		}

		var profile types.Profile
		if err := loadProfile(tx, addr, &profile); err != nil {
			return err
		}
		if profile.Verified {
			return ErrAlreadyVerified
		}

		profile.Verified = true
		profile.UpdatedAt = rec.at
		err := tx.Model(&profile).Updates(map[string]interface{}{
			"verified":   true,
			"updated_at": rec.at,
		}).Error
		if err != nil {
			return internalErr("profile verify", err)
		}

		rec.emit(EventProfileVerified, addr, 0, map[string]any{
			"username": profile.Username,
		})
		return nil
	})
}

func (e *Engine) GetProfile(ctx context.Context, address string) (*types.Profile, error) {
	var profile types.Profile
	if err := loadProfile(e.db.WithContext(ctx), normalize(address), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func loadProfile(tx *gorm.DB, addr string, out *types.Profile) error {
	err := tx.First(out, "address = ?", addr).Error
	if err == gorm.ErrRecordNotFound {
		return ErrProfileNotFound
	}
	if err != nil {
		return internalErr("profile lookup", err)
	}
	return nil
}

// usernameTaken reports whether another address already holds the
// username. Matching is exact and case-sensitive.
func usernameTaken(tx *gorm.DB, username, selfAddr string) (bool, error) {
	var rows []types.Profile
	if err := tx.Where("username = ?", username).Find(&rows).Error; err != nil {
		return false, internalErr("username lookup", err)
	}
	for _, row := range rows {
		if row.Username == username && row.Address != selfAddr {
			return true, nil
		}
	}
	return false, nil
}
