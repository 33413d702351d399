package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateProfile(t *testing.T) {
	eng, sink, _ := newTestEngine(t)
	ctx := context.Background()

	profile, err := eng.CreateProfile(ctx, "0xAlice", "alice")
	require.NoError(t, err)
	require.Equal(t, "0xalice", profile.Address)
	require.Equal(t, uint32(100), profile.TrustScore)
	require.False(t, profile.Verified)
	require.Equal(t, []EventType{EventProfileCreated}, sink.types())

	_, err = eng.CreateProfile(ctx, "0xalice", "alice2")
	require.ErrorIs(t, err, ErrDuplicateProfile)
	require.Equal(t, Conflict, KindOf(err))

	_, err = eng.CreateProfile(ctx, "0xbob", "alice")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestCreateProfileUsernameLength(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	cases := map[string]struct {
		username string
		wantErr  error
	}{
		"TooShort": {username: "ab", wantErr: ErrInvalidUsername},
		"TooLong":  {username: strings.Repeat("a", 31), wantErr: ErrInvalidUsername},
		"MinLen":   {username: "abc"},
		"MaxLen":   {username: strings.Repeat("b", 30)},
	}
	addr := 0
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			addr++
			_, err := eng.CreateProfile(ctx, string(rune('a'+addr))+"-addr", c.username)
			if c.wantErr != nil {
				require.ErrorIs(t, err, c.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.UpdateProfile(ctx, "0xghost", "newname")
	require.ErrorIs(t, err, ErrProfileNotFound)

	mustProfile(t, eng, "0xalice", "alice")
	mustProfile(t, eng, "0xbob", "bob")

	_, err = eng.UpdateProfile(ctx, "0xbob", "alice")
	require.ErrorIs(t, err, ErrUsernameTaken)

	// Keeping your own username is not a collision.
	updated, err := eng.UpdateProfile(ctx, "0xbob", "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", updated.Username)

	updated, err = eng.UpdateProfile(ctx, "0xbob", "bobby")
	require.NoError(t, err)
	require.Equal(t, "bobby", updated.Username)

	profile, err := eng.GetProfile(ctx, "0xbob")
	require.NoError(t, err)
	require.Equal(t, "bobby", profile.Username)
}

func TestRenameKeepsConcurrentScoreUpdates(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustProfile(t, eng, "0xtarget", "target")
	for i := 0; i < 5; i++ {
		mustProfile(t, eng, fmt.Sprintf("0xfan%d", i), fmt.Sprintf("fan%d", i))
	}

	// Renames and endorsements serialize on different locks; neither
	// may revert the other's columns.
	errs := make(chan error, 2)
	go func() {
		for i := 0; i < 5; i++ {
			if err := eng.Endorse(ctx, fmt.Sprintf("0xfan%d", i), "0xtarget"); err != nil {
				errs <- err
				return
			}
		}
		errs <- nil
	}()
	go func() {
		for i := 0; i < 20; i++ {
			if _, err := eng.UpdateProfile(ctx, "0xtarget", fmt.Sprintf("target%d", i)); err != nil {
				errs <- err
				return
			}
		}
		errs <- nil
	}()
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	profile, err := eng.GetProfile(ctx, "0xtarget")
	require.NoError(t, err)
	require.Equal(t, "target19", profile.Username)
	require.Equal(t, uint32(150), profile.TrustScore)
}

func TestVerifyProfile(t *testing.T) {
	eng, sink, _ := newTestEngine(t)
	ctx := context.Background()

	mustProfile(t, eng, "0xalice", "alice")
	addOperator(t, eng, "0xop")

	err := eng.VerifyProfile(ctx, "0xalice", "0xalice")
	require.ErrorIs(t, err, ErrNotAuthorized)

	err = eng.VerifyProfile(ctx, "0xop", "0xghost")
	require.ErrorIs(t, err, ErrProfileNotFound)

	require.NoError(t, eng.VerifyProfile(ctx, "0xop", "0xalice"))
	profile, err := eng.GetProfile(ctx, "0xalice")
	require.NoError(t, err)
	require.True(t, profile.Verified)
	require.Contains(t, sink.types(), EventProfileVerified)

	err = eng.VerifyProfile(ctx, "0xop", "0xalice")
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestGetProfileNotFound(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.GetProfile(context.Background(), "0xghost")
	require.ErrorIs(t, err, ErrProfileNotFound)
	require.Equal(t, NotFound, KindOf(err))
}
