package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeScoreClamp(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	cases := map[string]struct {
		received   int64
		trading    uint32
		governance uint32
		want       uint32
	}{
		"Base":         {want: 100},
		"Endorsed":     {received: 3, want: 130},
		"WithMetrics":  {received: 2, trading: 40, governance: 25, want: 185},
		"AtCap":        {received: 90, want: 1000},
		"OverCap":      {received: 500, trading: 1000, governance: 1000, want: 1000},
		"MetricsAtCap": {trading: 1000, governance: 1000, want: 1000},
		"JustBelowCap": {received: 89, want: 990},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, c.want, eng.computeScore(c.received, c.trading, c.governance))
		})
	}
}

func TestUpdateMetrics(t *testing.T) {
	eng, sink, _ := newTestEngine(t)
	ctx := context.Background()

	mustProfile(t, eng, "0xalice", "alice")
	addOperator(t, eng, "0xop")

	_, err := eng.UpdateMetrics(ctx, "0xalice", "0xalice", 10, 10)
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = eng.UpdateMetrics(ctx, "0xop", "0xghost", 10, 10)
	require.ErrorIs(t, err, ErrProfileNotFound)

	_, err = eng.UpdateMetrics(ctx, "0xop", "0xalice", 1001, 0)
	require.ErrorIs(t, err, ErrScoreExceedsMaximum)
	_, err = eng.UpdateMetrics(ctx, "0xop", "0xalice", 0, 1001)
	require.ErrorIs(t, err, ErrScoreExceedsMaximum)

	score, err := eng.UpdateMetrics(ctx, "0xop", "0xalice", 50, 30)
	require.NoError(t, err)
	require.Equal(t, uint32(180), score)
	require.Contains(t, sink.types(), EventScoreUpdated)

	// Raw values up to the cap are accepted; the computed score clamps.
	score, err = eng.UpdateMetrics(ctx, "0xop", "0xalice", 1000, 1000)
	require.NoError(t, err)
	require.Equal(t, uint32(1000), score)
}

func TestSyncMetrics(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustProfile(t, eng, "0xalice", "alice")
	addOperator(t, eng, "0xop")

	score, err := eng.SyncTradingMetrics(ctx, "0xop", "0xalice", 40)
	require.NoError(t, err)
	require.Equal(t, uint32(140), score)

	score, err = eng.SyncGovernanceMetrics(ctx, "0xop", "0xalice", 25)
	require.NoError(t, err)
	require.Equal(t, uint32(165), score)

	// Each sync replaces its own metric, leaving the other intact.
	score, err = eng.SyncTradingMetrics(ctx, "0xop", "0xalice", 10)
	require.NoError(t, err)
	require.Equal(t, uint32(135), score)

	_, err = eng.SyncTradingMetrics(ctx, "0xop", "0xalice", 1001)
	require.ErrorIs(t, err, ErrScoreExceedsMaximum)
	_, err = eng.SyncGovernanceMetrics(ctx, "0xalice", "0xalice", 10)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestScoreBoundsUnderMixedOperations(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustProfile(t, eng, "0xtarget", "target")
	addOperator(t, eng, "0xop")

	check := func() {
		score, err := eng.CalculateScore(ctx, "0xtarget")
		require.NoError(t, err)
		require.LessOrEqual(t, score, uint32(1000))
		require.GreaterOrEqual(t, score, uint32(100))
	}

	for i := 0; i < 10; i++ {
		addr := fmt.Sprintf("0xfan%d", i)
		mustProfile(t, eng, addr, fmt.Sprintf("fan%d", i))
		require.NoError(t, eng.Endorse(ctx, addr, "0xtarget"))
		check()
	}

	_, err := eng.UpdateMetrics(ctx, "0xop", "0xtarget", 900, 900)
	require.NoError(t, err)
	check()

	for i := 0; i < 10; i++ {
		require.NoError(t, eng.RevokeEndorsement(ctx, fmt.Sprintf("0xfan%d", i), "0xtarget"))
		check()
	}

	_, err = eng.UpdateMetrics(ctx, "0xop", "0xtarget", 0, 0)
	require.NoError(t, err)
	score, err := eng.CalculateScore(ctx, "0xtarget")
	require.NoError(t, err)
	require.Equal(t, uint32(100), score)
}

func TestCalculateScoreIsPureRead(t *testing.T) {
	eng, sink, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.CalculateScore(ctx, "0xghost")
	require.ErrorIs(t, err, ErrProfileNotFound)

	mustProfile(t, eng, "0xalice", "alice")
	events := len(sink.types())

	for i := 0; i < 3; i++ {
		score, err := eng.CalculateScore(ctx, "0xalice")
		require.NoError(t, err)
		require.Equal(t, uint32(100), score)
	}
	require.Len(t, sink.types(), events)
}
