package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEventLogMatchesApplyOrder(t *testing.T) {
	eng, sink, _ := newTestEngine(t)
	ctx := context.Background()
	setClock(eng, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	mustProfile(t, eng, "0xalice", "alice")
	mustProfile(t, eng, "0xbob", "bob")
	require.NoError(t, eng.Endorse(ctx, "0xalice", "0xbob"))
	require.NoError(t, eng.RevokeEndorsement(ctx, "0xalice", "0xbob"))

	want := []EventType{
		EventProfileCreated,
		EventProfileCreated,
		EventEndorsementUpdated,
		EventEndorsementUpdated,
	}
	require.Equal(t, want, sink.types())

	// The stored log keeps the same order, returned newest first.
	rows, err := eng.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		require.Equal(t, string(want[len(want)-1-i]), row.Type)
	}
}

func TestListEventsLimit(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustProfile(t, eng, "0xalice", "alice")
	mustProfile(t, eng, "0xbob", "bob")

	rows, err := eng.ListEvents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Non-positive limits fall back to the default page size.
	rows, err = eng.ListEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
