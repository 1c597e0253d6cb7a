package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

var (
	alice = &policy.Principal{ID: 1, Username: "alice", Role: policy.RoleUser}
	boss  = &policy.Principal{ID: 2, Username: "boss", Role: policy.RoleAdmin}
)

func newTestService(t *testing.T, rejectFuture bool) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	svc := NewService(store, rejectFuture)
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestClockNormalizesArrival(t *testing.T) {
	svc, _ := newTestService(t, false)

	rec, err := svc.Clock(context.Background(), alice, ClockInput{Arrival: "9:5"})
	require.NoError(t, err)
	require.Equal(t, "09:05", rec.Arrival)
	require.Equal(t, "alice", rec.Owner)
	require.Equal(t, "2024-01-15", rec.Day)
	require.NotZero(t, rec.ID)
}

func TestClockOwnerIsForced(t *testing.T) {
	svc, store := newTestService(t, false)

	// The input carries no owner field at all; whatever the client sends,
	// the row belongs to the acting principal.
	_, err := svc.Clock(context.Background(), boss, ClockInput{Arrival: "8:00"})
	require.NoError(t, err)

	recs, err := store.ListDay(context.Background(), "2024-01-15", "")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "boss", recs[0].Owner)
}

func TestClockRejectsMalformedArrival(t *testing.T) {
	svc, store := newTestService(t, false)

	for _, in := range []string{"", "9", "24:00", "12:60", "morning"} {
		_, err := svc.Clock(context.Background(), alice, ClockInput{Arrival: in})
		require.Error(t, err, "arrival %q", in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	}

	// No partial writes.
	recs, err := store.ListDay(context.Background(), "2024-01-15", "")
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestClockRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, err := svc.Clock(context.Background(), alice, ClockInput{Arrival: "9:00", Category: "vacances"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "service", verr.Field)

	rec, err := svc.Clock(context.Background(), alice, ClockInput{Arrival: "9:00", Category: "conge"})
	require.NoError(t, err)
	require.Equal(t, "conge", rec.Category)
}

func TestClockDepartureOptional(t *testing.T) {
	svc, _ := newTestService(t, false)

	rec, err := svc.Clock(context.Background(), alice, ClockInput{Arrival: "9:00"})
	require.NoError(t, err)
	require.Empty(t, rec.Departure)

	rec, err = svc.Clock(context.Background(), alice, ClockInput{Arrival: "9:00", Departure: "17:5"})
	require.NoError(t, err)
	require.Equal(t, "17:05", rec.Departure)

	_, err = svc.Clock(context.Background(), alice, ClockInput{Arrival: "9:00", Departure: "25:00"})
	require.Error(t, err)
}

func TestClockBackdatingAndFutureDays(t *testing.T) {
	svc, _ := newTestService(t, false)

	rec, err := svc.Clock(context.Background(), alice, ClockInput{Arrival: "9:00", Day: "2023-12-24"})
	require.NoError(t, err)
	require.Equal(t, "2023-12-24", rec.Day)

	// Future days pass by default.
	_, err = svc.Clock(context.Background(), alice, ClockInput{Arrival: "9:00", Day: "2024-02-01"})
	require.NoError(t, err)

	strict, _ := newTestService(t, true)
	_, err = strict.Clock(context.Background(), alice, ClockInput{Arrival: "9:00", Day: "2024-02-01"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "jour", verr.Field)

	// Today and past still pass under the strict policy.
	_, err = strict.Clock(context.Background(), alice, ClockInput{Arrival: "9:00", Day: "2024-01-15"})
	require.NoError(t, err)
}

func TestListDayVisibility(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	bob := &policy.Principal{ID: 3, Username: "bob", Role: policy.RoleUser}
	_, err := svc.Clock(ctx, alice, ClockInput{Arrival: "9:05"})
	require.NoError(t, err)
	_, err = svc.Clock(ctx, bob, ClockInput{Arrival: "8:30"})
	require.NoError(t, err)

	// alice sees only her own row even though bob clocked in the same day.
	recs, err := svc.ListDay(ctx, alice, "")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "alice", recs[0].Owner)

	// The admin sees everything, ordered by arrival ascending.
	recs, err = svc.ListDay(ctx, boss, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "bob", recs[0].Owner)
	require.Equal(t, "alice", recs[1].Owner)
}

func TestDeleteRecord(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	rec, err := svc.Clock(ctx, alice, ClockInput{Arrival: "9:00"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rec.ID))
	require.ErrorIs(t, svc.Delete(ctx, rec.ID), ErrNotFound)
}

func TestDailyStats(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	_, err := svc.Clock(ctx, alice, ClockInput{Arrival: "9:00"})
	require.NoError(t, err)
	_, err = svc.Clock(ctx, alice, ClockInput{Arrival: "9:00", Day: "2024-01-14"})
	require.NoError(t, err)
	_, err = svc.Clock(ctx, boss, ClockInput{Arrival: "8:00", Day: "2024-01-14"})
	require.NoError(t, err)

	stats, err := svc.DailyStats(ctx)
	require.NoError(t, err)
	require.Equal(t, []DayStat{
		{Day: "2024-01-15", Count: 1},
		{Day: "2024-01-14", Count: 2},
	}, stats)
}
