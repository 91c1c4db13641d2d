package countdown

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		deadline    time.Time
		wantMillis  int64
		wantUrgent  bool
		wantExpired bool
	}{
		{name: "far_future", deadline: now.Add(2 * time.Hour), wantMillis: 7_200_000},
		{name: "inside_urgent_window", deadline: now.Add(4*time.Minute + 59*time.Second), wantMillis: 299_000, wantUrgent: true},
		{name: "exactly_five_minutes_not_urgent", deadline: now.Add(5 * time.Minute), wantMillis: 300_000},
		{name: "one_millisecond_left", deadline: now.Add(time.Millisecond), wantMillis: 1, wantUrgent: true},
		{name: "exactly_at_deadline", deadline: now, wantMillis: 0, wantExpired: true},
		{name: "past_deadline", deadline: now.Add(-61 * time.Second), wantMillis: -61_000, wantExpired: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tick := Derive(tc.deadline, now)
			require.Equal(t, tc.wantMillis, tick.Millis())
			require.Equal(t, tc.wantUrgent, tick.Urgent)
			require.Equal(t, tc.wantExpired, tick.Expired)

			// pure: same inputs, same output
			require.Equal(t, tick, Derive(tc.deadline, now))
		})
	}
}

func TestRemaining_NonPositiveAfterDeadline(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{0, time.Nanosecond, time.Second, 61 * time.Second, 48 * time.Hour} {
		require.LessOrEqual(t, RemainingMillis(deadline, deadline.Add(offset)), int64(0))
	}
}

// A lot fetched with 60s left and rendered 61s later without another fetch
// shows at least one second overdue.
func TestRemaining_StaleRenderScenario(t *testing.T) {
	t.Parallel()

	fetchedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	endsAt := fetchedAt.Add(60 * time.Second)

	require.LessOrEqual(t, RemainingMillis(endsAt, fetchedAt.Add(61*time.Second)), int64(-1000))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "finished", in: 0, want: "Завершён"},
		{name: "negative", in: -time.Minute, want: "Завершён"},
		{name: "hours", in: 3*time.Hour + 25*time.Minute + 10*time.Second, want: "3ч 25м"},
		{name: "minutes", in: 4*time.Minute + 10*time.Second, want: "4м 10с"},
		{name: "seconds", in: 9*time.Second + 400*time.Millisecond, want: "9с"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Format(tc.in))
		})
	}
}

func TestSubscribe_EmitsEverySecondUntilStopped(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	deadline := start.Add(3 * time.Second)

	ticks := make(chan Tick, 16)
	stop := Subscribe(clock, func() time.Time { return deadline }, func(tk Tick) { ticks <- tk })

	first := receiveTick(t, ticks)
	require.Equal(t, int64(3000), first.Millis())
	require.True(t, first.Urgent)

	clock.Advance(TickInterval)
	require.Equal(t, int64(2000), receiveTick(t, ticks).Millis())

	clock.Advance(TickInterval)
	require.Equal(t, int64(1000), receiveTick(t, ticks).Millis())

	stop()
	stop() // idempotent

	clock.Advance(5 * TickInterval)
	require.Never(t, func() bool { return len(ticks) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestSubscribe_FollowsExtendedDeadline(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	var deadline atomic.Int64
	deadline.Store(start.Add(30 * time.Second).UnixNano())

	ticks := make(chan Tick, 16)
	stop := Subscribe(clock, func() time.Time { return time.Unix(0, deadline.Load()).UTC() }, func(tk Tick) { ticks <- tk })
	defer stop()

	require.Equal(t, int64(30_000), receiveTick(t, ticks).Millis())

	// anti-snipe extension arrives from a poll
	deadline.Store(start.Add(2*time.Minute + 30*time.Second).UnixNano())
	clock.Advance(TickInterval)
	require.Equal(t, int64(149_000), receiveTick(t, ticks).Millis())
}

func TestSubscribe_KeepsEmittingAfterExpiry(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	ticks := make(chan Tick, 16)
	stop := Subscribe(clock, func() time.Time { return start }, func(tk Tick) { ticks <- tk })
	defer stop()

	require.True(t, receiveTick(t, ticks).Expired)
	clock.Advance(TickInterval)
	tk := receiveTick(t, ticks)
	require.True(t, tk.Expired)
	require.False(t, tk.Urgent)
	require.Equal(t, int64(-1000), tk.Millis())
}

func receiveTick(t *testing.T, ch <-chan Tick) Tick {
	t.Helper()
	select {
	case tk := <-ch:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for countdown tick")
		return Tick{}
	}
}
