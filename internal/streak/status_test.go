package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base is an arbitrary fixed instant; a morning hour so timing scores land
// in the optimal band unless a test says otherwise.
var base = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

// withLastCheckIn returns a snapshot whose last check-in was at t.
func withLastCheckIn(t time.Time) StreakData {
	d := New(t.Add(-30 * 24 * time.Hour))
	d.LastCheckIn = &t
	d.CurrentStreak = 5
	d.LongestStreak = 5
	d.TotalCheckIns = 5
	return d
}

// TestStatus_NoCheckIn tests the fresh-snapshot classification.
func TestStatus_NoCheckIn(t *testing.T) {
	st := Status(New(base), base, time.UTC)

	assert.Equal(t, StateActive, st.State)
	assert.Equal(t, float64(CheckInWindowHours), st.HoursRemaining)
	assert.False(t, st.CanUseShield)
	assert.Equal(t, NotifyNone, st.NextNotification)
}

// TestStatus_Thresholds tests the 24/25/26-hour boundaries, including the
// inclusive edges.
func TestStatus_Thresholds(t *testing.T) {
	d := withLastCheckIn(base)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    State
	}{
		{"immediately after", 0, StateActive},
		{"mid window", 12 * time.Hour, StateActive},
		{"exactly 24h", 24 * time.Hour, StateActive},
		{"just past 24h", 24*time.Hour + time.Minute, StateWarning},
		{"exactly 25h", 25 * time.Hour, StateWarning},
		{"just past 25h", 25*time.Hour + time.Minute, StateCritical},
		{"exactly 26h", 26 * time.Hour, StateCritical},
		{"just past 26h", 26*time.Hour + time.Minute, StateBroken},
		{"deep broken", 80 * time.Hour, StateBroken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Status(d, base.Add(tt.elapsed), time.UTC)
			assert.Equal(t, tt.want, st.State)
		})
	}
}

// TestStatus_HoursRemaining tests the remaining-time formulas per state.
func TestStatus_HoursRemaining(t *testing.T) {
	d := withLastCheckIn(base)

	// Active counts down the 24-hour window.
	st := Status(d, base.Add(10*time.Hour), time.UTC)
	assert.InDelta(t, 14, st.HoursRemaining, 1e-9)

	// Warning and critical count down the combined 26-hour window.
	st = Status(d, base.Add(24*time.Hour+30*time.Minute), time.UTC)
	assert.InDelta(t, 1.5, st.HoursRemaining, 1e-9)

	st = Status(d, base.Add(25*time.Hour+30*time.Minute), time.UTC)
	assert.InDelta(t, 0.5, st.HoursRemaining, 1e-9)

	// Broken reports zero and the overshoot past the grace period.
	st = Status(d, base.Add(30*time.Hour), time.UTC)
	assert.Zero(t, st.HoursRemaining)
	assert.InDelta(t, 4, st.MissedCheckInHours, 1e-9)
}

// TestStatus_Monotonic tests that the state never regresses as elapsed time
// grows for a fixed last check-in.
func TestStatus_Monotonic(t *testing.T) {
	d := withLastCheckIn(base)
	rank := map[State]int{StateActive: 0, StateWarning: 1, StateCritical: 2, StateBroken: 3}

	prev := StateActive
	for m := 0; m <= 30*60; m += 10 {
		st := Status(d, base.Add(time.Duration(m)*time.Minute), time.UTC)
		require.GreaterOrEqual(t, rank[st.State], rank[prev],
			"state regressed from %s to %s at %dm", prev, st.State, m)
		prev = st.State
	}
	assert.Equal(t, StateBroken, prev)
}

// TestStatus_NotificationEscalation tests the reminder/warning/critical
// escalation inside the active window.
func TestStatus_NotificationEscalation(t *testing.T) {
	d := withLastCheckIn(base)

	tests := []struct {
		elapsed time.Duration
		want    Notification
	}{
		{4 * time.Hour, NotifyNone},      // 20h of the window left
		{17 * time.Hour, NotifyReminder}, // 7h left
		{21 * time.Hour, NotifyWarning},  // 3h left
		{23*time.Hour + 30*time.Minute, NotifyCritical},
	}
	for _, tt := range tests {
		st := Status(d, base.Add(tt.elapsed), time.UTC)
		assert.Equal(t, tt.want, st.NextNotification, "elapsed %s", tt.elapsed)
	}
}

// TestStatus_BrokenShieldGate tests that a broken streak only offers a
// shield inside the 48-hour usage window.
func TestStatus_BrokenShieldGate(t *testing.T) {
	d := withLastCheckIn(base)

	st := Status(d, base.Add(40*time.Hour), time.UTC)
	assert.Equal(t, StateBroken, st.State)
	assert.True(t, st.CanUseShield)
	assert.Equal(t, NotifyRecovery, st.NextNotification)

	// 26h window + 48h shield window = 74h; past that no recovery.
	st = Status(d, base.Add(75*time.Hour), time.UTC)
	assert.Equal(t, StateBroken, st.State)
	assert.False(t, st.CanUseShield)
	assert.Equal(t, NotifyNone, st.NextNotification)
}

// TestHasCheckedInToday_SameDay tests the calendar-day comparison in a
// fixed zone.
func TestHasCheckedInToday_SameDay(t *testing.T) {
	checkIn := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	d := withLastCheckIn(checkIn)

	assert.True(t, HasCheckedInToday(d, checkIn.Add(15*time.Minute), time.UTC))
	assert.False(t, HasCheckedInToday(d, checkIn.Add(45*time.Minute), time.UTC)) // past midnight
	assert.False(t, HasCheckedInToday(New(base), base, time.UTC))
}

// TestHasCheckedInToday_TimezoneBoundary tests that the day boundary follows
// the supplied zone, not UTC.
func TestHasCheckedInToday_TimezoneBoundary(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	// 23:00 UTC on Mar 10 is 08:00 Mar 11 in Tokyo.
	checkIn := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	d := withLastCheckIn(checkIn)
	now := checkIn.Add(2 * time.Hour) // 01:00 UTC Mar 11 = 10:00 Tokyo Mar 11

	assert.False(t, HasCheckedInToday(d, now, time.UTC))
	assert.True(t, HasCheckedInToday(d, now, tokyo))
}

// TestNextNotificationTime tests the 16/23/25-hour schedule.
func TestNextNotificationTime(t *testing.T) {
	d := withLastCheckIn(base)

	at := NextNotificationTime(d, base.Add(2*time.Hour))
	require.NotNil(t, at)
	assert.Equal(t, base.Add(16*time.Hour), *at)

	at = NextNotificationTime(d, base.Add(20*time.Hour))
	require.NotNil(t, at)
	assert.Equal(t, base.Add(23*time.Hour), *at)

	at = NextNotificationTime(d, base.Add(24*time.Hour))
	require.NotNil(t, at)
	assert.Equal(t, base.Add(25*time.Hour), *at)

	assert.Nil(t, NextNotificationTime(d, base.Add(26*time.Hour)))
	assert.Nil(t, NextNotificationTime(New(base), base))
}

// TestRetroactiveStreak tests whole-day flooring, including the reversed
// argument order.
func TestRetroactiveStreak(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, RetroactiveStreak(start, end))
	assert.Equal(t, 10, RetroactiveStreak(end, start))
	assert.Equal(t, 9, RetroactiveStreak(start, end.Add(-time.Hour)))
	assert.Equal(t, 0, RetroactiveStreak(start, start.Add(23*time.Hour)))
}
