package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLifecycle_MissAndRecover walks the whole break-and-recover flow:
// fresh snapshot, first check-in, a 30-hour silence breaking the streak,
// then a shield repairing the missed day.
func TestLifecycle_MissAndRecover(t *testing.T) {
	d := New(base)

	d, err := CheckIn(d, base, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, d.CurrentStreak)
	assert.Equal(t, 100, d.QualityScore)
	require.Len(t, d.StreakHistory, 1)
	assert.Equal(t, EntryNormal, d.StreakHistory[0].Type)

	now := base.Add(30 * time.Hour)
	st := Status(d, now, time.UTC)
	assert.Equal(t, StateBroken, st.State)
	assert.Zero(t, st.HoursRemaining)
	assert.True(t, st.CanUseShield)

	missedDay := base.Add(24 * time.Hour)
	d, err = UseShield(d, missedDay, ReasonManual, nil, now)
	require.NoError(t, err)
	require.Len(t, d.StreakShields, 1)
	require.Len(t, d.StreakHistory, 2)
	assert.Equal(t, EntryShieldRecovery, d.StreakHistory[1].Type)
	require.NotNil(t, d.LastCheckIn)
	assert.True(t, d.LastCheckIn.Equal(now))

	// The repaired streak keeps running: the next day checks in normally.
	next := now.Add(24 * time.Hour)
	d, err = CheckIn(d, next, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, d.CurrentStreak)
	assert.Equal(t, 2, d.TotalCheckIns) // the shield did not count
}

// TestLifecycle_QuotaExhaustion uses three shields across one month with
// cooldowns respected, then expects the fourth to be refused with the next
// month's reset date.
func TestLifecycle_QuotaExhaustion(t *testing.T) {
	d := New(time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC))

	for _, day := range []int{2, 10, 18} {
		now := time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC)
		last := now.Add(-28 * time.Hour)
		d.LastCheckIn = &last
		var err error
		d, err = UseShield(d, now.AddDate(0, 0, -1), ReasonManual, nil, now)
		require.NoError(t, err, "shield on day %d", day)
	}

	fourth := time.Date(2026, 3, 27, 10, 0, 0, 0, time.UTC)
	last := fourth.Add(-28 * time.Hour)
	d.LastCheckIn = &last

	_, err := UseShield(d, fourth.AddDate(0, 0, -1), ReasonManual, nil, fourth)
	require.Error(t, err)

	var re *RefusalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeShieldQuotaExhausted, re.Code)
	assert.Contains(t, re.Message, "2026-04-01")
}

// TestLifecycle_LongRun drives 60 days of exact 24-hour check-ins and
// verifies scores, entry classification and milestone progression.
//
// An exact daily cadence leaves under two hours of the base window at every
// check-in, so all entries after the first classify as grace_period and the
// trailing-window consistency reads zero even for a perfectly regular user.
// That is the reference behavior of the grace threshold, preserved here.
func TestLifecycle_LongRun(t *testing.T) {
	d := New(base)
	now := base
	for i := 0; i < 60; i++ {
		var err error
		d, err = CheckIn(d, now, time.UTC)
		require.NoError(t, err)
		now = now.Add(24 * time.Hour)
	}

	assert.Equal(t, 60, d.CurrentStreak)
	assert.Equal(t, 60, d.LongestStreak)
	assert.Equal(t, 60, d.TotalCheckIns)
	assert.Equal(t, 100, d.QualityScore) // every gap is the 24h ideal
	assert.Zero(t, d.ConsistencyPercentage)

	a := Analytics(d, now)
	assert.Equal(t, 3, a.ShieldsRemaining)
	assert.Equal(t, 1, a.PerfectDays) // only the first entry is "normal"
	assert.Equal(t, 59, a.GraceDays)

	next := NextMilestone(d.CurrentStreak)
	require.NotNil(t, next)
	assert.Equal(t, "100days", next.ID)
}
