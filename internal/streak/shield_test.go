package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenAt returns a snapshot whose streak broke recently enough that a
// shield is usable at "at".
func brokenAt(at time.Time) StreakData {
	last := at.Add(-30 * time.Hour)
	d := New(last.Add(-10 * 24 * time.Hour))
	d.LastCheckIn = &last
	d.CurrentStreak = 10
	d.LongestStreak = 10
	d.TotalCheckIns = 10
	return d
}

// TestCanUseShield_FreshSnapshot tests eligibility with no history at all.
func TestCanUseShield_FreshSnapshot(t *testing.T) {
	assert.True(t, CanUseShield(New(base), base))
}

// TestCanUseShield_UsageWindow tests the 48-hour window past the end of the
// grace period, independent of quota and cooldown.
func TestCanUseShield_UsageWindow(t *testing.T) {
	last := base
	d := withLastCheckIn(last)

	// 26h + 48h = 74h is the last eligible instant.
	assert.True(t, CanUseShield(d, last.Add(74*time.Hour)))
	assert.False(t, CanUseShield(d, last.Add(74*time.Hour+time.Minute)))
}

// TestUseShield_Success tests the happy path effects.
func TestUseShield_Success(t *testing.T) {
	now := base.Add(30 * time.Hour)
	d := brokenAt(now)
	missed := base.Add(24 * time.Hour).Truncate(24 * time.Hour)

	out, err := UseShield(d, missed, ReasonManual, nil, now)
	require.NoError(t, err)

	require.Len(t, out.StreakShields, 1)
	s := out.StreakShields[0]
	assert.NotEmpty(t, s.ID)
	assert.True(t, s.UsedAt.Equal(now))
	assert.True(t, s.RecoveredDay.Equal(missed))
	assert.Equal(t, ReasonManual, s.Reason)
	assert.True(t, s.CooldownUntil.Equal(now.Add(7*24*time.Hour)))

	require.Len(t, out.StreakHistory, 1)
	e := out.StreakHistory[0]
	assert.Equal(t, EntryShieldRecovery, e.Type)
	assert.True(t, e.Date.Equal(missed))
	assert.True(t, e.CheckInTime.Equal(now))
	assert.Equal(t, 100, e.QualityScore)
	assert.Equal(t, 100, e.TimingScore)

	require.NotNil(t, out.LastCheckIn)
	assert.True(t, out.LastCheckIn.Equal(now))

	// A shield substitutes for a check-in without counting as one.
	assert.Equal(t, d.CurrentStreak, out.CurrentStreak)
	assert.Equal(t, d.TotalCheckIns, out.TotalCheckIns)
}

// TestUseShield_DefaultsReason tests that an empty reason records as manual.
func TestUseShield_DefaultsReason(t *testing.T) {
	now := base.Add(30 * time.Hour)
	out, err := UseShield(brokenAt(now), base, "", nil, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonManual, out.StreakShields[0].Reason)
}

// TestUseShield_Cooldown tests that a shield used at T0 cannot be reused
// before T0+7d even with quota to spare.
func TestUseShield_Cooldown(t *testing.T) {
	now := base.Add(30 * time.Hour)
	d, err := UseShield(brokenAt(now), base, ReasonManual, nil, now)
	require.NoError(t, err)

	// Streak breaks again 30h after the recovery; still on cooldown.
	again := now.Add(30 * time.Hour)
	_, err = UseShield(d, now, ReasonManual, nil, again)
	require.Error(t, err)

	var re *RefusalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeShieldOnCooldown, re.Code)
	assert.Equal(t, 6, re.CooldownDaysLeft) // 138h left, ceiling in days
	assert.Contains(t, re.Message, "6 day")
	assert.True(t, IsShieldRefusal(err))
}

// TestUseShield_CooldownExpires tests reuse exactly at the cooldown edge.
func TestUseShield_CooldownExpires(t *testing.T) {
	now := base.Add(30 * time.Hour)
	d, err := UseShield(brokenAt(now), base, ReasonManual, nil, now)
	require.NoError(t, err)

	// 7 days on the cooldown is exactly elapsed. The recovery stamped
	// LastCheckIn at shield time, which would now be outside the usage
	// window, so simulate a fresh break inside it.
	later := now.Add(7 * 24 * time.Hour)
	lastCheckIn := later.Add(-30 * time.Hour)
	d.LastCheckIn = &lastCheckIn

	_, err = UseShield(d, lastCheckIn.Add(-24*time.Hour), ReasonManual, nil, later)
	require.NoError(t, err)
}

// TestUseShield_MonthlyQuota tests the 3-per-month cap: three activations
// spaced by the cooldown, then a fourth in the same month refused with the
// next reset date.
func TestUseShield_MonthlyQuota(t *testing.T) {
	// March has 31 days: activations on the 1st, 9th and 17th respect the
	// 7-day cooldown; the 25th is still the same month.
	d := New(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	uses := []time.Time{
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC),
	}
	for _, now := range uses {
		last := now.Add(-30 * time.Hour)
		d.LastCheckIn = &last
		var err error
		d, err = UseShield(d, now.Add(-24*time.Hour), ReasonManual, nil, now)
		require.NoError(t, err)
	}
	require.Len(t, d.StreakShields, 3)

	fourth := time.Date(2026, 3, 25, 9, 0, 0, 0, time.UTC)
	last := fourth.Add(-30 * time.Hour)
	d.LastCheckIn = &last

	_, err := UseShield(d, fourth.Add(-24*time.Hour), ReasonManual, nil, fourth)
	require.Error(t, err)

	var re *RefusalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeShieldQuotaExhausted, re.Code)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), re.NextShieldReset)
	assert.Contains(t, re.Message, "2026-04-01")

	// Quota refusal wins even though the cooldown is also active.
	assert.Equal(t, 3, ShieldsUsedInMonth(d, "2026-03"))
}

// TestUseShield_QuotaResetsNextMonth tests that the cap is per calendar
// month: the same snapshot can shield again in April once cooldown clears.
func TestUseShield_QuotaResetsNextMonth(t *testing.T) {
	d := New(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	for _, day := range []int{1, 9, 17} {
		now := time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
		last := now.Add(-30 * time.Hour)
		d.LastCheckIn = &last
		var err error
		d, err = UseShield(d, now.Add(-24*time.Hour), ReasonManual, nil, now)
		require.NoError(t, err)
	}

	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	last := now.Add(-30 * time.Hour)
	d.LastCheckIn = &last
	out, err := UseShield(d, now.Add(-24*time.Hour), ReasonManual, nil, now)
	require.NoError(t, err)
	assert.Len(t, out.StreakShields, 4)
}

// TestUseShield_WindowExpired tests the third refusal reason.
func TestUseShield_WindowExpired(t *testing.T) {
	last := base
	d := withLastCheckIn(last)
	now := last.Add(80 * time.Hour) // 54h past grace, beyond the 48h window

	_, err := UseShield(d, last.Add(24*time.Hour), ReasonManual, nil, now)
	require.Error(t, err)

	var re *RefusalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, CodeShieldWindowExpired, re.Code)
}

// TestAdminOverrideShield_BypassesGates tests that an approved recovery is
// applied even when every user-facing gate would refuse.
func TestAdminOverrideShield_BypassesGates(t *testing.T) {
	// Spend the quota for March.
	d := New(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	for _, day := range []int{1, 9, 17} {
		now := time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
		last := now.Add(-30 * time.Hour)
		d.LastCheckIn = &last
		var err error
		d, err = UseShield(d, now.Add(-24*time.Hour), ReasonManual, nil, now)
		require.NoError(t, err)
	}

	// Quota spent, cooldown active, and the break is far past the window.
	now := time.Date(2026, 3, 22, 9, 0, 0, 0, time.UTC)
	last := now.Add(-120 * time.Hour)
	d.LastCheckIn = &last
	require.False(t, CanUseShield(d, now))

	missed := now.Add(-96 * time.Hour)
	out := AdminOverrideShield(d, missed, &ShieldEvidence{
		Type:        EvidenceBugReport,
		Description: "verified crash report",
		SubmittedAt: now,
	}, now)

	require.Len(t, out.StreakShields, 4)
	s := out.StreakShields[3]
	assert.Equal(t, ReasonAdminOverride, s.Reason)
	assert.True(t, s.RecoveredDay.Equal(missed))
	require.NotNil(t, out.LastCheckIn)
	assert.True(t, out.LastCheckIn.Equal(now))
	assert.Equal(t, d.CurrentStreak, out.CurrentStreak)
}

// TestShieldCooldownHours tests remaining-cooldown arithmetic.
func TestShieldCooldownHours(t *testing.T) {
	assert.Zero(t, ShieldCooldownHours(New(base), base))

	now := base.Add(30 * time.Hour)
	d, err := UseShield(brokenAt(now), base, ReasonManual, nil, now)
	require.NoError(t, err)

	assert.InDelta(t, 168, ShieldCooldownHours(d, now), 1e-9)
	assert.InDelta(t, 100, ShieldCooldownHours(d, now.Add(68*time.Hour)), 1e-9)
	assert.Zero(t, ShieldCooldownHours(d, now.Add(200*time.Hour)))
}

// TestMonthKey tests the YYYY-MM bucketing, including zone sensitivity.
func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2026-03", MonthKey(time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-12", MonthKey(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))

	// The same instant can bucket differently across zones; callers supply
	// "now" in the user's zone for that reason.
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	endOfMarch := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-04", MonthKey(endOfMarch.In(tokyo)))
}

// TestFirstOfNextMonth tests December rollover.
func TestFirstOfNextMonth(t *testing.T) {
	dec := time.Date(2026, 12, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), firstOfNextMonth(dec))
}

// TestAcknowledgeMonthlyReset tests once-per-month recording.
func TestAcknowledgeMonthlyReset(t *testing.T) {
	d := New(base)

	out, recorded := AcknowledgeMonthlyReset(d, base)
	assert.True(t, recorded)
	assert.Contains(t, out.MonthlyShieldResets, "2026-03")

	again, recorded := AcknowledgeMonthlyReset(out, base.Add(24*time.Hour))
	assert.False(t, recorded)
	assert.Equal(t, out.MonthlyShieldResets["2026-03"], again.MonthlyShieldResets["2026-03"])

	_, recorded = AcknowledgeMonthlyReset(again, base.Add(31*24*time.Hour))
	assert.True(t, recorded)
}
