package streak

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// MonthKey buckets an instant into its calendar month, e.g. "2026-03".
// Shield quotas and monthly performance both key on this.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ShieldsUsedInMonth counts shield activations recorded under the given
// month key.
func ShieldsUsedInMonth(d StreakData, monthKey string) int {
	n := 0
	for _, s := range d.StreakShields {
		if MonthKey(s.UsedAt) == monthKey {
			n++
		}
	}
	return n
}

// latestShield returns the most recently used shield, or nil.
func latestShield(d StreakData) *Shield {
	var latest *Shield
	for i := range d.StreakShields {
		s := &d.StreakShields[i]
		if latest == nil || s.UsedAt.After(latest.UsedAt) {
			latest = s
		}
	}
	return latest
}

// ShieldCooldownHours returns the hours left on the most recent shield's
// cooldown, zero when no shield exists or the cooldown has elapsed.
func ShieldCooldownHours(d StreakData, now time.Time) float64 {
	last := latestShield(d)
	if last == nil {
		return 0
	}
	since := now.Sub(last.UsedAt).Hours()
	return math.Max(0, ShieldCooldownDays*24-since)
}

// CanUseShield reports whether a shield activation would be accepted at now.
//
// All three gates are evaluated against the supplied instant, never the wall
// clock, so eligibility is a pure function:
//   - monthly quota: activations in now's calendar month < ShieldsPerMonth
//   - cooldown: 7 days since the most recent activation
//   - usage window: no more than 48 hours past the end of the grace period
func CanUseShield(d StreakData, now time.Time) bool {
	if ShieldsUsedInMonth(d, MonthKey(now)) >= ShieldsPerMonth {
		return false
	}

	if last := latestShield(d); last != nil {
		if now.Sub(last.UsedAt).Hours() < ShieldCooldownDays*24 {
			return false
		}
	}

	if d.LastCheckIn != nil {
		elapsed := now.Sub(*d.LastCheckIn).Hours()
		missed := math.Max(0, elapsed-CheckInWindowHours-GracePeriodHours)
		if missed > ShieldUsageWindowHours {
			return false
		}
	}

	return true
}

// UseShield activates a recovery shield for a missed calendar day.
//
// On refusal the error distinguishes the three reasons: quota exhausted
// (with the next reset date, the 1st of next month), cooldown active (with
// ceiling-rounded days remaining), or usage window expired.
//
// On success it appends the Shield record and a shield_recovery history
// entry dated on the missed day but timestamped now, with both scores fixed
// at 100, sets LastCheckIn to now, and folds 100 into the running quality
// score. A shield substitutes for a check-in without being counted as one:
// it touches neither CurrentStreak nor TotalCheckIns, so TotalCheckIns does
// not equal calendar days elapsed after a recovery.
func UseShield(d StreakData, missedDay time.Time, reason ShieldReason, evidence *ShieldEvidence, now time.Time) (StreakData, error) {
	if reason == "" {
		reason = ReasonManual
	}

	if !CanUseShield(d, now) {
		return StreakData{}, shieldRefusal(d, now)
	}

	return applyShield(d, missedDay, reason, evidence, now), nil
}

// AdminOverrideShield applies a shield outside the user-facing gates: no
// quota, cooldown, or usage-window check. Reserved for approved manual
// recovery requests, where an administrator has already judged the evidence
// and the 72-hour request window bounds how stale the repair can be.
func AdminOverrideShield(d StreakData, missedDay time.Time, evidence *ShieldEvidence, now time.Time) StreakData {
	return applyShield(d, missedDay, ReasonAdminOverride, evidence, now)
}

// applyShield performs the shield mutation common to both activation paths.
func applyShield(d StreakData, missedDay time.Time, reason ShieldReason, evidence *ShieldEvidence, now time.Time) StreakData {
	shield := Shield{
		ID:            uuid.NewString(),
		UsedAt:        now,
		RecoveredDay:  missedDay,
		Reason:        reason,
		CooldownUntil: now.Add(ShieldCooldownDays * 24 * time.Hour),
		Evidence:      evidence,
	}
	entry := HistoryEntry{
		Date:         missedDay,
		CheckInTime:  now,
		Type:         EntryShieldRecovery,
		QualityScore: 100,
		TimingScore:  100,
	}

	out := d.clone()
	out.StreakShields = append(out.StreakShields, shield)
	out.StreakHistory = append(out.StreakHistory, entry)
	checkIn := now
	out.LastCheckIn = &checkIn
	out.QualityScore = smoothQuality(d.QualityScore, 100)
	return out
}

// shieldRefusal builds the typed error for an ineligible activation,
// checking the gates in the same order CanUseShield applies them.
func shieldRefusal(d StreakData, now time.Time) *RefusalError {
	if used := ShieldsUsedInMonth(d, MonthKey(now)); used >= ShieldsPerMonth {
		reset := firstOfNextMonth(now)
		return &RefusalError{
			Code: CodeShieldQuotaExhausted,
			Message: fmt.Sprintf("maximum shields used this month (%d); next shield available %s",
				ShieldsPerMonth, reset.Format("2006-01-02")),
			NextShieldReset: reset,
		}
	}

	if cooldown := ShieldCooldownHours(d, now); cooldown > 0 {
		days := int(math.Ceil(cooldown / 24))
		plural := ""
		if days > 1 {
			plural = "s"
		}
		return &RefusalError{
			Code:             CodeShieldOnCooldown,
			Message:          fmt.Sprintf("shield on cooldown; available in %d day%s", days, plural),
			CooldownDaysLeft: days,
		}
	}

	return &RefusalError{
		Code:    CodeShieldWindowExpired,
		Message: fmt.Sprintf("shield usage window expired (%d hours)", ShieldUsageWindowHours),
	}
}

// firstOfNextMonth returns midnight on the 1st of the month after now, in
// now's location. time.Date normalizes month 13 into January of next year.
func firstOfNextMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
}

// AcknowledgeMonthlyReset records that the monthly shield quota was observed
// as reset for now's month. The first call in a month returns the updated
// snapshot and true; later calls in the same month return the input
// unchanged and false. Callers use the flag to surface a "shields restored"
// notice exactly once per month.
func AcknowledgeMonthlyReset(d StreakData, now time.Time) (StreakData, bool) {
	key := MonthKey(now)
	if _, ok := d.MonthlyShieldResets[key]; ok {
		return d, false
	}
	out := d.clone()
	out.MonthlyShieldResets[key] = now
	return out, true
}
