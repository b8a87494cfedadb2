package streak

import (
	"math"
	"time"
)

// HasCheckedInToday reports whether the last accepted check-in falls on the
// same calendar day as now in the given location. A nil loc means the
// process-local zone; callers that care about correctness across devices
// should always pass the user's zone explicitly.
func HasCheckedInToday(d StreakData, now time.Time, loc *time.Location) bool {
	if d.LastCheckIn == nil {
		return false
	}
	if loc == nil {
		loc = time.Local
	}
	ny, nm, nd := now.In(loc).Date()
	ly, lm, ld := d.LastCheckIn.In(loc).Date()
	return ny == ly && nm == lm && nd == ld
}

// Status classifies the snapshot at an instant. It is a pure function of
// (LastCheckIn, now) plus shield eligibility and is safe to call at any
// polling cadence.
//
// The classification itself is zone-independent (elapsed hours do not change
// with the zone); loc is accepted for interface symmetry with the calendar
// operations and to default consistently when nil.
//
// Boundary inclusivity is load-bearing: elapsed <= 24 is active, <= 25
// warning, <= 26 critical, and strictly greater than 26 broken.
func Status(d StreakData, now time.Time, loc *time.Location) StreakStatus {
	if d.LastCheckIn == nil {
		return StreakStatus{
			State:          StateActive,
			HoursRemaining: CheckInWindowHours,
		}
	}

	elapsed := now.Sub(*d.LastCheckIn).Hours()
	const totalWindow = CheckInWindowHours + GracePeriodHours
	remaining := math.Max(0, totalWindow-elapsed)
	missed := math.Max(0, elapsed-totalWindow)
	canShield := CanUseShield(d, now)
	cooldown := ShieldCooldownHours(d, now)

	switch {
	case elapsed <= CheckInWindowHours:
		return StreakStatus{
			State:            StateActive,
			HoursRemaining:   CheckInWindowHours - elapsed,
			NextNotification: nextNotification(CheckInWindowHours - elapsed),
		}
	case elapsed <= CheckInWindowHours+1:
		return StreakStatus{
			State:               StateWarning,
			HoursRemaining:      remaining,
			CanUseShield:        canShield,
			ShieldCooldownHours: cooldown,
			MissedCheckInHours:  missed,
			NextNotification:    NotifyWarning,
		}
	case elapsed <= totalWindow:
		return StreakStatus{
			State:               StateCritical,
			HoursRemaining:      remaining,
			CanUseShield:        canShield,
			ShieldCooldownHours: cooldown,
			MissedCheckInHours:  missed,
			NextNotification:    NotifyCritical,
		}
	default:
		st := StreakStatus{
			State:               StateBroken,
			HoursRemaining:      0,
			CanUseShield:        canShield && missed <= ShieldUsageWindowHours,
			ShieldCooldownHours: cooldown,
			MissedCheckInHours:  missed,
		}
		if canShield {
			st.NextNotification = NotifyRecovery
		}
		return st
	}
}

// nextNotification escalates as the remaining check-in window shrinks.
func nextNotification(hoursRemaining float64) Notification {
	switch {
	case hoursRemaining <= 1:
		return NotifyCritical
	case hoursRemaining <= 4:
		return NotifyWarning
	case hoursRemaining <= 8:
		return NotifyReminder
	default:
		return NotifyNone
	}
}

// NextNotificationTime returns the instant the next escalation fires:
// reminder at +16h, warning at +23h, critical at +25h after the last
// check-in. Nil when no check-in exists or all three have passed. Callers
// use this to schedule local notifications instead of polling.
func NextNotificationTime(d StreakData, now time.Time) *time.Time {
	if d.LastCheckIn == nil {
		return nil
	}
	last := *d.LastCheckIn
	for _, offset := range []time.Duration{16 * time.Hour, 23 * time.Hour, 25 * time.Hour} {
		at := last.Add(offset)
		if now.Before(at) {
			return &at
		}
	}
	return nil
}

// RetroactiveStreak counts whole days between a user-declared start date and
// the current instant. Used when a user backdates their journey start; the
// result seeds the displayed streak, not the check-in ledger.
func RetroactiveStreak(startDate, currentDate time.Time) int {
	diff := currentDate.Sub(startDate)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
