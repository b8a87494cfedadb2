package streak

import (
	"math"
	"time"
)

// consistencyWindow is how many trailing history entries the consistency
// percentage considers.
const consistencyWindow = 30

// CheckIn accepts a daily check-in at now and returns the updated snapshot.
//
// Refusals:
//   - ALREADY_CHECKED_IN when a check-in already landed on now's calendar
//     day in loc (idempotency guard, surfaced as informational).
//   - WINDOW_EXPIRED when the streak is broken and no shield is usable;
//     the caller should redirect to the shield flow.
//
// The accepted entry is classified shield_recovery when the streak was
// broken (a usable shield is implied by passing the guard), grace_period
// when under two hours remained, and normal otherwise.
func CheckIn(d StreakData, now time.Time, loc *time.Location) (StreakData, error) {
	if loc == nil {
		loc = time.Local
	}

	if HasCheckedInToday(d, now, loc) {
		return StreakData{}, &RefusalError{
			Code:    CodeAlreadyCheckedIn,
			Message: "already checked in today",
		}
	}

	st := Status(d, now, loc)
	if st.State == StateBroken && !st.CanUseShield {
		return StreakData{}, &RefusalError{
			Code:    CodeWindowExpired,
			Message: "check-in window expired",
		}
	}

	quality := gapQualityScore(now, d.LastCheckIn)
	timing := timingScore(now.In(loc))

	entryType := EntryNormal
	switch {
	case st.State == StateBroken:
		entryType = EntryShieldRecovery
	case st.HoursRemaining < GracePeriodHours:
		entryType = EntryGracePeriod
	}

	entry := HistoryEntry{
		Date:         now,
		CheckInTime:  now,
		Type:         entryType,
		QualityScore: quality,
		TimingScore:  timing,
	}

	out := d.clone()
	out.StreakHistory = append(out.StreakHistory, entry)
	out.CurrentStreak = d.CurrentStreak + 1
	if out.CurrentStreak > out.LongestStreak {
		out.LongestStreak = out.CurrentStreak
	}
	checkIn := now
	out.LastCheckIn = &checkIn
	out.TotalCheckIns = d.TotalCheckIns + 1
	out.QualityScore = smoothQuality(d.QualityScore, quality)
	out.ConsistencyPercentage = consistencyPercentage(out.StreakHistory)
	return out, nil
}

// gapQualityScore scores a check-in by how far the gap since the previous
// one deviates from the ideal 24-hour cadence. The first check-in ever
// scores 100.
func gapQualityScore(checkInTime time.Time, lastCheckIn *time.Time) int {
	if lastCheckIn == nil {
		return 100
	}
	gap := checkInTime.Sub(*lastCheckIn).Hours()
	variance := math.Abs(gap - CheckInWindowHours)
	switch {
	case variance <= 1:
		return 100
	case variance <= 2:
		return 90
	case variance <= 4:
		return 80
	case variance <= 8:
		return 70
	default:
		return 60
	}
}

// timingScore scores the local hour of day: mornings (06-10) and evenings
// (18-22) are optimal, everything else mid-tier. The two bands partition
// all 24 hours, so the bottom tier is unreachable in practice; it stays as
// the fallthrough so a band edit cannot leave an hour unscored.
func timingScore(local time.Time) int {
	hour := local.Hour()
	switch {
	case (hour >= 6 && hour <= 10) || (hour >= 18 && hour <= 22):
		return 100
	case (hour >= 11 && hour <= 17) || hour >= 23 || hour <= 5:
		return 80
	default:
		return 60
	}
}

// smoothQuality folds a sample into the running quality score by
// exponential smoothing: new = round(old*0.9 + sample*0.1). With samples in
// [0,100] the result stays in [0,100].
func smoothQuality(current, sample int) int {
	return int(math.Round(float64(current)*0.9 + float64(sample)*0.1))
}

// consistencyPercentage is the share of on-time ("normal") entries in the
// trailing window. An empty history counts as fully consistent.
func consistencyPercentage(history []HistoryEntry) int {
	if len(history) == 0 {
		return 100
	}
	recent := history
	if len(recent) > consistencyWindow {
		recent = recent[len(recent)-consistencyWindow:]
	}
	onTime := 0
	for _, h := range recent {
		if h.Type == EntryNormal {
			onTime++
		}
	}
	return int(math.Round(float64(onTime) / float64(len(recent)) * 100))
}
