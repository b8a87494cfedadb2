package streak

import (
	"math"
	"sort"
	"time"
)

// monthlyPerformanceMonths caps the monthly performance series.
const monthlyPerformanceMonths = 12

// Analytics projects the derived aggregate view from a snapshot at an
// instant. Pure and never persisted; now only influences the month-keyed
// shield figures.
func Analytics(d StreakData, now time.Time) StreakAnalytics {
	usedThisMonth := ShieldsUsedInMonth(d, MonthKey(now))
	remaining := ShieldsPerMonth - usedThisMonth
	if remaining < 0 {
		remaining = 0
	}

	// Next availability: an active cooldown wins; otherwise, with the quota
	// spent, the first of next month.
	var nextAvailable *time.Time
	if last := latestShield(d); last != nil {
		cooldownEnd := last.UsedAt.Add(ShieldCooldownDays * 24 * time.Hour)
		if cooldownEnd.After(now) {
			nextAvailable = &cooldownEnd
		}
	}
	if remaining == 0 && nextAvailable == nil {
		reset := firstOfNextMonth(now)
		nextAvailable = &reset
	}

	perfect, grace, shielded := 0, 0, 0
	for _, h := range d.StreakHistory {
		switch {
		case h.Type == EntryNormal && h.QualityScore >= 90:
			perfect++
		case h.Type == EntryGracePeriod:
			grace++
		case h.Type == EntryShieldRecovery:
			shielded++
		}
	}

	usage := make([]ShieldUsage, 0, len(d.StreakShields))
	for _, s := range d.StreakShields {
		reason := "Manual Shield Use"
		if s.Reason == ReasonAdminOverride {
			reason = "Technical Issue (Admin Recovery)"
		}
		usage = append(usage, ShieldUsage{
			Date:         s.UsedAt,
			Reason:       reason,
			DayRecovered: s.RecoveredDay.Day(),
		})
	}

	return StreakAnalytics{
		CurrentStreak:         d.CurrentStreak,
		LongestStreak:         d.LongestStreak,
		TotalCheckIns:         d.TotalCheckIns,
		ConsistencyPercentage: d.ConsistencyPercentage,
		QualityScore:          d.QualityScore,
		PerfectDays:           perfect,
		GraceDays:             grace,
		ShieldDays:            shielded,
		ShieldsRemaining:      remaining,
		ShieldsUsedThisMonth:  usedThisMonth,
		NextShieldAvailable:   nextAvailable,
		MonthlyPerformance:    monthlyPerformance(d.StreakHistory),
		ShieldUsageHistory:    usage,
	}
}

// monthlyPerformance buckets history by month key: check-in count and mean
// quality per month, ascending, truncated to the most recent 12 months.
func monthlyPerformance(history []HistoryEntry) []MonthPerformance {
	type bucket struct {
		checkIns     int
		totalQuality int
	}
	byMonth := map[string]*bucket{}
	for _, h := range history {
		key := MonthKey(h.Date)
		b := byMonth[key]
		if b == nil {
			b = &bucket{}
			byMonth[key] = b
		}
		b.checkIns++
		b.totalQuality += h.QualityScore
	}

	out := make([]MonthPerformance, 0, len(byMonth))
	for month, b := range byMonth {
		out = append(out, MonthPerformance{
			Month:    month,
			CheckIns: b.checkIns,
			Quality:  int(math.Round(float64(b.totalQuality) / float64(b.checkIns))),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > monthlyPerformanceMonths {
		out = out[len(out)-monthlyPerformanceMonths:]
	}
	return out
}
