package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streakd/streakd/internal/streak"
)

// NewAnalyticsCommand creates the analytics command.
func NewAnalyticsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show streak analytics",
		Long: `Show derived analytics over the streak history: day-type counts,
shield quota figures, and per-month performance for the last 12 months.

Example:
  streakd --db ./streakd.db analytics
  streakd --db ./streakd.db analytics --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalytics(rootOpts, cmd)
		},
	}

	return cmd
}

func runAnalytics(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := loadSnapshot(ctx, st, opts)
	if err != nil {
		return err
	}

	a := streak.Analytics(data, opts.now())
	return formatter.SuccessText(renderAnalytics(a), a)
}

// renderAnalytics builds the human-readable analytics block.
func renderAnalytics(a streak.StreakAnalytics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current streak: %d day(s) (longest %d, %d check-ins)\n",
		a.CurrentStreak, a.LongestStreak, a.TotalCheckIns)
	fmt.Fprintf(&b, "Quality: %d  Consistency: %d%%\n", a.QualityScore, a.ConsistencyPercentage)
	fmt.Fprintf(&b, "Days: %d perfect, %d grace, %d shield-recovered\n",
		a.PerfectDays, a.GraceDays, a.ShieldDays)
	fmt.Fprintf(&b, "Shields: %d remaining this month (%d used)\n",
		a.ShieldsRemaining, a.ShieldsUsedThisMonth)
	if a.NextShieldAvailable != nil {
		fmt.Fprintf(&b, "Next shield available: %s\n", a.NextShieldAvailable.Format("2006-01-02"))
	}

	if len(a.MonthlyPerformance) > 0 {
		b.WriteString("Monthly performance:\n")
		for _, m := range a.MonthlyPerformance {
			fmt.Fprintf(&b, "  %s: %d check-in(s), quality %d\n", m.Month, m.CheckIns, m.Quality)
		}
	}

	if len(a.ShieldUsageHistory) > 0 {
		b.WriteString("Shield usage:\n")
		for _, s := range a.ShieldUsageHistory {
			fmt.Fprintf(&b, "  %s: %s (day %d)\n", s.Date.Format("2006-01-02"), s.Reason, s.DayRecovered)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
