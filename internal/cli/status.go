package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/streakd/streakd/internal/streak"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current streak status",
		Long: `Show the current streak status: window state, hours remaining,
shield eligibility, and milestone progress.

Example:
  streakd --db ./streakd.db status
  streakd --db ./streakd.db status --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}

	return cmd
}

// statusReport is the JSON payload for the status command.
type statusReport struct {
	Streak             streak.StreakData   `json:"streak"`
	Status             streak.StreakStatus `json:"status"`
	NextNotificationAt *time.Time          `json:"next_notification_at,omitempty"`
	NextMilestone      *streak.Milestone   `json:"next_milestone,omitempty"`
	Milestones         []streak.Milestone  `json:"milestones"`
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	loc, err := opts.location()
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := loadSnapshot(ctx, st, opts)
	if err != nil {
		return err
	}

	now := opts.now()
	status := streak.Status(data, now, loc)
	report := statusReport{
		Streak:             data,
		Status:             status,
		NextNotificationAt: streak.NextNotificationTime(data, now),
		NextMilestone:      streak.NextMilestone(data.CurrentStreak),
		Milestones:         streak.Milestones(data.CurrentStreak),
	}

	return formatter.SuccessText(renderStatus(report), report)
}

// renderStatus builds the human-readable status block.
func renderStatus(r statusReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Streak: %d day(s) (longest %d)\n", r.Streak.CurrentStreak, r.Streak.LongestStreak)
	fmt.Fprintf(&b, "State:  %s\n", r.Status.State)

	switch r.Status.State {
	case streak.StateActive, streak.StateWarning, streak.StateCritical:
		fmt.Fprintf(&b, "Time left to check in: %.1fh\n", r.Status.HoursRemaining)
	case streak.StateBroken:
		fmt.Fprintf(&b, "Missed by: %.1fh\n", r.Status.MissedCheckInHours)
		if r.Status.CanUseShield {
			b.WriteString("A recovery shield can repair this break ('streakd shield use').\n")
		} else {
			b.WriteString("No shield available for this break.\n")
		}
	}

	fmt.Fprintf(&b, "Quality: %d  Consistency: %d%%\n", r.Streak.QualityScore, r.Streak.ConsistencyPercentage)

	if r.NextNotificationAt != nil {
		fmt.Fprintf(&b, "Next reminder: %s\n", r.NextNotificationAt.Format("2006-01-02 15:04 MST"))
	}

	if r.NextMilestone != nil {
		fmt.Fprintf(&b, "Next milestone: %s (%d day(s) to go)",
			r.NextMilestone.Title, r.NextMilestone.Days-r.Streak.CurrentStreak)
	} else {
		b.WriteString("All milestones achieved")
	}

	return b.String()
}
