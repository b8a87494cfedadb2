package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streakd/streakd/internal/streak"
)

// NewCheckinCommand creates the checkin command.
func NewCheckinCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Record today's check-in",
		Long: `Record a check-in for the current calendar day.

Refused when a check-in already landed today, or when the window has
expired with no shield available (the streak is then broken).

Example:
  streakd --db ./streakd.db checkin
  streakd --db ./streakd.db --timezone Asia/Tokyo checkin`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckin(rootOpts, cmd)
		},
	}

	return cmd
}

func runCheckin(opts *RootOptions, cmd *cobra.Command) error {
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
	updated, err := streak.CheckIn(data, now, loc)
	if err != nil {
		return reportRefusal(formatter, err)
	}

	if err := st.SaveSnapshot(ctx, opts.User, updated, now); err != nil {
		return WrapExitError(ExitCommandError, "failed to save streak", err)
	}

	entry := updated.StreakHistory[len(updated.StreakHistory)-1]
	text := fmt.Sprintf("Checked in. Streak: %d day(s), entry type %s, quality %d.",
		updated.CurrentStreak, entry.Type, entry.QualityScore)
	if entry.Type == streak.EntryShieldRecovery {
		text = fmt.Sprintf("Checked in after recovery. Streak: %d day(s).", updated.CurrentStreak)
	}
	return formatter.SuccessText(text, updated)
}
