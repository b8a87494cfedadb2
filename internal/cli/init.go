package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streakd/streakd/internal/store"
	"github.com/streakd/streakd/internal/streak"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	StartDate string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and a fresh streak",
		Long: `Create the database (if needed) and a fresh streak for the user.

The streak starts with no check-ins; the first 'streakd checkin' begins it.
With --start-date, the journey is backdated and the displayed streak is
seeded with the whole days elapsed since then.

Example:
  streakd --db ./streakd.db init
  streakd --db ./streakd.db --user alice init --start-date 2026-01-15`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.StartDate, "start-date", "", "backdated journey start, YYYY-MM-DD")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	// Refuse to clobber an existing streak.
	if _, err := st.LoadSnapshot(ctx, opts.User); err == nil {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("streak already exists for user %q", opts.User))
	} else if !errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitCommandError, "failed to check existing streak", err)
	}

	now := opts.now()
	start := now
	if opts.StartDate != "" {
		loc, err := opts.location()
		if err != nil {
			return NewExitError(ExitCommandError, err.Error())
		}
		start, err = parseDay(opts.StartDate, loc)
		if err != nil {
			return err
		}
		if start.After(now) {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("start date %s is in the future", opts.StartDate))
		}
	}

	data := streak.New(start)
	if opts.StartDate != "" {
		// Backdated journeys seed the displayed streak, not the ledger.
		data.CurrentStreak = streak.RetroactiveStreak(start, now)
		data.LongestStreak = data.CurrentStreak
	}
	if err := st.SaveSnapshot(ctx, opts.User, data, now); err != nil {
		return WrapExitError(ExitCommandError, "failed to save streak", err)
	}

	return formatter.SuccessText(
		fmt.Sprintf("Initialized streak for user %q (started %s)", opts.User, start.Format("2006-01-02")),
		data,
	)
}
