package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/streakd/streakd/internal/store"
	"github.com/streakd/streakd/internal/streak"
)

// commandContext returns the command's context, falling back to Background
// when the command is run outside Execute (as tests sometimes do).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openStore opens the database from the --db flag.
func openStore(opts *RootOptions) (*store.Store, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// loadSnapshot reads the user's snapshot, translating a missing row into
// guidance to run init first.
func loadSnapshot(ctx context.Context, st *store.Store, opts *RootOptions) (streak.StreakData, error) {
	d, err := st.LoadSnapshot(ctx, opts.User)
	if errors.Is(err, store.ErrNotFound) {
		return streak.StreakData{}, NewExitError(ExitCommandError,
			fmt.Sprintf("no streak found for user %q: run 'streakd init' first", opts.User))
	}
	if err != nil {
		return streak.StreakData{}, WrapExitError(ExitCommandError, "failed to load streak", err)
	}
	return d, nil
}

// reportRefusal renders an engine refusal through the formatter and returns
// the matching ExitError. Non-refusal errors pass through untouched.
func reportRefusal(formatter *OutputFormatter, err error) error {
	var refusal *streak.RefusalError
	if errors.As(err, &refusal) {
		_ = formatter.Error(string(refusal.Code), refusal.Message, nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", refusal.Code, refusal.Message))
	}
	return err
}

// parseDay parses a YYYY-MM-DD flag value in the given location.
func parseDay(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, NewExitError(ExitCommandError,
			fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", value))
	}
	return day, nil
}
