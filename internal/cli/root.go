package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Timezone string // IANA name, empty means the host's local zone
	User     string

	// Clock allows overriding the time source (for testing).
	// If nil, defaults to time.Now.
	Clock func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the streakd CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "streakd",
		Short: "streakd - daily habit streak tracker",
		Long: `A daily habit streak tracker with recovery shields.

Check in once per calendar day inside a 24-hour window (plus a 2-hour
grace period). Missed days can be repaired with a limited quota of
recovery shields, or through an admin-reviewed manual recovery request.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "streakd.db", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Timezone, "timezone", "", "IANA timezone for calendar-day math (default: host local)")
	cmd.PersistentFlags().StringVar(&opts.User, "user", "default", "user whose streak to operate on")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewCheckinCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewShieldCommand(opts))
	cmd.AddCommand(NewAnalyticsCommand(opts))
	cmd.AddCommand(NewRecoveryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// now returns the current instant from the configured clock.
func (o *RootOptions) now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// location resolves the --timezone flag into a *time.Location.
func (o *RootOptions) location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.Timezone, err)
	}
	return loc, nil
}

// formatter builds an OutputFormatter wired to the command's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
