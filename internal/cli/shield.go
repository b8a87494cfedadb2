package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streakd/streakd/internal/streak"
)

// ShieldOptions holds flags for the shield use command.
type ShieldOptions struct {
	*RootOptions
	MissedDate   string
	EvidenceType string
	Description  string
	Ticket       string
}

// NewShieldCommand creates the shield command group.
func NewShieldCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shield",
		Short: "Recovery shield operations",
	}

	cmd.AddCommand(newShieldUseCommand(rootOpts))

	return cmd
}

func newShieldUseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShieldOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "use",
		Short: "Repair a missed day with a recovery shield",
		Long: `Repair a missed calendar day with a recovery shield.

Subject to the monthly quota (3), the 7-day cooldown, and the 48-hour
usage window after the break. Each refusal is reported with its reason.

Example:
  streakd --db ./streakd.db shield use --missed-date 2026-03-09
  streakd --db ./streakd.db shield use --missed-date 2026-03-09 \
    --evidence-type technical_issue --description "app crashed on launch"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShieldUse(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MissedDate, "missed-date", "", "missed calendar day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.EvidenceType, "evidence-type", "", "evidence type (screenshot|bug_report|technical_issue)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "evidence description")
	cmd.Flags().StringVar(&opts.Ticket, "ticket", "", "support ticket id")
	_ = cmd.MarkFlagRequired("missed-date")

	return cmd
}

func runShieldUse(opts *ShieldOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	loc, err := opts.location()
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	missedDay, err := parseDay(opts.MissedDate, loc)
	if err != nil {
		return err
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := loadSnapshot(ctx, st, opts.RootOptions)
	if err != nil {
		return err
	}

	now := opts.now()
	var evidence *streak.ShieldEvidence
	if opts.EvidenceType != "" || opts.Description != "" || opts.Ticket != "" {
		evidence = &streak.ShieldEvidence{
			Type:            streak.EvidenceType(opts.EvidenceType),
			Description:     opts.Description,
			SubmittedAt:     now,
			SupportTicketID: opts.Ticket,
		}
	}

	updated, err := streak.UseShield(data, missedDay, streak.ReasonManual, evidence, now)
	if err != nil {
		return reportRefusal(formatter, err)
	}

	if err := st.SaveSnapshot(ctx, opts.User, updated, now); err != nil {
		return WrapExitError(ExitCommandError, "failed to save streak", err)
	}

	used := streak.ShieldsUsedInMonth(updated, streak.MonthKey(now))
	text := fmt.Sprintf("Shield applied for %s. %d of %d shields used this month.",
		missedDay.Format("2006-01-02"), used, streak.ShieldsPerMonth)
	return formatter.SuccessText(text, updated)
}
