package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streakd/streakd/internal/streak"
)

// RecoveryRequestOptions holds flags for the recovery request command.
type RecoveryRequestOptions struct {
	*RootOptions
	MissedDate   string
	EvidenceType string
	Description  string
	Attachments  []string
}

// RecoveryProcessOptions holds flags for the approve and reject commands.
type RecoveryProcessOptions struct {
	*RootOptions
	Admin string
	Notes string
}

// NewRecoveryCommand creates the recovery command group.
func NewRecoveryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Manual recovery request operations",
		Long: `Manage manual recovery requests.

When a break cannot be repaired with a shield (quota spent, cooldown
active), a user may submit a request with evidence within 72 hours of
the missed day. An admin approves or rejects it exactly once; approval
applies an admin-override shield to the user's streak.`,
	}

	cmd.AddCommand(newRecoveryRequestCommand(rootOpts))
	cmd.AddCommand(newRecoveryApproveCommand(rootOpts))
	cmd.AddCommand(newRecoveryRejectCommand(rootOpts))
	cmd.AddCommand(newRecoveryListCommand(rootOpts))

	return cmd
}

func newRecoveryRequestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecoveryRequestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Submit a manual recovery request",
		Long: `Submit a manual recovery request for a missed day.

Refused when more than 72 hours have passed since the missed day.

Example:
  streakd --db ./streakd.db recovery request --missed-date 2026-03-09 \
    --evidence-type bug_report --description "check-in button did nothing"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecoveryRequest(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MissedDate, "missed-date", "", "missed calendar day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.EvidenceType, "evidence-type", string(streak.EvidenceBugReport), "evidence type (screenshot|bug_report|technical_issue)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "evidence description (required)")
	cmd.Flags().StringSliceVar(&opts.Attachments, "attachment", nil, "evidence attachment reference (repeatable)")
	_ = cmd.MarkFlagRequired("missed-date")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func runRecoveryRequest(opts *RecoveryRequestOptions, cmd *cobra.Command) error {
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

	evidence := streak.RecoveryEvidence{
		Type:        streak.EvidenceType(opts.EvidenceType),
		Description: opts.Description,
		Attachments: opts.Attachments,
	}
	req, err := streak.NewRecoveryRequest(opts.User, missedDay, evidence, opts.now())
	if err != nil {
		return reportRefusal(formatter, err)
	}

	if err := st.SaveRecoveryRequest(ctx, req); err != nil {
		return WrapExitError(ExitCommandError, "failed to save recovery request", err)
	}

	return formatter.SuccessText(
		fmt.Sprintf("Recovery request %s submitted for %s (pending review).",
			req.ID, missedDay.Format("2006-01-02")),
		req,
	)
}

func newRecoveryApproveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecoveryProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "approve <request-id>",
		Short: "Approve a pending recovery request",
		Long: `Approve a pending recovery request and apply an admin-override
shield to the requester's streak.

Example:
  streakd --db ./streakd.db recovery approve 2f1c... --admin tania --notes "verified crash report"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecoveryProcess(opts, args[0], true, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Admin, "admin", "", "processing admin id (required)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "admin notes")
	_ = cmd.MarkFlagRequired("admin")

	return cmd
}

func newRecoveryRejectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecoveryProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "reject <request-id>",
		Short:         "Reject a pending recovery request",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecoveryProcess(opts, args[0], false, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Admin, "admin", "", "processing admin id (required)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "admin notes")
	_ = cmd.MarkFlagRequired("admin")

	return cmd
}

func runRecoveryProcess(opts *RecoveryProcessOptions, requestID string, approved bool, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	req, err := st.GetRecoveryRequest(ctx, requestID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load recovery request", err)
	}

	now := opts.now()
	processed, err := streak.ProcessRecoveryRequest(req, approved, opts.Admin, opts.Notes, now)
	if err != nil {
		return reportRefusal(formatter, err)
	}

	if err := st.SaveRecoveryRequest(ctx, processed); err != nil {
		return WrapExitError(ExitCommandError, "failed to save recovery request", err)
	}

	if !approved {
		return formatter.SuccessText(
			fmt.Sprintf("Recovery request %s rejected.", processed.ID), processed)
	}

	// Approval applies an admin-override shield to the requester's streak.
	// The override skips quota, cooldown, and usage-window gates: the admin
	// already judged the evidence, and the request window (72h) bounds abuse.
	data, err := st.LoadSnapshot(ctx, processed.UserID)
	if err != nil {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("request approved but no streak found for user %q", processed.UserID), err)
	}

	evidence := &streak.ShieldEvidence{
		Type:        processed.Evidence.Type,
		Description: processed.Evidence.Description,
		SubmittedAt: processed.SubmittedAt,
	}
	updated := streak.AdminOverrideShield(data, processed.MissedDate, evidence, now)
	if err := st.SaveSnapshot(ctx, processed.UserID, updated, now); err != nil {
		return WrapExitError(ExitCommandError, "failed to save streak", err)
	}

	return formatter.SuccessText(
		fmt.Sprintf("Recovery request %s approved; shield applied to user %q for %s.",
			processed.ID, processed.UserID, processed.MissedDate.Format("2006-01-02")),
		processed,
	)
}

func newRecoveryListCommand(rootOpts *RootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List recovery requests",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecoveryList(rootOpts, status, cmd)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending|approved|rejected)")

	return cmd
}

func runRecoveryList(opts *RootOptions, status string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	switch status {
	case "", string(streak.RecoveryPending), string(streak.RecoveryApproved), string(streak.RecoveryRejected):
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid status %q", status))
	}

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	reqs, err := st.ListRecoveryRequests(ctx, streak.RecoveryStatus(status))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list recovery requests", err)
	}

	if len(reqs) == 0 {
		return formatter.SuccessText("No recovery requests.", reqs)
	}

	var b strings.Builder
	for i, r := range reqs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %s  user=%s  missed=%s  submitted=%s",
			r.ID, r.Status, r.UserID,
			r.MissedDate.Format("2006-01-02"),
			r.SubmittedAt.Format("2006-01-02 15:04"))
	}
	return formatter.SuccessText(b.String(), reqs)
}
