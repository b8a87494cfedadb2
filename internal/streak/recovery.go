package streak

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRecoveryRequest creates a pending manual recovery request for a missed
// day. Refuses with RECOVERY_WINDOW_EXPIRED when the missed day is more
// than 72 hours before now.
func NewRecoveryRequest(userID string, missedDate time.Time, evidence RecoveryEvidence, now time.Time) (ManualRecoveryRequest, error) {
	if now.Sub(missedDate).Hours() > ManualRecoveryWindowHours {
		return ManualRecoveryRequest{}, &RefusalError{
			Code: CodeRecoveryWindowExpired,
			Message: fmt.Sprintf("manual recovery requests must be submitted within %d hours of the missed check-in",
				ManualRecoveryWindowHours),
		}
	}

	return ManualRecoveryRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		SubmittedAt: now,
		MissedDate:  missedDate,
		Evidence:    evidence,
		Status:      RecoveryPending,
	}, nil
}

// ProcessRecoveryRequest transitions a pending request to approved or
// rejected, stamping the processing instant and actor.
//
// The transition is single-shot: a request that is already terminal is
// refused with RECOVERY_ALREADY_PROCESSED rather than silently rewritten.
func ProcessRecoveryRequest(req ManualRecoveryRequest, approved bool, adminID, notes string, now time.Time) (ManualRecoveryRequest, error) {
	if req.Status != RecoveryPending {
		return ManualRecoveryRequest{}, &RefusalError{
			Code:    CodeRecoveryAlreadyProcessed,
			Message: fmt.Sprintf("recovery request %s is already %s", req.ID, req.Status),
		}
	}

	out := req
	if approved {
		out.Status = RecoveryApproved
	} else {
		out.Status = RecoveryRejected
	}
	processed := now
	out.ProcessedAt = &processed
	out.ProcessedBy = adminID
	out.AdminNotes = notes
	return out, nil
}
