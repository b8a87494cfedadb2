package streak

import (
	"errors"
	"fmt"
	"time"
)

// RefusalCode categorizes why an operation was refused. All refusals are
// logical/validation failures local to one operation; none are retryable
// faults and none leave the snapshot in a partial state.
type RefusalCode string

const (
	// CodeAlreadyCheckedIn is the idempotency guard: a check-in already
	// landed on the current calendar day. Informational, not an error state.
	CodeAlreadyCheckedIn RefusalCode = "ALREADY_CHECKED_IN"

	// CodeWindowExpired means the combined 26-hour window has passed and
	// no shield is available to repair the break.
	CodeWindowExpired RefusalCode = "WINDOW_EXPIRED"

	// CodeShieldQuotaExhausted means the monthly shield quota is spent.
	CodeShieldQuotaExhausted RefusalCode = "SHIELD_QUOTA_EXHAUSTED"

	// CodeShieldOnCooldown means the most recent shield's 7-day cooldown
	// has not elapsed.
	CodeShieldOnCooldown RefusalCode = "SHIELD_ON_COOLDOWN"

	// CodeShieldWindowExpired means the 48-hour shield usage window after
	// the break has passed.
	CodeShieldWindowExpired RefusalCode = "SHIELD_WINDOW_EXPIRED"

	// CodeRecoveryWindowExpired means a manual recovery request was
	// submitted more than 72 hours after the missed day.
	CodeRecoveryWindowExpired RefusalCode = "RECOVERY_WINDOW_EXPIRED"

	// CodeRecoveryAlreadyProcessed means the request is already terminal.
	CodeRecoveryAlreadyProcessed RefusalCode = "RECOVERY_ALREADY_PROCESSED"
)

// RefusalError is the typed failure for every engine operation. It carries
// enough structure for the caller to render actionable guidance without
// parsing the message.
type RefusalError struct {
	// Code identifies the refusal category.
	Code RefusalCode

	// Message is a human-readable description.
	Message string

	// NextShieldReset is set on SHIELD_QUOTA_EXHAUSTED: the first of next
	// month, when the quota replenishes.
	NextShieldReset time.Time

	// CooldownDaysLeft is set on SHIELD_ON_COOLDOWN: days remaining,
	// ceiling-rounded.
	CooldownDaysLeft int
}

// Error implements the error interface.
func (e *RefusalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the refusal code from an error, unwrapping as needed.
// Returns "" for nil or non-refusal errors.
func CodeOf(err error) RefusalCode {
	var re *RefusalError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsAlreadyCheckedIn reports whether err is the same-day idempotency guard.
func IsAlreadyCheckedIn(err error) bool {
	return CodeOf(err) == CodeAlreadyCheckedIn
}

// IsWindowExpired reports whether err is an expired check-in window.
func IsWindowExpired(err error) bool {
	return CodeOf(err) == CodeWindowExpired
}

// IsShieldRefusal reports whether err is one of the three shield refusals.
func IsShieldRefusal(err error) bool {
	switch CodeOf(err) {
	case CodeShieldQuotaExhausted, CodeShieldOnCooldown, CodeShieldWindowExpired:
		return true
	}
	return false
}
