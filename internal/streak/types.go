package streak

import "time"

// Window and quota constants. These are product-visible numbers: the status
// classifier, shield eligibility, and every refusal message derive from them.
const (
	// CheckInWindowHours is the length of the normal daily check-in window.
	CheckInWindowHours = 24

	// GracePeriodHours extends the window before the streak is broken.
	GracePeriodHours = 2

	// ShieldsPerMonth caps shield activations per calendar month.
	ShieldsPerMonth = 3

	// ShieldCooldownDays is the minimum spacing between shield uses.
	ShieldCooldownDays = 7

	// ShieldUsageWindowHours bounds how long after a break a shield can
	// still repair it, measured from the end of the grace period.
	ShieldUsageWindowHours = 48

	// ManualRecoveryWindowHours bounds how long after a missed day a
	// manual recovery request may be submitted.
	ManualRecoveryWindowHours = 72
)

// EntryType classifies an accepted check-in.
type EntryType string

const (
	EntryNormal         EntryType = "normal"
	EntryShieldRecovery EntryType = "shield_recovery"
	EntryGracePeriod    EntryType = "grace_period"
)

// ShieldReason records why a shield was activated.
type ShieldReason string

const (
	ReasonManual        ShieldReason = "manual"
	ReasonAdminOverride ShieldReason = "admin_override"
)

// EvidenceType categorizes supporting evidence on shields and recovery
// requests.
type EvidenceType string

const (
	EvidenceScreenshot     EvidenceType = "screenshot"
	EvidenceBugReport      EvidenceType = "bug_report"
	EvidenceTechnicalIssue EvidenceType = "technical_issue"
)

// ShieldEvidence is optional supporting material attached to a shield use.
type ShieldEvidence struct {
	Type            EvidenceType `json:"type"`
	Description     string       `json:"description"`
	SubmittedAt     time.Time    `json:"submitted_at"`
	SupportTicketID string       `json:"support_ticket_id,omitempty"`
}

// Shield records a single shield activation. Shields are append-only
// history: they are never edited or removed once recorded.
type Shield struct {
	ID            string          `json:"id"`
	UsedAt        time.Time       `json:"used_at"`
	RecoveredDay  time.Time       `json:"recovered_day"`
	Reason        ShieldReason    `json:"reason"`
	CooldownUntil time.Time       `json:"cooldown_until"`
	Evidence      *ShieldEvidence `json:"evidence,omitempty"`
}

// HistoryEntry is one accepted check-in in the append-only ledger.
//
// Date is the calendar day the entry credits; CheckInTime is the instant the
// operation ran. They differ only for shield recoveries, which credit a past
// day but are stamped when the shield was used.
type HistoryEntry struct {
	Date         time.Time `json:"date"`
	CheckInTime  time.Time `json:"check_in_time"`
	Type         EntryType `json:"type"`
	QualityScore int       `json:"quality_score"`
	TimingScore  int       `json:"timing_score"`
}

// StreakData is the root aggregate. The engine is stateless; callers own
// the snapshot and persist the value returned by each operation.
//
// Invariants maintained by every operation:
//   - LongestStreak >= CurrentStreak
//   - QualityScore and ConsistencyPercentage stay in [0,100]
//   - StreakHistory and StreakShields only ever grow
type StreakData struct {
	CurrentStreak         int                  `json:"current_streak"`
	LongestStreak         int                  `json:"longest_streak"`
	LastCheckIn           *time.Time           `json:"last_check_in,omitempty"`
	StartDate             time.Time            `json:"start_date"`
	TotalCheckIns         int                  `json:"total_check_ins"`
	StreakShields         []Shield             `json:"streak_shields"`
	StreakHistory         []HistoryEntry       `json:"streak_history"`
	QualityScore          int                  `json:"quality_score"`
	ConsistencyPercentage int                  `json:"consistency_percentage"`
	MonthlyShieldResets   map[string]time.Time `json:"monthly_shield_resets"`
}

// New returns a fresh snapshot for a journey starting at startDate.
// Quality and consistency begin at 100 so the first check-in's smoothing
// keeps a perfect score perfect.
func New(startDate time.Time) StreakData {
	return StreakData{
		StartDate:             startDate,
		StreakShields:         []Shield{},
		StreakHistory:         []HistoryEntry{},
		QualityScore:          100,
		ConsistencyPercentage: 100,
		MonthlyShieldResets:   map[string]time.Time{},
	}
}

// clone returns a copy safe to mutate: slices and the reset map are copied
// so appends never alias the input snapshot.
func (d StreakData) clone() StreakData {
	out := d
	out.StreakShields = make([]Shield, len(d.StreakShields), len(d.StreakShields)+1)
	copy(out.StreakShields, d.StreakShields)
	out.StreakHistory = make([]HistoryEntry, len(d.StreakHistory), len(d.StreakHistory)+1)
	copy(out.StreakHistory, d.StreakHistory)
	out.MonthlyShieldResets = make(map[string]time.Time, len(d.MonthlyShieldResets)+1)
	for k, v := range d.MonthlyShieldResets {
		out.MonthlyShieldResets[k] = v
	}
	return out
}

// State classifies a streak at an instant.
type State string

const (
	StateActive   State = "active"
	StateWarning  State = "warning"
	StateCritical State = "critical"
	StateBroken   State = "broken"
)

// Notification identifies the next escalation the caller should surface.
// Empty means none is due.
type Notification string

const (
	NotifyNone     Notification = ""
	NotifyReminder Notification = "reminder"
	NotifyWarning  Notification = "warning"
	NotifyCritical Notification = "critical"
	NotifyRecovery Notification = "recovery"
)

// StreakStatus is the derived, never-persisted view of a snapshot at an
// instant. Callers recompute it on demand (e.g. a once-per-minute poll).
type StreakStatus struct {
	State               State        `json:"status"`
	HoursRemaining      float64      `json:"hours_remaining"`
	CanUseShield        bool         `json:"can_use_shield"`
	ShieldCooldownHours float64      `json:"shield_cooldown_hours,omitempty"`
	MissedCheckInHours  float64      `json:"missed_check_in_hours,omitempty"`
	NextNotification    Notification `json:"next_notification,omitempty"`
}

// MonthPerformance aggregates one calendar month of history.
type MonthPerformance struct {
	Month    string `json:"month"` // YYYY-MM
	CheckIns int    `json:"check_ins"`
	Quality  int    `json:"quality"` // mean quality score, rounded
}

// ShieldUsage is the display-oriented projection of one shield record.
type ShieldUsage struct {
	Date         time.Time `json:"date"`
	Reason       string    `json:"reason"`
	DayRecovered int       `json:"day_recovered"`
}

// StreakAnalytics is the derived aggregate view over a snapshot.
type StreakAnalytics struct {
	CurrentStreak         int                `json:"current_streak"`
	LongestStreak         int                `json:"longest_streak"`
	TotalCheckIns         int                `json:"total_check_ins"`
	ConsistencyPercentage int                `json:"consistency_percentage"`
	QualityScore          int                `json:"quality_score"`
	PerfectDays           int                `json:"perfect_days"`
	GraceDays             int                `json:"grace_days"`
	ShieldDays            int                `json:"shield_days"`
	ShieldsRemaining      int                `json:"shields_remaining"`
	ShieldsUsedThisMonth  int                `json:"shields_used_this_month"`
	NextShieldAvailable   *time.Time         `json:"next_shield_available,omitempty"`
	MonthlyPerformance    []MonthPerformance `json:"monthly_performance"`
	ShieldUsageHistory    []ShieldUsage      `json:"shield_usage_history"`
}

// RecoveryStatus is the lifecycle state of a manual recovery request.
type RecoveryStatus string

const (
	RecoveryPending  RecoveryStatus = "pending"
	RecoveryApproved RecoveryStatus = "approved"
	RecoveryRejected RecoveryStatus = "rejected"
)

// RecoveryEvidence is the user-submitted justification on a recovery request.
type RecoveryEvidence struct {
	Type        EvidenceType `json:"type"`
	Description string       `json:"description"`
	Attachments []string     `json:"attachments,omitempty"`
}

// ManualRecoveryRequest is an independent entity outside StreakData: created
// by the user, transitioned exactly once by an administrative actor.
type ManualRecoveryRequest struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	SubmittedAt time.Time        `json:"submitted_at"`
	MissedDate  time.Time        `json:"missed_date"`
	Evidence    RecoveryEvidence `json:"evidence"`
	Status      RecoveryStatus   `json:"status"`
	AdminNotes  string           `json:"admin_notes,omitempty"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
	ProcessedBy string           `json:"processed_by,omitempty"`
}
