// Package snapshot is the persisted-state boundary for the streak engine.
//
// The engine works on in-memory StreakData values; durable storage and
// interchange use the JSON form produced here. Encoding is canonical:
// timestamps are RFC 3339 in UTC, free-text strings are NFC normalized,
// and field order is fixed, so equal states encode to identical bytes.
// That property is what golden tests and content comparison rely on -
// never persist a snapshot through any other serialization.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/streakd/streakd/internal/streak"
)

// timeLayout is the wire format for every timestamp field.
const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := encodeTime(*t)
	return &s
}

func decodeTime(field, s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot: invalid %s timestamp %q: %w", field, s, err)
	}
	return t, nil
}

func decodeTimePtr(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := decodeTime(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Wire DTOs. Timestamps travel as strings; everything else mirrors the
// engine types field for field.

type shieldEvidenceDTO struct {
	Type            string `json:"type"`
	Description     string `json:"description"`
	SubmittedAt     string `json:"submitted_at"`
	SupportTicketID string `json:"support_ticket_id,omitempty"`
}

type shieldDTO struct {
	ID            string             `json:"id"`
	UsedAt        string             `json:"used_at"`
	RecoveredDay  string             `json:"recovered_day"`
	Reason        string             `json:"reason"`
	CooldownUntil string             `json:"cooldown_until"`
	Evidence      *shieldEvidenceDTO `json:"evidence,omitempty"`
}

type historyEntryDTO struct {
	Date         string `json:"date"`
	CheckInTime  string `json:"check_in_time"`
	Type         string `json:"type"`
	QualityScore int    `json:"quality_score"`
	TimingScore  int    `json:"timing_score"`
}

type streakDataDTO struct {
	CurrentStreak         int               `json:"current_streak"`
	LongestStreak         int               `json:"longest_streak"`
	LastCheckIn           *string           `json:"last_check_in,omitempty"`
	StartDate             string            `json:"start_date"`
	TotalCheckIns         int               `json:"total_check_ins"`
	StreakShields         []shieldDTO       `json:"streak_shields"`
	StreakHistory         []historyEntryDTO `json:"streak_history"`
	QualityScore          int               `json:"quality_score"`
	ConsistencyPercentage int               `json:"consistency_percentage"`
	MonthlyShieldResets   map[string]string `json:"monthly_shield_resets"`
}

type recoveryEvidenceDTO struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Attachments []string `json:"attachments,omitempty"`
}

type recoveryRequestDTO struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	SubmittedAt string              `json:"submitted_at"`
	MissedDate  string              `json:"missed_date"`
	Evidence    recoveryEvidenceDTO `json:"evidence"`
	Status      string              `json:"status"`
	AdminNotes  string              `json:"admin_notes,omitempty"`
	ProcessedAt *string             `json:"processed_at,omitempty"`
	ProcessedBy string              `json:"processed_by,omitempty"`
}

// EncodeStreakData serializes a snapshot to canonical JSON.
func EncodeStreakData(d streak.StreakData) ([]byte, error) {
	dto := streakDataDTO{
		CurrentStreak:         d.CurrentStreak,
		LongestStreak:         d.LongestStreak,
		LastCheckIn:           encodeTimePtr(d.LastCheckIn),
		StartDate:             encodeTime(d.StartDate),
		TotalCheckIns:         d.TotalCheckIns,
		StreakShields:         make([]shieldDTO, 0, len(d.StreakShields)),
		StreakHistory:         make([]historyEntryDTO, 0, len(d.StreakHistory)),
		QualityScore:          d.QualityScore,
		ConsistencyPercentage: d.ConsistencyPercentage,
		MonthlyShieldResets:   make(map[string]string, len(d.MonthlyShieldResets)),
	}

	for _, s := range d.StreakShields {
		sd := shieldDTO{
			ID:            s.ID,
			UsedAt:        encodeTime(s.UsedAt),
			RecoveredDay:  encodeTime(s.RecoveredDay),
			Reason:        string(s.Reason),
			CooldownUntil: encodeTime(s.CooldownUntil),
		}
		if s.Evidence != nil {
			sd.Evidence = &shieldEvidenceDTO{
				Type:            string(s.Evidence.Type),
				Description:     norm.NFC.String(s.Evidence.Description),
				SubmittedAt:     encodeTime(s.Evidence.SubmittedAt),
				SupportTicketID: norm.NFC.String(s.Evidence.SupportTicketID),
			}
		}
		dto.StreakShields = append(dto.StreakShields, sd)
	}

	for _, h := range d.StreakHistory {
		dto.StreakHistory = append(dto.StreakHistory, historyEntryDTO{
			Date:         encodeTime(h.Date),
			CheckInTime:  encodeTime(h.CheckInTime),
			Type:         string(h.Type),
			QualityScore: h.QualityScore,
			TimingScore:  h.TimingScore,
		})
	}

	for k, v := range d.MonthlyShieldResets {
		dto.MonthlyShieldResets[k] = encodeTime(v)
	}

	// encoding/json writes struct fields in declaration order and map keys
	// sorted, so the output is byte-stable for equal states.
	return json.Marshal(dto)
}

// DecodeStreakData rehydrates a snapshot from its JSON form. Sequences and
// the reset map come back non-nil so a decoded snapshot behaves exactly
// like one built through the engine.
func DecodeStreakData(data []byte) (streak.StreakData, error) {
	var dto streakDataDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return streak.StreakData{}, fmt.Errorf("snapshot: decode streak data: %w", err)
	}

	startDate, err := decodeTime("start_date", dto.StartDate)
	if err != nil {
		return streak.StreakData{}, err
	}
	lastCheckIn, err := decodeTimePtr("last_check_in", dto.LastCheckIn)
	if err != nil {
		return streak.StreakData{}, err
	}

	out := streak.StreakData{
		CurrentStreak:         dto.CurrentStreak,
		LongestStreak:         dto.LongestStreak,
		LastCheckIn:           lastCheckIn,
		StartDate:             startDate,
		TotalCheckIns:         dto.TotalCheckIns,
		StreakShields:         make([]streak.Shield, 0, len(dto.StreakShields)),
		StreakHistory:         make([]streak.HistoryEntry, 0, len(dto.StreakHistory)),
		QualityScore:          dto.QualityScore,
		ConsistencyPercentage: dto.ConsistencyPercentage,
		MonthlyShieldResets:   make(map[string]time.Time, len(dto.MonthlyShieldResets)),
	}

	for i, sd := range dto.StreakShields {
		usedAt, err := decodeTime(fmt.Sprintf("streak_shields[%d].used_at", i), sd.UsedAt)
		if err != nil {
			return streak.StreakData{}, err
		}
		recoveredDay, err := decodeTime(fmt.Sprintf("streak_shields[%d].recovered_day", i), sd.RecoveredDay)
		if err != nil {
			return streak.StreakData{}, err
		}
		cooldownUntil, err := decodeTime(fmt.Sprintf("streak_shields[%d].cooldown_until", i), sd.CooldownUntil)
		if err != nil {
			return streak.StreakData{}, err
		}
		s := streak.Shield{
			ID:            sd.ID,
			UsedAt:        usedAt,
			RecoveredDay:  recoveredDay,
			Reason:        streak.ShieldReason(sd.Reason),
			CooldownUntil: cooldownUntil,
		}
		if sd.Evidence != nil {
			submittedAt, err := decodeTime(fmt.Sprintf("streak_shields[%d].evidence.submitted_at", i), sd.Evidence.SubmittedAt)
			if err != nil {
				return streak.StreakData{}, err
			}
			s.Evidence = &streak.ShieldEvidence{
				Type:            streak.EvidenceType(sd.Evidence.Type),
				Description:     sd.Evidence.Description,
				SubmittedAt:     submittedAt,
				SupportTicketID: sd.Evidence.SupportTicketID,
			}
		}
		out.StreakShields = append(out.StreakShields, s)
	}

	for i, hd := range dto.StreakHistory {
		date, err := decodeTime(fmt.Sprintf("streak_history[%d].date", i), hd.Date)
		if err != nil {
			return streak.StreakData{}, err
		}
		checkInTime, err := decodeTime(fmt.Sprintf("streak_history[%d].check_in_time", i), hd.CheckInTime)
		if err != nil {
			return streak.StreakData{}, err
		}
		out.StreakHistory = append(out.StreakHistory, streak.HistoryEntry{
			Date:         date,
			CheckInTime:  checkInTime,
			Type:         streak.EntryType(hd.Type),
			QualityScore: hd.QualityScore,
			TimingScore:  hd.TimingScore,
		})
	}

	for k, v := range dto.MonthlyShieldResets {
		t, err := decodeTime("monthly_shield_resets."+k, v)
		if err != nil {
			return streak.StreakData{}, err
		}
		out.MonthlyShieldResets[k] = t
	}

	return out, nil
}

// EncodeRecoveryRequest serializes a manual recovery request.
func EncodeRecoveryRequest(r streak.ManualRecoveryRequest) ([]byte, error) {
	dto := recoveryRequestDTO{
		ID:          r.ID,
		UserID:      norm.NFC.String(r.UserID),
		SubmittedAt: encodeTime(r.SubmittedAt),
		MissedDate:  encodeTime(r.MissedDate),
		Evidence: recoveryEvidenceDTO{
			Type:        string(r.Evidence.Type),
			Description: norm.NFC.String(r.Evidence.Description),
			Attachments: r.Evidence.Attachments,
		},
		Status:      string(r.Status),
		AdminNotes:  norm.NFC.String(r.AdminNotes),
		ProcessedAt: encodeTimePtr(r.ProcessedAt),
		ProcessedBy: norm.NFC.String(r.ProcessedBy),
	}
	return json.Marshal(dto)
}

// DecodeRecoveryRequest rehydrates a manual recovery request.
func DecodeRecoveryRequest(data []byte) (streak.ManualRecoveryRequest, error) {
	var dto recoveryRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return streak.ManualRecoveryRequest{}, fmt.Errorf("snapshot: decode recovery request: %w", err)
	}

	submittedAt, err := decodeTime("submitted_at", dto.SubmittedAt)
	if err != nil {
		return streak.ManualRecoveryRequest{}, err
	}
	missedDate, err := decodeTime("missed_date", dto.MissedDate)
	if err != nil {
		return streak.ManualRecoveryRequest{}, err
	}
	processedAt, err := decodeTimePtr("processed_at", dto.ProcessedAt)
	if err != nil {
		return streak.ManualRecoveryRequest{}, err
	}

	return streak.ManualRecoveryRequest{
		ID:          dto.ID,
		UserID:      dto.UserID,
		SubmittedAt: submittedAt,
		MissedDate:  missedDate,
		Evidence: streak.RecoveryEvidence{
			Type:        streak.EvidenceType(dto.Evidence.Type),
			Description: dto.Evidence.Description,
			Attachments: dto.Evidence.Attachments,
		},
		Status:      streak.RecoveryStatus(dto.Status),
		AdminNotes:  dto.AdminNotes,
		ProcessedAt: processedAt,
		ProcessedBy: dto.ProcessedBy,
	}, nil
}
