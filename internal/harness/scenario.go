package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate engine behavior by executing a timeline of operations
// against a deterministic clock and asserting on the trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the RFC3339 instant the clock begins at. The streak is
	// created fresh at this instant.
	Start string `yaml:"start"`

	// Timezone is the IANA zone for calendar-day math. Defaults to UTC.
	Timezone string `yaml:"timezone,omitempty"`

	// Steps is the timeline: clock advances interleaved with operations.
	Steps []Step `yaml:"steps"`

	// Final validates the snapshot after the last step.
	Final *FinalAssertions `yaml:"final,omitempty"`
}

// Step is one timeline entry: either a clock advance or an operation,
// never both.
type Step struct {
	// Advance moves the clock forward, e.g. "30h" or "24h".
	Advance string `yaml:"advance,omitempty"`

	// Op is the operation to invoke: checkin, shield, status, or
	// acknowledge_reset.
	Op string `yaml:"op,omitempty"`

	// MissedDay is the YYYY-MM-DD day a shield repairs (shield op only).
	MissedDay string `yaml:"missed_day,omitempty"`

	// Expect declares the expected outcome. If nil, the operation is
	// expected to succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected step outcome.
type ExpectClause struct {
	// Error is the expected refusal code, e.g. "ALREADY_CHECKED_IN".
	// Empty means the operation must succeed.
	Error string `yaml:"error,omitempty"`

	// State is the expected classification for a status step.
	State string `yaml:"state,omitempty"`
}

// FinalAssertions validates the snapshot after the last step.
// Subset match - only specified fields are validated.
type FinalAssertions struct {
	CurrentStreak *int     `yaml:"current_streak,omitempty"`
	LongestStreak *int     `yaml:"longest_streak,omitempty"`
	TotalCheckIns *int     `yaml:"total_check_ins,omitempty"`
	QualityScore  *int     `yaml:"quality_score,omitempty"`
	ShieldsUsed   *int     `yaml:"shields_used,omitempty"`
	HistoryTypes  []string `yaml:"history_types,omitempty"`
}

// Operation name constants.
const (
	OpCheckin          = "checkin"
	OpShield           = "shield"
	OpStatus           = "status"
	OpAcknowledgeReset = "acknowledge_reset"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Start == "" {
		return fmt.Errorf("start is required")
	}
	if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single timeline entry.
func validateStep(index int, step *Step) error {
	if step.Advance != "" && step.Op != "" {
		return fmt.Errorf("steps[%d]: advance and op are mutually exclusive", index)
	}

	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: invalid advance: %w", index, err)
		}
		if d <= 0 {
			return fmt.Errorf("steps[%d]: advance must be positive", index)
		}
		if step.Expect != nil {
			return fmt.Errorf("steps[%d]: advance takes no expect clause", index)
		}
		return nil
	}

	switch step.Op {
	case OpCheckin, OpStatus, OpAcknowledgeReset:
		if step.MissedDay != "" {
			return fmt.Errorf("steps[%d]: missed_day is only valid for the shield op", index)
		}
	case OpShield:
		if step.MissedDay == "" {
			return fmt.Errorf("steps[%d]: shield requires missed_day", index)
		}
		if _, err := time.Parse("2006-01-02", step.MissedDay); err != nil {
			return fmt.Errorf("steps[%d]: invalid missed_day: %w", index, err)
		}
	case "":
		return fmt.Errorf("steps[%d]: either advance or op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.Expect != nil && step.Expect.State != "" && step.Op != OpStatus {
		return fmt.Errorf("steps[%d]: expect.state is only valid for the status op", index)
	}

	return nil
}
