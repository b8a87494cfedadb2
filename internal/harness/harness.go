package harness

import (
	"fmt"
	"time"

	"github.com/streakd/streakd/internal/streak"
	"github.com/streakd/streakd/internal/testutil"
)

// TraceEvent records one executed timeline entry.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	At      string `json:"at"` // RFC3339, UTC
	Op      string `json:"op"`
	Outcome string `json:"outcome"` // "ok" or a refusal code
	State   string `json:"state,omitempty"`
	Streak  int    `json:"streak"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Passed is true when every expectation and final assertion held.
	Passed bool

	// Failures lists every expectation mismatch, in execution order.
	Failures []string

	// Trace records each executed step.
	Trace []TraceEvent

	// Final is the snapshot after the last step.
	Final streak.StreakData
}

// Run executes a scenario against a fresh snapshot and returns the result.
//
// Execution flow:
//  1. Pin a deterministic clock at the start instant
//  2. Create a fresh streak at that instant
//  3. Execute steps, checking each expect clause
//  4. Check final assertions against the resulting snapshot
func Run(scenario *Scenario) (*Result, error) {
	start, err := time.Parse(time.RFC3339, scenario.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	loc := time.UTC
	if scenario.Timezone != "" {
		loc, err = time.LoadLocation(scenario.Timezone)
		if err != nil {
			return nil, fmt.Errorf("timezone: %w", err)
		}
	}

	clock := testutil.NewClock(start)
	data := streak.New(start)
	result := &Result{}

	for i, step := range scenario.Steps {
		if step.Advance != "" {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
			at := clock.Advance(d)
			result.record(TraceEvent{
				At:      at.UTC().Format(time.RFC3339),
				Op:      "advance",
				Outcome: "ok",
				Streak:  data.CurrentStreak,
			})
			continue
		}

		data, err = executeOp(&step, data, clock.Now(), loc, result)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		checkExpectation(i, &step, result)
	}

	result.Final = data
	checkFinal(scenario.Final, data, result)
	result.Passed = len(result.Failures) == 0
	return result, nil
}

// executeOp runs one operation, appends its trace event, and returns the
// snapshot to carry forward (unchanged when the operation was refused).
func executeOp(step *Step, data streak.StreakData, now time.Time, loc *time.Location, result *Result) (streak.StreakData, error) {
	event := TraceEvent{
		At: now.UTC().Format(time.RFC3339),
		Op: step.Op,
	}

	var opErr error
	switch step.Op {
	case OpCheckin:
		var out streak.StreakData
		out, opErr = streak.CheckIn(data, now, loc)
		if opErr == nil {
			data = out
		}

	case OpShield:
		missedDay, err := time.ParseInLocation("2006-01-02", step.MissedDay, loc)
		if err != nil {
			return data, fmt.Errorf("missed_day: %w", err)
		}
		var out streak.StreakData
		out, opErr = streak.UseShield(data, missedDay, streak.ReasonManual, nil, now)
		if opErr == nil {
			data = out
		}

	case OpStatus:
		st := streak.Status(data, now, loc)
		event.State = string(st.State)

	case OpAcknowledgeReset:
		data, _ = streak.AcknowledgeMonthlyReset(data, now)

	default:
		return data, fmt.Errorf("unknown op %q", step.Op)
	}

	event.Outcome = outcomeOf(opErr)
	event.Streak = data.CurrentStreak
	result.record(event)
	return data, nil
}

// outcomeOf maps an operation error to its trace outcome.
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if code := streak.CodeOf(err); code != "" {
		return string(code)
	}
	return err.Error()
}

// checkExpectation compares the just-recorded event against the step's
// expect clause.
func checkExpectation(index int, step *Step, result *Result) {
	event := result.Trace[len(result.Trace)-1]

	expectedOutcome := "ok"
	if step.Expect != nil && step.Expect.Error != "" {
		expectedOutcome = step.Expect.Error
	}
	if event.Outcome != expectedOutcome {
		result.fail("steps[%d] (%s): expected outcome %q, got %q",
			index, step.Op, expectedOutcome, event.Outcome)
	}

	if step.Expect != nil && step.Expect.State != "" && event.State != step.Expect.State {
		result.fail("steps[%d] (%s): expected state %q, got %q",
			index, step.Op, step.Expect.State, event.State)
	}
}

// checkFinal validates the final snapshot assertions.
func checkFinal(final *FinalAssertions, data streak.StreakData, result *Result) {
	if final == nil {
		return
	}

	if final.CurrentStreak != nil && data.CurrentStreak != *final.CurrentStreak {
		result.fail("final: expected current_streak %d, got %d", *final.CurrentStreak, data.CurrentStreak)
	}
	if final.LongestStreak != nil && data.LongestStreak != *final.LongestStreak {
		result.fail("final: expected longest_streak %d, got %d", *final.LongestStreak, data.LongestStreak)
	}
	if final.TotalCheckIns != nil && data.TotalCheckIns != *final.TotalCheckIns {
		result.fail("final: expected total_check_ins %d, got %d", *final.TotalCheckIns, data.TotalCheckIns)
	}
	if final.QualityScore != nil && data.QualityScore != *final.QualityScore {
		result.fail("final: expected quality_score %d, got %d", *final.QualityScore, data.QualityScore)
	}
	if final.ShieldsUsed != nil && len(data.StreakShields) != *final.ShieldsUsed {
		result.fail("final: expected shields_used %d, got %d", *final.ShieldsUsed, len(data.StreakShields))
	}

	if final.HistoryTypes != nil {
		got := make([]string, len(data.StreakHistory))
		for i, e := range data.StreakHistory {
			got[i] = string(e.Type)
		}
		if len(got) != len(final.HistoryTypes) {
			result.fail("final: expected %d history entries, got %d", len(final.HistoryTypes), len(got))
			return
		}
		for i := range got {
			if got[i] != final.HistoryTypes[i] {
				result.fail("final: history_types[%d]: expected %q, got %q", i, final.HistoryTypes[i], got[i])
			}
		}
	}
}

// record appends a trace event with the next sequence number.
func (r *Result) record(event TraceEvent) {
	event.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, event)
}

// fail appends a formatted failure.
func (r *Result) fail(format string, args ...interface{}) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}
