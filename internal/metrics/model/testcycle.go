package model

import "time"

// Testing-cycle close reasons that are not terminal state names.
const (
	// CloseReasonHandoff marks a cycle closed because a different tester
	// took over.
	CloseReasonHandoff = "handoff"
	// CloseReasonNotCompleted marks a cycle still open at end of history.
	CloseReasonNotCompleted = "not completed"
)

// TestingPeriod is one contiguous span an item spent in the in-testing
// state.
type TestingPeriod struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	WorkingHours float64   `json:"working_hours"`
}

// TestingCycle is one merged unit of testing effort: one or more periods
// by the same tester, possibly separated by an acceptance hop, counting as
// a single iteration when closed.
type TestingCycle struct {
	Environment string          `json:"environment"`
	Tester      string          `json:"tester"`
	Periods     []TestingPeriod `json:"periods"`
	// WorkingHours is the sum of the periods' working hours.
	WorkingHours float64 `json:"working_hours"`
	// IterationCounted reports whether the cycle closed via a terminal
	// transition or handoff. Cycles open at end of history do not count.
	IterationCounted bool `json:"iteration_counted"`
	// CloseReason is the terminal state name, "handoff", or
	// "not completed".
	CloseReason string `json:"close_reason"`
}

// TesterTotals accumulates testing effort for one tester on one item in
// one environment. Only iteration-counted cycles contribute.
type TesterTotals struct {
	WorkingHours float64 `json:"working_hours"`
	Cycles       int     `json:"cycles"`
	Iterations   int     `json:"iterations"`
}

// TestingResult is the output of the testing-cycle calculator for one
// work item in one environment.
type TestingResult struct {
	Environment string
	// TotalWorkingHours sums hours over iteration-counted cycles.
	TotalWorkingHours float64
	Cycles            []TestingCycle
	PerTester         map[string]TesterTotals
}
