package model

import "time"

// ReasonStillActive marks an active period left open at end of history.
const ReasonStillActive = "still active"

// DevCycle is one active-development period of a work item.
type DevCycle struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// WorkingHours is the calendar-normalized duration of the period.
	WorkingHours float64 `json:"working_hours"`
	// RawHours is the wall-clock duration of the period.
	RawHours float64 `json:"raw_hours"`
	// Developer is the assignee at the moment the period closed.
	Developer string `json:"developer"`
	// Included reports whether the period counts toward totals. Periods
	// still open at end of history are excluded.
	Included bool `json:"included"`
	// Reason explains exclusion ("still active") when Included is false.
	Reason string `json:"reason,omitempty"`
}

// DevTotals accumulates development time for one developer on one item.
type DevTotals struct {
	WorkingHours float64 `json:"working_hours"`
	RawHours     float64 `json:"raw_hours"`
	Cycles       int     `json:"cycles"`
}

// DevelopmentResult is the output of the development-time calculator for
// one work item.
type DevelopmentResult struct {
	TotalWorkingHours float64
	TotalRawHours     float64
	Cycles            []DevCycle
	PerDeveloper      map[string]DevTotals
	// StoppedEarly reports that processing stopped at the first entry into
	// acceptance testing.
	StoppedEarly bool
}
