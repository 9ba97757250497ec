package engine

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/calendar"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(calendar.MustNew(calendar.DefaultConfig()), model.DefaultStateMap(), zap.NewNop().Sugar())
}

// june builds an instant on the given June 2025 day in the calendar
// timezone (UTC+3). 2025-06-02 is a Monday.
func june(day, hour, minute int) time.Time {
	return time.Date(2025, time.June, day, hour, minute, 0, 0, time.FixedZone("UTC+3", 3*3600))
}

// tr builds a transition with canonical states.
func tr(from, to model.State, ts time.Time, assignedTo, changedBy string) model.Transition {
	return model.Transition{
		WorkItemID: 1,
		From:       from,
		To:         to,
		Timestamp:  ts,
		AssignedTo: assignedTo,
		ChangedBy:  changedBy,
	}
}
