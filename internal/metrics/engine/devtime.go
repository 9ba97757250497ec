package engine

import (
	"time"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

// devState is the development-time fold state: either no period is open,
// or one period is open since openStart. It is threaded by value through
// the fold, one step per transition.
type devState struct {
	open      bool
	openStart time.Time
	stopped   bool
	result    model.DevelopmentResult
}

// DevelopmentTime sums a work item's active-development periods.
//
// A period opens on every transition into Active (re-entering resets the
// start), closes on Active -> CodeReview, and closes on the first entry
// into DevAcceptanceTesting regardless of source. That first acceptance
// entry also stops processing: development time is bounded above by it.
// Attribution always uses the assignee recorded on the closing transition.
func (e *Engine) DevelopmentTime(transitions []model.Transition) model.DevelopmentResult {
	st := devState{
		result: model.DevelopmentResult{
			PerDeveloper: make(map[string]model.DevTotals),
		},
	}

	for _, t := range transitions {
		st = e.devStep(st, t)
		if st.stopped {
			st.result.StoppedEarly = true
			break
		}
	}

	if st.open {
		st.result.Cycles = append(st.result.Cycles, model.DevCycle{
			Start:    st.openStart,
			Included: false,
			Reason:   model.ReasonStillActive,
		})
	}

	return st.result
}

func (e *Engine) devStep(st devState, t model.Transition) devState {
	switch {
	case t.To == model.StateActive:
		st.open = true
		st.openStart = t.Timestamp

	case t.From == model.StateActive && t.To == model.StateCodeReview:
		if st.open {
			st = e.closeDevPeriod(st, t)
		}

	case t.To == model.StateDevAcceptanceTesting:
		if st.open {
			st = e.closeDevPeriod(st, t)
		}
		st.stopped = true
	}

	return st
}

// closeDevPeriod closes the open active period at the given transition and
// credits it to the assignee recorded on that transition.
func (e *Engine) closeDevPeriod(st devState, t model.Transition) devState {
	developer := t.AssignedTo
	if developer == "" {
		developer = model.UnassignedDeveloper
	}

	working := e.cal.WorkingHours(st.openStart, t.Timestamp)
	raw := e.cal.RawHours(st.openStart, t.Timestamp)

	st.result.Cycles = append(st.result.Cycles, model.DevCycle{
		Start:        st.openStart,
		End:          t.Timestamp,
		WorkingHours: working,
		RawHours:     raw,
		Developer:    developer,
		Included:     true,
	})
	st.result.TotalWorkingHours += working
	st.result.TotalRawHours += raw

	totals := st.result.PerDeveloper[developer]
	totals.WorkingHours += working
	totals.RawHours += raw
	totals.Cycles++
	st.result.PerDeveloper[developer] = totals

	st.open = false
	return st
}
