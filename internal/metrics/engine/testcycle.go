package engine

import "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"

// acceptanceNote is the precomputed lookahead for one transition into the
// acceptance state: whether the remaining history re-enters the
// environment's in-testing state before hitting a terminal state, and by
// which tester.
type acceptanceNote struct {
	hasNextEntry  bool
	nextTester    string
	terminalFirst bool
	terminalState model.State
}

// annotateAcceptance computes the acceptance lookahead as a pure pre-pass,
// keyed by transition index. The main fold never scans forward itself.
func annotateAcceptance(transitions []model.Transition, env model.Environment) map[int]acceptanceNote {
	notes := make(map[int]acceptanceNote)
	for i, t := range transitions {
		if t.To != env.Acceptance {
			continue
		}
		var note acceptanceNote
		for j := i + 1; j < len(transitions); j++ {
			if transitions[j].To == env.InTesting {
				note.hasNextEntry = true
				note.nextTester = testerOf(transitions[j])
				break
			}
			if env.IsTerminal(transitions[j].To) {
				note.terminalFirst = true
				note.terminalState = transitions[j].To
				break
			}
		}
		notes[i] = note
	}
	return notes
}

// testerOf resolves the tester identity of a transition: the person who
// made the change, else the assignee, else Unknown.
func testerOf(t model.Transition) string {
	if t.ChangedBy != "" {
		return t.ChangedBy
	}
	if t.AssignedTo != "" {
		return t.AssignedTo
	}
	return model.UnknownTester
}

// cycleState is the testing-cycle fold state: at most one cycle is open,
// with at most one period open inside it. pendingAcceptance marks a cycle
// whose item sits in the acceptance state awaiting a verdict.
type cycleState struct {
	open              bool
	cycle             model.TestingCycle
	periodOpen        bool
	pendingAcceptance bool
	closed            []model.TestingCycle
}

// TestingCycles reconstructs a work item's testing cycles for one
// environment.
//
// A cycle groups consecutive in-testing periods of the same tester,
// merging across an intervening acceptance hop when the item bounces back
// to that tester. A cycle closed by a terminal transition or a tester
// handoff counts as exactly one iteration; a cycle still open at end of
// history counts as none and its hours are excluded from totals.
func (e *Engine) TestingCycles(transitions []model.Transition, env model.Environment) model.TestingResult {
	notes := annotateAcceptance(transitions, env)

	var st cycleState
	for i, t := range transitions {
		st = e.cycleStep(st, t, notes[i], env)
	}
	if st.open {
		st = closeCycle(st, false, model.CloseReasonNotCompleted)
	}

	result := model.TestingResult{
		Environment: env.Name,
		Cycles:      st.closed,
		PerTester:   make(map[string]model.TesterTotals),
	}
	for _, c := range st.closed {
		totals := result.PerTester[c.Tester]
		totals.Cycles++
		if c.IterationCounted {
			totals.Iterations++
			totals.WorkingHours += c.WorkingHours
			result.TotalWorkingHours += c.WorkingHours
		}
		result.PerTester[c.Tester] = totals
	}
	return result
}

func (e *Engine) cycleStep(st cycleState, t model.Transition, note acceptanceNote, env model.Environment) cycleState {
	switch {
	case t.To == env.InTesting:
		return e.enterTesting(st, t, env)

	case t.From == env.InTesting:
		return e.leaveTesting(st, t, note, env)

	case st.open && st.pendingAcceptance && t.From == env.Acceptance && env.IsTerminal(t.To):
		return closeCycle(st, true, string(t.To))
	}

	return st
}

// enterTesting opens a period for the incoming tester. When the open cycle
// is pending acceptance and belongs to the same tester, the period merges
// into it: the item bounced back to its tester, which is still one round
// of testing. Any other open cycle is closed as a handoff first.
func (e *Engine) enterTesting(st cycleState, t model.Transition, env model.Environment) cycleState {
	tester := testerOf(t)

	if st.open && st.pendingAcceptance && st.cycle.Tester == tester {
		st.cycle.Periods = append(st.cycle.Periods, model.TestingPeriod{Start: t.Timestamp})
		st.periodOpen = true
		st.pendingAcceptance = false
		return st
	}

	if st.open {
		st = closeCycle(st, true, model.CloseReasonHandoff)
	}

	st.open = true
	st.cycle = model.TestingCycle{
		Environment: env.Name,
		Tester:      tester,
		Periods:     []model.TestingPeriod{{Start: t.Timestamp}},
	}
	st.periodOpen = true
	st.pendingAcceptance = false
	return st
}

// leaveTesting closes the open period, then decides the cycle's fate from
// the destination state: acceptance keeps the cycle open pending the
// lookahead verdict, a terminal state closes it, anything else leaves it
// open with no period running.
func (e *Engine) leaveTesting(st cycleState, t model.Transition, note acceptanceNote, env model.Environment) cycleState {
	if st.open && st.periodOpen {
		st = e.closePeriod(st, t)
	}

	switch {
	case t.To == env.Acceptance:
		if !st.open {
			return st
		}
		st.pendingAcceptance = true
		if note.terminalFirst {
			return closeCycle(st, true, string(note.terminalState))
		}
		if note.hasNextEntry && note.nextTester != st.cycle.Tester {
			return closeCycle(st, true, model.CloseReasonHandoff)
		}

	case env.IsTerminal(t.To):
		if st.open {
			return closeCycle(st, true, string(t.To))
		}
	}

	return st
}

// closePeriod ends the running period at the transition timestamp and adds
// its working hours to the cycle.
func (e *Engine) closePeriod(st cycleState, t model.Transition) cycleState {
	last := len(st.cycle.Periods) - 1
	period := &st.cycle.Periods[last]
	period.End = t.Timestamp
	period.WorkingHours = e.cal.WorkingHours(period.Start, t.Timestamp)
	st.cycle.WorkingHours += period.WorkingHours
	st.periodOpen = false
	return st
}

func closeCycle(st cycleState, counted bool, reason string) cycleState {
	st.cycle.IterationCounted = counted
	st.cycle.CloseReason = reason
	st.closed = append(st.closed, st.cycle)
	st.open = false
	st.periodOpen = false
	st.pendingAcceptance = false
	st.cycle = model.TestingCycle{}
	return st
}
