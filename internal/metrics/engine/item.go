package engine

import "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"

// ProcessItem runs every calculator against one work item's history and
// assembles the result as a single-item report. Batch and chunk totals are
// obtained by merging these reports; averages are derived only at
// finalization, always per distinct task, never per cycle.
func (e *Engine) ProcessItem(item model.ItemHistory) *model.Report {
	transitions := e.ExtractTransitions(item.ID, item.Revisions)

	development := e.DevelopmentTime(transitions)
	returns := e.CountReturns(transitions)
	devTesting := e.TestingCycles(transitions, model.DevEnvironment())
	stgTesting := e.TestingCycles(transitions, model.StgEnvironment())

	r := model.NewReport()
	r.Summary.TotalItems = 1
	if item.Type != "" {
		r.Summary.ItemsByType[item.Type]++
	}
	r.Summary.TotalDevelopmentHours = development.TotalWorkingHours
	r.Summary.TotalDevTestingHours = devTesting.TotalWorkingHours
	r.Summary.TotalStgTestingHours = stgTesting.TotalWorkingHours
	r.Summary.TotalReturns = returns.ByCategory

	e.addDevelopment(r, item, development)
	e.addReturns(r, returns)
	e.addTesting(r, item, devTesting, stgTesting)
	addStoryPoints(r, item.Estimate, development.TotalWorkingHours)

	return r
}

// addDevelopment credits completed development cycles. The item's story
// points go to its primary developer: the one with the most working hours,
// ties broken by name for determinism.
func (e *Engine) addDevelopment(r *model.Report, item model.ItemHistory, res model.DevelopmentResult) {
	primary := ""
	for name, totals := range res.PerDeveloper {
		d := r.Developer(name)
		d.TaskIDs = append(d.TaskIDs, item.ID)
		d.TotalWorkingHours += totals.WorkingHours
		d.TotalRawHours += totals.RawHours
		d.CycleCount += totals.Cycles

		if primary == "" ||
			totals.WorkingHours > res.PerDeveloper[primary].WorkingHours ||
			(totals.WorkingHours == res.PerDeveloper[primary].WorkingHours && name < primary) {
			primary = name
		}
	}

	if primary != "" && item.Estimate != nil {
		r.Developer(primary).StoryPoints += *item.Estimate
	}
}

func (e *Engine) addReturns(r *model.Report, res model.ReturnResult) {
	for name, counts := range res.PerDeveloper {
		r.Developer(name).Returns.Merge(counts)
	}
	for _, event := range res.Events {
		d := r.Developer(event.Developer)
		d.ReturnEvents = append(d.ReturnEvents, event)
	}
}

// addTesting credits counted testing cycles per tester. A tester is
// credited with the task in an environment only when they closed at least
// one iteration there; the cross-environment task list counts the item
// once even when the same tester worked both environments.
func (e *Engine) addTesting(r *model.Report, item model.ItemHistory, dev, stg model.TestingResult) {
	for name, totals := range dev.PerTester {
		t := r.Tester(name)
		t.DevWorkingHours += totals.WorkingHours
		t.DevCycles += totals.Cycles
		t.DevIterations += totals.Iterations
		if totals.Iterations > 0 {
			t.DevTaskIDs = append(t.DevTaskIDs, item.ID)
		}
	}
	for name, totals := range stg.PerTester {
		t := r.Tester(name)
		t.StgWorkingHours += totals.WorkingHours
		t.StgCycles += totals.Cycles
		t.StgIterations += totals.Iterations
		if totals.Iterations > 0 {
			t.StgTaskIDs = append(t.StgTaskIDs, item.ID)
		}
	}

	for _, t := range r.Testers {
		if len(t.DevTaskIDs)+len(t.StgTaskIDs) == 0 {
			continue
		}
		t.TaskIDs = append(t.TaskIDs, item.ID)
		if item.Estimate != nil {
			t.StoryPoints += *item.Estimate
		}
	}
}
