package engine

import "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"

// CountReturns counts a work item's regressions into FixRequired,
// categorized by the stage they came from.
//
// The last known developer is captured whenever a transition leaves Active
// for CodeReview or DevAcceptanceTesting; every return is credited to that
// developer (not to whoever is assigned at analysis time), falling back to
// Unassigned when no developer was ever observed.
func (e *Engine) CountReturns(transitions []model.Transition) model.ReturnResult {
	result := model.ReturnResult{
		PerDeveloper: make(map[string]model.ReturnCounts),
	}

	lastDeveloper := ""
	for _, t := range transitions {
		if t.From == model.StateActive &&
			(t.To == model.StateCodeReview || t.To == model.StateDevAcceptanceTesting) {
			lastDeveloper = t.AssignedTo
		}

		if t.To != model.StateFixRequired {
			continue
		}

		developer := lastDeveloper
		if developer == "" {
			developer = model.UnassignedDeveloper
		}
		category := model.CategorizeReturn(t.From)

		result.Events = append(result.Events, model.ReturnEvent{
			WorkItemID:  t.WorkItemID,
			SourceState: t.From,
			Timestamp:   t.Timestamp,
			Developer:   developer,
			Category:    category,
		})
		result.ByCategory.Add(category)

		counts := result.PerDeveloper[developer]
		counts.Add(category)
		result.PerDeveloper[developer] = counts
	}

	return result
}
