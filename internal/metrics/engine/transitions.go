package engine

import "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"

// ExtractTransitions reduces a work item's revision history to its state
// transitions. One transition is emitted per adjacent revision pair whose
// canonical state differs; its timestamp and actors come from the later
// revision. Malformed revisions (missing state or timestamp) are skipped
// and logged, never fatal.
func (e *Engine) ExtractTransitions(itemID int, revisions []model.Revision) []model.Transition {
	transitions := make([]model.Transition, 0, len(revisions))

	var prev model.Revision
	havePrev := false
	for i, rev := range revisions {
		if !rev.Valid() {
			e.logger.Warnw("skipping malformed revision",
				"work_item_id", itemID,
				"revision_index", i,
				"state", rev.State,
			)
			continue
		}

		if havePrev {
			from := e.states.Canonical(prev.State)
			to := e.states.Canonical(rev.State)
			if from != to {
				transitions = append(transitions, model.Transition{
					WorkItemID: itemID,
					From:       from,
					To:         to,
					Timestamp:  rev.ChangedDate,
					AssignedTo: rev.AssignedTo,
					ChangedBy:  rev.ChangedBy,
				})
			}
		}

		prev = rev
		havePrev = true
	}

	return transitions
}
