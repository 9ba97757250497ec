package engine

import "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"

// addStoryPoints folds one item's estimate and active development hours
// into the report's story-point statistics. Items without an estimate only
// increment the without-estimate counter.
func addStoryPoints(r *model.Report, estimate *float64, activeHours float64) {
	if estimate == nil {
		r.StoryPoints.ItemsWithoutEstimate++
		return
	}

	r.StoryPoints.TotalStoryPoints += *estimate
	r.StoryPoints.ItemsWithEstimate++
	r.StoryPoints.TotalActiveHoursWithEstimate += activeHours

	bucket := r.Bucket(*estimate)
	bucket.Count++
	bucket.TotalHours += activeHours
}
