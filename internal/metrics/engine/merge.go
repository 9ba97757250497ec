package engine

import (
	"math"
	"sort"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/calendar"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

// MergeReports combines any number of reports into a fresh one. Merging is
// commutative and associative with the empty report as identity: every
// numeric field is summed and every list field concatenated, per identity
// key. Inputs are not modified; nil inputs are skipped. The result is not
// finalized.
func MergeReports(reports ...*model.Report) *model.Report {
	out := model.NewReport()
	for _, r := range reports {
		if r != nil {
			mergeInto(out, r)
		}
	}
	return out
}

func mergeInto(dst, src *model.Report) {
	mergeMap(dst.Developers, src.Developers, newDevAgg, mergeDevAgg)
	mergeMap(dst.Testers, src.Testers, newTesterAgg, mergeTesterAgg)
	mergeMap(dst.StoryPoints.Fibonacci, src.StoryPoints.Fibonacci, newBucket, mergeBucket)

	dst.StoryPoints.TotalStoryPoints += src.StoryPoints.TotalStoryPoints
	dst.StoryPoints.ItemsWithEstimate += src.StoryPoints.ItemsWithEstimate
	dst.StoryPoints.ItemsWithoutEstimate += src.StoryPoints.ItemsWithoutEstimate
	dst.StoryPoints.TotalActiveHoursWithEstimate += src.StoryPoints.TotalActiveHoursWithEstimate

	dst.Summary.TotalItems += src.Summary.TotalItems
	dst.Summary.TotalDevelopmentHours += src.Summary.TotalDevelopmentHours
	dst.Summary.TotalDevTestingHours += src.Summary.TotalDevTestingHours
	dst.Summary.TotalStgTestingHours += src.Summary.TotalStgTestingHours
	dst.Summary.TotalReturns.Merge(src.Summary.TotalReturns)
	for k, v := range src.Summary.ItemsByType {
		dst.Summary.ItemsByType[k] += v
	}
}

// mergeMap folds src into dst per key, creating missing entries. combine
// must be a pure accumulation so the overall merge stays a monoid.
func mergeMap[V any](dst, src map[string]V, create func() V, combine func(dst, src V)) {
	for key, sv := range src {
		dv, ok := dst[key]
		if !ok {
			dv = create()
			dst[key] = dv
		}
		combine(dv, sv)
	}
}

func newDevAgg() *model.DevAggData { return &model.DevAggData{} }

func mergeDevAgg(dst, src *model.DevAggData) {
	dst.TaskIDs = append(dst.TaskIDs, src.TaskIDs...)
	dst.TotalWorkingHours += src.TotalWorkingHours
	dst.TotalRawHours += src.TotalRawHours
	dst.CycleCount += src.CycleCount
	dst.Returns.Merge(src.Returns)
	dst.ReturnEvents = append(dst.ReturnEvents, src.ReturnEvents...)
	dst.StoryPoints += src.StoryPoints
}

func newTesterAgg() *model.TesterAggData { return &model.TesterAggData{} }

func mergeTesterAgg(dst, src *model.TesterAggData) {
	dst.DevTaskIDs = append(dst.DevTaskIDs, src.DevTaskIDs...)
	dst.StgTaskIDs = append(dst.StgTaskIDs, src.StgTaskIDs...)
	dst.TaskIDs = append(dst.TaskIDs, src.TaskIDs...)
	dst.DevWorkingHours += src.DevWorkingHours
	dst.StgWorkingHours += src.StgWorkingHours
	dst.DevCycles += src.DevCycles
	dst.StgCycles += src.StgCycles
	dst.DevIterations += src.DevIterations
	dst.StgIterations += src.StgIterations
	dst.PRCount += src.PRCount
	dst.PRCommentCount += src.PRCommentCount
	dst.StoryPoints += src.StoryPoints
}

func newBucket() *model.FibBucket { return &model.FibBucket{} }

func mergeBucket(dst, src *model.FibBucket) {
	dst.Estimate = src.Estimate
	dst.Count += src.Count
	dst.TotalHours += src.TotalHours
}

// Finalize derives every average and the chart-ready bucket series from
// the merged totals. Derivations divide by task counts (never cycle
// counts) and resolve zero denominators to 0, so output never contains
// NaN or Infinity. Safe to call repeatedly.
func Finalize(r *model.Report) {
	for _, d := range r.Developers {
		d.TaskCount = len(d.TaskIDs)
		d.AvgWorkingHoursPerTask = safeDiv(d.TotalWorkingHours, float64(d.TaskCount))
		d.AvgReturnsPerTask = safeDiv(float64(d.Returns.Total()), float64(d.TaskCount))
	}

	for _, t := range r.Testers {
		t.ClosedTaskCount = len(t.TaskIDs)
		devTasks := float64(len(t.DevTaskIDs))
		stgTasks := float64(len(t.StgTaskIDs))
		t.AvgDevHoursPerTask = safeDiv(t.DevWorkingHours, devTasks)
		t.AvgStgHoursPerTask = safeDiv(t.StgWorkingHours, stgTasks)
		t.AvgDevIterationsPerTask = safeDiv(float64(t.DevIterations), devTasks)
		t.AvgStgIterationsPerTask = safeDiv(float64(t.StgIterations), stgTasks)
		t.AvgCommentsPerPR = safeDiv(float64(t.PRCommentCount), float64(t.PRCount))
	}

	sp := &r.StoryPoints
	sp.AverageStoryPoints = safeDiv(sp.TotalStoryPoints, float64(sp.ItemsWithEstimate))
	sp.CostPerStoryPoint = safeDiv(sp.TotalActiveHoursWithEstimate, sp.TotalStoryPoints)

	buckets := make([]model.FibBucket, 0, len(sp.Fibonacci))
	for _, b := range sp.Fibonacci {
		b.AvgHoursPerSP = safeDiv(b.TotalHours, float64(b.Count)*b.Estimate)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Estimate < buckets[j].Estimate
	})
	r.Summary.Buckets = buckets
}

// safeDiv divides and resolves zero denominators and non-finite results
// to 0, rounding to 4 decimal places.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	q := num / den
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return calendar.Round(q)
}
