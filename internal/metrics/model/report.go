package model

import "strconv"

// DevAggData accumulates one developer's metrics across work items.
// Fields named Avg* are derived during finalization; everything else is
// summable so reports merge by plain numeric addition and list
// concatenation.
type DevAggData struct {
	// TaskIDs lists the distinct items credited to the developer.
	TaskIDs           []int         `json:"task_ids"`
	TaskCount         int           `json:"task_count"`
	TotalWorkingHours float64       `json:"total_working_hours"`
	TotalRawHours     float64       `json:"total_raw_hours"`
	CycleCount        int           `json:"cycle_count"`
	Returns           ReturnCounts  `json:"returns"`
	ReturnEvents      []ReturnEvent `json:"return_events,omitempty"`
	StoryPoints       float64       `json:"story_points"`

	// AvgWorkingHoursPerTask is TotalWorkingHours / TaskCount, never
	// hours per cycle.
	AvgWorkingHoursPerTask float64 `json:"avg_working_hours_per_task"`
	AvgReturnsPerTask      float64 `json:"avg_returns_per_task"`
}

// TesterAggData accumulates one tester's metrics across work items.
type TesterAggData struct {
	// DevTaskIDs and StgTaskIDs list the distinct items the tester closed
	// in each environment; TaskIDs is their per-item union.
	DevTaskIDs      []int   `json:"dev_task_ids"`
	StgTaskIDs      []int   `json:"stg_task_ids"`
	TaskIDs         []int   `json:"task_ids"`
	ClosedTaskCount int     `json:"closed_task_count"`
	DevWorkingHours float64 `json:"dev_working_hours"`
	StgWorkingHours float64 `json:"stg_working_hours"`
	DevCycles       int     `json:"dev_cycles"`
	StgCycles       int     `json:"stg_cycles"`
	DevIterations   int     `json:"dev_iterations"`
	StgIterations   int     `json:"stg_iterations"`
	PRCount         int     `json:"pr_count"`
	PRCommentCount  int     `json:"pr_comment_count"`
	StoryPoints     float64 `json:"story_points"`

	AvgDevHoursPerTask      float64 `json:"avg_dev_hours_per_task"`
	AvgStgHoursPerTask      float64 `json:"avg_stg_hours_per_task"`
	AvgDevIterationsPerTask float64 `json:"avg_dev_iterations_per_task"`
	AvgStgIterationsPerTask float64 `json:"avg_stg_iterations_per_task"`
	AvgCommentsPerPR        float64 `json:"avg_comments_per_pr"`
}

// FibBucket accumulates items sharing one story-point estimate.
type FibBucket struct {
	Estimate   float64 `json:"estimate"`
	Count      int     `json:"count"`
	TotalHours float64 `json:"total_hours"`
	// AvgHoursPerSP is TotalHours / (Count * Estimate), derived.
	AvgHoursPerSP float64 `json:"avg_hours_per_sp"`
}

// BucketKey formats a story-point estimate as a stable map key.
func BucketKey(estimate float64) string {
	return strconv.FormatFloat(estimate, 'f', -1, 64)
}

// StoryPointAgg accumulates story-point statistics across work items.
type StoryPointAgg struct {
	TotalStoryPoints             float64               `json:"total_story_points"`
	ItemsWithEstimate            int                   `json:"items_with_estimate"`
	ItemsWithoutEstimate         int                   `json:"items_without_estimate"`
	TotalActiveHoursWithEstimate float64               `json:"total_active_hours_with_estimate"`
	Fibonacci                    map[string]*FibBucket `json:"fibonacci"`

	AverageStoryPoints float64 `json:"average_story_points"`
	CostPerStoryPoint  float64 `json:"cost_per_story_point"`
}

// Summary holds project-wide totals.
type Summary struct {
	TotalItems            int            `json:"total_items"`
	ItemsByType           map[string]int `json:"items_by_type"`
	TotalDevelopmentHours float64        `json:"total_development_hours"`
	TotalDevTestingHours  float64        `json:"total_dev_testing_hours"`
	TotalStgTestingHours  float64        `json:"total_stg_testing_hours"`
	TotalReturns          ReturnCounts   `json:"total_returns"`

	// Buckets is the chart-ready story-point series, sorted by estimate.
	Buckets []FibBucket `json:"buckets"`
}

// Report is the merged metrics output, keyed by person display name.
// Reports form a commutative monoid under merging: an empty report is the
// identity and merging sums numeric fields and concatenates lists.
type Report struct {
	Developers  map[string]*DevAggData    `json:"developers"`
	Testers     map[string]*TesterAggData `json:"testers"`
	StoryPoints StoryPointAgg             `json:"story_points"`
	Summary     Summary                   `json:"summary"`
}

// NewReport returns an empty report (the merge identity).
func NewReport() *Report {
	return &Report{
		Developers: make(map[string]*DevAggData),
		Testers:    make(map[string]*TesterAggData),
		StoryPoints: StoryPointAgg{
			Fibonacci: make(map[string]*FibBucket),
		},
		Summary: Summary{
			ItemsByType: make(map[string]int),
		},
	}
}

// Developer returns the aggregate for the named developer, creating it if
// absent.
func (r *Report) Developer(name string) *DevAggData {
	if r.Developers == nil {
		r.Developers = make(map[string]*DevAggData)
	}
	d, ok := r.Developers[name]
	if !ok {
		d = &DevAggData{}
		r.Developers[name] = d
	}
	return d
}

// Tester returns the aggregate for the named tester, creating it if
// absent.
func (r *Report) Tester(name string) *TesterAggData {
	if r.Testers == nil {
		r.Testers = make(map[string]*TesterAggData)
	}
	t, ok := r.Testers[name]
	if !ok {
		t = &TesterAggData{}
		r.Testers[name] = t
	}
	return t
}

// Bucket returns the story-point bucket for the given estimate, creating
// it if absent.
func (r *Report) Bucket(estimate float64) *FibBucket {
	if r.StoryPoints.Fibonacci == nil {
		r.StoryPoints.Fibonacci = make(map[string]*FibBucket)
	}
	key := BucketKey(estimate)
	b, ok := r.StoryPoints.Fibonacci[key]
	if !ok {
		b = &FibBucket{Estimate: estimate}
		r.StoryPoints.Fibonacci[key] = b
	}
	return b
}

// AddPRActivity folds already-aggregated pull-request review activity for
// one author into the tester metrics.
func (r *Report) AddPRActivity(author string, prCount, commentCount int) {
	t := r.Tester(author)
	t.PRCount += prCount
	t.PRCommentCount += commentCount
}
