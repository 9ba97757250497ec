//go:build e2e
// +build e2e

package e2e

import (
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trackerModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/tracker/model"
)

// Monday 2025-01-13 in the default UTC+3 calendar; hours below are local.
func monday(hour int) time.Time {
	return time.Date(2025, 1, 13, hour-3, 0, 0, 0, time.UTC)
}

func identity(name string) *trackerModel.Identity {
	return &trackerModel.Identity{DisplayName: name}
}

func estimate(v float64) *float64 {
	return &v
}

// seedBugScenario loads one Bug that travels the full happy path:
// Alice develops 09:00-11:00, Carol tests 13:00-15:00, the item hops to
// acceptance and bounces back to Carol 16:00-17:00 before approval.
func (s *E2ETestSuite) seedBugScenario() {
	revs := []trackerModel.Revision{
		{ID: 1, Rev: 1, Fields: trackerModel.RevisionFields{
			State: "New", ChangedDate: monday(8),
		}},
		{ID: 2, Rev: 2, Fields: trackerModel.RevisionFields{
			State: "Active", ChangedDate: monday(9),
			AssignedTo: identity("Alice"),
		}},
		{ID: 3, Rev: 3, Fields: trackerModel.RevisionFields{
			State: "Code Review", ChangedDate: monday(11),
			AssignedTo: identity("Alice"), ChangedBy: identity("Alice"),
		}},
		{ID: 4, Rev: 4, Fields: trackerModel.RevisionFields{
			State: "DEV In Testing", ChangedDate: monday(13),
			AssignedTo: identity("Alice"), ChangedBy: identity("Carol"),
		}},
		{ID: 5, Rev: 5, Fields: trackerModel.RevisionFields{
			State: "DEV Acceptance Testing", ChangedDate: monday(15),
			AssignedTo: identity("Alice"), ChangedBy: identity("Carol"),
		}},
		{ID: 6, Rev: 6, Fields: trackerModel.RevisionFields{
			State: "DEV In Testing", ChangedDate: monday(16),
			AssignedTo: identity("Alice"), ChangedBy: identity("Carol"),
		}},
		{ID: 7, Rev: 7, Fields: trackerModel.RevisionFields{
			State: "Approved", ChangedDate: monday(17),
			AssignedTo: identity("Alice"), ChangedBy: identity("Dave"),
		}},
	}

	s.tracker.items = map[int]trackerModel.WorkItem{
		101: {
			ID:  101,
			Rev: 7,
			Fields: trackerModel.WorkItemFields{
				WorkItemType: "Bug",
				Title:        "Checkout crashes on empty cart",
				State:        "Approved",
				AssignedTo:   identity("Alice"),
				StoryPoints:  estimate(5),
			},
			Relations: []trackerModel.Relation{
				{Rel: "ArtifactLink", URL: "vstfs:///Git/PullRequestId/proj%2Frepo%2F7"},
			},
		},
	}
	s.tracker.revisions = map[int][]trackerModel.Revision{101: revs}
	s.tracker.threads = map[string][]trackerModel.CommentThread{
		"/org/proj/_apis/git/repositories/repo/pullRequests/7/threads": {
			{ID: 1, Comments: []trackerModel.Comment{
				{ID: 1, Author: trackerModel.Identity{DisplayName: "Carol"}, Content: "nit: naming"},
				{ID: 2, CommentType: "system", Author: trackerModel.Identity{DisplayName: "bot"}},
				{ID: 3, Author: trackerModel.Identity{DisplayName: "Carol"}, Content: "lgtm"},
			}},
		},
	}
}

func (s *E2ETestSuite) TestHealthEndpoint() {
	var resp map[string]string
	code := s.getJSON("/health", &resp)

	assert.Equal(s.T(), http.StatusOK, code)
	assert.Equal(s.T(), "ok", resp["status"])
}

func (s *E2ETestSuite) TestFullAnalysisFlow() {
	s.seedBugScenario()

	var startResp map[string]map[string]interface{}
	code := s.postJSON("/analysis/start", map[string]interface{}{
		"area_path":  "Project\\Team",
		"item_types": []string{"Bug"},
	}, &startResp)
	require.Equal(s.T(), http.StatusAccepted, code)

	jobID, _ := startResp["job"]["id"].(string)
	require.NotEmpty(s.T(), jobID)
	assert.EqualValues(s.T(), 1, startResp["job"]["total_items"])
	assert.EqualValues(s.T(), 1, startResp["job"]["total_chunks"])

	job := s.waitForJob(jobID, "COMPLETED")
	assert.EqualValues(s.T(), 1, job["completed_chunks"])
	assert.EqualValues(s.T(), 0, job["failed_items"])

	var reportResp struct {
		JobID  string `json:"job_id"`
		Report struct {
			Developers map[string]struct {
				TaskCount              int     `json:"task_count"`
				TotalWorkingHours      float64 `json:"total_working_hours"`
				CycleCount             int     `json:"cycle_count"`
				StoryPoints            float64 `json:"story_points"`
				AvgWorkingHoursPerTask float64 `json:"avg_working_hours_per_task"`
			} `json:"developers"`
			Testers map[string]struct {
				ClosedTaskCount int     `json:"closed_task_count"`
				DevWorkingHours float64 `json:"dev_working_hours"`
				DevCycles       int     `json:"dev_cycles"`
				DevIterations   int     `json:"dev_iterations"`
				PRCount         int     `json:"pr_count"`
				PRCommentCount  int     `json:"pr_comment_count"`
			} `json:"testers"`
			StoryPoints struct {
				TotalStoryPoints  float64 `json:"total_story_points"`
				ItemsWithEstimate int     `json:"items_with_estimate"`
				Fibonacci         map[string]struct {
					Count      int     `json:"count"`
					TotalHours float64 `json:"total_hours"`
				} `json:"fibonacci"`
			} `json:"story_points"`
			Summary struct {
				TotalItems  int            `json:"total_items"`
				ItemsByType map[string]int `json:"items_by_type"`
			} `json:"summary"`
		} `json:"report"`
	}
	code = s.getJSON("/analysis/jobs/"+jobID+"/report", &reportResp)
	require.Equal(s.T(), http.StatusOK, code)
	require.Equal(s.T(), jobID, reportResp.JobID)

	alice, ok := reportResp.Report.Developers["Alice"]
	require.True(s.T(), ok, "Alice missing from developer metrics")
	assert.Equal(s.T(), 1, alice.TaskCount)
	assert.InDelta(s.T(), 2.0, alice.TotalWorkingHours, 1e-4)
	assert.Equal(s.T(), 1, alice.CycleCount)
	assert.InDelta(s.T(), 5.0, alice.StoryPoints, 1e-9)
	assert.InDelta(s.T(), 2.0, alice.AvgWorkingHoursPerTask, 1e-4)

	carol, ok := reportResp.Report.Testers["Carol"]
	require.True(s.T(), ok, "Carol missing from tester metrics")
	assert.Equal(s.T(), 1, carol.ClosedTaskCount)
	// One merged cycle: 13:00-15:00 plus 16:00-17:00.
	assert.Equal(s.T(), 1, carol.DevCycles)
	assert.Equal(s.T(), 1, carol.DevIterations)
	assert.InDelta(s.T(), 3.0, carol.DevWorkingHours, 1e-4)
	assert.Equal(s.T(), 1, carol.PRCount)
	assert.Equal(s.T(), 2, carol.PRCommentCount)

	assert.InDelta(s.T(), 5.0, reportResp.Report.StoryPoints.TotalStoryPoints, 1e-9)
	assert.Equal(s.T(), 1, reportResp.Report.StoryPoints.ItemsWithEstimate)
	bucket, ok := reportResp.Report.StoryPoints.Fibonacci["5"]
	require.True(s.T(), ok, "bucket for estimate 5 missing")
	assert.Equal(s.T(), 1, bucket.Count)
	assert.InDelta(s.T(), 2.0, bucket.TotalHours, 1e-4)

	assert.Equal(s.T(), 1, reportResp.Report.Summary.TotalItems)
	assert.Equal(s.T(), 1, reportResp.Report.Summary.ItemsByType["Bug"])
}

func (s *E2ETestSuite) TestReportBeforeCompletionAndUnknownJob() {
	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}

	code := s.getJSON("/analysis/jobs/2b1f3a60-0000-0000-0000-000000000000/report", &errResp)
	assert.Equal(s.T(), http.StatusNotFound, code)
	assert.Equal(s.T(), "JOB_NOT_FOUND", errResp.Error.Code)

	code = s.getJSON("/analysis/jobs/not-a-uuid", &errResp)
	assert.Equal(s.T(), http.StatusBadRequest, code)
	assert.Equal(s.T(), "VALIDATION_FAILED", errResp.Error.Code)
}

func (s *E2ETestSuite) TestStartValidation() {
	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}

	code := s.postJSON("/analysis/start", map[string]interface{}{
		"area_path": "Project\\Team",
		"date_from": "2025-02-01",
		"date_to":   "2025-01-01",
	}, &errResp)
	assert.Equal(s.T(), http.StatusBadRequest, code)
	assert.Equal(s.T(), "VALIDATION_FAILED", errResp.Error.Code)

	code = s.postJSON("/analysis/start", map[string]interface{}{}, &errResp)
	assert.Equal(s.T(), http.StatusBadRequest, code)
	assert.Equal(s.T(), "VALIDATION_FAILED", errResp.Error.Code)
}

func (s *E2ETestSuite) TestJobListing() {
	s.seedBugScenario()

	var startResp map[string]map[string]interface{}
	code := s.postJSON("/analysis/start", map[string]interface{}{
		"area_path": "Project\\Team",
	}, &startResp)
	require.Equal(s.T(), http.StatusAccepted, code)
	jobID, _ := startResp["job"]["id"].(string)
	s.waitForJob(jobID, "COMPLETED")

	var listResp struct {
		Jobs []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"jobs"`
		Total int64 `json:"total"`
	}
	code = s.getJSON("/analysis/jobs", &listResp)
	require.Equal(s.T(), http.StatusOK, code)
	assert.Equal(s.T(), int64(1), listResp.Total)
	require.Len(s.T(), listResp.Jobs, 1)
	assert.Equal(s.T(), jobID, listResp.Jobs[0].ID)
	assert.Equal(s.T(), "COMPLETED", listResp.Jobs[0].Status)
}
