package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func estimate(v float64) *float64 { return &v }

func TestToRevision(t *testing.T) {
	t.Run("maps fields and normalizes to UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*60*60)
		wire := Revision{
			Rev: 2,
			Fields: RevisionFields{
				State:       "Active",
				ChangedDate: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
				AssignedTo:  &Identity{DisplayName: "Alice"},
				ChangedBy:   &Identity{DisplayName: "Bob"},
			},
		}

		rev := wire.ToRevision()

		assert.Equal(t, "Active", rev.State)
		assert.Equal(t, time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC), rev.ChangedDate)
		assert.Equal(t, time.UTC, rev.ChangedDate.Location())
		assert.Equal(t, "Alice", rev.AssignedTo)
		assert.Equal(t, "Bob", rev.ChangedBy)
	})

	t.Run("nil identities map to empty strings", func(t *testing.T) {
		rev := Revision{Fields: RevisionFields{State: "New"}}.ToRevision()

		assert.Empty(t, rev.AssignedTo)
		assert.Empty(t, rev.ChangedBy)
		assert.True(t, rev.ChangedDate.IsZero())
	})
}

func TestToItemHistory(t *testing.T) {
	t.Run("snapshot estimate wins", func(t *testing.T) {
		item := WorkItem{
			ID: 42,
			Fields: WorkItemFields{
				WorkItemType: "Bug",
				Title:        "Login loops forever",
				StoryPoints:  estimate(5),
			},
		}
		revs := []Revision{
			{Fields: RevisionFields{State: "New", ChangedDate: time.Now(), StoryPoints: estimate(3)}},
		}

		history := ToItemHistory(item, revs)

		assert.Equal(t, 42, history.ID)
		assert.Equal(t, "Bug", history.Type)
		assert.Equal(t, "Login loops forever", history.Title)
		require.NotNil(t, history.Estimate)
		assert.Equal(t, 5.0, *history.Estimate)
		assert.Len(t, history.Revisions, 1)
	})

	t.Run("falls back to latest revision estimate", func(t *testing.T) {
		item := WorkItem{ID: 42, Fields: WorkItemFields{WorkItemType: "Task"}}
		revs := []Revision{
			{Fields: RevisionFields{State: "New", StoryPoints: estimate(3)}},
			{Fields: RevisionFields{State: "Active", StoryPoints: estimate(8)}},
			{Fields: RevisionFields{State: "Code Review"}},
		}

		history := ToItemHistory(item, revs)

		require.NotNil(t, history.Estimate)
		assert.Equal(t, 8.0, *history.Estimate)
	})

	t.Run("no estimate anywhere stays nil", func(t *testing.T) {
		history := ToItemHistory(WorkItem{ID: 1}, []Revision{{Fields: RevisionFields{State: "New"}}})

		assert.Nil(t, history.Estimate)
	})
}

func TestPullRequestRef(t *testing.T) {
	t.Run("parses artifact url", func(t *testing.T) {
		rel := Relation{
			Rel: "ArtifactLink",
			URL: "vstfs:///Git/PullRequestId/5e8cdc99-aaaa-4444-bbbb-93b60e54a1c6%2F0d1a2b3c-dddd-5555-eeee-6f7a8b9c0d1e%2F421",
		}

		ref, ok := rel.PullRequestRef()

		require.True(t, ok)
		assert.Equal(t, "5e8cdc99-aaaa-4444-bbbb-93b60e54a1c6", ref.ProjectID)
		assert.Equal(t, "0d1a2b3c-dddd-5555-eeee-6f7a8b9c0d1e", ref.RepositoryID)
		assert.Equal(t, 421, ref.ID)
	})

	t.Run("rejects non pull request relations", func(t *testing.T) {
		cases := []string{
			"vstfs:///Git/Commit/proj%2Frepo%2Fabc123",
			"https://dev.azure.com/acme/_apis/wit/workItems/7",
			"vstfs:///Git/PullRequestId/proj%2Frepo%2Fnot-a-number",
			"vstfs:///Git/PullRequestId/missing-parts",
			"vstfs:///Git/PullRequestId/proj%2Frepo%2F0",
		}
		for _, u := range cases {
			_, ok := Relation{URL: u}.PullRequestRef()
			assert.False(t, ok, "url %q should not parse", u)
		}
	})

	t.Run("distinct refs keep first-seen order", func(t *testing.T) {
		relations := []Relation{
			{URL: "vstfs:///Git/PullRequestId/p%2Fr%2F2"},
			{URL: "https://example.com/unrelated"},
			{URL: "vstfs:///Git/PullRequestId/p%2Fr%2F1"},
			{URL: "vstfs:///Git/PullRequestId/p%2Fr%2F2"},
		}

		refs := PullRequestRefs(relations)

		require.Len(t, refs, 2)
		assert.Equal(t, 2, refs[0].ID)
		assert.Equal(t, 1, refs[1].ID)
	})
}
