package model

import (
	"net/url"
	"strconv"
	"strings"

	metricsModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

const pullRequestURLPrefix = "vstfs:///Git/PullRequestId/"

// ToRevision maps a wire revision onto the engine's revision shape.
// Change dates are normalized to UTC.
func (r Revision) ToRevision() metricsModel.Revision {
	rev := metricsModel.Revision{
		State:      r.Fields.State,
		AssignedTo: r.Fields.AssignedTo.Name(),
		ChangedBy:  r.Fields.ChangedBy.Name(),
	}
	if !r.Fields.ChangedDate.IsZero() {
		rev.ChangedDate = r.Fields.ChangedDate.UTC()
	}
	return rev
}

// ToItemHistory combines a snapshot and its revisions into the engine input.
// The estimate comes from the snapshot, falling back to the latest revision
// that carries one.
func ToItemHistory(item WorkItem, revisions []Revision) metricsModel.ItemHistory {
	history := metricsModel.ItemHistory{
		ID:        item.ID,
		Type:      item.Fields.WorkItemType,
		Title:     item.Fields.Title,
		Estimate:  item.Fields.StoryPoints,
		Revisions: make([]metricsModel.Revision, 0, len(revisions)),
	}
	for _, r := range revisions {
		history.Revisions = append(history.Revisions, r.ToRevision())
	}
	if history.Estimate == nil {
		for i := len(revisions) - 1; i >= 0; i-- {
			if revisions[i].Fields.StoryPoints != nil {
				history.Estimate = revisions[i].Fields.StoryPoints
				break
			}
		}
	}
	return history
}

// PullRequestRef identifies one pull request referenced by a work item.
type PullRequestRef struct {
	ProjectID    string
	RepositoryID string
	ID           int
}

// PullRequestRef extracts the pull request reference from an artifact
// relation URL of the form
// vstfs:///Git/PullRequestId/{project}%2F{repository}%2F{id}.
func (r Relation) PullRequestRef() (PullRequestRef, bool) {
	if !strings.HasPrefix(r.URL, pullRequestURLPrefix) {
		return PullRequestRef{}, false
	}
	raw, err := url.PathUnescape(strings.TrimPrefix(r.URL, pullRequestURLPrefix))
	if err != nil {
		return PullRequestRef{}, false
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return PullRequestRef{}, false
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil || id <= 0 {
		return PullRequestRef{}, false
	}
	return PullRequestRef{ProjectID: parts[0], RepositoryID: parts[1], ID: id}, true
}

// PullRequestRefs collects the distinct pull request references of a relation
// list, in first-seen order.
func PullRequestRefs(relations []Relation) []PullRequestRef {
	seen := make(map[PullRequestRef]struct{})
	refs := make([]PullRequestRef, 0, len(relations))
	for _, rel := range relations {
		ref, ok := rel.PullRequestRef()
		if !ok {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}
