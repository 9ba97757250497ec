// Package model provides wire-level types for the work-item tracker REST API.
package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Field reference names used when reading work items and revisions.
const (
	FieldState        = "System.State"
	FieldChangedDate  = "System.ChangedDate"
	FieldAssignedTo   = "System.AssignedTo"
	FieldChangedBy    = "System.ChangedBy"
	FieldWorkItemType = "System.WorkItemType"
	FieldTitle        = "System.Title"
	FieldStoryPoints  = "Microsoft.VSTS.Scheduling.StoryPoints"
	FieldDevTestedBy  = "Custom.DevTestedBy"
	FieldStgTestedBy  = "Custom.StgTestedBy"
)

// Identity is a tracker user reference. Older API versions return identity
// fields as plain display strings, newer ones as objects.
type Identity struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

// UnmarshalJSON accepts both the object form and the legacy string form.
func (i *Identity) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &i.DisplayName)
	}
	type identity Identity
	var obj identity
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*i = Identity(obj)
	return nil
}

// Name returns the identity string used downstream, empty for a nil identity.
func (i *Identity) Name() string {
	if i == nil {
		return ""
	}
	return i.DisplayName
}

// WiqlRequest is the body of a WIQL query.
type WiqlRequest struct {
	Query string `json:"query"`
}

// WorkItemRef is a single result row of a flat WIQL query.
type WorkItemRef struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// WiqlResponse is the result envelope of a flat WIQL query.
type WiqlResponse struct {
	QueryType string        `json:"queryType"`
	WorkItems []WorkItemRef `json:"workItems"`
}

// BatchRequest is the body of a work-items batch read.
type BatchRequest struct {
	IDs         []int    `json:"ids"`
	Fields      []string `json:"fields,omitempty"`
	ErrorPolicy string   `json:"errorPolicy,omitempty"`
	Expand      string   `json:"$expand,omitempty"`
}

// WorkItemFields carries the snapshot fields of a work item.
type WorkItemFields struct {
	WorkItemType string    `json:"System.WorkItemType"`
	Title        string    `json:"System.Title"`
	State        string    `json:"System.State"`
	AssignedTo   *Identity `json:"System.AssignedTo"`
	DevTestedBy  *Identity `json:"Custom.DevTestedBy"`
	StgTestedBy  *Identity `json:"Custom.StgTestedBy"`
	StoryPoints  *float64  `json:"Microsoft.VSTS.Scheduling.StoryPoints"`
}

// Relation links a work item to another artifact, pull requests included.
type Relation struct {
	Rel        string         `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// WorkItem is a current-state snapshot returned by the batch endpoint.
type WorkItem struct {
	ID        int            `json:"id"`
	Rev       int            `json:"rev"`
	Fields    WorkItemFields `json:"fields"`
	Relations []Relation     `json:"relations"`
}

// WorkItemBatchResponse is the {count, value} envelope of a batch read.
type WorkItemBatchResponse struct {
	Count int        `json:"count"`
	Value []WorkItem `json:"value"`
}

// RevisionFields carries the fields of one historical revision.
type RevisionFields struct {
	State       string    `json:"System.State"`
	ChangedDate time.Time `json:"System.ChangedDate"`
	AssignedTo  *Identity `json:"System.AssignedTo"`
	ChangedBy   *Identity `json:"System.ChangedBy"`
	StoryPoints *float64  `json:"Microsoft.VSTS.Scheduling.StoryPoints"`
}

// UnmarshalJSON tolerates a malformed or absent changed date so a single bad
// revision does not fail the whole page.
func (f *RevisionFields) UnmarshalJSON(data []byte) error {
	type fields struct {
		State       string          `json:"System.State"`
		ChangedDate json.RawMessage `json:"System.ChangedDate"`
		AssignedTo  *Identity       `json:"System.AssignedTo"`
		ChangedBy   *Identity       `json:"System.ChangedBy"`
		StoryPoints *float64        `json:"Microsoft.VSTS.Scheduling.StoryPoints"`
	}
	var raw fields
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.State = raw.State
	f.AssignedTo = raw.AssignedTo
	f.ChangedBy = raw.ChangedBy
	f.StoryPoints = raw.StoryPoints
	f.ChangedDate = time.Time{}
	if len(raw.ChangedDate) > 0 && !bytes.Equal(raw.ChangedDate, []byte("null")) {
		var ts time.Time
		if err := json.Unmarshal(raw.ChangedDate, &ts); err == nil {
			f.ChangedDate = ts
		}
	}
	return nil
}

// Revision is one historical revision of a work item.
type Revision struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev"`
	Fields RevisionFields `json:"fields"`
}

// RevisionsResponse is the {count, value} envelope of a revisions page.
type RevisionsResponse struct {
	Count int        `json:"count"`
	Value []Revision `json:"value"`
}

// Comment is a single pull request thread comment.
type Comment struct {
	ID          int      `json:"id"`
	CommentType string   `json:"commentType"`
	Author      Identity `json:"author"`
	Content     string   `json:"content"`
}

// CommentThread groups the comments of one review thread.
type CommentThread struct {
	ID       int       `json:"id"`
	Comments []Comment `json:"comments"`
}

// ThreadsResponse is the {count, value} envelope of a PR threads read.
type ThreadsResponse struct {
	Count int             `json:"count"`
	Value []CommentThread `json:"value"`
}

// PRActivity aggregates one author's pull request footprint.
type PRActivity struct {
	PRCount      int `json:"pr_count"`
	CommentCount int `json:"comment_count"`
}
