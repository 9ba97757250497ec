package model

import "time"

// Identity fallbacks used when a transition carries no usable actor.
const (
	// UnassignedDeveloper is credited when no developer was ever observed.
	UnassignedDeveloper = "Unassigned"
	// UnknownTester is credited when a testing transition carries no actor.
	UnknownTester = "Unknown"
)

// Revision is one entry of a work item's edit history, reduced to the
// fields the engine consumes. State carries the raw tracker state name;
// canonicalization happens during transition extraction.
type Revision struct {
	// State is the raw tracker state after this revision.
	State string
	// ChangedDate is the UTC instant the revision was made.
	ChangedDate time.Time
	// AssignedTo is the display name of the assignee, empty when unassigned.
	AssignedTo string
	// ChangedBy is the display name of the person who made the revision.
	ChangedBy string
}

// Valid reports whether the revision carries the fields required to take
// part in transition extraction.
func (r Revision) Valid() bool {
	return r.State != "" && !r.ChangedDate.IsZero()
}

// Transition is one observed state change of a work item.
type Transition struct {
	WorkItemID int       `json:"work_item_id"`
	From       State     `json:"from"`
	To         State     `json:"to"`
	Timestamp  time.Time `json:"timestamp"`
	// AssignedTo is the assignee recorded on the revision that produced
	// this transition, empty when unassigned.
	AssignedTo string `json:"assigned_to,omitempty"`
	// ChangedBy is the person who made the state change.
	ChangedBy string `json:"changed_by,omitempty"`
}

// ItemHistory is the per-item input to the aggregation driver: the item
// snapshot fields the engine needs plus its full revision history.
type ItemHistory struct {
	ID       int
	Type     string
	Title    string
	Estimate *float64
	// Revisions are ordered by revision number ascending (chronological).
	Revisions []Revision
}
